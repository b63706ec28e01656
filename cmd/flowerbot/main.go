package main

import (
	"log/slog"
	"os"

	"github.com/abdulachik/flowerbot/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath  string
	logFile     string
	journalPath string

	closeLog = func() error { return nil }
)

var rootCmd = &cobra.Command{
	Use:   "flowerbot",
	Short: "Posts a tiny flower bed every few days",
	Long: `flowerbot posts a small bed of flower emoji to Twitter, waiting a
random number of days between posts. Credentials come from the
CONSUMER_KEY, CONSUMER_SECRET, ACCESS_KEY and ACCESS_SECRET environment
variables, or from the configuration file when any of them is missing.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupLogging,
}

func init() {
	// Load .env file if present
	_ = godotenv.Load()

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "config.txt", "configuration file (INI, or YAML with a .yaml/.yml extension)")
	flags.StringVar(&logFile, "log-file", logging.DefaultFilePath(), "append log output to this file (empty disables)")
	flags.StringVar(&journalPath, "journal", "data/flowerbot.db", "SQLite journal of published posts (empty disables)")
}

func setupLogging(cmd *cobra.Command, args []string) error {
	logger, closeFn, err := logging.Setup(logging.Options{
		Name:     "flowerbot",
		Level:    os.Getenv("LOG_LEVEL"),
		FilePath: logFile,
	})
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	closeLog = closeFn
	return nil
}

func main() {
	err := rootCmd.Execute()
	closeLog()
	if err != nil {
		os.Exit(1)
	}
}
