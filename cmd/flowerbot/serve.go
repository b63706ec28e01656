package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/abdulachik/flowerbot/internal/app"
	"github.com/abdulachik/flowerbot/internal/scheduler"
	"github.com/spf13/cobra"
)

var servePostOnEmpty bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bot daemon",
	Long: `Run the flowerbot daemon: check the account's latest post, publish a
new flower bed once the cooldown has elapsed, and sleep until the next one.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&servePostOnEmpty, "post-on-empty", false, "Post immediately if the account has never posted")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := login(ctx, a); err != nil {
		return err
	}

	sched := a.Scheduler(app.SchedulerOptions{PostOnEmpty: servePostOnEmpty})

	// Wait for shutdown signal or error
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return serveLoop(ctx, cancel, sched, sigCh)
}

// serveLoop runs the scheduler until it stops on its own or a signal arrives.
func serveLoop(ctx context.Context, cancel context.CancelFunc, sched *scheduler.Scheduler, sigCh <-chan os.Signal) error {
	// Run scheduler in background
	errCh := make(chan error, 1)
	go func() {
		errCh <- sched.Run(ctx)
	}()

	select {
	case sig := <-sigCh:
		slog.Info("received shutdown signal", "signal", sig)
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			err = fmt.Errorf("scheduler error: %w", err)
			logFatal(err)
			return err
		}
	}

	logStatus(sched.Status().Snapshot())
	return nil
}

func logStatus(snap scheduler.Snapshot) {
	slog.Info("scheduler stopped",
		"state", snap.State,
		"posts", snap.Posts,
		"rate_limits", snap.RateLimits,
		"last_post", snap.LastPost,
	)
}
