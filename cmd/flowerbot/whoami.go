package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the authenticated account",
	Long:  `Log in with the resolved credentials and print the account the bot posts as.`,
	RunE:  runWhoami,
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

func runWhoami(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	identity, err := login(ctx, a)
	if err != nil {
		return err
	}

	fmt.Printf("Username:     @%s\n", identity.Username)
	fmt.Printf("Display name: %s\n", identity.Name)
	fmt.Printf("ID:           %s\n", identity.ID)
	fmt.Printf("Credentials:  %s\n", a.Config.Source)
	fmt.Printf("Cooldown:     %d days\n", int(a.Cooldown/(24*time.Hour)))
	return nil
}
