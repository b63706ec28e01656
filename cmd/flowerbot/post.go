package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/abdulachik/flowerbot/internal/app"
	"github.com/abdulachik/flowerbot/internal/logging"
	"github.com/abdulachik/flowerbot/internal/scheduler"
	"github.com/spf13/cobra"
)

var (
	postDryRun      bool
	postPostOnEmpty bool
)

var postCmd = &cobra.Command{
	Use:   "post",
	Short: "Run a single posting cycle",
	Long: `Check the account's latest post once and publish a new flower bed if
the cooldown has elapsed.

Examples:
  flowerbot post            # Actually post
  flowerbot post --dry-run  # Show what would be posted without posting`,
	RunE: runPost,
}

func init() {
	postCmd.Flags().BoolVar(&postDryRun, "dry-run", false, "Show what would be posted without actually posting")
	postCmd.Flags().BoolVar(&postPostOnEmpty, "post-on-empty", false, "Post if the account has never posted")
	rootCmd.AddCommand(postCmd)
}

func runPost(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	a, err := loadApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := login(ctx, a); err != nil {
		return err
	}

	return postOnce(ctx, a, cmd.OutOrStdout())
}

// postOnce runs a single poll and reports the outcome to w. A dry run always
// shows a flower bed, even while the cooldown is running.
func postOnce(ctx context.Context, a *app.App, w io.Writer) error {
	var bed string
	sched := a.Scheduler(app.SchedulerOptions{
		DryRun:      postDryRun,
		PostOnEmpty: postPostOnEmpty,
		Compose: func() string {
			bed = a.Compose()
			return bed
		},
	})

	wait, err := sched.Poll(ctx)
	if errors.Is(err, scheduler.ErrCIDetected) {
		logging.Critical("CI detected! Skipping post.")
		return nil
	}
	if err != nil {
		err = fmt.Errorf("poll: %w", err)
		logFatal(err)
		return err
	}

	if bed == "" {
		fmt.Fprintf(w, "Cooldown has not elapsed. Next post in %s.\n", wait.Round(time.Minute))
		if !postDryRun {
			return nil
		}
		bed = a.Compose()
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "=== Flower Bed ===")
	fmt.Fprintln(w)
	fmt.Fprintln(w, bed)
	fmt.Fprintln(w)

	if postDryRun {
		fmt.Fprintln(w, "=== DRY RUN - Not posting ===")
		return nil
	}

	fmt.Fprintf(w, "Posted successfully! Next post in %s.\n", wait.Round(time.Minute))
	return nil
}
