package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/abdulachik/flowerbot/internal/db"
	"github.com/abdulachik/flowerbot/internal/poster"
	"github.com/spf13/cobra"
)

var historyLimit int64

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently published flower beds",
	Long:  `Display the most recent posts recorded in the local journal.`,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().Int64Var(&historyLimit, "limit", 10, "Number of posts to show")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if journalPath == "" {
		return errors.New("journal is disabled")
	}

	store, err := db.Open(ctx, journalPath)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer store.Close()

	total, err := store.CountPosts(ctx)
	if err != nil {
		return fmt.Errorf("count posts: %w", err)
	}

	twitterPosts, err := store.CountPostsByPlatform(ctx, "twitter")
	if err != nil {
		return fmt.Errorf("count twitter posts: %w", err)
	}

	posts, err := store.ListRecentPosts(ctx, historyLimit)
	if err != nil {
		return fmt.Errorf("list posts: %w", err)
	}

	fmt.Println("=== FlowerBot History ===")
	fmt.Println()
	fmt.Printf("Journal: %s\n", journalPath)
	fmt.Printf("Total posts: %d\n", total)
	fmt.Printf("  Twitter: %d\n", twitterPosts)
	fmt.Println()

	for _, p := range posts {
		url := "-"
		if p.PostUrl.Valid {
			url = p.PostUrl.String
		}
		fmt.Printf("%s  %s  %d symbols\n", p.PostedAt.Local().Format("2006-01-02 15:04"), url, p.Symbols)
		fmt.Printf("  %s\n", poster.Preview(p.Content, 40))
	}

	return nil
}
