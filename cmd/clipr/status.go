package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/clipreview/clipreview/internal/config"
	"github.com/clipreview/clipreview/internal/export"
)

var statusCmd = &cobra.Command{
	Use:   "status <video>",
	Short: "Show the review record and transport status for a video",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		eng, store, err := openEngine(ctx, args[0])
		if err != nil {
			fatalf("%v", err)
		}
		defer store.Close()

		rec := eng.Snapshot()
		fmt.Printf("File:      %s\n", args[0])
		fmt.Printf("Approval:  %s\n", rec.Approval)
		fmt.Printf("Comments:  %d\n", len(rec.Comments))
		if rec.UpdatedAt != "" {
			when := export.RelativeDate(rec.UpdatedAt, time.Now().UTC())
			if when == "" {
				when = rec.UpdatedAt
			}
			fmt.Printf("Updated:   %s\n", when)
		}
		fmt.Printf("Poll:      every %s\n", config.GetPollInterval())

		candidates := newResolver().Resolve(fileContextFor(args[0]))
		if len(candidates) == 0 {
			fmt.Println("Transport: none (local cache only)")
			return
		}
		fmt.Println("Transports, in priority order:")
		for i, c := range candidates {
			fmt.Printf("  %d. %s\n", i+1, c.Store.Name())
		}
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
