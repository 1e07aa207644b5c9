package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clipreview/clipreview/internal/review"
)

var approveCmd = &cobra.Command{
	Use:   "approve <video> [pending|approved|revisions]",
	Short: "Set the approval verdict",
	Long: `Set the review verdict for a video. With no verdict argument, marks it
approved.`,
	Args: cobra.RangeArgs(1, 2),
	Run: func(cmd *cobra.Command, args []string) {
		verdict := review.ApprovalApproved
		if len(args) == 2 {
			verdict = review.Approval(args[1])
			if !verdict.Valid() {
				fatalf("unknown verdict %q (pending, approved, revisions)", args[1])
			}
		}

		ctx := context.Background()
		eng, store, err := openEngine(ctx, args[0])
		if err != nil {
			fatalf("%v", err)
		}
		defer store.Close()

		if err := eng.SetApproval(ctx, verdict); err != nil {
			fatalf("%v", err)
		}
		fmt.Printf("Approval set to %s\n", verdict)
	},
}

func init() {
	rootCmd.AddCommand(approveCmd)
}
