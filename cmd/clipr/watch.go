package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/clipreview/clipreview/internal/config"
)

var watchCmd = &cobra.Command{
	Use:   "watch <video>",
	Short: "Attach to a video and keep its review record synchronized",
	Long: `Attach to a video file's review record and run the reconciliation
poll until interrupted. Remote changes are folded into the local cache
as they appear; Ctrl-C detaches cleanly.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		eng, store, err := openEngine(ctx, args[0])
		if err != nil {
			fatalf("%v", err)
		}
		defer store.Close()

		rec := eng.Snapshot()
		fmt.Printf("Watching %s (%d comments, approval %s), polling every %s\n",
			args[0], len(rec.Comments), rec.Approval, config.GetPollInterval())

		if err := eng.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			fatalf("%v", err)
		}
		fmt.Println("Detached.")
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
