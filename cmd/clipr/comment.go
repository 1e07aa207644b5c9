package main

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/clipreview/clipreview/internal/export"
	"github.com/clipreview/clipreview/internal/review"
)

var (
	commentAuthor  string
	commentColor   string
	commentDrawing string
)

var commentCmd = &cobra.Command{
	Use:   "comment",
	Short: "Manage review comments on a video file",
}

var commentAddCmd = &cobra.Command{
	Use:   "add <video> <timestamp-seconds> <text>",
	Short: "Add a timestamped comment",
	Long: `Add a comment at a point in the video, identified by seconds from the
start. The comment is saved locally and pushed to the first reachable
remote transport.`,
	Args: cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		videoPath := args[0]
		timestamp, err := strconv.ParseFloat(args[1], 64)
		if err != nil || timestamp < 0 {
			fatalf("invalid timestamp %q: expected seconds from start", args[1])
		}

		color := review.Color(commentColor)
		if commentColor != "" && !color.Known() {
			fatalf("unknown color %q (red, yellow, green, blue, purple)", commentColor)
		}

		ctx := context.Background()
		eng, store, err := openEngine(ctx, videoPath)
		if err != nil {
			fatalf("%v", err)
		}
		defer store.Close()

		c := review.NewComment(timestamp, args[2], commentAuthor, color)
		c.Drawing = commentDrawing
		if err := eng.AddComment(ctx, c); err != nil {
			fatalf("%v", err)
		}

		fmt.Printf("Added comment %s at %s\n", c.ID, export.Timecode(timestamp))
	},
}

var commentRemoveCmd = &cobra.Command{
	Use:   "remove <video> <comment-id>",
	Short: "Remove a comment by id",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		eng, store, err := openEngine(ctx, args[0])
		if err != nil {
			fatalf("%v", err)
		}
		defer store.Close()

		if _, ok := eng.Snapshot().FindComment(args[1]); !ok {
			fatalf("no comment with id %q", args[1])
		}
		if err := eng.RemoveComment(ctx, args[1]); err != nil {
			fatalf("%v", err)
		}
		fmt.Printf("Removed comment %s\n", args[1])
	},
}

var commentListCmd = &cobra.Command{
	Use:   "list <video>",
	Short: "List comments in timestamp order",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		eng, store, err := openEngine(ctx, args[0])
		if err != nil {
			fatalf("%v", err)
		}
		defer store.Close()

		rec := eng.Snapshot()
		if len(rec.Comments) == 0 {
			fmt.Println("No comments.")
			return
		}

		comments := make([]review.Comment, len(rec.Comments))
		copy(comments, rec.Comments)
		sort.SliceStable(comments, func(i, j int) bool {
			return comments[i].Timestamp < comments[j].Timestamp
		})

		for _, c := range comments {
			author := c.Author
			if author == "" {
				author = "anonymous"
			}
			line := fmt.Sprintf("%s  [%s] %s: %s", export.Timecode(c.Timestamp), c.Color, author, c.Text)
			if c.Drawing != "" {
				line += " (drawing)"
			}
			fmt.Println(line)
			fmt.Printf("          id=%s\n", c.ID)
		}
	},
}

func init() {
	commentAddCmd.Flags().StringVar(&commentAuthor, "author", "", "comment author name")
	commentAddCmd.Flags().StringVar(&commentColor, "color", "yellow", "marker color (red, yellow, green, blue, purple)")
	commentAddCmd.Flags().StringVar(&commentDrawing, "drawing", "", "data URL of an annotation drawing")

	commentCmd.AddCommand(commentAddCmd)
	commentCmd.AddCommand(commentRemoveCmd)
	commentCmd.AddCommand(commentListCmd)
	rootCmd.AddCommand(commentCmd)
}
