package main

import (
	"fmt"
	"net/url"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/clipreview/clipreview/internal/config"
	"github.com/clipreview/clipreview/internal/remote"
)

var shareCmd = &cobra.Command{
	Use:   "share <video>",
	Short: "Print the review id and viewer link for a video",
	Long: `Print the identifier under which this video's review lives on the
hosted service, plus a viewer URL when a hosted base URL is
configured. Independent clients derive the same identifier from the
same file, so anyone with the link sees the same review.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		file := fileContextFor(args[0])

		reviewID := config.GetReviewID()
		if reviewID == "" {
			reviewID = remote.DeriveReviewID(file.FileName, file.FileID)
		}
		fmt.Printf("Review ID: %s\n", reviewID)

		if base := config.GetHostedBaseURL(); base != "" {
			normalized, err := remote.NormalizeBaseURL(base)
			if err != nil {
				fatalf("invalid hosted base URL: %v", err)
			}
			name := filepath.Base(args[0])
			fmt.Printf("Viewer:    %s/view/%s?name=%s\n",
				normalized, reviewID, url.QueryEscape(name))
		} else {
			fmt.Println("No hosted base URL configured; set hosted.base_url to get a viewer link.")
		}
	},
}

func init() {
	rootCmd.AddCommand(shareCmd)
}
