// clipr is the review record synchronization CLI: it attaches to a
// video file's review record, keeps it synchronized across the local
// cache and whichever remote transport is reachable, and runs the
// standalone review server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/clipreview/clipreview/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "clipr",
	Short: "Video review record sync",
	Long: `clipr keeps per-file video review records (timestamped comments and
an approval verdict) synchronized between a local cache and a remote
store, falling back across transports: a WebDAV sidecar file next to
the video, a public share link, then a hosted review service.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; real environment wins over it.
		_ = godotenv.Load()
		return config.Load(cfgFile)
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default .clipreview.yaml in . or $HOME)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
