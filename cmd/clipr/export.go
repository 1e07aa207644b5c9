package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/clipreview/clipreview/internal/config"
	"github.com/clipreview/clipreview/internal/export"
)

var (
	exportOut string
	exportFPS int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the review record to interchange formats",
}

var exportEdlCmd = &cobra.Command{
	Use:   "edl <video>",
	Short: "Export comments as a CMX 3600 EDL",
	Long: `Write the review comments as an edit decision list that Resolve,
Premiere, and Avid can import as timeline markers. Output goes to
<video>.edl unless --out is given; use --out - for stdout.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		eng, store, err := openEngine(ctx, args[0])
		if err != nil {
			fatalf("%v", err)
		}
		defer store.Close()

		fps := exportFPS
		if fps <= 0 {
			fps = config.GetExportFPS()
		}

		fileName := filepath.Base(args[0])
		edl := export.EDL(eng.Snapshot(), fileName, fps)

		if exportOut == "-" {
			fmt.Print(edl)
			return
		}

		out := exportOut
		if out == "" {
			out = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".edl"
		}
		if err := os.WriteFile(out, []byte(edl), 0644); err != nil {
			fatalf("failed to write %s: %v", out, err)
		}
		fmt.Printf("Wrote %s\n", out)
	},
}

func init() {
	exportEdlCmd.Flags().StringVar(&exportOut, "out", "", "output path (- for stdout)")
	exportEdlCmd.Flags().IntVar(&exportFPS, "fps", 0, "frame rate for timecodes (default from config)")

	exportCmd.AddCommand(exportEdlCmd)
	rootCmd.AddCommand(exportCmd)
}
