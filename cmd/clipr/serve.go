package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/clipreview/clipreview/internal/config"
	"github.com/clipreview/clipreview/internal/server"
)

var (
	serveAddr    string
	serveDataDir string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the standalone review server",
	Long: `Run the hosted review endpoint: a small HTTP service storing one JSON
review per identifier, with a shareable viewer page and a live update
feed for connected viewers.`,
	Run: func(cmd *cobra.Command, args []string) {
		addr := serveAddr
		if addr == "" {
			addr = config.GetServerAddr()
		}
		dataDir := serveDataDir
		if dataDir == "" {
			dataDir = config.GetServerDataDir()
		}

		logger := log.New(serverLogWriter(), "[server] ", log.LstdFlags)

		srv, err := server.New(&server.Config{
			Addr:    addr,
			DataDir: dataDir,
			Logger:  logger,
		})
		if err != nil {
			fatalf("%v", err)
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- srv.Start()
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			if err != nil {
				fatalf("%v", err)
			}
		case sig := <-sigCh:
			logger.Printf("Received %s, shutting down", sig)
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Stop(ctx); err != nil {
				fatalf("shutdown: %v", err)
			}
			fmt.Println("Server stopped.")
		}
	},
}

// serverLogWriter returns stderr, or a size-rotated log file when one
// is configured.
func serverLogWriter() io.Writer {
	path := config.GetServerLogFile()
	if path == "" {
		return os.Stderr
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     14, // days
		Compress:   true,
	}
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().StringVar(&serveDataDir, "data-dir", "", "review storage directory (default from config)")

	rootCmd.AddCommand(serveCmd)
}
