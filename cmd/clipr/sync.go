package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/clipreview/clipreview/internal/cache"
	"github.com/clipreview/clipreview/internal/config"
	"github.com/clipreview/clipreview/internal/engine"
	"github.com/clipreview/clipreview/internal/remote"
)

// newResolver builds the transport resolver from configuration. The
// session credential file is optional; without it the sidecar
// transport simply never becomes viable.
func newResolver() *remote.Resolver {
	var creds remote.CredentialProvider
	if path := config.GetSessionFile(); path != "" {
		creds = &remote.SessionFileProvider{Path: path}
	}
	return remote.NewResolver(remote.Config{
		SidecarBaseURL: config.GetSidecarBaseURL(),
		ShareBaseURL:   config.GetShareBaseURL(),
		ShareToken:     config.GetShareToken(),
		HostedBaseURL:  config.GetHostedBaseURL(),
		ReviewID:       config.GetReviewID(),
	}, creds, nil)
}

// openEngine opens the cache and builds an engine attached to the
// given video file. The caller must Close the returned cache store.
func openEngine(ctx context.Context, videoPath string) (*engine.Engine, *cache.Store, error) {
	store, err := cache.Open(config.GetCachePath())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open local cache: %w", err)
	}

	eng, err := engine.New(store, newResolver(), &engine.Config{
		PollInterval: config.GetPollInterval(),
	})
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	eng.Attach(ctx, fileContextFor(videoPath))
	return eng, store, nil
}

// fileContextFor derives the file identity from a video path. The
// absolute path doubles as the stable file identifier and the sidecar
// resource path.
func fileContextFor(videoPath string) remote.FileContext {
	abs, err := filepath.Abs(videoPath)
	if err != nil {
		abs = videoPath
	}
	return remote.FileContext{
		FileID:       abs,
		FileName:     filepath.Base(videoPath),
		ResourcePath: abs,
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
