// Package config exposes typed accessors over the viper-backed
// configuration. Settings come from .clipreview.yaml, environment
// variables prefixed CLIPREVIEW_, and defaults, in that order of
// precedence.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// SetDefaults registers every known setting with its default value.
// Call once before reading config.
func SetDefaults() {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	base := filepath.Join(home, ".clipreview")

	viper.SetDefault("sync.poll_interval", "10s")
	viper.SetDefault("sync.review_id", "")
	viper.SetDefault("hosted.base_url", "")
	viper.SetDefault("sidecar.base_url", "")
	viper.SetDefault("share.base_url", "")
	viper.SetDefault("share.token", "")
	viper.SetDefault("session.file", filepath.Join(base, "session.json"))
	viper.SetDefault("cache.path", filepath.Join(base, "cache.db"))
	viper.SetDefault("server.addr", ":8787")
	viper.SetDefault("server.data_dir", filepath.Join(base, "reviews"))
	viper.SetDefault("server.log_file", "")
	viper.SetDefault("export.fps", 24)
}

// Load reads configuration. When cfgFile is empty, .clipreview.yaml is
// searched in the working directory and then the home directory. A
// missing config file is not an error; defaults and environment carry.
func Load(cfgFile string) error {
	SetDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(".clipreview")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
	}

	viper.SetEnvPrefix("CLIPREVIEW")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return err
	}
	return nil
}

// GetPollInterval returns how often the reconciliation poll runs.
func GetPollInterval() time.Duration {
	d := viper.GetDuration("sync.poll_interval")
	if d <= 0 {
		return 10 * time.Second
	}
	return d
}

// GetReviewID returns the explicitly configured review identifier, or
// "" when the identifier should be derived from the file.
func GetReviewID() string {
	return viper.GetString("sync.review_id")
}

// GetHostedBaseURL returns the hosted review service base URL.
func GetHostedBaseURL() string {
	return viper.GetString("hosted.base_url")
}

// GetSidecarBaseURL returns the WebDAV server base URL for sidecar
// records.
func GetSidecarBaseURL() string {
	return viper.GetString("sidecar.base_url")
}

// GetShareBaseURL returns the server base URL for share-link records.
func GetShareBaseURL() string {
	return viper.GetString("share.base_url")
}

// GetShareToken returns the public share token.
func GetShareToken() string {
	return viper.GetString("share.token")
}

// GetSessionFile returns the path of the stored session credential.
func GetSessionFile() string {
	return viper.GetString("session.file")
}

// GetCachePath returns the local review cache database path.
func GetCachePath() string {
	return viper.GetString("cache.path")
}

// GetServerAddr returns the review server listen address.
func GetServerAddr() string {
	return viper.GetString("server.addr")
}

// GetServerDataDir returns the review server data directory.
func GetServerDataDir() string {
	return viper.GetString("server.data_dir")
}

// GetServerLogFile returns the log file path, or "" for stderr.
func GetServerLogFile() string {
	return viper.GetString("server.log_file")
}

// GetExportFPS returns the frame rate used for EDL export.
func GetExportFPS() int {
	fps := viper.GetInt("export.fps")
	if fps <= 0 {
		return 24
	}
	return fps
}
