package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func TestDefaults(t *testing.T) {
	resetViper(t)
	SetDefaults()

	if got := GetPollInterval(); got != 10*time.Second {
		t.Errorf("poll interval = %v, want 10s", got)
	}
	if got := GetServerAddr(); got != ":8787" {
		t.Errorf("server addr = %q", got)
	}
	if got := GetExportFPS(); got != 24 {
		t.Errorf("export fps = %d", got)
	}
	if GetReviewID() != "" {
		t.Error("review id should default to empty")
	}
	if GetCachePath() == "" {
		t.Error("cache path should have a default")
	}
}

func TestLoadMissingConfigFileIsFine(t *testing.T) {
	resetViper(t)

	dir := t.TempDir()
	cwd, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { os.Chdir(cwd) })

	if err := Load(""); err != nil {
		t.Fatalf("Load with no config file: %v", err)
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	resetViper(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "sync:\n  poll_interval: 30s\nhosted:\n  base_url: https://review.example.com\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if err := Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := GetPollInterval(); got != 30*time.Second {
		t.Errorf("poll interval = %v, want 30s", got)
	}
	if got := GetHostedBaseURL(); got != "https://review.example.com" {
		t.Errorf("hosted base url = %q", got)
	}
}

func TestExplicitConfigFileMustExist(t *testing.T) {
	resetViper(t)

	if err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load with missing explicit config file should fail")
	}
}
