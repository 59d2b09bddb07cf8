package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "Owner = \"alice\"\nAdmin = \"bob\"\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddress != ":8546" {
		t.Fatalf("listen = %s", cfg.ListenAddress)
	}
	if cfg.DataDir != filepath.Join(filepath.Dir(path), "data") {
		t.Fatalf("data dir = %s", cfg.DataDir)
	}
	if cfg.ArchivePath != filepath.Join(cfg.DataDir, "archive.db") {
		t.Fatalf("archive = %s", cfg.ArchivePath)
	}
	if cfg.BidLimit != 10 {
		t.Fatalf("bid limit = %d", cfg.BidLimit)
	}
	if cfg.Env != "local" {
		t.Fatalf("env = %s", cfg.Env)
	}
}

func TestLoadRejectsUnknownField(t *testing.T) {
	path := writeConfig(t, "Owner = \"alice\"\nAdmin = \"bob\"\nBogus = 1\n")
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "Bogus") {
		t.Fatalf("err = %v, want unknown field error", err)
	}
}

func TestLoadRejectsMissingOwner(t *testing.T) {
	path := writeConfig(t, "Admin = \"bob\"\n")
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "Owner") {
		t.Fatalf("err = %v, want owner error", err)
	}
}

func TestLoadRejectsOversizedBidLimit(t *testing.T) {
	path := writeConfig(t, "Owner = \"alice\"\nAdmin = \"bob\"\nBidLimit = 500\n")
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "BidLimit") {
		t.Fatalf("err = %v, want bid limit error", err)
	}
}

func TestLoadCreatesDefaultFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fresh", "config.toml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Owner != "owner" || cfg.Admin != "admin" {
		t.Fatalf("cfg = %+v", cfg)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default file not written: %v", err)
	}

	// A second load reads the file it just wrote.
	again, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.ListenAddress != cfg.ListenAddress {
		t.Fatalf("reload = %+v", again)
	}
}
