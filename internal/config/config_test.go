package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestLoadCreatesDefaultOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != "127.0.0.1:8080" || cfg.BackendURL != "http://127.0.0.1:5000/api" {
		t.Fatalf("defaults = %+v", cfg)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	if runtime.GOOS != "windows" && info.Mode().Perm() != 0o600 {
		t.Fatalf("config mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	in := &Config{
		Listen:             "0.0.0.0:9090",
		BackendURL:         "http://backend:5000/api",
		UserID:             "42",
		Timezone:           "Europe/Madrid",
		RefreshCron:        "*/5 * * * *",
		HTTPTimeoutSeconds: 30,
		BasicAuth:          &BasicAuthConfig{Username: "admin", Password: "secret"},
	}
	if err := Save(path, in); err != nil {
		t.Fatalf("Save: %v", err)
	}

	out, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if *out.BasicAuth != *in.BasicAuth {
		t.Fatalf("basic auth = %+v", out.BasicAuth)
	}
	out.BasicAuth, in.BasicAuth = nil, nil
	if *out != *in {
		t.Fatalf("round trip changed config:\n got %+v\nwant %+v", out, in)
	}
}

func TestNormalizeFillsZeroValues(t *testing.T) {
	cfg := &Config{UserID: "42"}
	cfg.Normalize()

	if cfg.Listen == "" || cfg.BackendURL == "" || cfg.RefreshCron == "" {
		t.Fatalf("normalize left zero values: %+v", cfg)
	}
	if cfg.HTTPTimeoutSeconds != 15 {
		t.Fatalf("timeout = %d, want default 15", cfg.HTTPTimeoutSeconds)
	}
	if cfg.UserID != "42" {
		t.Fatal("normalize clobbered a set field")
	}
}

func TestLoadRejectsEmptyPath(t *testing.T) {
	if _, err := Load(""); err == nil {
		t.Fatal("Load accepted an empty path")
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := Save(path, DefaultConfig()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "config.yaml" {
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name())
		}
		t.Fatalf("directory contents = %v", names)
	}
}
