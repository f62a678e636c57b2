package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// =============================================================================
// Configuration Tests
// =============================================================================

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Scheme != "BIOES" {
		t.Errorf("Scheme = %s, want BIOES", cfg.Scheme)
	}
	if len(cfg.Datasets) != 2 {
		t.Errorf("Datasets = %d, want 2", len(cfg.Datasets))
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Server.Addr = %s, want :8080", cfg.Server.Addr)
	}
	if cfg.Alias.CacheFile != "alias_table.json" {
		t.Errorf("Alias.CacheFile = %s", cfg.Alias.CacheFile)
	}
	if cfg.Reference.OSColumn != "Operating_systems" {
		t.Errorf("Reference.OSColumn = %s", cfg.Reference.OSColumn)
	}
}

func TestLoad_MergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
scheme: BIO
datasets:
  - one_to_one:
      sources: [SW]
      targets: [Software]
    encryption: ENCR
    fix_mislabeling: true
server:
  addr: ":9090"
logging:
  level: debug
  format: console
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Scheme != "BIO" {
		t.Errorf("Scheme = %s, want BIO", cfg.Scheme)
	}
	if len(cfg.Datasets) != 1 {
		t.Fatalf("Datasets = %d, want 1 (file replaces default list)", len(cfg.Datasets))
	}
	ds := cfg.Dataset(0)
	if ds.OneToOne == nil || len(ds.OneToOne.Sources) != 1 || ds.OneToOne.Sources[0] != "SW" {
		t.Errorf("OneToOne = %+v", ds.OneToOne)
	}
	if ds.Encryption != "ENCR" || !ds.FixMislabeling {
		t.Errorf("dataset = %+v", ds)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("Server.Addr = %s, want :9090", cfg.Server.Addr)
	}
	// Untouched sections keep their defaults.
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %s, want default 10s", cfg.Server.ShutdownTimeout)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "console" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("Load() on missing file, want error")
	}
	// Callers fall back to defaults on a missing file, so the wrapped
	// error must still match fs.ErrNotExist through errors.Is.
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Load() error %v does not match fs.ErrNotExist", err)
	}
}

func TestDataset_Fallback(t *testing.T) {
	cfg := &Config{Datasets: []DatasetConfig{{Encryption: "ENCR"}}}
	if got := cfg.Dataset(0); got.Encryption != "ENCR" {
		t.Errorf("Dataset(0) = %+v", got)
	}
	if got := cfg.Dataset(5); got.Encryption != "" {
		t.Errorf("Dataset(5) = %+v, want zero value", got)
	}
}

func TestBuildLogger(t *testing.T) {
	logger, err := LoggingConfig{Level: "debug", Format: "console"}.BuildLogger()
	if err != nil {
		t.Fatalf("BuildLogger() error: %v", err)
	}
	logger.Sync()

	// Unknown level falls back instead of failing.
	if _, err := (LoggingConfig{Level: "nope", Format: "json"}).BuildLogger(); err != nil {
		t.Errorf("BuildLogger() with bad level: %v", err)
	}
}
