// Package config provides configuration management for TagForge. The
// config file fully describes a reconciliation run: every stage the
// original workflow prompted for interactively is an optional section
// here, and an absent section skips that stage.
package config

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/lvonguyen/tagforge/internal/alias"
	"github.com/lvonguyen/tagforge/internal/classify"
	"github.com/lvonguyen/tagforge/internal/reftable"
)

// Config holds all TagForge configuration.
type Config struct {
	Scheme    string                      `yaml:"scheme"` // BIO or BIOES; a positional CLI argument wins
	Datasets  []DatasetConfig             `yaml:"datasets"`
	Alias     reftable.STIXConfig         `yaml:"alias"`
	Reference ReferenceConfig             `yaml:"reference"`
	Cache     reftable.ResolveCacheConfig `yaml:"cache"`
	Server    ServerConfig                `yaml:"server"`
	Logging   LoggingConfig               `yaml:"logging"`
}

// DatasetConfig selects and parameterizes the passes applied to one
// input dataset. Nil sections are skipped.
type DatasetConfig struct {
	OneToOne       *ParallelRules      `yaml:"one_to_one"`
	ManyToOne      *ParallelRules      `yaml:"many_to_one"`
	Files          *FileClassifyConfig `yaml:"files"`
	Exploits       *ExploitConfig      `yaml:"exploits"`
	Software       *RelabelConfig      `yaml:"software"`
	Groups         *RelabelConfig      `yaml:"groups"`
	IOC            *classify.IOCLabels `yaml:"ioc"`
	Encryption     string              `yaml:"encryption"` // target label; empty skips
	OS             string              `yaml:"os"`         // target label; empty skips
	FixMislabeling bool                `yaml:"fix_mislabeling"`
}

// ParallelRules is the persisted rule form: ordered source labels (or
// comma-joined source groups for many-to-one) and their targets. The
// two lists must be the same length.
type ParallelRules struct {
	Sources []string `yaml:"sources"`
	Targets []string `yaml:"targets"`
}

// FileClassifyConfig parameterizes file/hash span classification.
type FileClassifyConfig struct {
	Source  string `yaml:"source"`  // entity type to refine, e.g. File
	Default string `yaml:"default"` // type when neither file nor hash matches
}

// ExploitConfig splits a generic exploit type into name and ID types.
type ExploitConfig struct {
	Source string `yaml:"source"` // e.g. Exp
	Name   string `yaml:"name"`   // e.g. VULNAME
	ID     string `yaml:"id"`     // e.g. VULID
}

// RelabelConfig parameterizes alias-table span relabeling.
type RelabelConfig struct {
	Sources []string           `yaml:"sources"` // entity types to resolve
	Targets alias.TargetLabels `yaml:"targets"` // per-category labels
	Default string             `yaml:"default"` // label when resolution misses
}

// ReferenceConfig locates the CSV reference tables.
type ReferenceConfig struct {
	OSFile           string `yaml:"os_file"`
	OSColumn         string `yaml:"os_column"`
	EncryptionFile   string `yaml:"encryption_file"`
	EncryptionColumn string `yaml:"encryption_column"`
}

// ServerConfig holds HTTP service-mode settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// Load reads configuration from a YAML file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Scheme:   "BIOES",
		Datasets: []DatasetConfig{{}, {}},
		Alias:    reftable.DefaultSTIXConfig(),
		Reference: ReferenceConfig{
			OSFile:           "operating_systems.csv",
			OSColumn:         "Operating_systems",
			EncryptionFile:   "encryption_algorithms.csv",
			EncryptionColumn: "ENCR_Algorithms",
		},
		Cache: reftable.DefaultResolveCacheConfig(),
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Dataset returns the stage config for dataset i, falling back to an
// empty config when fewer datasets are configured than supplied.
func (c *Config) Dataset(i int) DatasetConfig {
	if i < len(c.Datasets) {
		return c.Datasets[i]
	}
	return DatasetConfig{}
}

// BuildLogger constructs the zap logger described by the config.
func (c LoggingConfig) BuildLogger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}

	zc := zap.NewProductionConfig()
	if c.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}
