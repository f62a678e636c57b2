package reftable

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lvonguyen/tagforge/internal/alias"
)

// Default MITRE ATT&CK STIX bundle locations.
var defaultBundleURLs = []string{
	"https://raw.githubusercontent.com/mitre/cti/master/enterprise-attack/enterprise-attack.json",
	"https://raw.githubusercontent.com/mitre/cti/master/ics-attack/ics-attack.json",
	"https://raw.githubusercontent.com/mitre/cti/master/mobile-attack/mobile-attack.json",
}

// STIXConfig holds alias-table acquisition settings.
type STIXConfig struct {
	BundleURLs []string      `yaml:"bundle_urls"`
	CacheFile  string        `yaml:"cache_file"`
	Timeout    time.Duration `yaml:"timeout"`
	Threshold  int           `yaml:"fuzzy_threshold"`
}

// DefaultSTIXConfig returns sensible defaults.
func DefaultSTIXConfig() STIXConfig {
	return STIXConfig{
		BundleURLs: defaultBundleURLs,
		CacheFile:  "alias_table.json",
		Timeout:    30 * time.Second,
		Threshold:  alias.DefaultFuzzyThreshold,
	}
}

// STIXFetcher builds the canonical alias table from ATT&CK STIX
// bundles, caching the result as JSON so later runs skip the network.
type STIXFetcher struct {
	config     STIXConfig
	httpClient *http.Client
	logger     *zap.Logger
}

// NewSTIXFetcher creates a fetcher.
func NewSTIXFetcher(cfg STIXConfig, logger *zap.Logger) *STIXFetcher {
	if len(cfg.BundleURLs) == 0 {
		cfg.BundleURLs = defaultBundleURLs
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &STIXFetcher{
		config:     cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// LoadAliasTable returns the alias table, preferring the cache file.
// A cache miss triggers one blocking, non-retried fetch per bundle;
// any failure degrades that source to always-miss instead of aborting
// the run, so the worst case is an empty table and default labels.
func (f *STIXFetcher) LoadAliasTable(ctx context.Context) *alias.Table {
	if table, err := f.loadCache(); err == nil {
		f.logger.Info("Loaded alias table from cache",
			zap.String("file", f.config.CacheFile),
			zap.Int("entries", table.Len()),
		)
		return table
	}

	table := alias.NewTable()
	seen := make(map[string]struct{})
	for _, url := range f.config.BundleURLs {
		bundle, err := f.fetchBundle(ctx, url)
		if err != nil {
			f.logger.Warn("STIX bundle unavailable, degrading to miss",
				zap.String("url", url),
				zap.Error(err),
			)
			continue
		}
		mergeBundle(table, bundle, seen)
	}

	f.logger.Info("Built alias table from STIX bundles", zap.Int("entries", table.Len()))
	if table.Len() > 0 {
		f.writeCache(table)
	}
	return table
}

func (f *STIXFetcher) loadCache() (*alias.Table, error) {
	if f.config.CacheFile == "" {
		return nil, os.ErrNotExist
	}
	data, err := os.ReadFile(f.config.CacheFile)
	if err != nil {
		return nil, err
	}
	table := alias.NewTable()
	if err := json.Unmarshal(data, table); err != nil {
		return nil, fmt.Errorf("parsing alias table cache: %w", err)
	}
	return table, nil
}

func (f *STIXFetcher) writeCache(table *alias.Table) {
	if f.config.CacheFile == "" {
		return
	}
	data, err := json.MarshalIndent(table, "", "  ")
	if err == nil {
		err = os.WriteFile(f.config.CacheFile, data, 0o644)
	}
	if err != nil {
		f.logger.Warn("Failed to cache alias table", zap.Error(err))
		return
	}
	f.logger.Info("Alias table cached", zap.String("file", f.config.CacheFile))
}

func (f *STIXFetcher) fetchBundle(ctx context.Context, url string) (*stixBundle, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating bundle request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "TagForge/1.0")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching STIX bundle: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("bundle fetch returned %d: %s", resp.StatusCode, string(body))
	}

	var bundle stixBundle
	if err := json.NewDecoder(resp.Body).Decode(&bundle); err != nil {
		return nil, fmt.Errorf("decoding STIX bundle: %w", err)
	}
	return &bundle, nil
}

// mergeBundle folds one bundle into the table: malware, tool and
// intrusion-set objects only, skipping revoked, deprecated and
// already-seen ids. Aliases are lowercased and always include the
// canonical name.
func mergeBundle(table *alias.Table, bundle *stixBundle, seen map[string]struct{}) {
	for _, obj := range bundle.Objects {
		if obj.Revoked || obj.Deprecated || obj.Name == "" {
			continue
		}
		if _, dup := seen[obj.ID]; dup {
			continue
		}
		category := alias.Category(obj.Type)
		switch category {
		case alias.CategoryMalware, alias.CategoryTool, alias.CategoryIntrusionSet:
		default:
			continue
		}
		seen[obj.ID] = struct{}{}

		aliases := make([]string, 0, len(obj.Aliases)+1)
		dedup := make(map[string]struct{}, len(obj.Aliases)+1)
		for _, a := range obj.Aliases {
			lowered := strings.ToLower(a)
			if _, dup := dedup[lowered]; !dup && lowered != "" {
				dedup[lowered] = struct{}{}
				aliases = append(aliases, lowered)
			}
		}
		table.Add(obj.Name, alias.Entry{Aliases: aliases, Category: category})
	}
}

// STIX object fields the alias table cares about.

type stixBundle struct {
	Objects []stixObject `json:"objects"`
}

type stixObject struct {
	Type       string   `json:"type"`
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Aliases    []string `json:"aliases"`
	Revoked    bool     `json:"revoked"`
	Deprecated bool     `json:"x_mitre_deprecated"`
}
