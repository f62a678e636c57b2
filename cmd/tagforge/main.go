// Package main provides the entry point for TagForge, a reconciler
// that normalizes two independently labeled CTI NER corpora and
// merges them into one training set.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/lvonguyen/tagforge/internal/alias"
	"github.com/lvonguyen/tagforge/internal/annotation"
	"github.com/lvonguyen/tagforge/internal/api"
	"github.com/lvonguyen/tagforge/internal/config"
	"github.com/lvonguyen/tagforge/internal/pipeline"
	"github.com/lvonguyen/tagforge/internal/reftable"
)

// Version information (injected at build time via ldflags)
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "Path to config file")
	serve := flag.Bool("serve", false, "Run the HTTP service instead of a batch run")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Usage = usage
	flag.Parse()

	if *showVersion {
		fmt.Printf("TagForge %s (commit: %s, built: %s)\n", Version, GitCommit, BuildTime)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		// A missing config file is fine for batch runs driven by
		// defaults; anything else is an operator mistake. Load wraps
		// the read error, so unwrap-aware matching is required here.
		if !errors.Is(err, fs.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			os.Exit(1)
		}
		cfg = config.DefaultConfig()
	}

	logger, err := cfg.Logging.BuildLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting TagForge", zap.String("version", Version))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Reference data is loaded once per run and read-only afterwards.
	fetcher := reftable.NewSTIXFetcher(cfg.Alias, logger)
	table := fetcher.LoadAliasTable(ctx)

	var resolver alias.EntityResolver = alias.NewResolver(table, cfg.Alias.Threshold)
	if cfg.Cache.Enabled {
		cache := reftable.NewResolveCache(cfg.Cache, resolver, logger)
		defer cache.Close()
		resolver = cache
	}

	if *serve {
		runServer(ctx, cfg, resolver, logger)
		return
	}

	scheme, inputs, mergedPath, err := batchArgs(cfg, flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		usage()
		os.Exit(2)
	}

	osTable := loadLookup(logger, "operating systems", cfg.Reference.OSFile, cfg.Reference.OSColumn)
	encTable := loadLookup(logger, "encryption algorithms", cfg.Reference.EncryptionFile, cfg.Reference.EncryptionColumn)

	p := pipeline.New(cfg, scheme, resolver, osTable, encTable, logger)
	if err := p.Run(ctx, inputs, mergedPath); err != nil {
		logger.Fatal("Pipeline failed", zap.Error(err))
	}

	logger.Info("Reconciliation complete", zap.String("merged", mergedPath))
}

// batchArgs resolves a batch invocation. The leading scheme argument
// is optional; when absent the configured scheme applies, so the CLI
// argument wins whenever both are present.
func batchArgs(cfg *config.Config, args []string) (annotation.Scheme, []string, string, error) {
	switch len(args) {
	case 4:
		scheme := annotation.Scheme(args[0])
		if !scheme.Valid() {
			return "", nil, "", fmt.Errorf("output scheme must be BIO or BIOES, got %q", args[0])
		}
		return scheme, args[1:3], args[3], nil
	case 3:
		scheme := annotation.Scheme(cfg.Scheme)
		if !scheme.Valid() {
			return "", nil, "", fmt.Errorf("configured scheme must be BIO or BIOES, got %q", cfg.Scheme)
		}
		return scheme, args[0:2], args[2], nil
	default:
		return "", nil, "", fmt.Errorf("expected [BIO|BIOES] <dataset1> <dataset2> <merged-output>, got %d arguments", len(args))
	}
}

// loadLookup reads a CSV reference table, degrading to an empty
// (always-miss) lookup when the file is unavailable.
func loadLookup(logger *zap.Logger, name, path, column string) *reftable.Lookup {
	lookup, err := reftable.LoadCSV(path, column)
	if err != nil {
		logger.Warn("Reference table unavailable, degrading to miss",
			zap.String("table", name),
			zap.String("path", path),
			zap.Error(err),
		)
		return reftable.NewLookup(nil)
	}
	logger.Info("Reference table loaded",
		zap.String("table", name),
		zap.Int("entries", lookup.Len()),
	)
	return lookup
}

// runServer exposes the core over HTTP until interrupted.
func runServer(ctx context.Context, cfg *config.Config, resolver alias.EntityResolver, logger *zap.Logger) {
	srv := api.NewServer(resolver, Version, logger)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      srv.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("Server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server error", zap.Error(err))
		}
	}()

	sig := <-sigChan
	logger.Info("Shutting down", zap.String("signal", sig.String()))

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", zap.Error(err))
	}
	logger.Info("Server stopped")
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage:
  tagforge [flags] [BIO|BIOES] <dataset1> <dataset2> <merged-output>
  tagforge [flags] -serve

Flags:
`)
	flag.PrintDefaults()
}
