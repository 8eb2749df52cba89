package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"linefix/internal/config"
	"linefix/internal/database"
	"linefix/internal/exitcodes"
	"linefix/internal/logging"
	"linefix/internal/metrics"
	"linefix/internal/run"
	"linefix/internal/scan"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "", "Path to configuration file (optional)")
	dbPath := flag.String("db", "", "Path to normalization history database (overrides config)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: linefix [flags] [root]\n\n")
		fmt.Fprintf(flag.CommandLine.Output(), "Normalizes CRLF and CR line endings to LF under root (default: current directory).\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	// Load configuration; without a config file the built-in defaults apply
	var cfg *config.Config
	var err error
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: Failed to load config: %v\n", err)
			os.Exit(exitcodes.InvalidConfig)
		}
	} else {
		cfg = config.Default()
	}
	if *dbPath != "" {
		cfg.DatabasePath = *dbPath
	}

	logger := logging.NewWithConfig(cfg)

	root := "."
	if flag.NArg() > 0 {
		root = flag.Arg(0)
	}

	logger.Printf("Scanning for text files in: %s", root)
	logger.Printf("Extensions: %s", joinSorted(cfg.Extensions))
	logger.Printf("Excluding: %s", joinSorted(cfg.ExcludedDirs))

	// Initialize metrics (Prometheus)
	metrics.Init()
	if cfg.Prometheus.Port > 0 {
		addr := cfg.PrometheusAddress()
		logger.Printf("Starting Prometheus metrics on %s", addr)
		metrics.StartServer(addr, logger)
	}

	// Initialize database for normalization history
	var db *database.HistoryDB
	if cfg.DatabasePath != "" {
		logger.Printf("Opening history database: %s", cfg.DatabasePath)
		db, err = database.NewHistoryDB(cfg.DatabasePath)
		if err != nil {
			logger.Printf("ERROR: Failed to open database: %v", err)
			os.Exit(exitcodes.RuntimeError)
		}
		defer func() {
			if err := db.Close(); err != nil {
				logger.Printf("ERROR: Failed to close database: %v", err)
			}
		}()
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	res, err := run.Once(ctx, cfg, root, logger, db)
	if err != nil {
		logger.Printf("ERROR: %v", err)
		if errors.Is(err, scan.ErrRootMissing) || errors.Is(err, scan.ErrRootNotDir) {
			os.Exit(exitcodes.MissingRoot)
		}
		os.Exit(exitcodes.RuntimeError)
	}

	logger.Println(strings.Repeat("=", 60))
	logger.Printf("Summary:")
	logger.Printf("  Files processed: %d", res.Processed)
	logger.Printf("  Files changed:   %d", res.Changed)
	logger.Printf("  Files unchanged: %d", res.Unchanged)
	if res.Errors > 0 {
		logger.Printf("  Files skipped:   %d", res.Errors)
	}
	logger.Printf("  Duration:        %s", res.Duration.Round(time.Millisecond))
	logger.Println(strings.Repeat("=", 60))
}

func joinSorted(items []string) string {
	sorted := make([]string, len(items))
	copy(sorted, items)
	sort.Strings(sorted)
	return strings.Join(sorted, ", ")
}
