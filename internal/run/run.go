package run

import (
	"context"
	"errors"
	"log"
	"time"

	"linefix/internal/config"
	"linefix/internal/database"
	"linefix/internal/fsops"
	"linefix/internal/limiter"
	"linefix/internal/metrics"
	"linefix/internal/normalize"
	"linefix/internal/safety"
	"linefix/internal/scan"
	"linefix/internal/selector"
)

// Result aggregates a completed run
type Result struct {
	normalize.Summary
	Duration time.Duration
}

// Once performs a single scan-and-normalize pass over root.
// db may be nil when history recording is disabled.
func Once(ctx context.Context, cfg *config.Config, root string, logger *log.Logger, db *database.HistoryDB) (Result, error) {
	if logger == nil {
		logger = log.Default()
	}
	if cfg == nil {
		return Result{}, errors.New("nil config")
	}

	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	default:
	}

	// Initialize CPU limiter if configured
	var cpuLimiter *limiter.CPULimiter
	if cfg.ResourceLimits.MaxCPUPercent > 0 {
		cpuLimiter = limiter.NewCPULimiter(cfg.ResourceLimits.MaxCPUPercent)
	}

	start := time.Now()

	scanner := scan.NewScanner(logger, selector.FromConfig(cfg), cfg.ExcludedDirSet())

	// Throttle CPU during scan
	if cpuLimiter != nil {
		cpuLimiter.Throttle()
	}

	candidates, err := scanner.Scan(root)
	if err != nil {
		return Result{}, err
	}

	validator, err := safety.NewValidator(root)
	if err != nil {
		return Result{}, err
	}

	// Throttle CPU during normalization
	if cpuLimiter != nil {
		cpuLimiter.Throttle()
	}

	normalizer := normalize.NewNormalizer(logger, fsops.OSRewriter{}, validator, db)
	summary := normalizer.Run(candidates)

	elapsed := time.Since(start)
	metrics.RecordRun(elapsed)

	return Result{Summary: summary, Duration: elapsed}, nil
}
