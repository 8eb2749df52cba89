package metrics

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	initOnce    sync.Once
	serverMutex sync.Mutex
	currentSrv  *http.Server
)

// Run metrics
var (
	// FilesProcessedTotal counts files selected and handed to the normalizer
	FilesProcessedTotal prometheus.Counter

	// FilesChangedTotal counts files rewritten with normalized line endings
	FilesChangedTotal prometheus.Counter

	// FilesUnchangedTotal counts files that were already normalized
	FilesUnchangedTotal prometheus.Counter

	// ErrorsTotal counts per-file read/write failures
	ErrorsTotal prometheus.Counter

	// BytesRewrittenTotal counts bytes written back to disk
	BytesRewrittenTotal prometheus.Counter

	// FilesChangedByExtension counts rewritten files per extension
	FilesChangedByExtension *prometheus.CounterVec

	// RunDuration tracks how long full runs take
	RunDuration prometheus.Histogram

	// LastRunTimestamp records Unix timestamp of the last run
	LastRunTimestamp prometheus.Gauge
)

// Init initializes and registers all metrics with Prometheus
// This function is safe to call multiple times (uses sync.Once)
func Init() {
	initOnce.Do(func() {
		FilesProcessedTotal = NewCounter(
			"linefix_files_processed_total",
			"Total number of files selected for processing.",
		)
		FilesChangedTotal = NewCounter(
			"linefix_files_changed_total",
			"Total number of files rewritten with LF line endings.",
		)
		FilesUnchangedTotal = NewCounter(
			"linefix_files_unchanged_total",
			"Total number of files already using LF line endings.",
		)
		ErrorsTotal = NewCounter(
			"linefix_errors_total",
			"Total number of per-file processing errors.",
		)
		BytesRewrittenTotal = NewCounter(
			"linefix_bytes_rewritten_total",
			"Total bytes written back during normalization.",
		)
		FilesChangedByExtension = NewCounterVec(
			"linefix_files_changed_by_extension_total",
			"Rewritten files per file extension.",
			[]string{"ext"},
		)
		RunDuration = NewDurationHistogram(
			"linefix_run_duration_seconds",
			"Duration of normalization runs in seconds.",
		)
		LastRunTimestamp = NewGauge(
			"linefix_last_run_timestamp",
			"Timestamp of the last run (Unix epoch seconds).",
		)

		prometheus.MustRegister(
			FilesProcessedTotal,
			FilesChangedTotal,
			FilesUnchangedTotal,
			ErrorsTotal,
			BytesRewrittenTotal,
			FilesChangedByExtension,
			RunDuration,
			LastRunTimestamp,
		)

		// Initialize so gauges appear in /metrics before the first run
		LastRunTimestamp.Set(0)
	})
}

// RecordChangedFile updates the per-extension counter for a rewritten file
func RecordChangedFile(ext string) {
	if ext == "" {
		ext = "(none)"
	}
	FilesChangedByExtension.WithLabelValues(ext).Inc()
}

// RecordRun updates run-level metrics after a completed run
func RecordRun(duration time.Duration) {
	LastRunTimestamp.Set(float64(time.Now().Unix()))
	RunDuration.Observe(duration.Seconds())
}

// StartServer starts the metrics HTTP server on the specified address
// Exposes /metrics (Prometheus) and /health
func StartServer(addr string, logger *log.Logger) {
	serverMutex.Lock()
	defer serverMutex.Unlock()

	if currentSrv != nil {
		logger.Printf("metrics server already running on %s", currentSrv.Addr)
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	currentSrv = srv

	go func() {
		logger.Printf("metrics server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Printf("metrics server error: %v", err)
			ErrorsTotal.Inc()
		}
	}()
}

// Shutdown gracefully shuts down the metrics server
func Shutdown(ctx context.Context, logger *log.Logger) {
	serverMutex.Lock()
	defer serverMutex.Unlock()

	if currentSrv == nil {
		return
	}
	if err := currentSrv.Shutdown(ctx); err != nil {
		logger.Printf("metrics server shutdown error: %v", err)
	}
	currentSrv = nil
}
