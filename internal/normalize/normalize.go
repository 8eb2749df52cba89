package normalize

import (
	"fmt"
	"log"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"linefix/internal/database"
	"linefix/internal/fsops"
	"linefix/internal/metrics"
	"linefix/internal/safety"
	"linefix/internal/scan"

	"github.com/prometheus/client_golang/prometheus"
)

// Source encodings reported by Decode
const (
	EncodingUTF8   = "utf-8"
	EncodingLatin1 = "latin-1"
)

// Logger interface for structured logging during normalization
type Logger interface {
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// stdLogger wraps standard log.Logger to implement Logger interface
type stdLogger struct {
	*log.Logger
}

func (l *stdLogger) Info(msg string, args ...interface{}) {
	l.logWithLevel("INFO", msg, args...)
}

func (l *stdLogger) Warn(msg string, args ...interface{}) {
	l.logWithLevel("WARN", msg, args...)
}

func (l *stdLogger) Error(msg string, args ...interface{}) {
	l.logWithLevel("ERROR", msg, args...)
}

func (l *stdLogger) logWithLevel(level, msg string, args ...interface{}) {
	var parts []interface{}
	parts = append(parts, fmt.Sprintf("[%s]", level), msg)
	parts = append(parts, args...)
	l.Logger.Println(parts...)
}

// Metrics interface for normalization metrics
type Metrics interface {
	FilesProcessedTotal() prometheus.Counter
	FilesChangedTotal() prometheus.Counter
	FilesUnchangedTotal() prometheus.Counter
	ErrorsTotal() prometheus.Counter
	BytesRewrittenTotal() prometheus.Counter
}

// promMetrics wraps the global metrics to implement Metrics interface
type promMetrics struct{}

func (promMetrics) FilesProcessedTotal() prometheus.Counter { return metrics.FilesProcessedTotal }
func (promMetrics) FilesChangedTotal() prometheus.Counter   { return metrics.FilesChangedTotal }
func (promMetrics) FilesUnchangedTotal() prometheus.Counter { return metrics.FilesUnchangedTotal }
func (promMetrics) ErrorsTotal() prometheus.Counter         { return metrics.ErrorsTotal }
func (promMetrics) BytesRewrittenTotal() prometheus.Counter { return metrics.BytesRewrittenTotal }

// Result describes the outcome of normalizing a single file
type Result struct {
	Changed      bool
	Encoding     string // source encoding the file decoded with
	CRLFCount    int    // CRLF sequences rewritten
	CRCount      int    // lone CR bytes rewritten
	BytesWritten int
}

// Summary aggregates a whole run; counters are returned, not global state
type Summary struct {
	Processed      int
	Changed        int
	Unchanged      int
	Errors         int
	BytesRewritten int64
}

// Normalizer rewrites CRLF and lone-CR line terminators to LF in place
type Normalizer struct {
	logger    Logger
	metrics   Metrics
	fs        fsops.Rewriter
	validator *safety.Validator
	db        *database.HistoryDB // optional normalization history
}

// NewNormalizer creates a Normalizer. validator and db may be nil.
func NewNormalizer(logger *log.Logger, fs fsops.Rewriter, validator *safety.Validator, db *database.HistoryDB) *Normalizer {
	if logger == nil {
		logger = log.Default()
	}
	if fs == nil {
		fs = fsops.OSRewriter{}
	}
	return &Normalizer{
		logger:    &stdLogger{Logger: logger},
		metrics:   promMetrics{},
		fs:        fs,
		validator: validator,
		db:        db,
	}
}

// Decode interprets raw bytes as text. UTF-8 is preferred; anything else
// falls back to latin-1, which maps every byte to a code point and therefore
// cannot fail. The original tool carried a dead branch for a double decode
// failure; with the universal fallback that branch does not exist here.
func Decode(raw []byte) (text string, encoding string) {
	if utf8.Valid(raw) {
		return string(raw), EncodingUTF8
	}
	decoded, _ := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	return string(decoded), EncodingLatin1
}

// ToLF rewrites line terminators to LF and reports how many CRLF sequences
// and lone CR bytes were replaced. CRLF must go first: substituting lone CR
// first would turn each CRLF into two LFs.
func ToLF(text string) (string, int, int) {
	crlf := strings.Count(text, "\r\n")
	out := strings.ReplaceAll(text, "\r\n", "\n")
	cr := strings.Count(out, "\r")
	out = strings.ReplaceAll(out, "\r", "\n")
	return out, crlf, cr
}

// NormalizeFile rewrites the file's line endings in place. When the content
// is already normalized no write is issued, so timestamps are left alone.
// Changed files are re-encoded as UTF-8 and rewritten in full.
func (n *Normalizer) NormalizeFile(path string) (Result, error) {
	raw, err := n.fs.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("read %s: %w", path, err)
	}

	text, enc := Decode(raw)
	out, crlf, cr := ToLF(text)
	res := Result{Encoding: enc, CRLFCount: crlf, CRCount: cr}

	if out == text {
		return res, nil
	}

	data := []byte(out)
	if err := n.fs.WriteFile(path, data, 0o644); err != nil {
		return res, fmt.Errorf("write %s: %w", path, err)
	}
	res.Changed = true
	res.BytesWritten = len(data)
	return res, nil
}

// Run processes candidates in order and returns aggregate counters.
// Per-file failures are logged, recorded, and skipped; they never abort
// the run.
func (n *Normalizer) Run(candidates []scan.Candidate) Summary {
	n.logger.Info("Starting normalization", "total_candidates", len(candidates))

	var summary Summary
	for _, cand := range candidates {
		summary.Processed++
		n.metrics.FilesProcessedTotal().Inc()

		if n.validator != nil {
			if err := n.validator.ValidateRewrite(cand.Path); err != nil {
				n.recordError(cand, err)
				summary.Errors++
				continue
			}
		}

		res, err := n.NormalizeFile(cand.Path)
		if err != nil {
			n.recordError(cand, err)
			summary.Errors++
			continue
		}

		if !res.Changed {
			summary.Unchanged++
			n.metrics.FilesUnchangedTotal().Inc()
			continue
		}

		summary.Changed++
		summary.BytesRewritten += int64(res.BytesWritten)
		n.metrics.FilesChangedTotal().Inc()
		n.metrics.BytesRewrittenTotal().Add(float64(res.BytesWritten))
		metrics.RecordChangedFile(cand.Extension())

		n.logger.Info("Normalized", "path", cand.RelPath,
			"crlf", res.CRLFCount, "cr", res.CRCount, "encoding", res.Encoding)

		if n.db != nil {
			ev := database.Event{
				Action:    database.ActionNormalize,
				Path:      cand.Path,
				Extension: cand.Extension(),
				Size:      int64(res.BytesWritten),
				Encoding:  res.Encoding,
				CRLFCount: res.CRLFCount,
				CRCount:   res.CRCount,
			}
			if dbErr := n.db.RecordEvent(ev); dbErr != nil {
				// A failed history write must not fail the run
				n.logger.Error("Failed to record to database", "error", dbErr)
			}
		}
	}

	n.logger.Info("Normalization complete",
		"processed", summary.Processed,
		"changed", summary.Changed,
		"unchanged", summary.Unchanged,
		"errors", summary.Errors,
	)
	return summary
}

func (n *Normalizer) recordError(cand scan.Candidate, err error) {
	n.logger.Error("Failed to normalize", "path", cand.Path, "error", err)
	n.metrics.ErrorsTotal().Inc()
	if n.db != nil {
		ev := database.Event{
			Action:       database.ActionError,
			Path:         cand.Path,
			Extension:    cand.Extension(),
			Size:         cand.Size,
			ErrorMessage: err.Error(),
		}
		if dbErr := n.db.RecordEvent(ev); dbErr != nil {
			n.logger.Error("Failed to record error to database", "error", dbErr)
		}
	}
}
