package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Actions recorded in the history database
const (
	ActionNormalize = "NORMALIZE"
	ActionError     = "ERROR"
)

// HistoryDB manages the SQLite database of normalization history
type HistoryDB struct {
	db *sql.DB
}

// Event is a single per-file normalization event to record
type Event struct {
	Timestamp    time.Time
	Action       string // NORMALIZE or ERROR
	Path         string
	Extension    string
	Size         int64  // size in bytes after processing
	Encoding     string // source encoding: utf-8 or latin-1
	CRLFCount    int    // CRLF sequences rewritten
	CRCount      int    // lone CR bytes rewritten
	ErrorMessage string
}

// Record is a stored normalization event
type Record struct {
	ID           int64
	Timestamp    time.Time
	Action       string
	Path         string
	FileName     string
	Extension    string
	Size         int64
	Encoding     string
	CRLFCount    int
	CRCount      int
	ErrorMessage string
	CreatedAt    time.Time
}

// NewHistoryDB creates a new database connection and initializes schema
func NewHistoryDB(dbPath string) (*HistoryDB, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
		}
	}

	// file: prefix with _loc=auto enables automatic DATETIME parsing
	db, err := sql.Open("sqlite3", "file:"+dbPath+"?_loc=auto")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err != nil {
			db.Close()
		}
	}()

	// A simple query both tests the connection and creates the file
	if _, err = db.Exec("SELECT 1"); err != nil {
		return nil, fmt.Errorf("failed to initialize database (check permissions on %s): %w", dbPath, err)
	}

	// WAL mode: multiple readers, one writer
	if _, err = db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err = db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		return nil, fmt.Errorf("failed to set synchronous mode: %w", err)
	}

	hdb := &HistoryDB{db: db}
	if err = hdb.initSchema(); err != nil {
		return nil, err
	}

	err = nil
	return hdb, nil
}

// initSchema creates tables and indexes if they don't exist
func (d *HistoryDB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS normalizations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		action TEXT NOT NULL,
		path TEXT NOT NULL,
		file_name TEXT,
		extension TEXT,
		size INTEGER NOT NULL,

		encoding TEXT,
		crlf_count INTEGER,
		cr_count INTEGER,

		error_message TEXT,

		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_timestamp ON normalizations(timestamp);
	CREATE INDEX IF NOT EXISTS idx_action ON normalizations(action);
	CREATE INDEX IF NOT EXISTS idx_path ON normalizations(path);
	CREATE INDEX IF NOT EXISTS idx_extension ON normalizations(extension);
	CREATE INDEX IF NOT EXISTS idx_size ON normalizations(size);
	CREATE INDEX IF NOT EXISTS idx_created_at ON normalizations(created_at);

	-- Metadata table for schema versioning
	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	INSERT OR IGNORE INTO schema_version (version) VALUES (1);
	`

	_, err := d.db.Exec(schema)
	return err
}

// RecordEvent inserts a normalization event into the database
func (d *HistoryDB) RecordEvent(ev Event) error {
	ts := ev.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	query := `
	INSERT INTO normalizations (
		timestamp, action, path, file_name, extension, size,
		encoding, crlf_count, cr_count, error_message
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := d.db.Exec(
		query,
		ts,
		ev.Action,
		ev.Path,
		filepath.Base(ev.Path),
		ev.Extension,
		ev.Size,
		ev.Encoding,
		ev.CRLFCount,
		ev.CRCount,
		ev.ErrorMessage,
	)
	return err
}

// Close closes the database connection
func (d *HistoryDB) Close() error {
	return d.db.Close()
}

// Vacuum optimizes the database (run periodically)
func (d *HistoryDB) Vacuum() error {
	_, err := d.db.Exec("VACUUM")
	return err
}
