package database

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *HistoryDB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := NewHistoryDB(dbPath)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close database: %v", err)
		}
	})
	return db
}

// TestDatabaseCreation verifies database file creation and initialization
func TestDatabaseCreation(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	db, err := NewHistoryDB(dbPath)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			t.Errorf("Failed to close database: %v", err)
		}
	}()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Errorf("Database file not created at %s", dbPath)
	}
}

// TestWALModeEnabled verifies that WAL mode is properly configured
func TestWALModeEnabled(t *testing.T) {
	db := openTestDB(t)

	var journalMode string
	if err := db.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("Failed to query journal mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("Expected journal_mode=wal, got %s", journalMode)
	}
}

func TestRecordAndQueryEvents(t *testing.T) {
	db := openTestDB(t)

	events := []Event{
		{Action: ActionNormalize, Path: "/proj/a.js", Extension: ".js", Size: 120, Encoding: "utf-8", CRLFCount: 4},
		{Action: ActionNormalize, Path: "/proj/b.md", Extension: ".md", Size: 4000, Encoding: "latin-1", CRCount: 2},
		{Action: ActionError, Path: "/proj/locked.txt", Extension: ".txt", ErrorMessage: "permission denied"},
	}
	for _, ev := range events {
		if err := db.RecordEvent(ev); err != nil {
			t.Fatalf("RecordEvent(%+v): %v", ev, err)
		}
	}

	recent, err := db.GetRecent(10)
	if err != nil {
		t.Fatalf("GetRecent: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recent))
	}

	errors, err := db.GetByAction(ActionError)
	if err != nil {
		t.Fatalf("GetByAction: %v", err)
	}
	if len(errors) != 1 || errors[0].ErrorMessage != "permission denied" {
		t.Errorf("unexpected error records: %+v", errors)
	}

	byExt, err := db.GetByExtension(".js")
	if err != nil {
		t.Fatalf("GetByExtension: %v", err)
	}
	if len(byExt) != 1 || byExt[0].CRLFCount != 4 {
		t.Errorf("unexpected .js records: %+v", byExt)
	}

	byPath, err := db.GetByPath("/proj/%")
	if err != nil {
		t.Fatalf("GetByPath: %v", err)
	}
	if len(byPath) != 3 {
		t.Errorf("expected 3 records under /proj, got %d", len(byPath))
	}

	largest, err := db.GetLargest(1)
	if err != nil {
		t.Fatalf("GetLargest: %v", err)
	}
	if len(largest) != 1 || largest[0].Path != "/proj/b.md" {
		t.Errorf("unexpected largest record: %+v", largest)
	}
}

func TestGetStats(t *testing.T) {
	db := openTestDB(t)

	now := time.Now()
	events := []Event{
		{Timestamp: now, Action: ActionNormalize, Path: "/p/a.js", Extension: ".js", Size: 100, Encoding: "utf-8", CRLFCount: 3, CRCount: 1},
		{Timestamp: now, Action: ActionNormalize, Path: "/p/b.js", Extension: ".js", Size: 50, Encoding: "utf-8", CRLFCount: 2},
		{Timestamp: now, Action: ActionNormalize, Path: "/p/c.txt", Extension: ".txt", Size: 10, Encoding: "latin-1"},
		{Timestamp: now, Action: ActionError, Path: "/p/d.txt", Extension: ".txt", ErrorMessage: "boom"},
	}
	for _, ev := range events {
		if err := db.RecordEvent(ev); err != nil {
			t.Fatalf("RecordEvent: %v", err)
		}
	}

	stats, err := db.GetStats(7)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.TotalNormalized != 3 {
		t.Errorf("TotalNormalized = %d, want 3", stats.TotalNormalized)
	}
	if stats.TotalErrors != 1 {
		t.Errorf("TotalErrors = %d, want 1", stats.TotalErrors)
	}
	if stats.TotalBytes != 160 {
		t.Errorf("TotalBytes = %d, want 160", stats.TotalBytes)
	}
	if stats.TotalCRLF != 5 || stats.TotalCR != 1 {
		t.Errorf("CRLF/CR totals = %d/%d, want 5/1", stats.TotalCRLF, stats.TotalCR)
	}
	if stats.ByExtension[".js"] != 2 {
		t.Errorf("ByExtension[.js] = %d, want 2", stats.ByExtension[".js"])
	}
	if stats.ByEncoding["latin-1"] != 1 {
		t.Errorf("ByEncoding[latin-1] = %d, want 1", stats.ByEncoding["latin-1"])
	}
}
