package database

import (
	"database/sql"
	"time"
)

const recordColumns = `
	SELECT id, timestamp, action, path, file_name, extension, size,
	       encoding, crlf_count, cr_count, error_message, created_at
	FROM normalizations
`

// GetRecent returns the N most recent normalization events
func (d *HistoryDB) GetRecent(limit int) ([]Record, error) {
	query := recordColumns + `
	ORDER BY timestamp DESC
	LIMIT ?
	`
	return d.queryRecords(query, limit)
}

// GetByAction returns events filtered by action type
func (d *HistoryDB) GetByAction(action string) ([]Record, error) {
	query := recordColumns + `
	WHERE action = ?
	ORDER BY timestamp DESC
	`
	return d.queryRecords(query, action)
}

// GetByPath returns events matching a path pattern
func (d *HistoryDB) GetByPath(pathPattern string) ([]Record, error) {
	query := recordColumns + `
	WHERE path LIKE ?
	ORDER BY timestamp DESC
	`
	return d.queryRecords(query, pathPattern)
}

// GetByExtension returns events filtered by file extension
func (d *HistoryDB) GetByExtension(ext string) ([]Record, error) {
	query := recordColumns + `
	WHERE extension = ?
	ORDER BY timestamp DESC
	`
	return d.queryRecords(query, ext)
}

// GetLargest returns the N largest normalized files by size
func (d *HistoryDB) GetLargest(limit int) ([]Record, error) {
	query := recordColumns + `
	WHERE action = 'NORMALIZE'
	ORDER BY size DESC
	LIMIT ?
	`
	return d.queryRecords(query, limit)
}

// Stats summarizes normalization activity over a time range
type Stats struct {
	StartDate       time.Time
	EndDate         time.Time
	TotalNormalized int64
	TotalErrors     int64
	TotalBytes      int64
	TotalCRLF       int64
	TotalCR         int64
	ByExtension     map[string]int64
	ByEncoding      map[string]int64
}

// GetStats returns normalization statistics for the last N days
func (d *HistoryDB) GetStats(days int) (*Stats, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -days)

	stats := &Stats{
		StartDate:   start,
		EndDate:     end,
		ByExtension: make(map[string]int64),
		ByEncoding:  make(map[string]int64),
	}

	row := d.db.QueryRow(`
	SELECT
		COALESCE(SUM(CASE WHEN action = 'NORMALIZE' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN action = 'ERROR' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN action = 'NORMALIZE' THEN size ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN action = 'NORMALIZE' THEN crlf_count ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN action = 'NORMALIZE' THEN cr_count ELSE 0 END), 0)
	FROM normalizations
	WHERE timestamp BETWEEN ? AND ?
	`, start, end)
	if err := row.Scan(&stats.TotalNormalized, &stats.TotalErrors, &stats.TotalBytes,
		&stats.TotalCRLF, &stats.TotalCR); err != nil {
		return nil, err
	}

	if err := d.countsInto(stats.ByExtension, `
	SELECT extension, COUNT(*)
	FROM normalizations
	WHERE action = 'NORMALIZE' AND timestamp BETWEEN ? AND ?
	GROUP BY extension
	`, start, end); err != nil {
		return nil, err
	}

	if err := d.countsInto(stats.ByEncoding, `
	SELECT encoding, COUNT(*)
	FROM normalizations
	WHERE action = 'NORMALIZE' AND timestamp BETWEEN ? AND ?
	GROUP BY encoding
	`, start, end); err != nil {
		return nil, err
	}

	return stats, nil
}

func (d *HistoryDB) countsInto(dst map[string]int64, query string, args ...interface{}) error {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var key sql.NullString
		var count int64
		if err := rows.Scan(&key, &count); err != nil {
			return err
		}
		name := key.String
		if name == "" {
			name = "(none)"
		}
		dst[name] = count
	}
	return rows.Err()
}

// queryRecords executes a query and scans the result set into records
func (d *HistoryDB) queryRecords(query string, args ...interface{}) ([]Record, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var fileName, extension, encoding, errMsg sql.NullString
		var crlf, cr sql.NullInt64
		if err := rows.Scan(
			&r.ID, &r.Timestamp, &r.Action, &r.Path, &fileName, &extension,
			&r.Size, &encoding, &crlf, &cr, &errMsg, &r.CreatedAt,
		); err != nil {
			return nil, err
		}
		r.FileName = fileName.String
		r.Extension = extension.String
		r.Encoding = encoding.String
		r.CRLFCount = int(crlf.Int64)
		r.CRCount = int(cr.Int64)
		r.ErrorMessage = errMsg.String
		records = append(records, r)
	}
	return records, rows.Err()
}
