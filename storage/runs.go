package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// Run records one typing run with its keystroke counts.
type Run struct {
	ID               int64
	Timestamp        time.Time
	SnippetName      string
	CharCount        int
	CorrectionBursts int
	BackspacesSent   int
	DurationMs       int64
	Success          bool
	ErrorMessage     string
}

// SaveRun inserts a run record.
func (db *DB) SaveRun(r *Run) error {
	query := `
		INSERT INTO runs (
			snippet_name, char_count, correction_bursts, backspaces_sent,
			duration_ms, success, error_message
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := db.conn.Exec(query,
		r.SnippetName, r.CharCount, r.CorrectionBursts, r.BackspacesSent,
		r.DurationMs, r.Success, r.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert ID: %w", err)
	}

	r.ID = id
	return nil
}

// GetRuns retrieves runs with pagination, newest first.
func (db *DB) GetRuns(limit, offset int) ([]Run, error) {
	query := `
		SELECT
			id, timestamp, snippet_name, char_count, correction_bursts,
			backspaces_sent, duration_ms, success, error_message
		FROM runs
		ORDER BY timestamp DESC, id DESC
		LIMIT ? OFFSET ?
	`

	rows, err := db.conn.Query(query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var errorMessage sql.NullString

		err := rows.Scan(
			&r.ID, &r.Timestamp, &r.SnippetName, &r.CharCount, &r.CorrectionBursts,
			&r.BackspacesSent, &r.DurationMs, &r.Success, &errorMessage,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}

		if errorMessage.Valid {
			r.ErrorMessage = errorMessage.String
		}

		runs = append(runs, r)
	}

	return runs, rows.Err()
}

// GetRunCount returns the total number of recorded runs.
func (db *DB) GetRunCount() (int, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM runs").Scan(&count)
	return count, err
}
