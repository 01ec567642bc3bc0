package storage

import (
	"fmt"
)

// DailyStats represents run statistics for a single day.
type DailyStats struct {
	Date         string
	TotalRuns    int
	TotalChars   int
	SuccessCount int
	FailureCount int
}

// SnippetStats represents run statistics grouped by snippet.
type SnippetStats struct {
	SnippetName   string
	TotalRuns     int
	TotalChars    int
	SuccessCount  int
	FailureCount  int
	AvgDurationMs float64
}

// OverallStats represents overall run statistics.
type OverallStats struct {
	TotalRuns        int
	TotalChars       int
	TotalBursts      int
	TotalBackspaces  int
	SuccessCount     int
	FailureCount     int
	AvgDurationMs    float64
	TotalTypingMs    int64
}

// GetDailyStats retrieves statistics grouped by date for the last N days.
func (db *DB) GetDailyStats(days int) ([]DailyStats, error) {
	query := `
		SELECT
			DATE(timestamp) as date,
			COUNT(*) as total_runs,
			SUM(char_count) as total_chars,
			SUM(CASE WHEN success = 1 THEN 1 ELSE 0 END) as success_count,
			SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END) as failure_count
		FROM runs
		WHERE timestamp >= datetime('now', '-' || ? || ' days')
		GROUP BY DATE(timestamp)
		ORDER BY date DESC
	`

	rows, err := db.conn.Query(query, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily stats: %w", err)
	}
	defer rows.Close()

	var stats []DailyStats
	for rows.Next() {
		var s DailyStats
		err := rows.Scan(&s.Date, &s.TotalRuns, &s.TotalChars, &s.SuccessCount, &s.FailureCount)
		if err != nil {
			return nil, fmt.Errorf("failed to scan daily stats: %w", err)
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}

// GetSnippetStats retrieves statistics grouped by snippet for the last N days.
func (db *DB) GetSnippetStats(days int) ([]SnippetStats, error) {
	query := `
		SELECT
			snippet_name,
			COUNT(*) as total_runs,
			SUM(char_count) as total_chars,
			SUM(CASE WHEN success = 1 THEN 1 ELSE 0 END) as success_count,
			SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END) as failure_count,
			AVG(duration_ms) as avg_duration_ms
		FROM runs
		WHERE timestamp >= datetime('now', '-' || ? || ' days')
		GROUP BY snippet_name
		ORDER BY total_runs DESC
	`

	rows, err := db.conn.Query(query, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query snippet stats: %w", err)
	}
	defer rows.Close()

	var stats []SnippetStats
	for rows.Next() {
		var s SnippetStats
		err := rows.Scan(&s.SnippetName, &s.TotalRuns, &s.TotalChars, &s.SuccessCount, &s.FailureCount, &s.AvgDurationMs)
		if err != nil {
			return nil, fmt.Errorf("failed to scan snippet stats: %w", err)
		}
		stats = append(stats, s)
	}

	return stats, rows.Err()
}

// GetOverallStats retrieves overall statistics for the last N days.
func (db *DB) GetOverallStats(days int) (*OverallStats, error) {
	query := `
		SELECT
			COUNT(*) as total_runs,
			COALESCE(SUM(char_count), 0) as total_chars,
			COALESCE(SUM(correction_bursts), 0) as total_bursts,
			COALESCE(SUM(backspaces_sent), 0) as total_backspaces,
			SUM(CASE WHEN success = 1 THEN 1 ELSE 0 END) as success_count,
			SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END) as failure_count,
			COALESCE(AVG(duration_ms), 0) as avg_duration_ms,
			COALESCE(SUM(duration_ms), 0) as total_typing_ms
		FROM runs
		WHERE timestamp >= datetime('now', '-' || ? || ' days')
	`

	var stats OverallStats
	var successCount, failureCount *int
	err := db.conn.QueryRow(query, days).Scan(
		&stats.TotalRuns,
		&stats.TotalChars,
		&stats.TotalBursts,
		&stats.TotalBackspaces,
		&successCount,
		&failureCount,
		&stats.AvgDurationMs,
		&stats.TotalTypingMs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query overall stats: %w", err)
	}
	if successCount != nil {
		stats.SuccessCount = *successCount
	}
	if failureCount != nil {
		stats.FailureCount = *failureCount
	}

	return &stats, nil
}
