// Package storage provides SQLite-based persistence for completed runs and
// their replay logs. Uses the pure-Go modernc.org/sqlite driver to avoid
// CGO dependencies.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/tui-mania/internal/judge"
)

// Store manages the SQLite database connection for run persistence.
type Store struct {
	db *sql.DB
}

// RunRecord is one persisted run outcome. TierCounts is indexed by
// judge.Tier; Replay holds the opaque replay log payload, if one was
// recorded.
type RunRecord struct {
	ID         int64
	ChartHash  string
	Title      string
	Rate       float64
	Score      int64
	Accuracy   float64
	MaxCombo   int
	TierCounts [judge.TierCount]int
	GhostTaps  int
	Replay     []byte
	CreatedAt  time.Time
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	// Create parent directories
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	// Open database
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}

	// Run migrations
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			chart_hash TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			rate REAL NOT NULL DEFAULT 1.0,
			score INTEGER NOT NULL,
			accuracy REAL NOT NULL DEFAULT 0,
			max_combo INTEGER NOT NULL DEFAULT 0,
			marvelous INTEGER NOT NULL DEFAULT 0,
			perfect INTEGER NOT NULL DEFAULT 0,
			great INTEGER NOT NULL DEFAULT 0,
			good INTEGER NOT NULL DEFAULT 0,
			bad INTEGER NOT NULL DEFAULT 0,
			early INTEGER NOT NULL DEFAULT 0,
			miss INTEGER NOT NULL DEFAULT 0,
			ghost_taps INTEGER NOT NULL DEFAULT 0,
			replay BLOB,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_runs_chart ON runs(chart_hash);
		CREATE INDEX IF NOT EXISTS idx_runs_top ON runs(chart_hash, score DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveRun records a completed run. Returns the ID of the inserted record.
func (s *Store) SaveRun(rec RunRecord) (int64, error) {
	result, err := s.db.Exec(
		`INSERT INTO runs
		 (chart_hash, title, rate, score, accuracy, max_combo,
		  marvelous, perfect, great, good, bad, early, miss, ghost_taps, replay)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ChartHash,
		rec.Title,
		rec.Rate,
		rec.Score,
		rec.Accuracy,
		rec.MaxCombo,
		rec.TierCounts[judge.Marvelous],
		rec.TierCounts[judge.Perfect],
		rec.TierCounts[judge.Great],
		rec.TierCounts[judge.Good],
		rec.TierCounts[judge.Bad],
		rec.TierCounts[judge.EarlyRelease],
		rec.TierCounts[judge.Miss],
		rec.GhostTaps,
		rec.Replay,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

const runColumns = `id, chart_hash, title, rate, score, accuracy, max_combo,
	marvelous, perfect, great, good, bad, early, miss, ghost_taps, created_at`

func scanRun(scan func(...any) error) (RunRecord, error) {
	var r RunRecord
	var createdAt any
	err := scan(
		&r.ID, &r.ChartHash, &r.Title, &r.Rate, &r.Score, &r.Accuracy, &r.MaxCombo,
		&r.TierCounts[judge.Marvelous],
		&r.TierCounts[judge.Perfect],
		&r.TierCounts[judge.Great],
		&r.TierCounts[judge.Good],
		&r.TierCounts[judge.Bad],
		&r.TierCounts[judge.EarlyRelease],
		&r.TierCounts[judge.Miss],
		&r.GhostTaps,
		&createdAt,
	)
	if err != nil {
		return r, err
	}

	// Parse the datetime - handle both time.Time and string
	switch v := createdAt.(type) {
	case time.Time:
		r.CreatedAt = v
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
			r.CreatedAt = parsed
		}
	}
	return r, nil
}

// TopRuns retrieves the top N runs for the given chart, ordered by score
// descending. Replay payloads are not loaded; use ReplayPayload.
func (s *Store) TopRuns(chartHash string, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT `+runColumns+`
		 FROM runs
		 WHERE chart_hash = ?
		 ORDER BY score DESC
		 LIMIT ?`,
		chartHash, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		r, err := scanRun(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return records, nil
}

// RecentRuns retrieves the most recent runs across all charts.
func (s *Store) RecentRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT `+runColumns+`
		 FROM runs
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		r, err := scanRun(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		records = append(records, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return records, nil
}

// RunByID retrieves a single run, without its replay payload.
// Returns nil if the run does not exist.
func (s *Store) RunByID(id int64) (*RunRecord, error) {
	row := s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	r, err := scanRun(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query run: %w", err)
	}
	return &r, nil
}

// ReplayPayload loads the replay blob for a run. Returns nil with no error
// when the run exists but recorded no replay.
func (s *Store) ReplayPayload(id int64) ([]byte, error) {
	var payload []byte
	err := s.db.QueryRow("SELECT replay FROM runs WHERE id = ?", id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("storage: run %d not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot load replay: %w", err)
	}
	return payload, nil
}

// BestScore returns the highest score for the given chart.
// Returns 0 if no runs exist.
func (s *Store) BestScore(chartHash string) (int64, error) {
	var best sql.NullInt64
	err := s.db.QueryRow(
		"SELECT MAX(score) FROM runs WHERE chart_hash = ?",
		chartHash,
	).Scan(&best)

	if err != nil {
		return 0, fmt.Errorf("storage: cannot query best score: %w", err)
	}

	if !best.Valid {
		return 0, nil
	}

	return best.Int64, nil
}

// ClearRuns deletes all runs for the given chart.
func (s *Store) ClearRuns(chartHash string) error {
	_, err := s.db.Exec("DELETE FROM runs WHERE chart_hash = ?", chartHash)
	if err != nil {
		return fmt.Errorf("storage: cannot clear runs: %w", err)
	}
	return nil
}

// ChartEntry is one distinct chart with saved runs.
type ChartEntry struct {
	ChartHash string
	Title     string
	RunCount  int
}

// ListCharts returns every chart that has at least one saved run, most
// recently played first. The title comes from the latest run for the chart.
func (s *Store) ListCharts() ([]ChartEntry, error) {
	// The bare title column resolves to the row carrying MAX(created_at),
	// i.e. the latest run's title.
	rows, err := s.db.Query(
		`SELECT chart_hash, title, COUNT(*), MAX(created_at) AS last
		 FROM runs
		 GROUP BY chart_hash
		 ORDER BY last DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot list charts: %w", err)
	}
	defer rows.Close()

	var entries []ChartEntry
	for rows.Next() {
		var e ChartEntry
		var last any
		if err := rows.Scan(&e.ChartHash, &e.Title, &e.RunCount, &last); err != nil {
			return nil, fmt.Errorf("storage: cannot scan chart entry: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// ChartStats contains aggregated statistics for one chart.
type ChartStats struct {
	ChartHash    string
	RunCount     int
	BestScore    int64
	BestAccuracy float64
	LastPlayed   time.Time
}

// GetChartStats retrieves aggregated statistics for a specific chart.
func (s *Store) GetChartStats(chartHash string) (*ChartStats, error) {
	stats := &ChartStats{ChartHash: chartHash}

	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(MAX(score), 0), COALESCE(MAX(accuracy), 0)
		 FROM runs WHERE chart_hash = ?`,
		chartHash,
	).Scan(&stats.RunCount, &stats.BestScore, &stats.BestAccuracy)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get chart stats: %w", err)
	}

	var lastPlayed any
	err = s.db.QueryRow(
		`SELECT created_at FROM runs WHERE chart_hash = ? ORDER BY created_at DESC LIMIT 1`,
		chartHash,
	).Scan(&lastPlayed)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("storage: cannot get last played: %w", err)
	}
	if err == nil {
		switch v := lastPlayed.(type) {
		case time.Time:
			stats.LastPlayed = v
		case string:
			if parsed, err := time.Parse("2006-01-02 15:04:05", v); err == nil {
				stats.LastPlayed = parsed
			}
		}
	}

	return stats, nil
}
