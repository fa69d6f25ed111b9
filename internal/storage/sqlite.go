// Package storage provides SQLite-based persistence for finished puzzle games.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/tui-puzzle/internal/puzzle"
)

// Store manages the SQLite database connection for score persistence.
type Store struct {
	db *sql.DB
}

// Entry is one stored game record.
type Entry struct {
	ID        int64
	SessionID string
	Level     string // score level: EASY, MEDIUM, HARD
	Movements int
	Time      int // seconds
	Image     string
	CreatedAt time.Time
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

	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS puzzle_scores (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL,
			level TEXT NOT NULL,
			movements INTEGER NOT NULL,
			time_secs INTEGER NOT NULL,
			image TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_puzzle_scores_level ON puzzle_scores(level);
		CREATE INDEX IF NOT EXISTS idx_puzzle_scores_best ON puzzle_scores(level, movements, time_secs);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_puzzle_scores_session ON puzzle_scores(session_id);
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

// SaveRecord stores a completed game. A session is stored at most once;
// saving the same session again returns the existing row ID.
func (s *Store) SaveRecord(rec puzzle.Record) (int64, error) {
	if rec.SessionID == "" {
		rec.SessionID = uuid.NewString()
	}
	createdAt := rec.CompletedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	result, err := s.db.Exec(
		`INSERT INTO puzzle_scores (session_id, level, movements, time_secs, image, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(session_id) DO NOTHING`,
		rec.SessionID, rec.Level, rec.Movements, rec.Time, rec.Image,
		createdAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save record: %w", err)
	}

	if n, err := result.RowsAffected(); err == nil && n == 0 {
		var id int64
		if err := s.db.QueryRow(
			"SELECT id FROM puzzle_scores WHERE session_id = ?", rec.SessionID,
		).Scan(&id); err != nil {
			return 0, fmt.Errorf("storage: cannot find existing record: %w", err)
		}
		return id, nil
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}

	return id, nil
}

// TopRecords retrieves the best N records for the given score level.
// Fewer moves rank first; ties are broken by time.
func (s *Store) TopRecords(level string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT id, session_id, level, movements, time_secs, image, created_at
		 FROM puzzle_scores
		 WHERE level = ?
		 ORDER BY movements ASC, time_secs ASC, id ASC
		 LIMIT ?`,
		level, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query records: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var createdAt any
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Level, &e.Movements, &e.Time, &e.Image, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return entries, nil
}

// BestRecord returns the best record for the given level, or nil if none exist.
func (s *Store) BestRecord(level string) (*Entry, error) {
	entries, err := s.TopRecords(level, 1)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

// ClearRecords deletes all records for the given level.
// An empty level clears every record.
func (s *Store) ClearRecords(level string) error {
	var err error
	if level == "" {
		_, err = s.db.Exec("DELETE FROM puzzle_scores")
	} else {
		_, err = s.db.Exec("DELETE FROM puzzle_scores WHERE level = ?", level)
	}
	if err != nil {
		return fmt.Errorf("storage: cannot clear records: %w", err)
	}
	return nil
}

// LevelStats contains aggregated statistics for one difficulty level.
type LevelStats struct {
	Level      string
	GamesCount int
	BestMoves  int
	BestTime   int
	AvgMoves   float64
	AvgTime    float64
	LastPlayed time.Time
}

// GetLevelStats retrieves aggregated statistics for a specific level.
func (s *Store) GetLevelStats(level string) (*LevelStats, error) {
	stats := &LevelStats{Level: level}

	var lastPlayed any
	err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(MIN(movements), 0), COALESCE(MIN(time_secs), 0),
		        COALESCE(AVG(movements), 0), COALESCE(AVG(time_secs), 0), MAX(created_at)
		 FROM puzzle_scores WHERE level = ?`,
		level,
	).Scan(&stats.GamesCount, &stats.BestMoves, &stats.BestTime, &stats.AvgMoves, &stats.AvgTime, &lastPlayed)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("storage: cannot get level stats: %w", err)
	}
	stats.LastPlayed = parseTime(lastPlayed)

	return stats, nil
}

// GetAllLevelStats retrieves statistics for every level that has been played.
func (s *Store) GetAllLevelStats() (map[string]*LevelStats, error) {
	rows, err := s.db.Query(
		`SELECT level, COUNT(*), MIN(movements), MIN(time_secs), AVG(movements), AVG(time_secs), MAX(created_at)
		 FROM puzzle_scores
		 GROUP BY level`,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get all level stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]*LevelStats)
	for rows.Next() {
		var ls LevelStats
		var lastPlayed any
		if err := rows.Scan(&ls.Level, &ls.GamesCount, &ls.BestMoves, &ls.BestTime, &ls.AvgMoves, &ls.AvgTime, &lastPlayed); err != nil {
			return nil, fmt.Errorf("storage: cannot scan stats row: %w", err)
		}
		ls.LastPlayed = parseTime(lastPlayed)
		stats[ls.Level] = &ls
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}

	return stats, nil
}

const timeLayout = "2006-01-02 15:04:05"

// parseTime handles both time.Time and string datetime columns.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(timeLayout, t); err == nil {
			return parsed
		}
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
