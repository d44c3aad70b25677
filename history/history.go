package history

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/scipunch/freegames/report"
)

//go:embed schema.sql
var schemaSQL string

// Store keeps previously generated reports
type Store struct {
	db *sql.DB
}

// Stats contains history statistics
type Stats struct {
	Reports      int
	OldestReport time.Time
}

// NewStore opens or creates the history database at the given path
func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Save stores the report exactly as it is serialized for the renderer
func (s *Store) Save(rep report.Report) error {
	body, err := report.Marshal(rep)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO reports
		(generated_at, current_count, upcoming_count, body, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, rep.Timestamp, len(rep.CurrentFreeGames), len(rep.UpcomingFreeGames), body, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to store report: %w", err)
	}
	return nil
}

// Latest returns the body of the newest stored report
// Returns: (body, found, error)
func (s *Store) Latest() ([]byte, bool, error) {
	var body []byte
	err := s.db.QueryRow("SELECT body FROM reports ORDER BY id DESC LIMIT 1").Scan(&body)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read latest report: %w", err)
	}
	return body, true, nil
}

// Prune deletes all but the newest keep reports. keep <= 0 keeps everything.
func (s *Store) Prune(keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}
	res, err := s.db.Exec(`
		DELETE FROM reports WHERE id NOT IN (
			SELECT id FROM reports ORDER BY id DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return 0, fmt.Errorf("failed to prune history: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		slog.Debug("history pruned", "removed", n, "kept", keep)
	}
	return n, nil
}

// Clear removes all stored reports
func (s *Store) Clear() error {
	if _, err := s.db.Exec("DELETE FROM reports"); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// Stats returns history statistics
func (s *Store) Stats() (Stats, error) {
	var stats Stats

	var oldestUnix sql.NullInt64
	err := s.db.QueryRow("SELECT COUNT(*), MIN(created_at) FROM reports").Scan(&stats.Reports, &oldestUnix)
	if err != nil {
		return stats, err
	}
	if oldestUnix.Valid && oldestUnix.Int64 > 0 {
		stats.OldestReport = time.Unix(oldestUnix.Int64, 0)
	}

	return stats, nil
}

// Close closes the history database
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
