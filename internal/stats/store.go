package stats

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ca-srg/readmelater/internal/poster"
	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

// Store manages SQLite persistence for per-day outcome counts.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore opens (creating if needed) the database at dbPath.
func NewStore(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create stats directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	createTableSQL := `
		CREATE TABLE IF NOT EXISTS outcome_counts (
			outcome TEXT NOT NULL,
			date TEXT NOT NULL,
			count INTEGER DEFAULT 0,
			PRIMARY KEY (outcome, date)
		);
	`
	if _, err := db.Exec(createTableSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Increment adds one to today's count for outcome.
func (s *Store) Increment(outcome poster.Outcome) error {
	today := s.now().Format(dateLayout)

	upsertSQL := `
		INSERT INTO outcome_counts (outcome, date, count)
		VALUES (?, ?, 1)
		ON CONFLICT(outcome, date) DO UPDATE SET count = count + 1;
	`
	if _, err := s.db.Exec(upsertSQL, string(outcome), today); err != nil {
		return fmt.Errorf("failed to increment count: %w", err)
	}
	return nil
}

// GetTotalByOutcome returns the cumulative count for outcome across all dates.
func (s *Store) GetTotalByOutcome(outcome poster.Outcome) (int64, error) {
	var total int64
	row := s.db.QueryRow(
		"SELECT COALESCE(SUM(count), 0) FROM outcome_counts WHERE outcome = ?",
		string(outcome),
	)
	if err := row.Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to get total for outcome %s: %w", outcome, err)
	}
	return total, nil
}

// GetAllTotals returns cumulative counts for every known outcome.
func (s *Store) GetAllTotals() (map[poster.Outcome]int64, error) {
	result := make(map[poster.Outcome]int64, len(poster.AllOutcomes))
	for _, o := range poster.AllOutcomes {
		result[o] = 0
	}

	rows, err := s.db.Query(
		"SELECT outcome, COALESCE(SUM(count), 0) FROM outcome_counts GROUP BY outcome",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query totals: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var outcome string
		var total int64
		if err := rows.Scan(&outcome, &total); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result[poster.Outcome(outcome)] = total
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return result, nil
}

// GetCountByDate returns the count for outcome on date (YYYY-MM-DD).
func (s *Store) GetCountByDate(outcome poster.Outcome, date string) (int64, error) {
	var count int64
	row := s.db.QueryRow(
		"SELECT COALESCE(count, 0) FROM outcome_counts WHERE outcome = ? AND date = ?",
		string(outcome), date,
	)
	if err := row.Scan(&count); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get count: %w", err)
	}
	return count, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
