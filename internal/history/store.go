package history

import (
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rebeliceyang/lazydash/internal/models"
)

//go:embed schema.sql
var schemaSQL string

// Entry is one executed bound query
type Entry struct {
	ID           int
	DashboardID  string
	BlockID      string
	Query        string
	ExecutedAt   time.Time
	Duration     time.Duration
	RowsAffected int64
	Success      bool
	ErrorMessage string
}

// FromResult builds an entry for a query block execution
func FromResult(dashboardID, blockID, query string, res models.QueryResult) Entry {
	e := Entry{
		DashboardID:  dashboardID,
		BlockID:      blockID,
		Query:        query,
		Duration:     res.Duration,
		RowsAffected: res.RowsAffected,
		Success:      res.Error == nil,
	}
	if res.Error != nil {
		e.ErrorMessage = res.Error.Error()
	}
	return e
}

// Store manages bound query history persistence
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore creates a new history store; path may be ":memory:"
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// an in-memory database exists per connection
	db.SetMaxOpenConns(1)

	// Create schema
	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Add adds a new query to history
func (s *Store) Add(entry Entry) error {
	executedAt := entry.ExecutedAt
	if executedAt.IsZero() {
		executedAt = s.now()
	}
	_, err := s.db.Exec(`
		INSERT INTO query_history
		(dashboard_id, block_id, query, executed_at, duration_ms, rows_affected, success, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.DashboardID,
		entry.BlockID,
		entry.Query,
		executedAt.UTC(),
		entry.Duration.Milliseconds(),
		entry.RowsAffected,
		entry.Success,
		entry.ErrorMessage,
	)
	return err
}

// GetRecent retrieves the most recent query history entries
func (s *Store) GetRecent(limit int) ([]Entry, error) {
	return s.query(`
		SELECT id, dashboard_id, block_id, query, executed_at,
		       duration_ms, rows_affected, success, error_message
		FROM query_history
		ORDER BY executed_at DESC, id DESC
		LIMIT ?`, limit)
}

// ForBlock retrieves the most recent executions of one dashboard block
func (s *Store) ForBlock(dashboardID, blockID string, limit int) ([]Entry, error) {
	return s.query(`
		SELECT id, dashboard_id, block_id, query, executed_at,
		       duration_ms, rows_affected, success, error_message
		FROM query_history
		WHERE dashboard_id = ? AND block_id = ?
		ORDER BY executed_at DESC, id DESC
		LIMIT ?`, dashboardID, blockID, limit)
}

// Search searches query history by query text
func (s *Store) Search(text string, limit int) ([]Entry, error) {
	return s.query(`
		SELECT id, dashboard_id, block_id, query, executed_at,
		       duration_ms, rows_affected, success, error_message
		FROM query_history
		WHERE query LIKE ?
		ORDER BY executed_at DESC, id DESC
		LIMIT ?`, "%"+text+"%", limit)
}

// Trim keeps only the newest maxEntries rows; maxEntries <= 0 keeps everything
func (s *Store) Trim(maxEntries int) (int64, error) {
	if maxEntries <= 0 {
		return 0, nil
	}
	res, err := s.db.Exec(`
		DELETE FROM query_history
		WHERE id NOT IN (
			SELECT id FROM query_history
			ORDER BY executed_at DESC, id DESC
			LIMIT ?
		)`, maxEntries)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (s *Store) query(q string, args ...any) ([]Entry, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var durationMs int64

		err := rows.Scan(
			&e.ID,
			&e.DashboardID,
			&e.BlockID,
			&e.Query,
			&e.ExecutedAt,
			&durationMs,
			&e.RowsAffected,
			&e.Success,
			&e.ErrorMessage,
		)
		if err != nil {
			return nil, err
		}

		e.Duration = time.Duration(durationMs) * time.Millisecond
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
