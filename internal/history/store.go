// Package history records the outcome of every insert and update attempt in
// a local SQLite database, so the UI can show what recently changed.
//
// The log is advisory: a failure to record is logged and swallowed, never
// allowed to block the write path.
package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Entry is one recorded write attempt.
type Entry struct {
	ID        string
	Op        string // "insert" or "update"
	RowID     int64
	OK        bool
	Message   string
	CreatedAt time.Time
}

// Store is a SQLite-backed write log.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new Store instance.
func NewStore() *Store {
	return &Store{}
}

// Open opens a connection to the SQLite database.
// Use ":memory:" for an in-memory database.
func (s *Store) Open(path string) error {
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("%s?_journal_mode=WAL", path)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return fmt.Errorf("failed to open history database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping history database: %w", err)
	}

	if err := migrate(db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	s.path = path
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record appends one write attempt. The entry's ID and CreatedAt are
// assigned here.
func (s *Store) Record(op string, rowID int64, ok bool, message string) error {
	if s.db == nil {
		return fmt.Errorf("history database not opened")
	}

	_, err := s.db.Exec(`
		INSERT INTO write_log (id, op, row_id, ok, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, uuid.New().String(), op, rowID, ok, message, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to record write: %w", err)
	}
	return nil
}

// Recent returns the newest entries, most recent first.
func (s *Store) Recent(limit int) ([]Entry, error) {
	if s.db == nil {
		return nil, fmt.Errorf("history database not opened")
	}

	rows, err := s.db.Query(`
		SELECT id, op, row_id, ok, message, created_at
		FROM write_log
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query write log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Op, &e.RowID, &e.OK, &e.Message, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan write log entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating write log: %w", err)
	}

	return entries, nil
}
