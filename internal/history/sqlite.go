package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-backed approval log.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS approvals (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			chat TEXT NOT NULL,
			user_id INTEGER NOT NULL,
			method TEXT NOT NULL,
			run_id TEXT,
			approved_at DATETIME NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create approvals table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Record appends an approval entry.
func (s *SQLiteStore) Record(e Entry) error {
	_, err := s.db.Exec(`
		INSERT INTO approvals (chat, user_id, method, run_id, approved_at)
		VALUES (?, ?, ?, ?, ?)
	`, e.Chat, e.UserID, e.Method, e.RunID, e.ApprovedAt)
	if err != nil {
		return fmt.Errorf("record approval: %w", err)
	}
	return nil
}

// CountByChat returns the number of recorded approvals for a chat.
func (s *SQLiteStore) CountByChat(chat string) (int64, error) {
	var n int64
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM approvals WHERE chat = ?", chat,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count approvals: %w", err)
	}
	return n, nil
}

// TotalApproved returns the number of recorded approvals overall.
func (s *SQLiteStore) TotalApproved() (int64, error) {
	var n int64
	err := s.db.QueryRow("SELECT COUNT(*) FROM approvals").Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count approvals: %w", err)
	}
	return n, nil
}

// Close releases database resources.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
