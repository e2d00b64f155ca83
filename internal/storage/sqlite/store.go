package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tjfontaine/interview-gateway/internal/domain"
	"github.com/tjfontaine/interview-gateway/internal/storage"
)

// Store is a SQLite implementation of AuditLog. Unlike the memory store it
// survives restarts, so total counts accumulate across process lifetimes.
type Store struct {
	db *sql.DB
}

var _ storage.AuditLog = (*Store)(nil)

// New creates a new SQLite store
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps in-memory databases coherent and serializes appends.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL; PRAGMA synchronous=NORMAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	store := &Store{db: db}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

func (s *Store) initSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS interview_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp TEXT NOT NULL,
			agent_type TEXT NOT NULL,
			user_response TEXT NOT NULL,
			conversation_length INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_interview_logs_agent ON interview_logs(agent_type)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	return nil
}

func (s *Store) Append(ctx context.Context, entry domain.LogEntry) error {
	query := `INSERT INTO interview_logs (timestamp, agent_type, user_response, conversation_length)
	          VALUES (?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		entry.Timestamp.UTC().Format(time.RFC3339Nano), string(entry.AgentType),
		entry.UserResponse, entry.ConversationLength)
	if err != nil {
		return fmt.Errorf("failed to append log entry: %w", err)
	}

	return nil
}

func (s *Store) Recent(ctx context.Context, n int) ([]domain.LogEntry, error) {
	entries := []domain.LogEntry{}
	if n <= 0 {
		return entries, nil
	}

	query := `SELECT timestamp, agent_type, user_response, conversation_length FROM (
	              SELECT id, timestamp, agent_type, user_response, conversation_length
	              FROM interview_logs ORDER BY id DESC LIMIT ?
	          ) ORDER BY id ASC`

	rows, err := s.db.QueryContext(ctx, query, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query log entries: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var entry domain.LogEntry
		var ts, agent string
		if err := rows.Scan(&ts, &agent, &entry.UserResponse, &entry.ConversationLength); err != nil {
			return nil, fmt.Errorf("failed to scan log entry: %w", err)
		}
		entry.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("failed to parse timestamp %q: %w", ts, err)
		}
		entry.AgentType = domain.AgentType(agent)
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

func (s *Store) Total(ctx context.Context) (int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM interview_logs`).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count log entries: %w", err)
	}
	return total, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
