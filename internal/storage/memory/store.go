package memory

import (
	"context"
	"sync"

	"github.com/tjfontaine/interview-gateway/internal/domain"
	"github.com/tjfontaine/interview-gateway/internal/storage"
)

// Store is an in-memory implementation of AuditLog.
// Entries live for the lifetime of the process.
type Store struct {
	mu      sync.RWMutex
	entries []domain.LogEntry
}

var _ storage.AuditLog = (*Store)(nil)

// New creates a new in-memory store
func New() *Store {
	return &Store{}
}

func (s *Store) Append(ctx context.Context, entry domain.LogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, entry)
	return nil
}

func (s *Store) Recent(ctx context.Context, n int) ([]domain.LogEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n <= 0 {
		return []domain.LogEntry{}, nil
	}

	start := len(s.entries) - n
	if start < 0 {
		start = 0
	}

	result := make([]domain.LogEntry, len(s.entries)-start)
	copy(result, s.entries[start:])
	return result, nil
}

func (s *Store) Total(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries), nil
}

func (s *Store) Close() error {
	return nil
}
