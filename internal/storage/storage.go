// Package storage defines the audit log contract shared by the memory and sqlite backends.
package storage

import (
	"context"

	"github.com/tjfontaine/interview-gateway/internal/domain"
)

// AuditLog is an append-only, ordered sequence of interview log entries.
// Implementations must be safe for concurrent use.
type AuditLog interface {
	// Append adds an entry at the end of the log.
	Append(ctx context.Context, entry domain.LogEntry) error

	// Recent returns up to n of the newest entries, oldest first.
	Recent(ctx context.Context, n int) ([]domain.LogEntry, error)

	// Total returns how many entries have ever been appended.
	Total(ctx context.Context) (int, error)

	Close() error
}
