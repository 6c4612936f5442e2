// Package txstore is the boundary to the hosted transaction store. The rest
// of the system only sees the Store interface; the snake_case persisted
// schema lives in the BigQuery adapter and nowhere else.
package txstore

import (
	"context"

	"github.com/arthmitra/sms-ingest/internal/domain"
)

// Store persists and queries transaction records.
type Store interface {
	// Create persists one record.
	Create(ctx context.Context, record *domain.TransactionRecord) error

	// FindMatching returns the user's non-deleted transactions with exactly
	// this amount and direction whose title contains titleSubstring
	// (case-insensitive). Used by duplicate detection.
	FindMatching(ctx context.Context, userID string, amount float64, direction domain.Direction, titleSubstring string) ([]domain.TransactionRecord, error)
}

// Lister enumerates a user's non-deleted transactions. Kept out of Store so
// the import path only depends on what it uses; the Notion export needs this.
type Lister interface {
	ListByUser(ctx context.Context, userID string) ([]domain.TransactionRecord, error)
}
