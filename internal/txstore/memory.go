package txstore

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/arthmitra/sms-ingest/internal/domain"
)

// MemoryStore is an in-memory Store for tests and local runs. Safe for
// concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	records []domain.TransactionRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Create implements Store.
func (s *MemoryStore) Create(ctx context.Context, record *domain.TransactionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	s.records = append(s.records, *record)
	return nil
}

// FindMatching implements Store.
func (s *MemoryStore) FindMatching(ctx context.Context, userID string, amount float64, direction domain.Direction, titleSubstring string) ([]domain.TransactionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(titleSubstring)

	var matches []domain.TransactionRecord
	for _, r := range s.records {
		if r.Deleted || r.UserID != userID || r.Amount != amount || r.Type != direction {
			continue
		}
		if !strings.Contains(strings.ToLower(r.Title), needle) {
			continue
		}
		matches = append(matches, r)
	}
	return matches, nil
}

// ListByUser implements Lister.
func (s *MemoryStore) ListByUser(ctx context.Context, userID string) ([]domain.TransactionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.TransactionRecord
	for _, r := range s.records {
		if r.Deleted || r.UserID != userID {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// All returns every stored record, for test assertions.
func (s *MemoryStore) All() []domain.TransactionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.TransactionRecord, len(s.records))
	copy(out, s.records)
	return out
}
