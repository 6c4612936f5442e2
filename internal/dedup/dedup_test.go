package dedup

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arthmitra/sms-ingest/internal/domain"
	"github.com/arthmitra/sms-ingest/internal/txstore"
)

// failingStore always errors, to exercise the fail-open path.
type failingStore struct{}

func (failingStore) Create(ctx context.Context, record *domain.TransactionRecord) error {
	return errors.New("backend unavailable")
}

func (failingStore) FindMatching(ctx context.Context, userID string, amount float64, direction domain.Direction, titleSubstring string) ([]domain.TransactionRecord, error) {
	return nil, errors.New("backend unavailable")
}

// middayMillis returns an epoch for midday local time on the given date, so
// the formatted day is stable regardless of the test machine's timezone.
func middayMillis(year int, month time.Month, day int) int64 {
	return time.Date(year, month, day, 12, 0, 0, 0, time.Local).UnixMilli()
}

func TestDateString(t *testing.T) {
	got := DateString(middayMillis(2024, time.June, 5))
	if got != "05/06/2024" {
		t.Errorf("DateString = %q, want 05/06/2024", got)
	}
}

func TestIsDuplicate(t *testing.T) {
	store := txstore.NewMemoryStore()
	ctx := context.Background()

	stored := domain.TransactionRecord{
		UserID: "u1",
		Title:  "HDFC Bank",
		Amount: 500,
		Type:   domain.DirectionExpense,
		Date:   "05/06/2024",
	}
	if err := store.Create(ctx, &stored); err != nil {
		t.Fatal(err)
	}

	detector := NewDetector(store)
	june5 := middayMillis(2024, time.June, 5)

	tests := []struct {
		name      string
		amount    float64
		direction domain.Direction
		provider  string
		ts        int64
		want      bool
	}{
		{name: "same amount, direction, provider substring and date", amount: 500, direction: domain.DirectionExpense, provider: "HDFC", ts: june5, want: true},
		{name: "different amount does not match", amount: 501, direction: domain.DirectionExpense, provider: "HDFC", ts: june5, want: false},
		{name: "different direction does not match", amount: 500, direction: domain.DirectionIncome, provider: "HDFC", ts: june5, want: false},
		{name: "different day does not match", amount: 500, direction: domain.DirectionExpense, provider: "HDFC", ts: middayMillis(2024, time.June, 6), want: false},
		{name: "unrelated provider does not match", amount: 500, direction: domain.DirectionExpense, provider: "AXIS", ts: june5, want: false},
		{name: "provider match is case-insensitive", amount: 500, direction: domain.DirectionExpense, provider: "hdfc", ts: june5, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detector.IsDuplicate(ctx, "u1", tt.amount, tt.direction, tt.provider, tt.ts)
			if got != tt.want {
				t.Errorf("IsDuplicate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsDuplicate_FailOpenOnStoreError(t *testing.T) {
	detector := NewDetector(failingStore{})

	got := detector.IsDuplicate(context.Background(), "u1", 500, domain.DirectionExpense, "HDFC", middayMillis(2024, time.June, 5))
	if got {
		t.Error("IsDuplicate = true on store error, want false (fail-open)")
	}
}
