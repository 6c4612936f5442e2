// Package dedup suppresses re-import of transactions that are already in the
// store, matching on amount, direction, provider substring and calendar date.
package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/arthmitra/sms-ingest/internal/domain"
	"github.com/arthmitra/sms-ingest/internal/logger"
	"github.com/arthmitra/sms-ingest/internal/txstore"
)

// DateString formats an epoch-millisecond timestamp as zero-padded
// DD/MM/YYYY in the local timezone. The store keeps dates in exactly this
// form, so dedup compares the formatted strings. Known limitation: messages
// near midnight in a different timezone than the one that recorded the
// original transaction can land on the neighboring day and slip past dedup.
func DateString(epochMillis int64) string {
	t := time.UnixMilli(epochMillis).Local()
	return fmt.Sprintf("%02d/%02d/%04d", t.Day(), int(t.Month()), t.Year())
}

// Detector checks incoming candidates against the transaction store.
type Detector struct {
	store txstore.Store
}

// NewDetector creates a Detector over the given store.
func NewDetector(store txstore.Store) *Detector {
	return &Detector{store: store}
}

// IsDuplicate reports whether the user already has a non-deleted transaction
// with this amount and direction, a title containing provider
// (case-insensitive), on the same calendar date as messageTimestamp.
//
// Any store error is treated as "not a duplicate" (fail-open): an occasional
// double import beats silently dropping a real transaction on a transient
// backend error. This trade-off is deliberate; keep it.
func (d *Detector) IsDuplicate(ctx context.Context, userID string, amount float64, direction domain.Direction, provider string, messageTimestamp int64) bool {
	log := logger.FromContext(ctx)

	dateString := DateString(messageTimestamp)

	candidates, err := d.store.FindMatching(ctx, userID, amount, direction, provider)
	if err != nil {
		log.Warn().
			Err(err).
			Str("provider", provider).
			Float64("amount", amount).
			Msg("Duplicate check failed, treating as not a duplicate")
		return false
	}

	for _, c := range candidates {
		if c.Date == dateString {
			return true
		}
	}
	return false
}
