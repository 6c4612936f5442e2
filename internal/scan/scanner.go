// Package scan drives one import run: extraction, duplicate detection and
// persistence across a message batch, with scan-state bookkeeping around it.
package scan

import (
	"context"
	"fmt"
	"strconv"

	"github.com/arthmitra/sms-ingest/internal/domain"
	"github.com/arthmitra/sms-ingest/internal/logger"
	"github.com/arthmitra/sms-ingest/internal/scanstate"
	"github.com/arthmitra/sms-ingest/internal/smsbox"
	"github.com/arthmitra/sms-ingest/internal/txstore"
)

// CategorySMSImport tags every transaction created by a scan so the UI can
// tell imports apart from hand-entered transactions.
const CategorySMSImport = "Via SMS"

// Extractor is the extraction dependency of the scanner. A (nil, nil) return
// means "not a transaction" and is counted as skipped, never failed.
type Extractor interface {
	Extract(ctx context.Context, msg domain.RawMessage) (*domain.ExtractedTransaction, error)
}

// DuplicateChecker reports whether an extracted candidate is already stored.
type DuplicateChecker interface {
	IsDuplicate(ctx context.Context, userID string, amount float64, direction domain.Direction, provider string, messageTimestamp int64) bool
}

// DateFormatter turns a message timestamp into the store's date string.
type DateFormatter func(epochMillis int64) string

// Scanner is the batch importer.
type Scanner struct {
	source     smsbox.Source
	extractor  Extractor
	dedup      DuplicateChecker
	store      txstore.Store
	state      scanstate.Store
	formatDate DateFormatter
	userID     string
}

// NewScanner wires a Scanner from its collaborators.
func NewScanner(source smsbox.Source, extractor Extractor, dedup DuplicateChecker, store txstore.Store, state scanstate.Store, formatDate DateFormatter, userID string) *Scanner {
	return &Scanner{
		source:     source,
		extractor:  extractor,
		dedup:      dedup,
		store:      store,
		state:      state,
		formatDate: formatDate,
		userID:     userID,
	}
}

// buildRecord maps one extracted candidate into the store's flat schema.
func (s *Scanner) buildRecord(tx *domain.ExtractedTransaction, msg domain.RawMessage) *domain.TransactionRecord {
	record := &domain.TransactionRecord{
		UserID:   s.userID,
		Title:    tx.Description,
		Amount:   tx.Amount,
		Type:     tx.Direction,
		Category: CategorySMSImport,
		Date:     s.formatDate(msg.DateMillis()),
	}
	if tx.Direction == domain.DirectionIncome {
		record.Icon = "trending-up"
		record.IconColor = "#10B981"
		record.IconBg = "#D1FAE5"
	} else {
		record.Icon = "trending-down"
		record.IconColor = "#EF4444"
		record.IconBg = "#FEE2E2"
	}
	return record
}

// Scan processes messages strictly in order, one at a time. Sequential on
// purpose: the extraction API is rate-limited per key, and dedup must see the
// writes of earlier messages in the same batch to catch adjacent duplicates.
// No message's failure stops the rest of the batch.
func (s *Scanner) Scan(ctx context.Context, messages []domain.RawMessage) domain.ScanResult {
	log := logger.FromContext(ctx)

	result := domain.ScanResult{Errors: []string{}}

	log.Info().Int("count", len(messages)).Msg("Scanning messages for transactions")

	for _, msg := range messages {
		extracted, err := s.extractor.Extract(ctx, msg)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("Error processing message from %s: %v", msg.Address, err))
			continue
		}
		if extracted == nil {
			result.Skipped++
			continue
		}

		if s.dedup.IsDuplicate(ctx, s.userID, extracted.Amount, extracted.Direction, extracted.Provider, msg.DateMillis()) {
			result.Duplicates++
			log.Debug().
				Str("description", extracted.Description).
				Float64("amount", extracted.Amount).
				Msg("Duplicate transaction detected, skipping import")
			continue
		}

		record := s.buildRecord(extracted, msg)
		if err := s.store.Create(ctx, record); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("Failed to create transaction for message from %s: %v", msg.Address, err))
			continue
		}

		result.Success++
		log.Info().
			Str("description", extracted.Description).
			Float64("amount", extracted.Amount).
			Str("type", string(extracted.Direction)).
			Msg("Imported transaction")
	}

	log.Info().
		Int("success", result.Success).
		Int("failed", result.Failed).
		Int("skipped", result.Skipped).
		Int("duplicates", result.Duplicates).
		Msg("Scan completed")

	return result
}

// Run executes a full incremental scan: read state, list the inbox, narrow by
// allow-list and watermark, import, then advance the watermark to the newest
// message of the batch. Only platform and permission errors abort the run;
// scan-state trouble is logged and the run continues with stale state.
func (s *Scanner) Run(ctx context.Context) (domain.ScanResult, error) {
	log := logger.FromContext(ctx)

	whitelist, err := s.state.WhitelistedProviders(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Could not read provider allow-list, scanning all senders")
	}
	lastScan, err := s.state.LastScanTimestamp(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Could not read last-scan watermark, rescanning older messages")
	}

	messages, err := s.source.ListAll(ctx)
	if err != nil {
		return domain.ScanResult{}, err
	}

	batch := smsbox.FilterByProviders(messages, whitelist)
	batch = smsbox.FilterUnprocessed(batch, lastScan)

	result := s.Scan(ctx, batch)

	// Advance only after the whole batch finished, so a crash mid-batch
	// reprocesses rather than drops; dedup absorbs the overlap.
	s.advanceWatermark(ctx, lastScan, batch)

	return result, nil
}

func (s *Scanner) advanceWatermark(ctx context.Context, current string, batch []domain.RawMessage) {
	log := logger.FromContext(ctx)

	latest := smsbox.LatestTimestamp(batch)
	if latest == "" {
		return
	}
	if current != "" {
		cur, errCur := strconv.ParseInt(current, 10, 64)
		lat, errLat := strconv.ParseInt(latest, 10, 64)
		if errCur == nil && errLat == nil && lat <= cur {
			return
		}
	}

	if err := s.state.SetLastScanTimestamp(ctx, latest); err != nil {
		log.Warn().Err(err).Str("timestamp", latest).Msg("Could not advance last-scan watermark; next scan will reprocess")
	}
}
