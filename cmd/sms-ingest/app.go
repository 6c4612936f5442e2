package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/arthmitra/sms-ingest/internal/config"
	"github.com/arthmitra/sms-ingest/internal/dedup"
	"github.com/arthmitra/sms-ingest/internal/extract"
	"github.com/arthmitra/sms-ingest/internal/scan"
	"github.com/arthmitra/sms-ingest/internal/scanstate"
	"github.com/arthmitra/sms-ingest/internal/smsbox"
	"github.com/arthmitra/sms-ingest/internal/txstore"
)

// app holds the wired collaborators a command needs. Close releases the
// backend clients in reverse construction order.
type app struct {
	source  smsbox.Source
	state   scanstate.Store
	store   txstore.Store
	scanner *scan.Scanner

	closers []func() error
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		_ = a.closers[i]()
	}
}

// buildApp wires the full scan pipeline from configuration. The scan state
// lives in GCS when a bucket is configured, otherwise in a local file; the
// transaction store falls back to memory when no BigQuery project is set so
// the pipeline can be exercised without cloud credentials.
func buildApp(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*app, error) {
	if cfg.User.ID == "" {
		return nil, fmt.Errorf("user.id is not configured")
	}

	a := &app{}
	a.source = smsbox.NewSQLiteInbox(smsbox.WithDBPath(cfg.SMS.DBPath))

	if cfg.GCS.Bucket != "" {
		gcsState, err := scanstate.NewGCSStore(ctx, cfg.GCS.Bucket, cfg.User.ID)
		if err != nil {
			return nil, err
		}
		a.state = gcsState
		a.closers = append(a.closers, gcsState.Close)
	} else {
		a.state = scanstate.NewFileStore(cfg.SMS.StatePath)
	}

	if cfg.BigQuery.Project != "" {
		bqStore, err := txstore.NewBigQueryStore(ctx, cfg.BigQuery.Project, cfg.BigQuery.Dataset)
		if err != nil {
			a.close()
			return nil, err
		}
		a.store = bqStore
		a.closers = append(a.closers, bqStore.Close)
	} else {
		log.Warn().Msg("No BigQuery project configured - imported transactions will not persist")
		a.store = txstore.NewMemoryStore()
	}

	extractor := extract.New(extract.NewGeminiClient(cfg.Gemini.Model), cfg.Credentials())
	detector := dedup.NewDetector(a.store)

	a.scanner = scan.NewScanner(a.source, extractor, detector, a.store, a.state, dedup.DateString, cfg.User.ID)
	return a, nil
}
