package scanstate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"cloud.google.com/go/storage"

	"github.com/arthmitra/sms-ingest/internal/domain"
)

// GCSStore mirrors the scan state into one GCS object per user so a
// reinstalled or second device resumes from the same watermark. It assumes
// Application Default Credentials are configured.
type GCSStore struct {
	client *storage.Client
	bucket string
	object string
	mu     sync.Mutex
}

// NewGCSStore creates a GCS-backed store under
// gs://<bucket>/scan-state/<userID>.json.
func NewGCSStore(ctx context.Context, bucket, userID string) (*GCSStore, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("scanstate: create storage client: %w", err)
	}
	return &GCSStore{
		client: client,
		bucket: bucket,
		object: fmt.Sprintf("scan-state/%s.json", userID),
	}, nil
}

// Close releases the underlying storage client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}

func (s *GCSStore) load(ctx context.Context) (domain.ScanState, error) {
	var state domain.ScanState

	r, err := s.client.Bucket(s.bucket).Object(s.object).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		// First run for this user.
		return state, nil
	}
	if err != nil {
		return state, &StorageError{Op: "read state object", Err: err}
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return state, &StorageError{Op: "read state object", Err: err}
	}
	if err := json.Unmarshal(data, &state); err != nil {
		return domain.ScanState{}, &StorageError{Op: "decode state object", Err: err}
	}
	return state, nil
}

func (s *GCSStore) save(ctx context.Context, state domain.ScanState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return &StorageError{Op: "encode state", Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(s.object).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return &StorageError{Op: "write state object", Err: err}
	}
	if err := w.Close(); err != nil {
		return &StorageError{Op: "finalize state object", Err: err}
	}
	return nil
}

// LastScanTimestamp implements Store.
func (s *GCSStore) LastScanTimestamp(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load(ctx)
	if err != nil {
		return "", err
	}
	return state.LastScanTimestamp, nil
}

// SetLastScanTimestamp implements Store.
func (s *GCSStore) SetLastScanTimestamp(ctx context.Context, timestamp string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load(ctx)
	if err != nil {
		return err
	}
	state.LastScanTimestamp = timestamp
	return s.save(ctx, state)
}

// WhitelistedProviders implements Store.
func (s *GCSStore) WhitelistedProviders(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return state.WhitelistedProviders, nil
}

// SetWhitelistedProviders implements Store.
func (s *GCSStore) SetWhitelistedProviders(ctx context.Context, providers []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load(ctx)
	if err != nil {
		return err
	}
	state.WhitelistedProviders = providers
	return s.save(ctx, state)
}
