package scanstate

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/arthmitra/sms-ingest/internal/domain"
)

// FileStore keeps the scan state as one JSON document under the app data
// directory. Writes go through a temp file + rename so a crash mid-write
// never leaves a truncated state behind.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a file-backed store at path. The parent directory is
// created on first write.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) load() (domain.ScanState, error) {
	var state domain.ScanState

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		// First run: empty state.
		return state, nil
	}
	if err != nil {
		return state, &StorageError{Op: "read state file", Err: err}
	}

	if err := json.Unmarshal(data, &state); err != nil {
		return domain.ScanState{}, &StorageError{Op: "decode state file", Err: err}
	}
	return state, nil
}

func (s *FileStore) save(state domain.ScanState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return &StorageError{Op: "encode state", Err: err}
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return &StorageError{Op: "create state dir", Err: err}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return &StorageError{Op: "write state file", Err: err}
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return &StorageError{Op: "replace state file", Err: err}
	}
	return nil
}

// LastScanTimestamp implements Store.
func (s *FileStore) LastScanTimestamp(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		return "", err
	}
	return state.LastScanTimestamp, nil
}

// SetLastScanTimestamp implements Store.
func (s *FileStore) SetLastScanTimestamp(ctx context.Context, timestamp string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		return err
	}
	state.LastScanTimestamp = timestamp
	return s.save(state)
}

// WhitelistedProviders implements Store.
func (s *FileStore) WhitelistedProviders(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		return nil, err
	}
	return state.WhitelistedProviders, nil
}

// SetWhitelistedProviders implements Store.
func (s *FileStore) SetWhitelistedProviders(ctx context.Context, providers []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.load()
	if err != nil {
		return err
	}
	state.WhitelistedProviders = providers
	return s.save(state)
}
