// Package scanstate persists the bookkeeping that survives between scans: the
// last-scan watermark and the user-curated provider allow-list.
package scanstate

import (
	"context"
	"fmt"
)

// Store is durable key-value storage scoped to the app installation. All
// operations are idempotent; write failures surface as *StorageError and must
// not abort a scan; the importer keeps going with stale state and logs it.
type Store interface {
	// LastScanTimestamp returns the epoch-millisecond watermark of the most
	// recently processed message, or "" when nothing has been scanned yet.
	LastScanTimestamp(ctx context.Context) (string, error)

	// SetLastScanTimestamp advances the watermark.
	SetLastScanTimestamp(ctx context.Context, timestamp string) error

	// WhitelistedProviders returns the allow-list, possibly empty.
	WhitelistedProviders(ctx context.Context) ([]string, error)

	// SetWhitelistedProviders replaces the allow-list.
	SetWhitelistedProviders(ctx context.Context, providers []string) error
}

// StorageError wraps any scan-state read/write failure so callers can treat
// it as soft.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("scanstate: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
