// Package smsbox reads the device SMS inbox. It is the only platform-gated
// part of the system: the concrete source works against the Android telephony
// database and refuses to run anywhere else.
package smsbox

import (
	"context"
	"errors"

	"github.com/arthmitra/sms-ingest/internal/domain"
)

var (
	// ErrPlatformUnsupported is returned when the inbox is read outside the
	// supported mobile OS. Fatal to a scan, not to the app.
	ErrPlatformUnsupported = errors.New("smsbox: SMS access is only available on Android")

	// ErrPermissionDenied is returned when inbox-read permission has not been
	// granted. Callers surface it once; there is no retry loop.
	ErrPermissionDenied = errors.New("smsbox: SMS read permission not granted")
)

// Source enumerates inbox messages. Both listing calls read only the inbox
// folder and have no side effects.
type Source interface {
	// ListAll returns every inbox message.
	ListAll(ctx context.Context) ([]domain.RawMessage, error)

	// ListMatching returns inbox messages whose body matches the given
	// regular expression.
	ListMatching(ctx context.Context, bodyPattern string) ([]domain.RawMessage, error)

	// RequestPermission asks for inbox-read access. It reports whether access
	// was granted and is never retried automatically.
	RequestPermission(ctx context.Context) (bool, error)
}

// TransactionBodyPattern is the prefilter used before handing messages to the
// extractor, mirroring the keywords banks actually use.
const TransactionBodyPattern = `(.*)transaction(.*)|(.*)credited(.*)|(.*)debited(.*)|(.*)payment(.*)`
