package smsbox

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"regexp"
	"runtime"

	_ "github.com/mattn/go-sqlite3"

	"github.com/arthmitra/sms-ingest/internal/domain"
)

// DefaultDBPath is where the Android telephony provider keeps its store.
const DefaultDBPath = "/data/data/com.android.providers.telephony/databases/mmssms.db"

// inboxType is the message_type value for received messages in the sms table.
const inboxType = 1

// SQLiteInbox reads the telephony database directly. The database is opened
// read-only per call; the provider owns the file and may rewrite it at any
// time.
type SQLiteInbox struct {
	dbPath string
	goos   string
}

// Option configures a SQLiteInbox.
type Option func(*SQLiteInbox)

// WithDBPath overrides the telephony database location.
func WithDBPath(path string) Option {
	return func(s *SQLiteInbox) { s.dbPath = path }
}

// withGOOS overrides the platform check, for tests.
func withGOOS(goos string) Option {
	return func(s *SQLiteInbox) { s.goos = goos }
}

// NewSQLiteInbox creates an inbox source over the telephony database.
func NewSQLiteInbox(opts ...Option) *SQLiteInbox {
	s := &SQLiteInbox{
		dbPath: DefaultDBPath,
		goos:   runtime.GOOS,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *SQLiteInbox) checkPlatform() error {
	if s.goos != "android" {
		return ErrPlatformUnsupported
	}
	return nil
}

// RequestPermission probes read access to the telephony database. On Android
// the OS permission dialog is owned by the host app; from here granted access
// simply means the file is readable.
func (s *SQLiteInbox) RequestPermission(ctx context.Context) (bool, error) {
	if err := s.checkPlatform(); err != nil {
		return false, err
	}
	f, err := os.Open(s.dbPath)
	if err != nil {
		return false, nil
	}
	_ = f.Close()
	return true, nil
}

// ListAll returns every inbox message, newest first.
func (s *SQLiteInbox) ListAll(ctx context.Context) ([]domain.RawMessage, error) {
	return s.list(ctx, nil)
}

// ListMatching returns inbox messages whose body matches bodyPattern.
func (s *SQLiteInbox) ListMatching(ctx context.Context, bodyPattern string) ([]domain.RawMessage, error) {
	re, err := regexp.Compile(bodyPattern)
	if err != nil {
		return nil, fmt.Errorf("smsbox: invalid body pattern %q: %w", bodyPattern, err)
	}
	return s.list(ctx, re)
}

func (s *SQLiteInbox) list(ctx context.Context, bodyRe *regexp.Regexp) ([]domain.RawMessage, error) {
	if err := s.checkPlatform(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(s.dbPath); err != nil {
		return nil, ErrPermissionDenied
	}

	db, err := sql.Open("sqlite3", "file:"+s.dbPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("smsbox: open telephony db: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `
		SELECT _id, thread_id,
		       COALESCE(address, ''), COALESCE(body, ''),
		       COALESCE(date, 0), COALESCE(date_sent, 0),
		       COALESCE(read, 0), COALESCE(status, -1),
		       COALESCE(type, 0), COALESCE(service_center, '')
		FROM sms
		WHERE type = ?
		ORDER BY date DESC
	`, inboxType)
	if err != nil {
		return nil, fmt.Errorf("smsbox: query inbox: %w", err)
	}
	defer rows.Close()

	var messages []domain.RawMessage
	for rows.Next() {
		var m domain.RawMessage
		if err := rows.Scan(
			&m.ID, &m.ThreadID, &m.Address, &m.Body,
			&m.Date, &m.DateSent, &m.Read, &m.Status, &m.Type, &m.ServiceCenter,
		); err != nil {
			return nil, fmt.Errorf("smsbox: scan row: %w", err)
		}
		if bodyRe != nil && !bodyRe.MatchString(m.Body) {
			continue
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("smsbox: iterate inbox: %w", err)
	}

	return messages, nil
}
