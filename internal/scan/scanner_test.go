package scan

import (
	"context"
	"errors"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/arthmitra/sms-ingest/internal/dedup"
	"github.com/arthmitra/sms-ingest/internal/domain"
	"github.com/arthmitra/sms-ingest/internal/scanstate"
	"github.com/arthmitra/sms-ingest/internal/txstore"
)

// stubExtractor emulates the model with deterministic keyword rules: bodies
// mentioning credited/debited become transactions, everything else is a skip.
// IDs listed in failIDs produce a hard extraction failure.
type stubExtractor struct {
	failIDs map[string]bool
}

var amountRe = regexp.MustCompile(`Rs\.?(\d+)`)

func (e *stubExtractor) Extract(ctx context.Context, msg domain.RawMessage) (*domain.ExtractedTransaction, error) {
	if e.failIDs[msg.ID] {
		return nil, errors.New("model unreachable")
	}

	amount := 0.0
	if m := amountRe.FindStringSubmatch(msg.Body); m != nil {
		n, _ := strconv.Atoi(m[1])
		amount = float64(n)
	}

	switch {
	case strings.Contains(msg.Body, "credited"):
		return &domain.ExtractedTransaction{
			Amount:      amount,
			Direction:   domain.DirectionIncome,
			Description: "Received from " + msg.Address,
			Provider:    msg.Address,
		}, nil
	case strings.Contains(msg.Body, "debited"):
		return &domain.ExtractedTransaction{
			Amount:      amount,
			Direction:   domain.DirectionExpense,
			Description: "Payment to " + msg.Address,
			Provider:    msg.Address,
		}, nil
	default:
		return nil, nil
	}
}

// stubSource serves a fixed batch.
type stubSource struct {
	messages []domain.RawMessage
	err      error
}

func (s *stubSource) ListAll(ctx context.Context) ([]domain.RawMessage, error) {
	return s.messages, s.err
}

func (s *stubSource) ListMatching(ctx context.Context, pattern string) ([]domain.RawMessage, error) {
	return s.messages, s.err
}

func (s *stubSource) RequestPermission(ctx context.Context) (bool, error) {
	return true, nil
}

// flakyStore fails Create for records whose title contains the marker.
type flakyStore struct {
	*txstore.MemoryStore
	failTitle string
}

func (s *flakyStore) Create(ctx context.Context, record *domain.TransactionRecord) error {
	if s.failTitle != "" && strings.Contains(record.Title, s.failTitle) {
		return errors.New("insert rejected")
	}
	return s.MemoryStore.Create(ctx, record)
}

// brokenState errors on every operation.
type brokenState struct{}

func (brokenState) LastScanTimestamp(ctx context.Context) (string, error) {
	return "", &scanstate.StorageError{Op: "read", Err: errors.New("disk gone")}
}
func (brokenState) SetLastScanTimestamp(ctx context.Context, ts string) error {
	return &scanstate.StorageError{Op: "write", Err: errors.New("disk gone")}
}
func (brokenState) WhitelistedProviders(ctx context.Context) ([]string, error) {
	return nil, &scanstate.StorageError{Op: "read", Err: errors.New("disk gone")}
}
func (brokenState) SetWhitelistedProviders(ctx context.Context, providers []string) error {
	return &scanstate.StorageError{Op: "write", Err: errors.New("disk gone")}
}

func newTestScanner(t *testing.T, source *stubSource, store txstore.Store, state scanstate.Store, failIDs map[string]bool) *Scanner {
	t.Helper()
	return NewScanner(
		source,
		&stubExtractor{failIDs: failIDs},
		dedup.NewDetector(store),
		store,
		state,
		dedup.DateString,
		"user-1",
	)
}

func fileState(t *testing.T) scanstate.Store {
	t.Helper()
	return scanstate.NewFileStore(filepath.Join(t.TempDir(), "state.json"))
}

func inboxMessages() []domain.RawMessage {
	return []domain.RawMessage{
		{ID: "1", Address: "HDFCBK", Body: "Rs.500 credited to your account by John", Date: "1717570800000"},
		{ID: "2", Address: "VK-OTPSMS", Body: "Your OTP is 4821", Date: "1717570900000"},
		{ID: "3", Address: "VM-SWIGGY", Body: "Rs.200 debited for Swiggy", Date: "1717571000000"},
	}
}

func TestScan_EndToEnd(t *testing.T) {
	store := txstore.NewMemoryStore()
	scanner := newTestScanner(t, &stubSource{}, store, fileState(t), nil)

	result := scanner.Scan(context.Background(), inboxMessages())

	want := domain.ScanResult{Success: 2, Failed: 0, Skipped: 1, Duplicates: 0, Errors: []string{}}
	if result.Success != want.Success || result.Failed != want.Failed ||
		result.Skipped != want.Skipped || result.Duplicates != want.Duplicates || len(result.Errors) != 0 {
		t.Errorf("Scan = %+v, want %+v", result, want)
	}

	records := store.All()
	if len(records) != 2 {
		t.Fatalf("stored %d records, want 2", len(records))
	}
	for _, r := range records {
		if r.Category != CategorySMSImport {
			t.Errorf("record category = %q, want %q", r.Category, CategorySMSImport)
		}
		if r.UserID != "user-1" {
			t.Errorf("record user = %q, want user-1", r.UserID)
		}
	}
}

func TestScan_IconsFollowDirection(t *testing.T) {
	store := txstore.NewMemoryStore()
	scanner := newTestScanner(t, &stubSource{}, store, fileState(t), nil)

	scanner.Scan(context.Background(), inboxMessages())

	for _, r := range store.All() {
		switch r.Type {
		case domain.DirectionIncome:
			if r.Icon != "trending-up" || r.IconColor != "#10B981" || r.IconBg != "#D1FAE5" {
				t.Errorf("income icons = %q/%q/%q", r.Icon, r.IconColor, r.IconBg)
			}
		case domain.DirectionExpense:
			if r.Icon != "trending-down" || r.IconColor != "#EF4444" || r.IconBg != "#FEE2E2" {
				t.Errorf("expense icons = %q/%q/%q", r.Icon, r.IconColor, r.IconBg)
			}
		}
	}
}

func TestScan_SecondRunCountsDuplicates(t *testing.T) {
	store := txstore.NewMemoryStore()
	scanner := newTestScanner(t, &stubSource{}, store, fileState(t), nil)
	ctx := context.Background()

	first := scanner.Scan(ctx, inboxMessages())
	if first.Success != 2 {
		t.Fatalf("first run success = %d, want 2", first.Success)
	}

	second := scanner.Scan(ctx, inboxMessages())
	if second.Success != 0 || second.Duplicates != 2 || second.Skipped != 1 {
		t.Errorf("second run = %+v, want 0 success / 2 duplicates / 1 skipped", second)
	}
	if got := len(store.All()); got != 2 {
		t.Errorf("store holds %d records after two runs, want 2", got)
	}
}

func TestScan_IntraBatchDuplicate(t *testing.T) {
	// Two adjacent messages describing the same movement: the second must see
	// the first one's write.
	messages := []domain.RawMessage{
		{ID: "1", Address: "HDFCBK", Body: "Rs.500 credited to your account by John", Date: "1717570800000"},
		{ID: "2", Address: "HDFCBK", Body: "Rs.500 credited to your account by John", Date: "1717570801000"},
	}

	store := txstore.NewMemoryStore()
	scanner := newTestScanner(t, &stubSource{}, store, fileState(t), nil)

	result := scanner.Scan(context.Background(), messages)
	if result.Success != 1 || result.Duplicates != 1 {
		t.Errorf("result = %+v, want 1 success / 1 duplicate", result)
	}
}

func TestScan_BatchResilience(t *testing.T) {
	messages := []domain.RawMessage{
		{ID: "1", Address: "A", Body: "Rs.100 debited for shop-one", Date: "1000"},
		{ID: "2", Address: "B", Body: "Rs.200 debited for shop-two", Date: "2000"},
		{ID: "3", Address: "C", Body: "Rs.300 debited for POISON", Date: "3000"},
		{ID: "4", Address: "D", Body: "Rs.400 debited for shop-four", Date: "4000"},
		{ID: "5", Address: "E", Body: "Rs.500 debited for shop-five", Date: "5000"},
	}

	store := &flakyStore{MemoryStore: txstore.NewMemoryStore(), failTitle: "POISON"}
	scanner := NewScanner(
		&stubSource{},
		&stubExtractor{},
		dedup.NewDetector(store.MemoryStore),
		store,
		fileState(t),
		dedup.DateString,
		"user-1",
	)

	result := scanner.Scan(context.Background(), messages)

	if result.Failed != 1 {
		t.Errorf("failed = %d, want 1", result.Failed)
	}
	if len(result.Errors) != 1 {
		t.Errorf("errors = %v, want exactly one entry", result.Errors)
	}
	if result.Success != 4 {
		t.Errorf("success = %d, want 4 (messages after the failure still processed)", result.Success)
	}
}

func TestScan_ExtractionFailureIsFailedNotSkipped(t *testing.T) {
	messages := []domain.RawMessage{
		{ID: "1", Address: "HDFCBK", Body: "Rs.500 credited to your account", Date: "1000"},
	}

	store := txstore.NewMemoryStore()
	scanner := newTestScanner(t, &stubSource{}, store, fileState(t), map[string]bool{"1": true})

	result := scanner.Scan(context.Background(), messages)
	if result.Failed != 1 || result.Skipped != 0 || result.Success != 0 {
		t.Errorf("result = %+v, want exactly one failure", result)
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "HDFCBK") {
		t.Errorf("errors = %v, want one entry naming the sender", result.Errors)
	}
}

func TestRun_AdvancesWatermark(t *testing.T) {
	state := fileState(t)
	store := txstore.NewMemoryStore()
	source := &stubSource{messages: inboxMessages()}
	scanner := newTestScanner(t, source, store, state, nil)
	ctx := context.Background()

	if _, err := scanner.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	ts, err := state.LastScanTimestamp(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if ts != "1717571000000" {
		t.Errorf("watermark = %q, want 1717571000000", ts)
	}
}

func TestRun_WatermarkIsMonotonic(t *testing.T) {
	state := fileState(t)
	ctx := context.Background()
	if err := state.SetLastScanTimestamp(ctx, "9999999999999"); err != nil {
		t.Fatal(err)
	}

	store := txstore.NewMemoryStore()
	source := &stubSource{messages: inboxMessages()}
	scanner := newTestScanner(t, source, store, state, nil)

	if _, err := scanner.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	ts, err := state.LastScanTimestamp(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if ts != "9999999999999" {
		t.Errorf("watermark regressed to %q", ts)
	}
}

func TestRun_SkipsAlreadyProcessedMessages(t *testing.T) {
	state := fileState(t)
	ctx := context.Background()
	// Watermark sits past the first two messages.
	if err := state.SetLastScanTimestamp(ctx, "1717570900000"); err != nil {
		t.Fatal(err)
	}

	store := txstore.NewMemoryStore()
	source := &stubSource{messages: inboxMessages()}
	scanner := newTestScanner(t, source, store, state, nil)

	result, err := scanner.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Total() != 1 {
		t.Errorf("processed %d messages, want 1 (only the one past the watermark)", result.Total())
	}
}

func TestRun_RespectsAllowList(t *testing.T) {
	state := fileState(t)
	ctx := context.Background()
	if err := state.SetWhitelistedProviders(ctx, []string{"HDFCBK"}); err != nil {
		t.Fatal(err)
	}

	store := txstore.NewMemoryStore()
	source := &stubSource{messages: inboxMessages()}
	scanner := newTestScanner(t, source, store, state, nil)

	result, err := scanner.Run(ctx)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Total() != 1 || result.Success != 1 {
		t.Errorf("result = %+v, want exactly the HDFCBK message imported", result)
	}
}

func TestRun_PropagatesSourceErrors(t *testing.T) {
	source := &stubSource{err: errors.New("platform unsupported")}
	scanner := newTestScanner(t, source, txstore.NewMemoryStore(), fileState(t), nil)

	if _, err := scanner.Run(context.Background()); err == nil {
		t.Error("Run returned nil error for failing source")
	}
}

func TestRun_ContinuesOnBrokenScanState(t *testing.T) {
	store := txstore.NewMemoryStore()
	source := &stubSource{messages: inboxMessages()}
	scanner := newTestScanner(t, source, store, brokenState{}, nil)

	result, err := scanner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run aborted on scan-state failure: %v", err)
	}
	if result.Success != 2 {
		t.Errorf("success = %d, want 2 despite broken scan state", result.Success)
	}
}
