package smsbox

import (
	"sort"
	"strconv"

	"github.com/arthmitra/sms-ingest/internal/domain"
)

// FilterByProviders narrows messages to senders on the allow-list. An empty
// allow-list passes everything through: new users with no curated list still
// get scanning. This fail-open default is deliberate, do not tighten it.
func FilterByProviders(messages []domain.RawMessage, whitelist []string) []domain.RawMessage {
	if len(whitelist) == 0 {
		return messages
	}

	allowed := make(map[string]struct{}, len(whitelist))
	for _, p := range whitelist {
		allowed[p] = struct{}{}
	}

	var filtered []domain.RawMessage
	for _, m := range messages {
		if _, ok := allowed[m.Address]; ok {
			filtered = append(filtered, m)
		}
	}
	return filtered
}

// FilterUnprocessed drops messages at or before the last-scan watermark.
// A "" watermark means no previous scan, so everything is new.
func FilterUnprocessed(messages []domain.RawMessage, lastScanTimestamp string) []domain.RawMessage {
	if lastScanTimestamp == "" {
		return messages
	}

	lastScan, err := strconv.ParseInt(lastScanTimestamp, 10, 64)
	if err != nil {
		return messages
	}

	var filtered []domain.RawMessage
	for _, m := range messages {
		if m.DateMillis() > lastScan {
			filtered = append(filtered, m)
		}
	}
	return filtered
}

// DistinctProviders returns the unique sender addresses of a batch, sorted
// lexicographically ascending. The UI uses this to let the user build the
// allow-list.
func DistinctProviders(messages []domain.RawMessage) []string {
	seen := make(map[string]struct{})
	var providers []string
	for _, m := range messages {
		if m.Address == "" {
			continue
		}
		if _, ok := seen[m.Address]; ok {
			continue
		}
		seen[m.Address] = struct{}{}
		providers = append(providers, m.Address)
	}
	sort.Strings(providers)
	return providers
}

// LatestTimestamp returns the maximum message timestamp of a batch as an
// epoch-millisecond string, or "" for an empty batch.
func LatestTimestamp(messages []domain.RawMessage) string {
	var max int64 = -1
	for _, m := range messages {
		if ms := m.DateMillis(); ms > max {
			max = ms
		}
	}
	if max < 0 {
		return ""
	}
	return strconv.FormatInt(max, 10)
}
