// Package extract turns free-text SMS bodies into typed transaction
// candidates using a generative model with a constrained-output prompt.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/arthmitra/sms-ingest/internal/domain"
	"github.com/arthmitra/sms-ingest/internal/logger"
)

// Credentials carries the API key slots for the model backend. The value is
// immutable; failover picks the key per call instead of swapping a shared
// current-key variable.
type Credentials struct {
	Primary string
	Backup  string
}

// HasBackup reports whether a backup key is configured.
func (c Credentials) HasBackup() bool {
	return c.Backup != ""
}

// ModelClient sends one prompt to the text-generation backend with the given
// API key and returns the raw response text.
type ModelClient interface {
	GenerateText(ctx context.Context, apiKey, prompt string) (string, error)
}

// ExtractionError is a soft, per-message failure: malformed model output or
// network failure after both credentials are exhausted. It is counted against
// the single message and never aborts the batch.
type ExtractionError struct {
	MessageID string
	Err       error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract: message %s: %v", e.MessageID, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// modelResponse is the JSON shape the prompt demands from the model.
type modelResponse struct {
	IsTransaction bool    `json:"isTransaction"`
	Amount        float64 `json:"amount"`
	Type          string  `json:"type"`
	Description   string  `json:"description"`
	Provider      string  `json:"provider"`
}

// Extractor classifies messages via the model backend.
type Extractor struct {
	client ModelClient
	creds  Credentials
}

// New creates an Extractor over the given model client and credentials.
func New(client ModelClient, creds Credentials) *Extractor {
	return &Extractor{client: client, creds: creds}
}

// Extract sends one message to the model. It returns (nil, nil) when the
// model says the message is not a transaction (a skip, not a failure), and a
// *ExtractionError when the message could not be processed at all.
func (e *Extractor) Extract(ctx context.Context, msg domain.RawMessage) (*domain.ExtractedTransaction, error) {
	log := logger.FromContext(ctx)

	if e.creds.Primary == "" {
		return nil, &ExtractionError{MessageID: msg.ID, Err: errors.New("no API key configured")}
	}

	prompt := buildPrompt(msg)

	raw, err := e.client.GenerateText(ctx, e.creds.Primary, prompt)
	if err != nil && shouldFailover(err) && e.creds.HasBackup() {
		log.Warn().
			Str("message_id", msg.ID).
			Err(err).
			Msg("Primary API key failed, retrying once with backup")
		raw, err = e.client.GenerateText(ctx, e.creds.Backup, prompt)
	}
	if err != nil {
		return nil, &ExtractionError{MessageID: msg.ID, Err: err}
	}

	var parsed modelResponse
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &parsed); err != nil {
		log.Error().
			Str("message_id", msg.ID).
			Str("raw_response", raw).
			Err(err).
			Msg("Model returned unparseable output")
		return nil, &ExtractionError{MessageID: msg.ID, Err: fmt.Errorf("parse model output: %w", err)}
	}

	if !parsed.IsTransaction {
		return nil, nil
	}

	var direction domain.Direction
	switch parsed.Type {
	case "credit":
		direction = domain.DirectionIncome
	case "debit":
		direction = domain.DirectionExpense
	default:
		// Unrecognized type: treat like a non-transaction rather than guess.
		log.Debug().
			Str("message_id", msg.ID).
			Str("type", parsed.Type).
			Msg("Model returned unrecognized transaction type")
		return nil, nil
	}

	return &domain.ExtractedTransaction{
		Amount:      parsed.Amount,
		Direction:   direction,
		Description: parsed.Description,
		Provider:    parsed.Provider,
	}, nil
}

// shouldFailover reports whether the error is a rate-limit or authorization
// failure worth one retry on the backup key.
func shouldFailover(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == 429 || apiErr.Code == 403
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return apiErrPtr.Code == 429 || apiErrPtr.Code == 403
	}
	return false
}
