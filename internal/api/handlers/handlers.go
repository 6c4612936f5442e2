// Package handlers exposes the HTTP surface the mobile UI talks to: trigger
// a scan, poll its result, and manage the provider allow-list.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/arthmitra/sms-ingest/internal/api/middleware"
	"github.com/arthmitra/sms-ingest/internal/jobs"
	"github.com/arthmitra/sms-ingest/internal/scanstate"
	"github.com/arthmitra/sms-ingest/internal/smsbox"
)

// ScanHandler handles scan lifecycle endpoints.
type ScanHandler struct {
	publisher jobs.Publisher
	store     jobs.JobStore
	userID    string
	log       zerolog.Logger
}

// NewScanHandler creates a new scan handler.
func NewScanHandler(publisher jobs.Publisher, store jobs.JobStore, userID string, log zerolog.Logger) *ScanHandler {
	return &ScanHandler{
		publisher: publisher,
		store:     store,
		userID:    userID,
		log:       log,
	}
}

// StartScan handles POST /api/scan
func (h *ScanHandler) StartScan(w http.ResponseWriter, r *http.Request) {
	job := &jobs.ScanJob{UserID: h.userID}

	if err := h.publisher.PublishScan(r.Context(), job); err != nil {
		h.log.Error().Err(err).Msg("Failed to enqueue scan job")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to enqueue scan")
		return
	}

	middleware.WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.JobID,
		"status": string(job.Status),
	})
}

// GetScan handles GET /api/scan/{id}
func (h *ScanHandler) GetScan(w http.ResponseWriter, r *http.Request) {
	jobID := r.PathValue("id")

	job, err := h.store.GetJob(r.Context(), jobID)
	if err != nil {
		middleware.WriteError(w, http.StatusNotFound, "Scan job not found")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, job)
}

// ProvidersHandler lists the distinct senders in the inbox so the user can
// curate the allow-list.
type ProvidersHandler struct {
	source smsbox.Source
	log    zerolog.Logger
}

// NewProvidersHandler creates a new providers handler.
func NewProvidersHandler(source smsbox.Source, log zerolog.Logger) *ProvidersHandler {
	return &ProvidersHandler{source: source, log: log}
}

// List handles GET /api/providers
func (h *ProvidersHandler) List(w http.ResponseWriter, r *http.Request) {
	messages, err := h.source.ListAll(r.Context())
	if err != nil {
		h.writeSourceError(w, err)
		return
	}

	providers := smsbox.DistinctProviders(messages)
	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"providers": providers,
		"count":     len(providers),
	})
}

func (h *ProvidersHandler) writeSourceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, smsbox.ErrPlatformUnsupported):
		middleware.WriteError(w, http.StatusNotImplemented, "SMS access is only available on Android")
	case errors.Is(err, smsbox.ErrPermissionDenied):
		middleware.WriteError(w, http.StatusForbidden, "SMS read permission not granted")
	default:
		h.log.Error().Err(err).Msg("Failed to list inbox messages")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to read inbox")
	}
}

// StateHandler exposes the persisted scan state.
type StateHandler struct {
	state scanstate.Store
	log   zerolog.Logger
}

// NewStateHandler creates a new state handler.
func NewStateHandler(state scanstate.Store, log zerolog.Logger) *StateHandler {
	return &StateHandler{state: state, log: log}
}

// GetState handles GET /api/state
func (h *StateHandler) GetState(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	ts, err := h.state.LastScanTimestamp(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read scan state")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to read scan state")
		return
	}
	providers, err := h.state.WhitelistedProviders(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read scan state")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to read scan state")
		return
	}
	if providers == nil {
		providers = []string{}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"lastScanTimestamp":    ts,
		"whitelistedProviders": providers,
	})
}

// GetWhitelist handles GET /api/whitelist
func (h *StateHandler) GetWhitelist(w http.ResponseWriter, r *http.Request) {
	providers, err := h.state.WhitelistedProviders(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to read whitelist")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to read whitelist")
		return
	}
	if providers == nil {
		providers = []string{}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"providers": providers})
}

// PutWhitelist handles PUT /api/whitelist
func (h *StateHandler) PutWhitelist(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Providers []string `json:"providers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Providers == nil {
		req.Providers = []string{}
	}

	if err := h.state.SetWhitelistedProviders(r.Context(), req.Providers); err != nil {
		h.log.Error().Err(err).Msg("Failed to update whitelist")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to update whitelist")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{"providers": req.Providers})
}

// NewRouter wires all handlers into a mux with the standard middleware chain.
func NewRouter(scan *ScanHandler, providers *ProvidersHandler, state *StateHandler, log zerolog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/scan", scan.StartScan)
	mux.HandleFunc("GET /api/scan/{id}", scan.GetScan)
	mux.HandleFunc("GET /api/providers", providers.List)
	mux.HandleFunc("GET /api/state", state.GetState)
	mux.HandleFunc("GET /api/whitelist", state.GetWhitelist)
	mux.HandleFunc("PUT /api/whitelist", state.PutWhitelist)

	var handler http.Handler = mux
	handler = middleware.RequestID(handler)
	handler = middleware.CORS(handler)
	handler = middleware.Logger(log)(handler)
	handler = middleware.Recovery(log)(handler)

	return handler
}
