// Package server exposes the assessment engine over HTTP.
//
// Routes:
//
//   - POST /align            — run a pronunciation assessment.
//   - GET  /assessments/{id} — fetch a stored assessment by id.
//   - GET  /assessments      — list recent assessments, newest first.
//
// Request and response bodies are JSON. Error responses are JSON objects with
// a single "error" field. Liveness, readiness and metrics routes are owned by
// [github.com/twilight39/IPA-Navigator/internal/health] and the metrics
// exporter; main registers them on the same mux.
package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/twilight39/IPA-Navigator/internal/assess"
	"github.com/twilight39/IPA-Navigator/pkg/provider/g2p"
)

// maxRequestBody caps POST /align bodies. Base64 inflates audio by a third,
// so this allows roughly 24 MB of raw audio, plenty for utterance-length
// recordings at 16 kHz.
const maxRequestBody = 32 << 20

// Assessor runs a pronunciation assessment. *[assess.Engine] is the real
// implementation.
type Assessor interface {
	Assess(ctx context.Context, req assess.Request) (*assess.Result, error)
}

// Store reads stored assessments. *[store.PostgresStore] is the real
// implementation. A nil Store disables the /assessments routes with 503.
type Store interface {
	Get(ctx context.Context, id string) (*assess.Result, error)
	List(ctx context.Context, limit int) ([]assess.Result, error)
}

// Handler serves the assessment HTTP API.
type Handler struct {
	engine        Assessor
	store         Store
	defaultAccent g2p.Locale
	log           *slog.Logger
}

// Option is a functional option for [New].
type Option func(*Handler)

// WithStore enables the /assessments read routes.
func WithStore(s Store) Option {
	return func(h *Handler) { h.store = s }
}

// WithDefaultAccent sets the accent used when a request omits one.
// Defaults to [g2p.LocaleUS].
func WithDefaultAccent(l g2p.Locale) Option {
	return func(h *Handler) {
		if l != "" {
			h.defaultAccent = l
		}
	}
}

// WithLogger sets the logger. Defaults to [slog.Default].
func WithLogger(log *slog.Logger) Option {
	return func(h *Handler) {
		if log != nil {
			h.log = log
		}
	}
}

// New creates a [Handler] around the given engine.
func New(engine Assessor, opts ...Option) *Handler {
	h := &Handler{
		engine:        engine,
		defaultAccent: g2p.LocaleUS,
		log:           slog.Default(),
	}
	for _, o := range opts {
		o(h)
	}
	return h
}

// Register adds the API routes to mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /align", h.Align)
	mux.HandleFunc("GET /assessments/{id}", h.GetAssessment)
	mux.HandleFunc("GET /assessments", h.ListAssessments)
}

// alignRequest is the POST /align request body.
type alignRequest struct {
	// AudioData is a base64-encoded audio file (WAV, 16 kHz mono PCM
	// recommended).
	AudioData string `json:"audio_data"`

	// Transcript is the expected text the learner read aloud.
	Transcript string `json:"transcript"`

	// Accent selects the reference pronunciation, "us" or "uk". Optional;
	// the server default applies when empty.
	Accent string `json:"accent,omitempty"`
}

// Align runs an assessment and returns the full scored result.
func (h *Handler) Align(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	var req alignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("malformed request body: %v", err))
		return
	}
	if req.AudioData == "" {
		writeError(w, http.StatusBadRequest, "audio_data is required")
		return
	}
	if req.Transcript == "" {
		writeError(w, http.StatusBadRequest, "transcript is required")
		return
	}

	audio, err := base64.StdEncoding.DecodeString(req.AudioData)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("audio_data is not valid base64: %v", err))
		return
	}

	accent := h.defaultAccent
	if req.Accent != "" {
		accent = g2p.Locale(req.Accent)
	}

	res, err := h.engine.Assess(r.Context(), assess.Request{
		Audio:      audio,
		Transcript: req.Transcript,
		Accent:     accent,
	})
	if err != nil {
		if errors.Is(err, assess.ErrInvalidAccent) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error("assessment failed", "error", err)
		writeError(w, http.StatusBadGateway, "assessment failed: a collaborator did not respond")
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// GetAssessment fetches a single stored assessment by id.
func (h *Handler) GetAssessment(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusServiceUnavailable, "assessment history is not configured")
		return
	}

	id := r.PathValue("id")
	res, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.log.Error("fetch assessment failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "fetch assessment failed")
		return
	}
	if res == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("assessment %q not found", id))
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// listResponse is the GET /assessments response body.
type listResponse struct {
	Assessments []assess.Result `json:"assessments"`
}

// ListAssessments returns recent assessments, newest first. The optional
// "limit" query parameter caps the page size.
func (h *Handler) ListAssessments(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		writeError(w, http.StatusServiceUnavailable, "assessment history is not configured")
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	results, err := h.store.List(r.Context(), limit)
	if err != nil {
		h.log.Error("list assessments failed", "error", err)
		writeError(w, http.StatusInternalServerError, "list assessments failed")
		return
	}
	if results == nil {
		results = []assess.Result{}
	}

	writeJSON(w, http.StatusOK, listResponse{Assessments: results})
}

// errorResponse is the JSON body for all error statuses.
type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeJSON encodes v as JSON and writes it with the given status code. On
// encoding failure it falls back to a plain-text 500 response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error":"encoding failure"}`, http.StatusInternalServerError)
	}
}
