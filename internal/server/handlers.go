package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"github.com/ppiankov/claimlens/internal/model"
	"github.com/ppiankov/claimlens/internal/pipeline"
	"github.com/ppiankov/claimlens/internal/validate"
)

// Processor produces a report for text posted to the API.
// *pipeline.Pipeline implements it.
type Processor interface {
	ProcessText(ctx context.Context, ref, text string) (*model.Report, error)
	ModelEnabled() bool
}

// ExtractRequest is the JSON body of POST /v1/extract.
type ExtractRequest struct {
	Text   *string `json:"text"`
	Source string  `json:"source,omitempty"`
}

// Handler serves the claim extraction API.
type Handler struct {
	processor Processor
	validator *validate.Validator
	logger    *slog.Logger
}

// NewHandler creates a new handler
func NewHandler(processor Processor, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		processor: processor,
		validator: validate.NewValidator(),
		logger:    logger,
	}
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	Success(w, http.StatusOK, map[string]any{
		"status": "ok",
		"model":  h.processor.ModelEnabled(),
	})
}

// Extract accepts either a JSON ExtractRequest or a text/plain body.
func (h *Handler) Extract(w http.ResponseWriter, r *http.Request) {
	var req ExtractRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "text/plain":
		body, err := io.ReadAll(r.Body)
		if err != nil {
			h.bodyError(w, r, err)
			return
		}
		text := string(body)
		req.Text = &text
		req.Source = r.URL.Query().Get("source")
	default:
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.bodyError(w, r, err)
			return
		}
	}

	if req.Source == "" {
		req.Source = "http:" + GetRequestID(r.Context())
	}
	if req.Text == nil {
		Error(w, r, http.StatusBadRequest, pipeline.ErrNoInput.Error())
		return
	}

	report, err := h.processor.ProcessText(r.Context(), req.Source, *req.Text)
	if err != nil {
		h.logger.Error("http.extract_failed", "request_id", GetRequestID(r.Context()), "error", err)
		status := http.StatusInternalServerError
		if errors.Is(err, pipeline.ErrNoInput) {
			status = http.StatusBadRequest
		}
		Error(w, r, status, err.Error())
		return
	}

	Success(w, http.StatusOK, report)
}

// Validate scores a ClaimRecord posted as JSON.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	var rec model.ClaimRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		h.bodyError(w, r, err)
		return
	}

	Success(w, http.StatusOK, h.validator.Validate(rec))
}

func (h *Handler) bodyError(w http.ResponseWriter, r *http.Request, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		Error(w, r, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	Error(w, r, http.StatusBadRequest, "invalid request body: "+err.Error())
}
