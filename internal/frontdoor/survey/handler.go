// Package survey is the HTTP frontdoor the survey front-end talks to. It
// decodes interview turns, delegates to the interview service and writes
// JSON envelopes.
package survey

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tjfontaine/interview-gateway/internal/domain"
	"github.com/tjfontaine/interview-gateway/internal/server"
)

// maxBodyBytes bounds POST /api/interview bodies.
const maxBodyBytes = 1 << 20

// Service is the interview behavior the frontdoor exposes.
type Service interface {
	Handle(ctx context.Context, req *domain.InterviewRequest) (*domain.InterviewResult, error)
	Logs(ctx context.Context) (*domain.LogsResult, error)
	Health() domain.HealthStatus
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Register mounts the interview routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.HandleHealth)
	r.Post("/api/interview", h.HandleInterview)
	r.Get("/api/logs", h.HandleLogs)
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	server.WriteJSON(w, http.StatusOK, h.service.Health())
}

func (h *Handler) HandleInterview(w http.ResponseWriter, r *http.Request) {
	req, apiErr := decodeInterviewRequest(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if apiErr != nil {
		h.fail(w, r, apiErr)
		return
	}

	result, err := h.service.Handle(r.Context(), req)
	// Handle fills in the default agent type
	server.AddLogField(r.Context(), "agent_type", string(req.AgentType))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	server.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) HandleLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.service.Logs(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	server.WriteJSON(w, http.StatusOK, logs)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	server.AddError(r.Context(), err)

	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) {
		apiErr = domain.ErrUnknown(err)
	}
	server.WriteAPIError(w, apiErr)
}

// decodeInterviewRequest treats an empty body, invalid JSON, null and {} as
// "no data"; any other non-object or a field of the wrong type is an invalid body.
func decodeInterviewRequest(body io.Reader) (*domain.InterviewRequest, *domain.APIError) {
	raw, err := io.ReadAll(body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, domain.ErrBadRequest(domain.MessageInvalidBody).
				WithDetails(err.Error()).
				WithStatusCode(http.StatusRequestEntityTooLarge)
		}
		return nil, domain.ErrNoData()
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || !json.Valid(raw) {
		return nil, domain.ErrNoData()
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		if isEmptyJSONValue(raw) {
			return nil, domain.ErrNoData()
		}
		return nil, domain.ErrBadRequest(domain.MessageInvalidBody).WithDetails("request body must be a JSON object")
	}
	if len(fields) == 0 {
		return nil, domain.ErrNoData()
	}

	var req domain.InterviewRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, domain.ErrBadRequest(domain.MessageInvalidBody).WithDetails(err.Error())
	}

	return &req, nil
}

// isEmptyJSONValue mirrors the falsy JSON values the survey may send: [], "", 0, false.
func isEmptyJSONValue(raw []byte) bool {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch t := v.(type) {
	case []any:
		return len(t) == 0
	case string:
		return t == ""
	case float64:
		return t == 0
	case bool:
		return !t
	}
	return false
}
