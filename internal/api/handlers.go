package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/peoplesbranch/scorecard/internal/legislation"
	"github.com/peoplesbranch/scorecard/internal/polls"
)

// HealthChecker is a dependency the health endpoint pings
type HealthChecker interface {
	Health(ctx context.Context) error
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Services  map[string]string `json:"services,omitempty"`
}

// NewHealthHandler creates a health handler over named service checks.
// A failing check reports "degraded" with 503.
func NewHealthHandler(checks map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services := make(map[string]string, len(checks))
		status := "ok"

		for name, checker := range checks {
			if err := checker.Health(r.Context()); err != nil {
				slog.Error("Health check failed", "service", name, "error", err)
				services[name] = "unhealthy"
				status = "degraded"
				continue
			}
			services[name] = "healthy"
		}

		code := http.StatusOK
		if status != "ok" {
			code = http.StatusServiceUnavailable
		}
		respondJSON(w, code, HealthResponse{
			Status:    status,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Services:  services,
		})
	}
}

// ErrorResponse is the body of every non-2xx JSON response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError maps err to a status. Validation failures carry their
// message; everything else is logged and reported as unavailable data.
func respondError(w http.ResponseWriter, err error, logArgs ...any) {
	var ve *polls.ValidationError
	switch {
	case errors.As(err, &ve):
		respondJSON(w, validationStatus(ve), ErrorResponse{Error: ve.Error()})
	case errors.Is(err, legislation.ErrVoteNotFound):
		respondJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, context.Canceled):
		// client went away; nothing useful to write
	default:
		slog.Error("Request failed", append(logArgs, "error", err)...)
		respondJSON(w, http.StatusServiceUnavailable, ErrorResponse{Error: "data unavailable"})
	}
}

func validationStatus(ve *polls.ValidationError) int {
	switch {
	case errors.Is(ve.Reason, polls.ErrPollNotFound), errors.Is(ve.Reason, polls.ErrRepNotFound):
		return http.StatusNotFound
	case errors.Is(ve.Reason, polls.ErrPollInactive):
		return http.StatusConflict
	}
	return http.StatusBadRequest
}

// badRequest writes a 400 for malformed request input
func badRequest(w http.ResponseWriter, msg string) {
	respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: msg})
}

// parseJSON is a helper to decode JSON request bodies
func parseJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Debug("Failed to write response", "error", err)
	}
}
