package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/kalambet/promptpilot/internal/engine"
	"github.com/kalambet/promptpilot/internal/judge"
	"github.com/kalambet/promptpilot/internal/optimizer"
	"github.com/kalambet/promptpilot/internal/pipeline"
	"github.com/kalambet/promptpilot/internal/storage"
)

const maxRequestBodySize = 1 << 20 // 1MB

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("writing response", "error", err)
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "invalid request body: %v", err)
		return false
	}
	return true
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"message": fmt.Sprintf(format, args...),
			"type":    errType,
		},
	})
}

// writeServiceError maps domain errors to the HTTP error envelope.
func writeServiceError(w http.ResponseWriter, action string, err error) {
	var stepErr *pipeline.StepError
	switch {
	case errors.Is(err, storage.ErrNotFound):
		httpError(w, http.StatusNotFound, "not_found", "%s: not found", action)
	case pipeline.IsUserError(err):
		httpError(w, http.StatusUnprocessableEntity, "unprocessable", "%v", err)
	case errors.Is(err, pipeline.ErrInvalidStep),
		errors.Is(err, storage.ErrInvalidPrompt),
		errors.Is(err, optimizer.ErrEmptyDraft),
		errors.Is(err, judge.ErrEmptyPrompt):
		httpError(w, http.StatusBadRequest, "invalid_request_error", "%v", err)
	case errors.Is(err, engine.ErrUnavailable):
		httpError(w, http.StatusServiceUnavailable, "api_error", "%v", err)
	case errors.As(err, &stepErr), errors.Is(err, optimizer.ErrInvalidResponse):
		httpError(w, http.StatusBadGateway, "api_error", "%s: %v", action, err)
	default:
		slog.Error(action, "error", err)
		httpError(w, http.StatusInternalServerError, "api_error", "%s: %v", action, err)
	}
}

func parseIntParam(r *http.Request, key string, defaultVal, maxVal int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return defaultVal
	}
	if maxVal > 0 && v > maxVal {
		return maxVal
	}
	return v
}
