package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"wellbeing-weather-service/internal/domain"
)

type errorPayload struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("write response", "error", err)
	}
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case domain.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrAlertNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNoUnreadAlerts), errors.Is(err, domain.ErrSurveyAlreadySubmitted):
		return http.StatusConflict
	case errors.Is(err, domain.ErrEmptyInput):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrQuestionsUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		msg = "internal error"
	}
	writeJSON(w, status, errorPayload{Message: msg})
}
