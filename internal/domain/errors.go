package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyInput is returned when a score is requested over zero weighted responses.
	ErrEmptyInput = errors.New("no weighted responses to score")
	// ErrAlertNotFound is returned when no alert with the id belongs to the recipient.
	ErrAlertNotFound = errors.New("alert not found")
	// ErrNoUnreadAlerts is returned by bulk mark-read when nothing is unread.
	ErrNoUnreadAlerts = errors.New("no unread alerts")
	// ErrUserNotFound indicates the user directory has no such user.
	ErrUserNotFound = errors.New("user not found")
	// ErrSurveyAlreadySubmitted indicates the user already has a survey for that day.
	ErrSurveyAlreadySubmitted = errors.New("survey already submitted for this date")
	// ErrQuestionsUnavailable indicates the question catalog could not be loaded.
	ErrQuestionsUnavailable = errors.New("question catalog unavailable")
	// ErrForbidden indicates the viewer may not see the requested user's data.
	ErrForbidden = errors.New("not permitted for this viewer")
)

// ValidationError reports malformed input the core refuses to drop silently.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err wraps a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
