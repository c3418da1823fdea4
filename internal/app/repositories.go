package app

import (
	"context"

	"wellbeing-weather-service/internal/domain"
)

// QuestionRepository serves the active question catalog (from cache/backing store).
type QuestionRepository interface {
	Questions(ctx context.Context) ([]domain.Question, error)
}

// SurveyRepository stores immutable survey submissions.
type SurveyRepository interface {
	// Create fails with domain.ErrSurveyAlreadySubmitted when the user already has a survey that day.
	Create(ctx context.Context, survey domain.Survey) error
	ListByUser(ctx context.Context, userID string) ([]domain.Survey, error)
	ListByUsers(ctx context.Context, userIDs []string) (map[string][]domain.Survey, error)
}

// AlertRepository abstracts how alerts are stored (in-memory, Redis, etc).
type AlertRepository interface {
	Add(ctx context.Context, alerts ...domain.Alert) error
	List(ctx context.Context, recipientID string) ([]domain.Alert, error)
	// Update runs fn over the recipient's alerts as one serialized read-modify-write.
	// Changes fn makes to the slice are persisted only when fn returns nil.
	Update(ctx context.Context, recipientID string, fn func(alerts []domain.Alert) error) ([]domain.Alert, error)
}

// UserDirectory resolves users for scoping.
type UserDirectory interface {
	Get(ctx context.Context, userID string) (domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}
