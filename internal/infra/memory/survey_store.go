package memory

import (
	"context"
	"sync"

	"wellbeing-weather-service/internal/domain"
	"wellbeing-weather-service/internal/scoring"
)

// SurveyStore is an in-memory implementation of app.SurveyRepository.
type SurveyStore struct {
	mu     sync.RWMutex
	byUser map[string][]domain.Survey
}

func NewSurveyStore() *SurveyStore {
	return &SurveyStore{byUser: make(map[string][]domain.Survey)}
}

func (s *SurveyStore) Create(_ context.Context, survey domain.Survey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	day := scoring.DateOf(survey.SurveyDate)
	for _, existing := range s.byUser[survey.UserID] {
		if scoring.DateOf(existing.SurveyDate).Equal(day) {
			return domain.ErrSurveyAlreadySubmitted
		}
	}
	survey.Responses = append([]domain.QuestionResponse(nil), survey.Responses...)
	s.byUser[survey.UserID] = append(s.byUser[survey.UserID], survey)
	return nil
}

func (s *SurveyStore) ListByUser(_ context.Context, userID string) ([]domain.Survey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Survey(nil), s.byUser[userID]...), nil
}

func (s *SurveyStore) ListByUsers(_ context.Context, userIDs []string) (map[string][]domain.Survey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]domain.Survey, len(userIDs))
	for _, id := range userIDs {
		if surveys := s.byUser[id]; len(surveys) > 0 {
			out[id] = append([]domain.Survey(nil), surveys...)
		}
	}
	return out, nil
}
