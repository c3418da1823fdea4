package memory

import (
	"context"
	"sync"

	"wellbeing-weather-service/internal/alerts"
	"wellbeing-weather-service/internal/domain"
)

// AlertStore is an in-memory implementation of app.AlertRepository.
// A single mutex serializes read-state updates across recipients.
type AlertStore struct {
	mu          sync.RWMutex
	byRecipient map[string][]domain.Alert
}

func NewAlertStore() *AlertStore {
	return &AlertStore{byRecipient: make(map[string][]domain.Alert)}
}

// Add stores the batch all-or-nothing; an id already held by the recipient is a ValidationError.
func (s *AlertStore) Add(_ context.Context, batch ...domain.Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make(map[string][]domain.Alert)
	for recipient, group := range groupByRecipient(batch) {
		merged, err := alerts.AppendUnique(s.byRecipient[recipient], group)
		if err != nil {
			return err
		}
		next[recipient] = merged
	}
	for recipient, list := range next {
		s.byRecipient[recipient] = list
	}
	return nil
}

func groupByRecipient(batch []domain.Alert) map[string][]domain.Alert {
	out := make(map[string][]domain.Alert)
	for _, a := range batch {
		out[a.UserID] = append(out[a.UserID], a)
	}
	return out
}

func (s *AlertStore) List(_ context.Context, recipientID string) ([]domain.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Alert(nil), s.byRecipient[recipientID]...), nil
}

func (s *AlertStore) Update(_ context.Context, recipientID string, fn func(alerts []domain.Alert) error) ([]domain.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	working := append([]domain.Alert(nil), s.byRecipient[recipientID]...)
	if err := fn(working); err != nil {
		return nil, err
	}
	s.byRecipient[recipientID] = working
	return append([]domain.Alert(nil), working...), nil
}
