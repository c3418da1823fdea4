package app

import (
	"context"
	"errors"
	"time"

	"wellbeing-weather-service/internal/alerts"
	"wellbeing-weather-service/internal/domain"
)

// AlertListing is one page of a recipient's triaged alerts plus badge counts.
type AlertListing struct {
	alerts.Page
	Unread int                          `json:"unread"`
	Counts map[int]alerts.CategoryCount `json:"counts"`
}

// AlertService applies triage over stored alerts and keeps live feeds current.
type AlertService struct {
	alerts AlertRepository
	hub    *feedHub
	now    func() time.Time
}

func NewAlertService(repo AlertRepository) *AlertService {
	return &AlertService{alerts: repo, hub: newFeedHub(), now: time.Now}
}

// NewAlertServiceWithClock is test-only for deterministic timestamps.
func NewAlertServiceWithClock(repo AlertRepository, now func() time.Time) *AlertService {
	s := NewAlertService(repo)
	s.now = now
	return s
}

// List returns the recipient's alerts filtered, newest first, and paginated.
// Counts always cover the full unfiltered set.
func (s *AlertService) List(ctx context.Context, recipientID string, opts alerts.FilterOptions, page, perPage int) (AlertListing, error) {
	all, err := s.alerts.List(ctx, recipientID)
	if err != nil {
		return AlertListing{}, err
	}
	view := alerts.SortByRecency(alerts.Filter(all, opts))
	return AlertListing{
		Page:   alerts.Paginate(view, page, perPage),
		Unread: alerts.UnreadCount(all),
		Counts: alerts.CountByCategory(all),
	}, nil
}

// Publish stores alerts from any producer and notifies connected recipients.
func (s *AlertService) Publish(ctx context.Context, batch ...domain.Alert) error {
	if len(batch) == 0 {
		return nil
	}
	for i := range batch {
		if batch[i].UserID == "" {
			return domain.NewValidationError("userId", "alert %q has no recipient", batch[i].ID)
		}
		if batch[i].CreatedAt.IsZero() {
			batch[i].CreatedAt = s.now().UTC()
		}
		// Producers cannot create alerts that skip the unread state.
		batch[i].IsRead = false
	}
	if err := s.alerts.Add(ctx, batch...); err != nil {
		return err
	}

	recipients := make(map[string]struct{})
	for _, a := range batch {
		alertsPublished.WithLabelValues(alerts.CategoryInfo(alerts.PriorityOf(a.Type)).Key).Inc()
		recipients[a.UserID] = struct{}{}
	}
	for r := range recipients {
		s.refresh(ctx, r, nil)
	}
	return nil
}

// MarkRead marks one alert read. A second call reports AlreadyRead instead of failing.
func (s *AlertService) MarkRead(ctx context.Context, recipientID, alertID string) (alerts.MarkResult, error) {
	var result alerts.MarkResult
	updated, err := s.alerts.Update(ctx, recipientID, func(list []domain.Alert) error {
		var err error
		result, err = alerts.MarkRead(list, recipientID, alertID)
		return err
	})
	if err != nil {
		return alerts.MarkResult{}, err
	}
	if !result.AlreadyRead {
		alertsMarkedRead.WithLabelValues("single").Inc()
		s.refresh(ctx, recipientID, updated)
	}
	return result, nil
}

// MarkAllRead marks every unread alert read; domain.ErrNoUnreadAlerts when there is nothing to do.
func (s *AlertService) MarkAllRead(ctx context.Context, recipientID string) (int, error) {
	var count int
	updated, err := s.alerts.Update(ctx, recipientID, func(list []domain.Alert) error {
		var err error
		count, err = alerts.MarkAllRead(list, recipientID)
		return err
	})
	if err != nil {
		return 0, err
	}
	alertsMarkedRead.WithLabelValues("bulk").Add(float64(count))
	s.refresh(ctx, recipientID, updated)
	return count, nil
}

// Counts recomputes badge counts from the stored alerts.
func (s *AlertService) Counts(ctx context.Context, recipientID string) (map[int]alerts.CategoryCount, error) {
	all, err := s.alerts.List(ctx, recipientID)
	if err != nil {
		return nil, err
	}
	return alerts.CountByCategory(all), nil
}

// Feed returns the current snapshot for a recipient.
func (s *AlertService) Feed(ctx context.Context, recipientID string) (Feed, error) {
	all, err := s.alerts.List(ctx, recipientID)
	if err != nil {
		return Feed{}, err
	}
	return buildFeed(recipientID, all, s.now()), nil
}

// Subscribe returns a channel that receives feed updates for a recipient.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *AlertService) Subscribe(ctx context.Context, recipientID string) (<-chan Feed, func(), error) {
	if recipientID == "" {
		return nil, nil, errors.New("recipient id required")
	}
	initial, err := s.Feed(ctx, recipientID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := s.hub.subscribe(recipientID, initial)
	return ch, cancel, nil
}

// refresh pushes a new snapshot when anyone is listening. A nil list is reloaded.
func (s *AlertService) refresh(ctx context.Context, recipientID string, list []domain.Alert) {
	if !s.hub.hasSubscribers(recipientID) {
		return
	}
	if list == nil {
		var err error
		if list, err = s.alerts.List(ctx, recipientID); err != nil {
			return
		}
	}
	s.hub.broadcast(buildFeed(recipientID, list, s.now()))
}
