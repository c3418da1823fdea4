package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"wellbeing-weather-service/internal/alerts"
	"wellbeing-weather-service/internal/domain"
)

func TestSurveyStoreOnePerDay(t *testing.T) {
	ctx := context.Background()
	store := NewSurveyStore()
	day := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	if err := store.Create(ctx, domain.Survey{ID: "s1", UserID: "u1", SurveyDate: day, TotalScore: 3}); err != nil {
		t.Fatalf("create: %v", err)
	}
	err := store.Create(ctx, domain.Survey{ID: "s2", UserID: "u1", SurveyDate: day.Add(5 * time.Hour), TotalScore: 4})
	if !errors.Is(err, domain.ErrSurveyAlreadySubmitted) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if err := store.Create(ctx, domain.Survey{ID: "s3", UserID: "u2", SurveyDate: day, TotalScore: 4}); err != nil {
		t.Fatalf("other user same day: %v", err)
	}

	byUsers, _ := store.ListByUsers(ctx, []string{"u1", "u2", "u3"})
	if len(byUsers) != 2 || len(byUsers["u1"]) != 1 {
		t.Fatalf("unexpected listing %+v", byUsers)
	}
}

func TestAlertStoreUpdateIsAtomic(t *testing.T) {
	ctx := context.Background()
	store := NewAlertStore()
	_ = store.Add(ctx,
		domain.Alert{ID: "a1", UserID: "m1", Type: alerts.HighRisk},
		domain.Alert{ID: "a2", UserID: "m1", Type: alerts.ScoreDrop},
	)

	_, err := store.Update(ctx, "m1", func(list []domain.Alert) error {
		list[0].IsRead = true
		return errors.New("abort")
	})
	if err == nil {
		t.Fatalf("expected fn error to propagate")
	}
	list, _ := store.List(ctx, "m1")
	if list[0].IsRead {
		t.Fatalf("failed update must not persist")
	}

	var wg sync.WaitGroup
	results := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Update(ctx, "m1", func(list []domain.Alert) error {
				_, err := alerts.MarkAllRead(list, "m1")
				return err
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		} else if !errors.Is(err, domain.ErrNoUnreadAlerts) {
			t.Fatalf("unexpected error %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("expected exactly one bulk update to win, got %d", succeeded)
	}
}

func TestUserDirectory(t *testing.T) {
	dir := NewUserDirectory([]domain.User{{ID: "b"}, {ID: "a"}})
	if _, err := dir.Get(context.Background(), "zz"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	users, _ := dir.List(context.Background())
	if len(users) != 2 || users[0].ID != "a" {
		t.Fatalf("expected users ordered by id, got %+v", users)
	}
}

func TestAlertStoreRejectsDuplicateIDs(t *testing.T) {
	ctx := context.Background()
	store := NewAlertStore()
	_ = store.Add(ctx, domain.Alert{ID: "a1", UserID: "m1", Type: alerts.HighRisk})

	err := store.Add(ctx,
		domain.Alert{ID: "b1", UserID: "m2", Type: alerts.HighRisk},
		domain.Alert{ID: "a1", UserID: "m1", Type: alerts.ScoreDrop},
	)
	if !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if list, _ := store.List(ctx, "m2"); len(list) != 0 {
		t.Fatalf("a rejected batch must not write any recipient, got %+v", list)
	}
	if list, _ := store.List(ctx, "m1"); len(list) != 1 {
		t.Fatalf("expected only the original alert, got %+v", list)
	}
}
