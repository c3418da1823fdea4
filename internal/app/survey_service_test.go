package app_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"wellbeing-weather-service/internal/alerts"
	"wellbeing-weather-service/internal/app"
	"wellbeing-weather-service/internal/domain"
	"wellbeing-weather-service/internal/infra/memory"
	"wellbeing-weather-service/internal/scoring"
)

var today = time.Date(2024, 3, 10, 9, 30, 0, 0, time.UTC)

type fixture struct {
	surveys *app.SurveyService
	alerts  *app.AlertService
	team    *app.TeamService
	store   *memory.SurveyStore
}

func newFixture() fixture {
	clock := func() time.Time { return today }
	users := memory.NewUserDirectory(testUsers())
	questions := memory.NewQuestionRepository(memory.NewStaticQuestionLoader(testQuestions()), time.Minute)
	store := memory.NewSurveyStore()
	classifier := scoring.NewClassifier(scoring.DefaultThresholds)

	n := 0
	detector := alerts.NewDetectorWithClock(classifier, alerts.DefaultScoreDropDelta, clock, func() string {
		n++
		return fmt.Sprintf("alert-%d", n)
	})
	alertService := app.NewAlertServiceWithClock(memory.NewAlertStore(), clock)
	return fixture{
		surveys: app.NewSurveyServiceWithClock(users, questions, store, classifier, detector, alertService, clock),
		alerts:  alertService,
		team:    app.NewTeamServiceWithClock(users, store, classifier, 30, clock),
		store:   store,
	}
}

func testUsers() []domain.User {
	return []domain.User{
		{ID: "admin", Name: "Ada", Department: "Operations", Role: domain.RoleAdmin, IsActive: true},
		{ID: "hr1", Name: "Hana", Department: "People", Role: domain.RoleHR, IsActive: true},
		{ID: "m1", Name: "Mia", Department: "Engineering", Role: domain.RoleManager, IsActive: true},
		{ID: "u1", Name: "Ben", Department: "Engineering", ManagerID: "m1", Role: domain.RoleEmployee, IsActive: true},
		{ID: "u2", Name: "Cleo", Department: "Design", ManagerID: "m1", Role: domain.RoleEmployee, IsActive: true},
		{ID: "u3", Name: "Dan", Department: "Engineering", ManagerID: "m1", Role: domain.RoleEmployee, IsActive: false},
		{ID: "solo", Name: "Sol", Department: "Sales", Role: domain.RoleEmployee, IsActive: true},
	}
}

func testQuestions() []domain.Question {
	return []domain.Question{
		{ID: "q1", Text: "How rested do you feel?", Category: "energy", Weight: 1, IsActive: true},
		{ID: "q2", Text: "How manageable is your workload?", Category: "workload", Weight: 1, IsActive: true},
		{ID: "q3", Text: "Retired question", Category: "legacy", Weight: 1, IsActive: false},
	}
}

func answers(q1, q2 int) []domain.QuestionResponse {
	return []domain.QuestionResponse{{QuestionID: "q1", Score: q1}, {QuestionID: "q2", Score: q2}}
}

func TestSubmitScoresAndClassifies(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	sub, err := f.surveys.Submit(ctx, "u1", time.Time{}, answers(3, 4))
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if sub.Survey.TotalScore != 3.5 {
		t.Fatalf("expected score 3.5, got %v", sub.Survey.TotalScore)
	}
	if sub.DailyScore.RiskLevel != domain.RiskMedium {
		t.Fatalf("expected medium risk, got %s", sub.DailyScore.RiskLevel)
	}
	if !sub.Survey.SurveyDate.Equal(scoring.DateOf(today)) {
		t.Fatalf("expected survey dated today, got %v", sub.Survey.SurveyDate)
	}
	if len(sub.Alerts) != 0 {
		t.Fatalf("first medium survey should raise nothing, got %+v", sub.Alerts)
	}
}

func TestSubmitRaisesAlertsForManager(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	if _, err := f.surveys.Submit(ctx, "u1", today.AddDate(0, 0, -1), answers(5, 5)); err != nil {
		t.Fatalf("submit day 1: %v", err)
	}
	sub, err := f.surveys.Submit(ctx, "u1", today, answers(1, 2))
	if err != nil {
		t.Fatalf("submit day 2: %v", err)
	}
	if len(sub.Alerts) != 2 {
		t.Fatalf("expected high_risk and score_drop, got %+v", sub.Alerts)
	}
	if sub.Alerts[0].Type != alerts.HighRisk || sub.Alerts[1].Type != alerts.ScoreDrop {
		t.Fatalf("unexpected alert types %s, %s", sub.Alerts[0].Type, sub.Alerts[1].Type)
	}

	listing, err := f.alerts.List(ctx, "m1", alerts.FilterOptions{UnreadOnly: true}, 1, 20)
	if err != nil {
		t.Fatalf("list alerts: %v", err)
	}
	if listing.Total != 2 || listing.Unread != 2 {
		t.Fatalf("expected 2 unread alerts for manager, got %+v", listing)
	}
	if listing.Items[0].TargetUserID != "u1" {
		t.Fatalf("expected alerts about u1, got %+v", listing.Items[0])
	}
	if listing.Counts[1].Unread != 2 {
		t.Fatalf("expected both alerts in the urgent bucket, got %+v", listing.Counts[1])
	}
}

func TestSubmitRejections(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	if _, err := f.surveys.Submit(ctx, "ghost", today, answers(3, 3)); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if _, err := f.surveys.Submit(ctx, "u3", today, answers(3, 3)); !domain.IsValidation(err) {
		t.Fatalf("expected inactive user validation error, got %v", err)
	}
	if _, err := f.surveys.Submit(ctx, "u1", today.AddDate(1, 0, 0), answers(5, 5)); !domain.IsValidation(err) {
		t.Fatalf("expected future date validation error, got %v", err)
	}
	if history, _ := f.surveys.History(ctx, "u1"); len(history) != 0 {
		t.Fatalf("rejected future survey must not be stored, got %+v", history)
	}
	partial := []domain.QuestionResponse{{QuestionID: "q1", Score: 4}}
	if _, err := f.surveys.Submit(ctx, "u1", today, partial); !domain.IsValidation(err) {
		t.Fatalf("expected missing answers validation error, got %v", err)
	}
	if _, err := f.surveys.Submit(ctx, "u1", today, answers(0, 3)); !domain.IsValidation(err) {
		t.Fatalf("expected out-of-range validation error, got %v", err)
	}

	if _, err := f.surveys.Submit(ctx, "u1", today, answers(4, 4)); err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if _, err := f.surveys.Submit(ctx, "u1", today.Add(3*time.Hour), answers(2, 2)); !errors.Is(err, domain.ErrSurveyAlreadySubmitted) {
		t.Fatalf("expected ErrSurveyAlreadySubmitted, got %v", err)
	}
}

func TestHistoryNewestFirst(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	for i, score := range []int{2, 4, 5} {
		day := today.AddDate(0, 0, i-2)
		if _, err := f.surveys.Submit(ctx, "u2", day, answers(score, score)); err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
	}

	history, err := f.surveys.History(ctx, "u2")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(history))
	}
	if history[0].TotalScore != 5 || history[0].RiskLevel != domain.RiskLow {
		t.Fatalf("expected newest low-risk score first, got %+v", history[0])
	}
	if history[2].RiskLevel != domain.RiskHigh {
		t.Fatalf("expected oldest high-risk score last, got %+v", history[2])
	}

	latest, err := f.surveys.Latest(ctx, "u2")
	if err != nil || latest == nil || latest.TotalScore != 5 {
		t.Fatalf("unexpected latest %+v (%v)", latest, err)
	}
	none, err := f.surveys.Latest(ctx, "solo")
	if err != nil || none != nil {
		t.Fatalf("expected no latest score, got %+v (%v)", none, err)
	}
}

func TestImprovementGoesToUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	if _, err := f.surveys.Submit(ctx, "solo", today.AddDate(0, 0, -1), answers(1, 1)); err != nil {
		t.Fatalf("submit day 1: %v", err)
	}
	sub, err := f.surveys.Submit(ctx, "solo", today, answers(5, 4))
	if err != nil {
		t.Fatalf("submit day 2: %v", err)
	}
	if len(sub.Alerts) != 1 || sub.Alerts[0].Type != alerts.Improvement || sub.Alerts[0].UserID != "solo" {
		t.Fatalf("expected one improvement alert for solo, got %+v", sub.Alerts)
	}

	listing, _ := f.alerts.List(ctx, "solo", alerts.FilterOptions{}, 1, 20)
	// high_risk from day 1 plus the improvement.
	if listing.Total != 2 {
		t.Fatalf("expected 2 alerts, got %d", listing.Total)
	}
}

func TestQuestionsHidesInactive(t *testing.T) {
	f := newFixture()
	questions, err := f.surveys.Questions(context.Background())
	if err != nil {
		t.Fatalf("questions: %v", err)
	}
	if len(questions) != 2 {
		t.Fatalf("expected 2 active questions, got %d", len(questions))
	}
}
