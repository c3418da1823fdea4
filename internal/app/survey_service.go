package app

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"wellbeing-weather-service/internal/alerts"
	"wellbeing-weather-service/internal/domain"
	"wellbeing-weather-service/internal/scoring"
)

// AlertPublisher receives alerts raised by submissions.
type AlertPublisher interface {
	Publish(ctx context.Context, batch ...domain.Alert) error
}

// Submission is the outcome of an accepted survey.
type Submission struct {
	Survey     domain.Survey     `json:"survey"`
	DailyScore domain.DailyScore `json:"dailyScore"`
	Alerts     []domain.Alert    `json:"alerts,omitempty"`
}

// SurveyService contains the survey submission and history use cases.
type SurveyService struct {
	users      UserDirectory
	questions  QuestionRepository
	surveys    SurveyRepository
	classifier scoring.Classifier
	detector   *alerts.Detector
	publisher  AlertPublisher
	now        func() time.Time
	newID      func() string
}

func NewSurveyService(users UserDirectory, questions QuestionRepository, surveys SurveyRepository, classifier scoring.Classifier, detector *alerts.Detector, publisher AlertPublisher) *SurveyService {
	return &SurveyService{
		users:      users,
		questions:  questions,
		surveys:    surveys,
		classifier: classifier,
		detector:   detector,
		publisher:  publisher,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// NewSurveyServiceWithClock is test-only for deterministic timestamps.
func NewSurveyServiceWithClock(users UserDirectory, questions QuestionRepository, surveys SurveyRepository, classifier scoring.Classifier, detector *alerts.Detector, publisher AlertPublisher, now func() time.Time) *SurveyService {
	s := NewSurveyService(users, questions, surveys, classifier, detector, publisher)
	s.now = now
	return s
}

// Submit scores and stores a user's survey for date (today when zero, never after today).
// The response set must cover every active question; one survey per user per day.
func (s *SurveyService) Submit(ctx context.Context, userID string, date time.Time, responses []domain.QuestionResponse) (Submission, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return Submission{}, err
	}
	if !user.IsActive {
		return Submission{}, domain.NewValidationError("userId", "user %q is inactive", userID)
	}

	now := s.now().UTC()
	if date.IsZero() {
		date = now
	}
	date = scoring.DateOf(date)
	if date.After(scoring.DateOf(now)) {
		return Submission{}, domain.NewValidationError("date", "survey date %s is in the future", date.Format(time.DateOnly))
	}

	questions, err := s.questions.Questions(ctx)
	if err != nil {
		return Submission{}, fmt.Errorf("%w: %v", domain.ErrQuestionsUnavailable, err)
	}
	if missing := scoring.MissingQuestions(responses, questions); len(missing) > 0 {
		return Submission{}, domain.NewValidationError("responses", "missing answers for %s", strings.Join(missing, ", "))
	}
	total, err := scoring.ComputeScore(responses, questions)
	if err != nil {
		return Submission{}, err
	}

	history, err := s.surveys.ListByUser(ctx, userID)
	if err != nil {
		return Submission{}, err
	}
	previous, err := previousSurvey(history, date)
	if err != nil {
		return Submission{}, err
	}

	survey := domain.Survey{
		ID:          s.newID(),
		UserID:      userID,
		SurveyDate:  date,
		TotalScore:  total,
		SubmittedAt: now,
		Responses:   append([]domain.QuestionResponse(nil), responses...),
	}
	if err := s.surveys.Create(ctx, survey); err != nil {
		return Submission{}, err
	}

	daily := s.classifier.DailyScore(survey)
	surveysSubmitted.WithLabelValues(string(daily.RiskLevel)).Inc()
	surveyScores.Observe(total)

	out := Submission{Survey: survey, DailyScore: daily}
	if s.detector != nil && s.publisher != nil {
		raised := s.detector.Detect(user, previous, survey)
		if len(raised) > 0 {
			if err := s.publisher.Publish(ctx, raised...); err != nil {
				// The survey is stored; a lost alert must not reject it.
				slog.Warn("publish submission alerts", "user", userID, "survey", survey.ID, "error", err)
			} else {
				out.Alerts = raised
			}
		}
	}
	return out, nil
}

// History returns a user's daily scores, newest first.
func (s *SurveyService) History(ctx context.Context, userID string) ([]domain.DailyScore, error) {
	if _, err := s.users.Get(ctx, userID); err != nil {
		return nil, err
	}
	surveys, err := s.surveys.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.DailyScore, 0, len(surveys))
	for _, sv := range surveys {
		out = append(out, s.classifier.DailyScore(sv))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ScoreDate.After(out[j].ScoreDate) })
	return out, nil
}

// Latest returns the most recent daily score, nil if the user never submitted.
func (s *SurveyService) Latest(ctx context.Context, userID string) (*domain.DailyScore, error) {
	history, err := s.History(ctx, userID)
	if err != nil || len(history) == 0 {
		return nil, err
	}
	return &history[0], nil
}

// Questions exposes the active catalog to the survey form.
func (s *SurveyService) Questions(ctx context.Context) ([]domain.Question, error) {
	questions, err := s.questions.Questions(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrQuestionsUnavailable, err)
	}
	return scoring.ActiveQuestions(questions), nil
}

// previousSurvey finds the latest survey before date and rejects a second one on date.
func previousSurvey(history []domain.Survey, date time.Time) (*domain.Survey, error) {
	var previous *domain.Survey
	for i := range history {
		d := scoring.DateOf(history[i].SurveyDate)
		if d.Equal(date) {
			return nil, domain.ErrSurveyAlreadySubmitted
		}
		if d.Before(date) && (previous == nil || d.After(previous.SurveyDate)) {
			previous = &history[i]
		}
	}
	return previous, nil
}
