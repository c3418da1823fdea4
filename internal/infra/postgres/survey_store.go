package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"wellbeing-weather-service/internal/domain"
	"wellbeing-weather-service/internal/scoring"
)

const uniqueViolation = "23505"

// SurveyStore persists surveys; UNIQUE(user_id, survey_date) enforces one submission per day.
type SurveyStore struct {
	pool *pgxpool.Pool
}

func NewSurveyStore(pool *pgxpool.Pool) *SurveyStore {
	return &SurveyStore{pool: pool}
}

func (s *SurveyStore) Create(ctx context.Context, survey domain.Survey) error {
	responses, err := json.Marshal(survey.Responses)
	if err != nil {
		return fmt.Errorf("marshal responses: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO surveys (id, user_id, survey_date, total_score, responses, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		survey.ID, survey.UserID, scoring.DateOf(survey.SurveyDate), survey.TotalScore, responses, survey.SubmittedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return domain.ErrSurveyAlreadySubmitted
	}
	if err != nil {
		return fmt.Errorf("insert survey: %w", err)
	}
	return nil
}

func (s *SurveyStore) ListByUser(ctx context.Context, userID string) ([]domain.Survey, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, survey_date, total_score, responses, submitted_at
		FROM surveys WHERE user_id = $1 ORDER BY survey_date`, userID)
	if err != nil {
		return nil, fmt.Errorf("list surveys: %w", err)
	}
	defer rows.Close()
	return scanSurveys(rows)
}

func (s *SurveyStore) ListByUsers(ctx context.Context, userIDs []string) (map[string][]domain.Survey, error) {
	out := make(map[string][]domain.Survey, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, survey_date, total_score, responses, submitted_at
		FROM surveys WHERE user_id = ANY($1) ORDER BY user_id, survey_date`, userIDs)
	if err != nil {
		return nil, fmt.Errorf("list surveys: %w", err)
	}
	defer rows.Close()

	surveys, err := scanSurveys(rows)
	if err != nil {
		return nil, err
	}
	for _, sv := range surveys {
		out[sv.UserID] = append(out[sv.UserID], sv)
	}
	return out, nil
}

func scanSurveys(rows pgx.Rows) ([]domain.Survey, error) {
	var surveys []domain.Survey
	for rows.Next() {
		var (
			sv  domain.Survey
			raw []byte
		)
		if err := rows.Scan(&sv.ID, &sv.UserID, &sv.SurveyDate, &sv.TotalScore, &raw, &sv.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scan survey: %w", err)
		}
		if err := json.Unmarshal(raw, &sv.Responses); err != nil {
			return nil, fmt.Errorf("unmarshal responses: %w", err)
		}
		sv.SurveyDate = scoring.DateOf(sv.SurveyDate)
		surveys = append(surveys, sv)
	}
	return surveys, rows.Err()
}
