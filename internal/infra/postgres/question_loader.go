package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"wellbeing-weather-service/internal/domain"
)

// QuestionLoader reads the question catalog from Postgres.
type QuestionLoader struct {
	pool *pgxpool.Pool
}

func NewQuestionLoader(pool *pgxpool.Pool) *QuestionLoader {
	return &QuestionLoader{pool: pool}
}

// LoadQuestions returns every question, inactive ones included; scoring decides what counts.
func (l *QuestionLoader) LoadQuestions(ctx context.Context) ([]domain.Question, error) {
	rows, err := l.pool.Query(ctx, `SELECT id, text, category, weight, is_active FROM questions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(&q.ID, &q.Text, &q.Category, &q.Weight, &q.IsActive); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	if len(questions) == 0 {
		return nil, domain.ErrQuestionsUnavailable
	}
	return questions, nil
}

// SeedQuestions upserts the given questions, used to bootstrap an empty catalog.
func (l *QuestionLoader) SeedQuestions(ctx context.Context, questions []domain.Question) error {
	for _, q := range questions {
		_, err := l.pool.Exec(ctx, `
			INSERT INTO questions (id, text, category, weight, is_active)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO NOTHING`,
			q.ID, q.Text, q.Category, q.Weight, q.IsActive)
		if err != nil {
			return fmt.Errorf("seed question %s: %w", q.ID, err)
		}
	}
	return nil
}
