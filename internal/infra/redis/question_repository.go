package redis

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"wellbeing-weather-service/internal/domain"
)

// QuestionLoader fetches the question catalog from a backing store (e.g., Postgres).
type QuestionLoader interface {
	LoadQuestions(ctx context.Context) ([]domain.Question, error)
}

const catalogKey = "questions:catalog"

// QuestionRepository caches the catalog in Redis (one hash) and falls back to a loader on cache miss.
// Questions are stored as: HSET questions:catalog {questionID} {question JSON}
type QuestionRepository struct {
	client *redis.Client
	loader QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewQuestionRepository(client *redis.Client, loader QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuestionRepository) Questions(ctx context.Context) ([]domain.Question, error) {
	if questions, ok := r.fromCache(ctx); ok {
		return questions, nil
	}

	result, err, _ := r.sf.Do(catalogKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if questions, ok := r.fromCache(ctx); ok {
			return questions, nil
		}

		questions, err := r.loader.LoadQuestions(ctx)
		if err != nil {
			return nil, err
		}

		ttl := r.ttlWithJitter()
		pipe := r.client.Pipeline()
		pipe.Del(ctx, catalogKey)
		for _, q := range questions {
			raw, err := json.Marshal(q)
			if err != nil {
				return nil, err
			}
			pipe.HSet(ctx, catalogKey, q.ID, raw)
		}
		if ttl > 0 {
			pipe.Expire(ctx, catalogKey, ttl)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			// Serving from the loader still works; the next call retries the fill.
			slog.Warn("cache question catalog", "key", catalogKey, "error", err)
		}
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]domain.Question(nil), result.([]domain.Question)...), nil
}

// Invalidate removes the cached catalog.
func (r *QuestionRepository) Invalidate(ctx context.Context) error {
	return r.client.Del(ctx, catalogKey).Err()
}

func (r *QuestionRepository) fromCache(ctx context.Context) ([]domain.Question, bool) {
	fields, err := r.client.HGetAll(ctx, catalogKey).Result()
	if err != nil || len(fields) == 0 {
		return nil, false
	}
	questions := make([]domain.Question, 0, len(fields))
	for id, raw := range fields {
		var q domain.Question
		if err := json.Unmarshal([]byte(raw), &q); err != nil {
			slog.Warn("drop corrupt cached question", "question", id, "error", err)
			return nil, false
		}
		questions = append(questions, q)
	}
	sort.Slice(questions, func(i, j int) bool { return questions[i].ID < questions[j].ID })
	return questions, true
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
