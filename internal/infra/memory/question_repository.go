package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"wellbeing-weather-service/internal/domain"
)

// QuestionLoader fetches the question catalog from a backing store.
type QuestionLoader interface {
	LoadQuestions(ctx context.Context) ([]domain.Question, error)
}

const catalogKey = "questions"

// QuestionRepository caches the catalog with TTL to avoid repeated DB hits.
type QuestionRepository struct {
	loader QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	cached    []domain.Question
	expiresAt time.Time
}

func NewQuestionRepository(loader QuestionLoader, ttl time.Duration) *QuestionRepository {
	return &QuestionRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *QuestionRepository) Questions(ctx context.Context) ([]domain.Question, error) {
	if questions, ok := r.fresh(r.clock()); ok {
		return questions, nil
	}

	result, err, _ := r.sf.Do(catalogKey, func() (interface{}, error) {
		now := r.clock()
		if questions, ok := r.fresh(now); ok {
			return questions, nil
		}

		questions, err := r.loader.LoadQuestions(ctx)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.cached = questions
		r.expiresAt = now.Add(r.ttlWithJitter())
		r.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneQuestions(result.([]domain.Question)), nil
}

// Invalidate drops the cached catalog so the next read reloads it.
func (r *QuestionRepository) Invalidate() {
	r.mu.Lock()
	r.cached = nil
	r.expiresAt = time.Time{}
	r.mu.Unlock()
}

func (r *QuestionRepository) fresh(now time.Time) ([]domain.Question, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.cached != nil && r.expiresAt.After(now) {
		return cloneQuestions(r.cached), true
	}
	return nil, false
}

func (r *QuestionRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticQuestionLoader is a simple loader backed by a fixed catalog (useful for tests/demos).
type StaticQuestionLoader struct {
	questions []domain.Question
}

func NewStaticQuestionLoader(questions []domain.Question) *StaticQuestionLoader {
	return &StaticQuestionLoader{questions: questions}
}

func (l *StaticQuestionLoader) LoadQuestions(_ context.Context) ([]domain.Question, error) {
	if len(l.questions) == 0 {
		return nil, domain.ErrQuestionsUnavailable
	}
	return cloneQuestions(l.questions), nil
}

func cloneQuestions(in []domain.Question) []domain.Question {
	return append([]domain.Question(nil), in...)
}
