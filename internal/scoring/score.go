// Package scoring turns survey responses into a weighted score and classifies its risk.
package scoring

import (
	"math"
	"sort"

	"wellbeing-weather-service/internal/domain"
)

const (
	MinResponse = 1
	MaxResponse = 5
)

// ComputeScore returns the weighted average of responses, rounded to one decimal.
//
// Responses to unknown or inactive questions, or to questions without a positive finite weight,
// carry weight 0 and are dropped before aggregation. A question answered twice is a
// ValidationError, as is any score outside 1-5. ErrEmptyInput is returned when nothing
// weighted remains.
func ComputeScore(responses []domain.QuestionResponse, questions []domain.Question) (float64, error) {
	if len(responses) == 0 {
		return 0, domain.ErrEmptyInput
	}

	weights := activeWeights(questions)
	seen := make(map[string]struct{}, len(responses))
	var weighted, totalWeight float64
	for _, r := range responses {
		if r.Score < MinResponse || r.Score > MaxResponse {
			return 0, domain.NewValidationError("responses", "score %d for question %q outside %d-%d", r.Score, r.QuestionID, MinResponse, MaxResponse)
		}
		if _, dup := seen[r.QuestionID]; dup {
			return 0, domain.NewValidationError("responses", "question %q answered more than once", r.QuestionID)
		}
		seen[r.QuestionID] = struct{}{}

		w, ok := weights[r.QuestionID]
		if !ok {
			continue
		}
		weighted += float64(r.Score) * w
		totalWeight += w
	}
	if totalWeight == 0 {
		return 0, domain.ErrEmptyInput
	}
	return Round1(weighted / totalWeight), nil
}

// MissingQuestions lists active questions that have no response, sorted by id.
func MissingQuestions(responses []domain.QuestionResponse, questions []domain.Question) []string {
	answered := make(map[string]struct{}, len(responses))
	for _, r := range responses {
		answered[r.QuestionID] = struct{}{}
	}
	var missing []string
	for _, q := range questions {
		if !q.IsActive {
			continue
		}
		if _, ok := answered[q.ID]; !ok {
			missing = append(missing, q.ID)
		}
	}
	sort.Strings(missing)
	return missing
}

// ActiveQuestions filters the catalog down to active questions.
func ActiveQuestions(questions []domain.Question) []domain.Question {
	out := make([]domain.Question, 0, len(questions))
	for _, q := range questions {
		if q.IsActive {
			out = append(out, q)
		}
	}
	return out
}

// Round1 rounds half away from zero to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func activeWeights(questions []domain.Question) map[string]float64 {
	weights := make(map[string]float64, len(questions))
	for _, q := range questions {
		if !q.IsActive || !(q.Weight > 0) || math.IsInf(q.Weight, 0) {
			continue
		}
		weights[q.ID] = q.Weight
	}
	return weights
}
