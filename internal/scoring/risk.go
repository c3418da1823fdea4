package scoring

import (
	"fmt"
	"time"

	"wellbeing-weather-service/internal/domain"
)

// Thresholds are inclusive lower bounds: LowMin and up is low risk,
// MediumMin up to LowMin is medium, anything below MediumMin is high.
type Thresholds struct {
	LowMin    float64 `yaml:"low_min"`
	MediumMin float64 `yaml:"medium_min"`
}

// DefaultThresholds is the published 4.0 / 2.5 contract.
var DefaultThresholds = Thresholds{LowMin: 4.0, MediumMin: 2.5}

// Validate rejects thresholds that leave an empty or inverted medium band.
func (t Thresholds) Validate() error {
	if t.MediumMin < MinResponse || t.LowMin > MaxResponse {
		return fmt.Errorf("risk thresholds must lie within %d-%d, got medium=%.2f low=%.2f", MinResponse, MaxResponse, t.MediumMin, t.LowMin)
	}
	if t.MediumMin >= t.LowMin {
		return fmt.Errorf("medium threshold %.2f must be below low threshold %.2f", t.MediumMin, t.LowMin)
	}
	return nil
}

// Classifier maps scores to risk levels. The zero value uses DefaultThresholds.
type Classifier struct {
	thresholds Thresholds
}

func NewClassifier(t Thresholds) Classifier {
	return Classifier{thresholds: t}
}

// Thresholds returns the bounds in effect.
func (c Classifier) Thresholds() Thresholds {
	if c.thresholds == (Thresholds{}) {
		return DefaultThresholds
	}
	return c.thresholds
}

// Classify is total over float64; NaN classifies as high.
func (c Classifier) Classify(score float64) domain.RiskLevel {
	t := c.Thresholds()
	switch {
	case score >= t.LowMin:
		return domain.RiskLow
	case score >= t.MediumMin:
		return domain.RiskMedium
	default:
		return domain.RiskHigh
	}
}

// IsHighRisk reports whether score falls in the high band.
func (c Classifier) IsHighRisk(score float64) bool {
	return c.Classify(score) == domain.RiskHigh
}

// DailyScore derives the read-time view of a survey.
func (c Classifier) DailyScore(s domain.Survey) domain.DailyScore {
	return domain.DailyScore{
		UserID:     s.UserID,
		ScoreDate:  s.SurveyDate,
		TotalScore: s.TotalScore,
		RiskLevel:  c.Classify(s.TotalScore),
	}
}

// ClassifyRisk classifies with DefaultThresholds.
func ClassifyRisk(score float64) domain.RiskLevel {
	return Classifier{}.Classify(score)
}

// DateOf truncates t to its UTC calendar day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
