package scoring

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"wellbeing-weather-service/internal/domain"
)

func TestClassifyRiskBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  domain.RiskLevel
	}{
		{5.0, domain.RiskLow},
		{4.0, domain.RiskLow},
		{3.9999, domain.RiskMedium},
		{2.5, domain.RiskMedium},
		{2.4999, domain.RiskHigh},
		{1.0, domain.RiskHigh},
		{-12, domain.RiskHigh},
		{99, domain.RiskLow},
		{math.Inf(1), domain.RiskLow},
		{math.Inf(-1), domain.RiskHigh},
		{math.NaN(), domain.RiskHigh},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifyRisk(tc.score), "score %v", tc.score)
	}
}

func TestClassifierMonotonic(t *testing.T) {
	c := NewClassifier(DefaultThresholds)
	prev := c.Classify(-1)
	for s := -1.0; s <= 6.0; s += 0.01 {
		cur := c.Classify(s)
		assert.LessOrEqual(t, cur.Rank(), prev.Rank(), "score %.2f classified riskier than a lower score", s)
		prev = cur
	}
}

func TestClassifierCustomThresholds(t *testing.T) {
	c := NewClassifier(Thresholds{LowMin: 3.5, MediumMin: 2.0})
	assert.Equal(t, domain.RiskLow, c.Classify(3.5))
	assert.Equal(t, domain.RiskMedium, c.Classify(2.0))
	assert.True(t, c.IsHighRisk(1.9))
}

func TestThresholdsValidate(t *testing.T) {
	assert.NoError(t, DefaultThresholds.Validate())
	assert.Error(t, Thresholds{LowMin: 2.5, MediumMin: 2.5}.Validate())
	assert.Error(t, Thresholds{LowMin: 6, MediumMin: 2.5}.Validate())
	assert.Error(t, Thresholds{LowMin: 4, MediumMin: 0}.Validate())
}

func TestDailyScoreRecomputesRisk(t *testing.T) {
	day := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	survey := domain.Survey{ID: "s1", UserID: "u1", SurveyDate: day, TotalScore: 3.0}

	assert.Equal(t, domain.RiskMedium, Classifier{}.DailyScore(survey).RiskLevel)
	assert.Equal(t, domain.RiskLow, NewClassifier(Thresholds{LowMin: 3.0, MediumMin: 2.0}).DailyScore(survey).RiskLevel)
}

func TestDateOf(t *testing.T) {
	in := time.Date(2024, 3, 4, 23, 30, 0, 0, time.FixedZone("x", -2*3600))
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), DateOf(in))
}
