package app

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// surveysSubmitted counts accepted submissions by resulting risk level.
	surveysSubmitted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wellbeing_surveys_submitted_total",
		Help: "Accepted survey submissions by risk level",
	}, []string{"risk"})

	// surveyScores tracks the distribution of submitted scores.
	surveyScores = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "wellbeing_survey_score",
		Help:    "Weighted survey scores at submission",
		Buckets: []float64{1.5, 2, 2.5, 3, 3.5, 4, 4.5, 5},
	})

	// alertsPublished counts stored alerts by category key.
	alertsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wellbeing_alerts_published_total",
		Help: "Alerts stored by category",
	}, []string{"category"})

	// alertsMarkedRead counts read transitions by mode (single, bulk).
	alertsMarkedRead = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wellbeing_alerts_marked_read_total",
		Help: "Alerts transitioned to read",
	}, []string{"mode"})
)
