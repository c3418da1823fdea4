package alerts

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"wellbeing-weather-service/internal/domain"
	"wellbeing-weather-service/internal/scoring"
)

// DefaultScoreDropDelta is the fall between consecutive surveys that raises score_drop.
const DefaultScoreDropDelta = 1.0

// Detector derives alerts from a fresh submission. It shares the classifier used for scoring
// so "high risk" means the same thing everywhere.
type Detector struct {
	classifier scoring.Classifier
	dropDelta  float64
	now        func() time.Time
	newID      func() string
}

func NewDetector(classifier scoring.Classifier, dropDelta float64) *Detector {
	if dropDelta <= 0 {
		dropDelta = DefaultScoreDropDelta
	}
	return &Detector{
		classifier: classifier,
		dropDelta:  dropDelta,
		now:        time.Now,
		newID:      func() string { return uuid.NewString() },
	}
}

// NewDetectorWithClock is test-only for deterministic timestamps and ids.
func NewDetectorWithClock(classifier scoring.Classifier, dropDelta float64, now func() time.Time, newID func() string) *Detector {
	d := NewDetector(classifier, dropDelta)
	d.now = now
	d.newID = newID
	return d
}

// Detect compares current with the user's previous survey (nil on first submission).
// Alerts about a user go to their manager; without a manager they go to the user.
func (d *Detector) Detect(user domain.User, previous *domain.Survey, current domain.Survey) []domain.Alert {
	recipient := user.ManagerID
	if recipient == "" {
		recipient = user.ID
	}

	var out []domain.Alert
	risk := d.classifier.Classify(current.TotalScore)
	if risk == domain.RiskHigh {
		out = append(out, d.alert(recipient, user.ID, HighRisk,
			fmt.Sprintf("%s is at high risk", displayName(user)),
			fmt.Sprintf("Latest score %.1f is below %.1f.", current.TotalScore, d.classifier.Thresholds().MediumMin)))
	}
	if previous == nil {
		return out
	}

	drop := scoring.Round1(previous.TotalScore - current.TotalScore)
	if drop >= d.dropDelta {
		out = append(out, d.alert(recipient, user.ID, ScoreDrop,
			fmt.Sprintf("%s's score dropped", displayName(user)),
			fmt.Sprintf("Score fell from %.1f to %.1f.", previous.TotalScore, current.TotalScore)))
	}
	if risk.Rank() < d.classifier.Classify(previous.TotalScore).Rank() {
		out = append(out, d.alert(user.ID, user.ID, Improvement,
			"Your weather is improving",
			fmt.Sprintf("Your score rose to %.1f (%s risk).", current.TotalScore, risk)))
	}
	return out
}

func (d *Detector) alert(recipient, target string, t domain.AlertType, title, message string) domain.Alert {
	return domain.Alert{
		ID:           d.newID(),
		UserID:       recipient,
		TargetUserID: target,
		Type:         t,
		Title:        title,
		Message:      message,
		CreatedAt:    d.now().UTC(),
	}
}

func displayName(u domain.User) string {
	if u.Name != "" {
		return u.Name
	}
	return u.ID
}
