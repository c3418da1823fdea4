// Package stats derives member, department and organization statistics from survey history.
// Everything is recomputed per call; nothing here is cached or stored.
package stats

import (
	"math"
	"sort"
	"time"

	"wellbeing-weather-service/internal/domain"
	"wellbeing-weather-service/internal/scoring"
)

// DefaultWindowDays is the response-rate window.
const DefaultWindowDays = 30

// History holds each user's surveys keyed by user id, in any order.
type History struct {
	Surveys map[string][]domain.Survey
}

// Options carries the shared classifier, the reference time and the response window.
type Options struct {
	Classifier scoring.Classifier
	Now        time.Time
	WindowDays int
}

func (o Options) window() int {
	if o.WindowDays <= 0 {
		return DefaultWindowDays
	}
	return o.WindowDays
}

func (o Options) now() time.Time {
	if o.Now.IsZero() {
		return time.Now()
	}
	return o.Now
}

// LatestScore returns the DailyScore of the most recent survey, or nil when there is none.
func LatestScore(surveys []domain.Survey, classifier scoring.Classifier) *domain.DailyScore {
	latest, _ := lastTwo(surveys)
	if latest == nil {
		return nil
	}
	ds := classifier.DailyScore(*latest)
	return &ds
}

// ResponseRate is the share of the last windowDays days (today included) with a survey,
// as a rounded percentage. Missing and opted-out days count the same.
func ResponseRate(surveys []domain.Survey, now time.Time, windowDays int) int {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	today := scoring.DateOf(now)
	oldest := today.AddDate(0, 0, -(windowDays - 1))

	days := make(map[time.Time]struct{}, len(surveys))
	for _, s := range surveys {
		d := scoring.DateOf(s.SurveyDate)
		if d.Before(oldest) || d.After(today) {
			continue
		}
		days[d] = struct{}{}
	}
	return roundPercent(float64(len(days)) / float64(windowDays) * 100)
}

// TeamMembers builds one row per user, most at-risk first, then by name.
// Users without any survey sort after everyone with a score.
func TeamMembers(users []domain.User, history History, opts Options) []domain.TeamMemberStats {
	out := make([]domain.TeamMemberStats, 0, len(users))
	for _, u := range users {
		surveys := history.Surveys[u.ID]
		row := domain.TeamMemberStats{
			UserID:       u.ID,
			Name:         u.Name,
			Department:   u.Department,
			ResponseRate: ResponseRate(surveys, opts.now(), opts.window()),
		}
		latest, previous := lastTwo(surveys)
		if latest != nil {
			ds := opts.Classifier.DailyScore(*latest)
			row.LatestScore = &ds
			row.RiskLevel = ds.RiskLevel
			if previous != nil {
				row.Trend = scoring.Round1(latest.TotalScore - previous.TotalScore)
			}
		}
		out = append(out, row)
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := severity(out[i]), severity(out[j])
		if ri != rj {
			return ri > rj
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// DepartmentBreakdown groups users by department, ordered by department name.
func DepartmentBreakdown(users []domain.User, history History, opts Options) []domain.DepartmentStats {
	type acc struct {
		stats    domain.DepartmentStats
		scoreSum float64
		scored   int
		rateSum  int
	}
	byDept := make(map[string]*acc)
	for _, u := range users {
		a, ok := byDept[u.Department]
		if !ok {
			a = &acc{stats: domain.DepartmentStats{Department: u.Department}}
			byDept[u.Department] = a
		}
		surveys := history.Surveys[u.ID]
		a.stats.MemberCount++
		a.rateSum += ResponseRate(surveys, opts.now(), opts.window())

		latest := LatestScore(surveys, opts.Classifier)
		if latest == nil {
			continue
		}
		a.scoreSum += latest.TotalScore
		a.scored++
		switch latest.RiskLevel {
		case domain.RiskHigh:
			a.stats.HighRisk++
		case domain.RiskMedium:
			a.stats.MediumRisk++
		default:
			a.stats.LowRisk++
		}
	}

	out := make([]domain.DepartmentStats, 0, len(byDept))
	for _, a := range byDept {
		if a.scored > 0 {
			a.stats.AverageScore = scoring.Round1(a.scoreSum / float64(a.scored))
		}
		a.stats.ResponseRate = roundPercent(float64(a.rateSum) / float64(a.stats.MemberCount))
		out = append(out, a.stats)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Department < out[j].Department })
	return out
}

// OverallStats sums the department breakdown. AverageResponseRate is the plain mean of
// individual rates, not weighted by department size; existing reports depend on that.
func OverallStats(users []domain.User, history History, opts Options) domain.TeamOverallStats {
	overall := domain.TeamOverallStats{DepartmentBreakdown: []domain.DepartmentStats{}}
	if len(users) == 0 {
		return overall
	}

	overall.DepartmentBreakdown = DepartmentBreakdown(users, history, opts)
	for _, d := range overall.DepartmentBreakdown {
		overall.TotalMembers += d.MemberCount
		overall.HighRisk += d.HighRisk
		overall.MediumRisk += d.MediumRisk
		overall.LowRisk += d.LowRisk
	}

	// Averages come from raw member values so department rounding does not compound.
	var scoreSum float64
	scored, rateSum := 0, 0
	for _, u := range users {
		surveys := history.Surveys[u.ID]
		rateSum += ResponseRate(surveys, opts.now(), opts.window())
		if latest := LatestScore(surveys, opts.Classifier); latest != nil {
			scoreSum += latest.TotalScore
			scored++
		}
	}
	if scored > 0 {
		overall.AverageScore = scoring.Round1(scoreSum / float64(scored))
	}
	overall.AverageResponseRate = roundPercent(float64(rateSum) / float64(len(users)))
	return overall
}

// lastTwo returns the latest and the one before it by SurveyDate.
func lastTwo(surveys []domain.Survey) (latest, previous *domain.Survey) {
	for i := range surveys {
		s := &surveys[i]
		switch {
		case latest == nil || s.SurveyDate.After(latest.SurveyDate):
			previous, latest = latest, s
		case previous == nil || s.SurveyDate.After(previous.SurveyDate):
			previous = s
		}
	}
	return latest, previous
}

func severity(m domain.TeamMemberStats) int {
	if m.LatestScore == nil {
		return -1
	}
	return m.RiskLevel.Rank()
}

func roundPercent(v float64) int {
	return int(math.Round(v))
}
