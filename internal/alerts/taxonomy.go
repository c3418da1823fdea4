// Package alerts holds the alert catalog and the triage operations over a recipient's alerts.
package alerts

import "wellbeing-weather-service/internal/domain"

const (
	HighRisk              domain.AlertType = "high_risk"
	CriticalScore         domain.AlertType = "critical_score"
	ConsecutiveLowScores  domain.AlertType = "consecutive_low_scores"
	ScoreDrop             domain.AlertType = "score_drop"
	SuddenDecline         domain.AlertType = "sudden_decline"
	BurnoutRisk           domain.AlertType = "burnout_risk"
	AttritionRisk         domain.AlertType = "attrition_risk"
	ManagerActionRequired domain.AlertType = "manager_action_required"
	NoResponse            domain.AlertType = "no_response"
	MissedSurveys         domain.AlertType = "missed_surveys"
	LowParticipation      domain.AlertType = "low_participation"
	TeamRiskIncrease      domain.AlertType = "team_risk_increase"
	TeamScoreDrop         domain.AlertType = "team_score_drop"
	DepartmentAlert       domain.AlertType = "department_alert"
	TrendDown             domain.AlertType = "trend_down"
	TrendUp               domain.AlertType = "trend_up"
	Improvement           domain.AlertType = "improvement"
	PositiveStreak        domain.AlertType = "positive_streak"
	WeeklySummary         domain.AlertType = "weekly_summary"
	MonthlyReport         domain.AlertType = "monthly_report"
	TeamSummary           domain.AlertType = "team_summary"
	SystemAlert           domain.AlertType = "system_alert"
	SurveyReminder        domain.AlertType = "survey_reminder"
	Maintenance           domain.AlertType = "maintenance"
	FeedbackRequest       domain.AlertType = "feedback_request"
)

// Display priorities. 1 is the most urgent; 8 catches everything unmapped.
const (
	PriorityCritical   = 1
	PriorityUrgent     = 2
	PriorityEngagement = 3
	PriorityTeam       = 4
	PriorityTrend      = 5
	PriorityReport     = 6
	PrioritySystem     = 7
	PriorityOther      = 8
)

// AlertTypeConfig is static reference data for one alert type.
type AlertTypeConfig struct {
	Type     domain.AlertType `json:"type"`
	Label    string           `json:"label"`
	Style    string           `json:"style"`
	Priority int              `json:"priority"`
}

var typeConfigs = map[domain.AlertType]AlertTypeConfig{
	HighRisk:              {Label: "High risk", Style: "danger", Priority: PriorityCritical},
	CriticalScore:         {Label: "Critical score", Style: "danger", Priority: PriorityCritical},
	ConsecutiveLowScores:  {Label: "Consecutive low scores", Style: "danger", Priority: PriorityCritical},
	ScoreDrop:             {Label: "Score drop", Style: "warning", Priority: PriorityUrgent},
	SuddenDecline:         {Label: "Sudden decline", Style: "warning", Priority: PriorityUrgent},
	BurnoutRisk:           {Label: "Burnout risk", Style: "warning", Priority: PriorityUrgent},
	AttritionRisk:         {Label: "Attrition risk", Style: "warning", Priority: PriorityUrgent},
	ManagerActionRequired: {Label: "Action required", Style: "warning", Priority: PriorityUrgent},
	NoResponse:            {Label: "No response", Style: "caution", Priority: PriorityEngagement},
	MissedSurveys:         {Label: "Missed surveys", Style: "caution", Priority: PriorityEngagement},
	LowParticipation:      {Label: "Low participation", Style: "caution", Priority: PriorityEngagement},
	TeamRiskIncrease:      {Label: "Team risk increase", Style: "attention", Priority: PriorityTeam},
	TeamScoreDrop:         {Label: "Team score drop", Style: "attention", Priority: PriorityTeam},
	DepartmentAlert:       {Label: "Department alert", Style: "attention", Priority: PriorityTeam},
	TrendDown:             {Label: "Downward trend", Style: "trend", Priority: PriorityTrend},
	TrendUp:               {Label: "Upward trend", Style: "success", Priority: PriorityTrend},
	Improvement:           {Label: "Improvement", Style: "success", Priority: PriorityTrend},
	PositiveStreak:        {Label: "Positive streak", Style: "success", Priority: PriorityTrend},
	WeeklySummary:         {Label: "Weekly summary", Style: "info", Priority: PriorityReport},
	MonthlyReport:         {Label: "Monthly report", Style: "info", Priority: PriorityReport},
	TeamSummary:           {Label: "Team summary", Style: "info", Priority: PriorityReport},
	SystemAlert:           {Label: "System alert", Style: "system", Priority: PrioritySystem},
	SurveyReminder:        {Label: "Survey reminder", Style: "system", Priority: PrioritySystem},
	Maintenance:           {Label: "Maintenance", Style: "system", Priority: PrioritySystem},
	FeedbackRequest:       {Label: "Feedback request", Style: "system", Priority: PrioritySystem},
}

// typeOrder keeps Types() stable for listings.
var typeOrder = []domain.AlertType{
	HighRisk, CriticalScore, ConsecutiveLowScores,
	ScoreDrop, SuddenDecline, BurnoutRisk, AttritionRisk, ManagerActionRequired,
	NoResponse, MissedSurveys, LowParticipation,
	TeamRiskIncrease, TeamScoreDrop, DepartmentAlert,
	TrendDown, TrendUp, Improvement, PositiveStreak,
	WeeklySummary, MonthlyReport, TeamSummary,
	SystemAlert, SurveyReminder, Maintenance, FeedbackRequest,
}

// TypeConfig never fails: unknown types get the priority-8 fallback.
func TypeConfig(t domain.AlertType) AlertTypeConfig {
	cfg, ok := typeConfigs[t]
	if !ok {
		return AlertTypeConfig{Type: t, Label: "Notification", Style: "neutral", Priority: PriorityOther}
	}
	cfg.Type = t
	return cfg
}

// Known reports whether t is part of the catalog.
func Known(t domain.AlertType) bool {
	_, ok := typeConfigs[t]
	return ok
}

// PriorityOf is shorthand for TypeConfig(t).Priority.
func PriorityOf(t domain.AlertType) int {
	return TypeConfig(t).Priority
}

// Types lists the catalog in priority order.
func Types() []AlertTypeConfig {
	out := make([]AlertTypeConfig, 0, len(typeOrder))
	for _, t := range typeOrder {
		out = append(out, TypeConfig(t))
	}
	return out
}

// AlertCategoryInfo describes one filter/badge bucket.
type AlertCategoryInfo struct {
	Key        string `json:"key"`
	Label      string `json:"label"`
	Priority   int    `json:"priority"`
	Priorities []int  `json:"priorities"`
}

var categories = []AlertCategoryInfo{
	{Key: "urgent", Label: "Urgent", Priority: PriorityCritical, Priorities: []int{PriorityCritical, PriorityUrgent}},
	{Key: "engagement", Label: "Engagement", Priority: PriorityEngagement, Priorities: []int{PriorityEngagement}},
	{Key: "team", Label: "Team", Priority: PriorityTeam, Priorities: []int{PriorityTeam}},
	{Key: "trend", Label: "Trends", Priority: PriorityTrend, Priorities: []int{PriorityTrend}},
	{Key: "report", Label: "Reports", Priority: PriorityReport, Priorities: []int{PriorityReport}},
	{Key: "system", Label: "System", Priority: PrioritySystem, Priorities: []int{PrioritySystem}},
	{Key: "other", Label: "Other", Priority: PriorityOther, Priorities: []int{PriorityOther}},
}

// BucketOf maps a priority to the canonical priority of its category.
// Priorities 1 and 2 share the urgent bucket (1); anything outside 1-8 lands in other (8).
func BucketOf(priority int) int {
	switch {
	case priority == PriorityCritical || priority == PriorityUrgent:
		return PriorityCritical
	case priority >= PriorityEngagement && priority <= PrioritySystem:
		return priority
	default:
		return PriorityOther
	}
}

// CategoryInfo returns the category a priority belongs to.
func CategoryInfo(priority int) AlertCategoryInfo {
	bucket := BucketOf(priority)
	for _, c := range categories {
		if c.Priority == bucket {
			return cloneCategory(c)
		}
	}
	return cloneCategory(categories[len(categories)-1])
}

// Categories lists every category in display order.
func Categories() []AlertCategoryInfo {
	out := make([]AlertCategoryInfo, 0, len(categories))
	for _, c := range categories {
		out = append(out, cloneCategory(c))
	}
	return out
}

func cloneCategory(c AlertCategoryInfo) AlertCategoryInfo {
	c.Priorities = append([]int(nil), c.Priorities...)
	return c
}
