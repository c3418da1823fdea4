package domain

import "time"

// Question is a survey question. Weight scales its contribution to the survey score.
type Question struct {
	ID       string  `json:"id" yaml:"id"`
	Text     string  `json:"text" yaml:"text"`
	Category string  `json:"category" yaml:"category"`
	Weight   float64 `json:"weight" yaml:"weight"`
	IsActive bool    `json:"isActive" yaml:"isActive"`
}

// QuestionResponse is a single 1-5 answer inside a survey submission.
type QuestionResponse struct {
	QuestionID string `json:"questionId"`
	Score      int    `json:"score"`
}

// Survey is one user's submission for one day. TotalScore is fixed at submission time.
type Survey struct {
	ID          string             `json:"id"`
	UserID      string             `json:"userId"`
	SurveyDate  time.Time          `json:"surveyDate"`
	TotalScore  float64            `json:"totalScore"`
	SubmittedAt time.Time          `json:"submittedAt"`
	Responses   []QuestionResponse `json:"responses"`
}

// RiskLevel is the disengagement risk derived from a score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Rank orders risk levels by severity: low=0, medium=1, high=2.
func (r RiskLevel) Rank() int {
	switch r {
	case RiskLow:
		return 0
	case RiskMedium:
		return 1
	default:
		return 2
	}
}

// DailyScore is derived from a Survey on read and never stored on its own.
type DailyScore struct {
	UserID     string    `json:"userId"`
	ScoreDate  time.Time `json:"scoreDate"`
	TotalScore float64   `json:"totalScore"`
	RiskLevel  RiskLevel `json:"riskLevel"`
}

// Role is consumed as a simple allow-list value.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleHR       Role = "hr"
	RoleAdmin    Role = "admin"
)

// User is a user directory record.
type User struct {
	ID         string `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	Department string `json:"department" yaml:"department"`
	ManagerID  string `json:"managerId,omitempty" yaml:"managerId"`
	Role       Role   `json:"role" yaml:"role"`
	IsActive   bool   `json:"isActive" yaml:"isActive"`
}

// AlertType names one entry of the alert catalog. Producers may send values outside the catalog.
type AlertType string

// Alert is owned by its recipient (UserID). IsRead only ever moves from false to true.
type Alert struct {
	ID           string    `json:"id"`
	UserID       string    `json:"userId"`
	TargetUserID string    `json:"targetUserId,omitempty"`
	Type         AlertType `json:"type"`
	Title        string    `json:"title"`
	Message      string    `json:"message"`
	IsRead       bool      `json:"isRead"`
	CreatedAt    time.Time `json:"createdAt"`
}

// TeamMemberStats is the per-member row of a manager's team view.
type TeamMemberStats struct {
	UserID       string      `json:"userId"`
	Name         string      `json:"name"`
	Department   string      `json:"department"`
	LatestScore  *DailyScore `json:"latestScore"`
	RiskLevel    RiskLevel   `json:"riskLevel,omitempty"`
	ResponseRate int         `json:"responseRate"`
	// Trend is latest minus previous score; zero with fewer than two surveys.
	Trend float64 `json:"trend"`
}

// DepartmentStats aggregates the latest scores of one department.
type DepartmentStats struct {
	Department   string  `json:"department"`
	MemberCount  int     `json:"memberCount"`
	AverageScore float64 `json:"averageScore"`
	HighRisk     int     `json:"highRisk"`
	MediumRisk   int     `json:"mediumRisk"`
	LowRisk      int     `json:"lowRisk"`
	ResponseRate int     `json:"responseRate"`
}

// TeamOverallStats sums department breakdowns into organization totals.
type TeamOverallStats struct {
	TotalMembers        int               `json:"totalMembers"`
	HighRisk            int               `json:"highRisk"`
	MediumRisk          int               `json:"mediumRisk"`
	LowRisk             int               `json:"lowRisk"`
	AverageScore        float64           `json:"averageScore"`
	AverageResponseRate int               `json:"averageResponseRate"`
	DepartmentBreakdown []DepartmentStats `json:"departmentBreakdown"`
}
