package app

import (
	"context"
	"time"

	"wellbeing-weather-service/internal/domain"
	"wellbeing-weather-service/internal/scoring"
	"wellbeing-weather-service/internal/stats"
)

// TeamService scopes users to what a viewer may see and aggregates their history.
type TeamService struct {
	users      UserDirectory
	surveys    SurveyRepository
	classifier scoring.Classifier
	windowDays int
	now        func() time.Time
}

func NewTeamService(users UserDirectory, surveys SurveyRepository, classifier scoring.Classifier, windowDays int) *TeamService {
	return &TeamService{
		users:      users,
		surveys:    surveys,
		classifier: classifier,
		windowDays: windowDays,
		now:        time.Now,
	}
}

// NewTeamServiceWithClock is test-only for deterministic response rates.
func NewTeamServiceWithClock(users UserDirectory, surveys SurveyRepository, classifier scoring.Classifier, windowDays int, now func() time.Time) *TeamService {
	s := NewTeamService(users, surveys, classifier, windowDays)
	s.now = now
	return s
}

// Scope lists the active users a viewer may aggregate over: everyone for admin and hr,
// direct reports for managers, and only themself otherwise.
func (s *TeamService) Scope(ctx context.Context, viewerID string) ([]domain.User, error) {
	viewer, err := s.users.Get(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	switch viewer.Role {
	case domain.RoleAdmin, domain.RoleHR, domain.RoleManager:
	default:
		if !viewer.IsActive {
			return []domain.User{}, nil
		}
		return []domain.User{viewer}, nil
	}

	all, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.User, 0, len(all))
	for _, u := range all {
		if !u.IsActive {
			continue
		}
		if viewer.Role == domain.RoleManager && u.ManagerID != viewer.ID {
			continue
		}
		out = append(out, u)
	}
	return out, nil
}

// CanView reports whether viewer may read target's individual scores.
func (s *TeamService) CanView(ctx context.Context, viewerID, targetID string) (bool, error) {
	if viewerID == targetID {
		return true, nil
	}
	users, err := s.Scope(ctx, viewerID)
	if err != nil {
		return false, err
	}
	for _, u := range users {
		if u.ID == targetID {
			return true, nil
		}
	}
	return false, nil
}

// Overall returns organization-wide totals for the viewer's scope.
func (s *TeamService) Overall(ctx context.Context, viewerID string) (domain.TeamOverallStats, error) {
	users, history, err := s.load(ctx, viewerID)
	if err != nil {
		return domain.TeamOverallStats{}, err
	}
	return stats.OverallStats(users, history, s.options()), nil
}

// Departments returns the per-department breakdown for the viewer's scope.
func (s *TeamService) Departments(ctx context.Context, viewerID string) ([]domain.DepartmentStats, error) {
	users, history, err := s.load(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	return stats.DepartmentBreakdown(users, history, s.options()), nil
}

// Members returns one row per member in the viewer's scope, most at-risk first.
func (s *TeamService) Members(ctx context.Context, viewerID string) ([]domain.TeamMemberStats, error) {
	users, history, err := s.load(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	return stats.TeamMembers(users, history, s.options()), nil
}

func (s *TeamService) load(ctx context.Context, viewerID string) ([]domain.User, stats.History, error) {
	users, err := s.Scope(ctx, viewerID)
	if err != nil {
		return nil, stats.History{}, err
	}
	if len(users) == 0 {
		return users, stats.History{}, nil
	}
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	surveys, err := s.surveys.ListByUsers(ctx, ids)
	if err != nil {
		return nil, stats.History{}, err
	}
	return users, stats.History{Surveys: surveys}, nil
}

func (s *TeamService) options() stats.Options {
	return stats.Options{Classifier: s.classifier, Now: s.now(), WindowDays: s.windowDays}
}
