package memory

import (
	"context"
	"sort"

	"wellbeing-weather-service/internal/domain"
)

// UserDirectory is a static directory seeded at startup.
type UserDirectory struct {
	users map[string]domain.User
}

func NewUserDirectory(users []domain.User) *UserDirectory {
	d := &UserDirectory{users: make(map[string]domain.User, len(users))}
	for _, u := range users {
		d.users[u.ID] = u
	}
	return d
}

func (d *UserDirectory) Get(_ context.Context, userID string) (domain.User, error) {
	u, ok := d.users[userID]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return u, nil
}

// List returns every user ordered by id.
func (d *UserDirectory) List(_ context.Context) ([]domain.User, error) {
	out := make([]domain.User, 0, len(d.users))
	for _, u := range d.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
