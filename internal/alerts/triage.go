package alerts

import (
	"sort"

	"wellbeing-weather-service/internal/domain"
)

// FilterOptions selects alerts for a feed view. An empty Priorities set disables the priority filter.
type FilterOptions struct {
	UnreadOnly bool
	Priorities []int
}

// Filter applies the unread filter, then the priority filter. Membership is checked per
// bucket, so asking for priority 1 also returns priority 2 alerts.
func Filter(alerts []domain.Alert, opts FilterOptions) []domain.Alert {
	buckets := make(map[int]struct{}, len(opts.Priorities))
	for _, p := range opts.Priorities {
		buckets[BucketOf(p)] = struct{}{}
	}

	out := make([]domain.Alert, 0, len(alerts))
	for _, a := range alerts {
		if opts.UnreadOnly && a.IsRead {
			continue
		}
		if len(buckets) > 0 {
			if _, ok := buckets[BucketOf(PriorityOf(a.Type))]; !ok {
				continue
			}
		}
		out = append(out, a)
	}
	return out
}

// SortByRecency returns a copy ordered newest first; equal timestamps keep input order.
func SortByRecency(alerts []domain.Alert) []domain.Alert {
	out := append([]domain.Alert(nil), alerts...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// MarkResult tells the caller whether MarkRead changed anything.
type MarkResult struct {
	Alert       domain.Alert `json:"alert"`
	AlreadyRead bool         `json:"alreadyRead"`
}

// MarkRead flips one alert to read in place.
func MarkRead(alerts []domain.Alert, recipientID, alertID string) (MarkResult, error) {
	for i := range alerts {
		a := &alerts[i]
		if a.ID != alertID || a.UserID != recipientID {
			continue
		}
		if a.IsRead {
			return MarkResult{Alert: *a, AlreadyRead: true}, nil
		}
		a.IsRead = true
		return MarkResult{Alert: *a}, nil
	}
	return MarkResult{}, domain.ErrAlertNotFound
}

// MarkAllRead flips every unread alert of the recipient in place and returns how many changed.
func MarkAllRead(alerts []domain.Alert, recipientID string) (int, error) {
	updated := 0
	for i := range alerts {
		if alerts[i].UserID != recipientID || alerts[i].IsRead {
			continue
		}
		alerts[i].IsRead = true
		updated++
	}
	if updated == 0 {
		return 0, domain.ErrNoUnreadAlerts
	}
	return updated, nil
}

// AppendUnique appends batch to current, refusing any id already present in either.
// current is never modified.
func AppendUnique(current, batch []domain.Alert) ([]domain.Alert, error) {
	seen := make(map[string]struct{}, len(current)+len(batch))
	for _, a := range current {
		seen[a.ID] = struct{}{}
	}
	out := make([]domain.Alert, 0, len(current)+len(batch))
	out = append(out, current...)
	for _, a := range batch {
		if _, dup := seen[a.ID]; dup {
			return nil, domain.NewValidationError("id", "alert %q already exists for %q", a.ID, a.UserID)
		}
		seen[a.ID] = struct{}{}
		out = append(out, a)
	}
	return out, nil
}

// CategoryCount is the badge payload of one category.
type CategoryCount struct {
	Total  int `json:"total"`
	Unread int `json:"unread"`
}

// CountByCategory counts alerts per bucket priority. Every category is present, even at zero.
func CountByCategory(alerts []domain.Alert) map[int]CategoryCount {
	counts := make(map[int]CategoryCount, len(categories))
	for _, c := range categories {
		counts[c.Priority] = CategoryCount{}
	}
	for _, a := range alerts {
		bucket := BucketOf(PriorityOf(a.Type))
		c := counts[bucket]
		c.Total++
		if !a.IsRead {
			c.Unread++
		}
		counts[bucket] = c
	}
	return counts
}

// UnreadCount counts unread alerts.
func UnreadCount(alerts []domain.Alert) int {
	n := 0
	for _, a := range alerts {
		if !a.IsRead {
			n++
		}
	}
	return n
}

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Page is one slice of a sorted alert list.
type Page struct {
	Items      []domain.Alert `json:"items"`
	Page       int            `json:"page"`
	PerPage    int            `json:"perPage"`
	Total      int            `json:"total"`
	TotalPages int            `json:"totalPages"`
}

// Paginate cuts a 1-based page out of alerts. Pages past the end come back empty.
func Paginate(alerts []domain.Alert, page, perPage int) Page {
	if page < 1 {
		page = 1
	}
	switch {
	case perPage <= 0:
		perPage = DefaultPerPage
	case perPage > MaxPerPage:
		perPage = MaxPerPage
	}

	total := len(alerts)
	totalPages := (total + perPage - 1) / perPage
	start := (page - 1) * perPage
	items := []domain.Alert{}
	if start < total {
		end := start + perPage
		if end > total {
			end = total
		}
		items = append(items, alerts[start:end]...)
	}
	return Page{Items: items, Page: page, PerPage: perPage, Total: total, TotalPages: totalPages}
}
