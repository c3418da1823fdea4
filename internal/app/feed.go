package app

import (
	"sync"
	"time"

	"wellbeing-weather-service/internal/alerts"
	"wellbeing-weather-service/internal/domain"
)

// feedPreview caps how many unread alerts a feed snapshot carries.
const feedPreview = 20

// Feed is the snapshot pushed to a recipient's live connections.
type Feed struct {
	RecipientID string                       `json:"recipientId"`
	Unread      int                          `json:"unread"`
	Counts      map[int]alerts.CategoryCount `json:"counts"`
	Latest      []domain.Alert               `json:"latest"`
	UpdatedAt   time.Time                    `json:"updatedAt"`
}

func buildFeed(recipientID string, all []domain.Alert, now time.Time) Feed {
	unread := alerts.SortByRecency(alerts.Filter(all, alerts.FilterOptions{UnreadOnly: true}))
	if len(unread) > feedPreview {
		unread = unread[:feedPreview]
	}
	return Feed{
		RecipientID: recipientID,
		Unread:      alerts.UnreadCount(all),
		Counts:      alerts.CountByCategory(all),
		Latest:      unread,
		UpdatedAt:   now,
	}
}

// feedHub fans feed snapshots out to subscribers, keyed by recipient.
type feedHub struct {
	mu          sync.Mutex
	subscribers map[string]map[chan Feed]struct{}
}

func newFeedHub() *feedHub {
	return &feedHub{subscribers: make(map[string]map[chan Feed]struct{})}
}

func (h *feedHub) subscribe(recipientID string, initial Feed) (<-chan Feed, func()) {
	ch := make(chan Feed, 8)
	ch <- initial

	h.mu.Lock()
	if h.subscribers[recipientID] == nil {
		h.subscribers[recipientID] = make(map[chan Feed]struct{})
	}
	h.subscribers[recipientID][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		subs := h.subscribers[recipientID]
		if _, ok := subs[ch]; ok {
			delete(subs, ch)
			close(ch)
		}
		if len(subs) == 0 {
			delete(h.subscribers, recipientID)
		}
	}
	return ch, cancel
}

func (h *feedHub) hasSubscribers(recipientID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers[recipientID]) > 0
}

func (h *feedHub) broadcast(feed Feed) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers[feed.RecipientID] {
		select {
		case ch <- feed:
		default:
			// Slow reader: drop its oldest snapshot so the newest always lands.
			select {
			case <-ch:
			default:
			}
			ch <- feed
		}
	}
}
