package http

import (
	"context"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"wellbeing-weather-service/internal/alerts"
	"wellbeing-weather-service/internal/domain"
)

func TestAlertFeedSocket(t *testing.T) {
	server, alertService := newTestServer(t)

	u := "ws" + server.URL[len("http"):] + "/ws/alerts?userId=m1"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	typ, payload := readNext(conn, t, "feed")
	if payload["unread"].(float64) != 0 {
		t.Fatalf("expected empty initial feed, got %v", payload)
	}

	err = alertService.Publish(context.Background(), domain.Alert{ID: "a1", UserID: "m1", Type: alerts.HighRisk, Title: "Ben is at high risk"})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	typ, payload = readNext(conn, t, "feed")
	if payload["unread"].(float64) != 1 {
		t.Fatalf("expected one unread after publish, got %s %v", typ, payload)
	}

	if err := conn.WriteJSON(map[string]any{"type": "markRead", "payload": map[string]any{"alertId": "a1"}}); err != nil {
		t.Fatalf("write markRead: %v", err)
	}
	resultSeen, feedSeen := false, false
	for i := 0; i < 2; i++ {
		typ, payload := readNext(conn, t, "")
		switch typ {
		case "markResult":
			resultSeen = payload["alreadyRead"] == false
		case "feed":
			feedSeen = payload["unread"].(float64) == 0
		}
	}
	if !resultSeen || !feedSeen {
		t.Fatalf("expected markResult and refreshed feed, got markResult=%v feed=%v", resultSeen, feedSeen)
	}

	if err := conn.WriteJSON(map[string]any{"type": "markAllRead"}); err != nil {
		t.Fatalf("write markAllRead: %v", err)
	}
	typ, payload = readNext(conn, t, "error")
	if payload["message"] != domain.ErrNoUnreadAlerts.Error() {
		t.Fatalf("expected no-unread error, got %s %v", typ, payload)
	}
}

func TestAlertFeedRequiresUser(t *testing.T) {
	server, _ := newTestServer(t)
	u := "ws" + server.URL[len("http"):] + "/ws/alerts"
	_, resp, err := websocket.DefaultDialer.Dial(u, nil)
	if err == nil {
		t.Fatalf("expected dial to fail without userId")
	}
	if resp == nil || resp.StatusCode != 400 {
		t.Fatalf("expected 400 response, got %+v", resp)
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}
