package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"wellbeing-weather-service/internal/app"
)

// WSHandler streams a recipient's alert feed and accepts read-state changes.
type WSHandler struct {
	alerts   *app.AlertService
	upgrader websocket.Upgrader
}

func NewWSHandler(alertService *app.AlertService) *WSHandler {
	return &WSHandler{
		alerts: alertService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type markReadPayload struct {
	AlertID string `json:"alertId"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

// ServeWS upgrades to a websocket, sends the current feed, then pushes a new feed after every change.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "missing userId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "user", userID, "error", err)
		return
	}
	defer conn.Close()

	updates, cancel, err := h.alerts.Subscribe(r.Context(), userID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer cancel()
	slog.Debug("alert feed connected", "user", userID)

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	// Only the writer goroutine touches conn for writes.
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				slog.Debug("ws write error", "user", userID, "error", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case feed, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "feed", Payload: feed}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		msg := h.handle(r, userID, inbound)
		select {
		case send <- msg:
		case <-writerDone:
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
	slog.Debug("alert feed disconnected", "user", userID)
}

func (h *WSHandler) handle(r *http.Request, userID string, inbound inboundMessage) outboundMessage[any] {
	switch inbound.Type {
	case "markRead":
		var payload markReadPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil || payload.AlertID == "" {
			return errorMessage("invalid markRead payload")
		}
		result, err := h.alerts.MarkRead(r.Context(), userID, payload.AlertID)
		if err != nil {
			return errorMessage(err.Error())
		}
		return outboundMessage[any]{Type: "markResult", Payload: result}
	case "markAllRead":
		n, err := h.alerts.MarkAllRead(r.Context(), userID)
		if err != nil {
			return errorMessage(err.Error())
		}
		return outboundMessage[any]{Type: "markResult", Payload: markAllResponse{Marked: n}}
	default:
		return errorMessage("unsupported message type")
	}
}

func errorMessage(msg string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
}
