package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/warriorcare/warriorcare-backend/internal/models"
	"github.com/warriorcare/warriorcare-backend/internal/services"
)

var dashboardUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS for WebSocket is handled at the HTTP layer already.
		return true
	},
}

// DashboardClientMessage represents messages coming from the frontend over
// WebSocket. Only "ping" is meaningful today.
type DashboardClientMessage struct {
	Type string `json:"type"`
}

// DashboardWebSocket streams live summary updates for the clinician's
// assigned participants. Authentication is done via the existing session
// token (Authorization: Bearer <token>, or ?token= for browser clients).
// Authorization per event happens in the hub: assignments are re-resolved at
// delivery time, so a revoked assignment stops pushes immediately.
func DashboardWebSocket(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r.Header.Get("Authorization"))
	if token == "" {
		token = r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "missing session token", http.StatusUnauthorized)
			return
		}
	}

	userID, ok, err := services.ValidateSession(token)
	if err != nil || !ok {
		http.Error(w, "invalid session token", http.StatusUnauthorized)
		return
	}

	ident, err := store.IdentityByID(r.Context(), userID)
	if err != nil || ident == nil {
		http.Error(w, "invalid session token", http.StatusUnauthorized)
		return
	}
	if ident.Role != models.RoleClinician {
		http.Error(w, "dashboard subscriptions are for clinicians only", http.StatusForbidden)
		return
	}

	conn, err := dashboardUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	// Subscribe to local events for this clinician (fed by Redis subscriber)
	eventsCh, unsubscribe := services.SubscribeDashboard(ident.ID)
	defer unsubscribe()

	// Writer goroutine: forward summary events from hub to this connection.
	// A single writer per connection preserves per-participant event order.
	go func() {
		for evt := range eventsCh {
			if err := conn.WriteJSON(evt); err != nil {
				return
			}
		}
	}()

	// Reader loop: keep the connection alive and detect disconnects
	conn.SetReadLimit(4 * 1024)
	_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	conn.SetPongHandler(func(appData string) error {
		_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		return nil
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg DashboardClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case "ping":
			_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		default:
			// Ignore unknown types
		}
	}
}
