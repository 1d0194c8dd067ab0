package httptransport

import (
	"context"
	"net/http"
	"time"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type SocketHub interface {
	HandleWS(w http.ResponseWriter, r *http.Request)
	Connected() int
}

type AdminHandlers struct {
	db      Pinger
	sockets SocketHub
}

func NewAdminHandlers(db Pinger, sockets SocketHub) *AdminHandlers {
	return &AdminHandlers{db: db, sockets: sockets}
}

func (h *AdminHandlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.db.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "db": "down"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "db": "up"})
	}
}

// Socket reports whether the realtime endpoint is up and how many clients
// are attached.
func (h *AdminHandlers) Socket() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		connected := 0
		if h.sockets != nil {
			connected = h.sockets.Connected()
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success":   true,
			"status":    "ready",
			"connected": connected,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}
