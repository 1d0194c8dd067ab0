package httptransport

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"arcade-tournament/internal/stream"
	"arcade-tournament/internal/tournament"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

var ssePingInterval = 15 * time.Second

type TournamentEngine interface {
	Snapshot() tournament.State
	Start() error
	Reset()
	Events() *stream.Buffer
}

type TournamentHandlers struct {
	engine TournamentEngine
}

func NewTournamentHandlers(engine TournamentEngine) *TournamentHandlers {
	return &TournamentHandlers{engine: engine}
}

func (h *TournamentHandlers) State() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "tournament": h.engine.Snapshot()})
	}
}

func (h *TournamentHandlers) Start() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if err := h.engine.Start(); err != nil {
			if errors.Is(err, tournament.ErrAlreadyRunning) {
				WriteHTTPError(w, http.StatusConflict, "tournament_already_running")
				return
			}
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "tournament": h.engine.Snapshot()})
	}
}

func (h *TournamentHandlers) Reset() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		h.engine.Reset()
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "tournament": h.engine.Snapshot()})
	}
}

// Events streams tournament events as SSE, replaying buffered events after
// Last-Event-ID first.
func (h *TournamentHandlers) Events() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			WriteHTTPError(w, http.StatusInternalServerError, "stream_not_supported")
			return
		}
		buf := h.engine.Events()

		metricTournamentSSEConnectionsTotal.Add(1)
		metricTournamentSSEConnectionsActive.Add(1)
		defer metricTournamentSSEConnectionsActive.Add(-1)

		stream.SetSSEHeaders(w)
		reqID := chimw.GetReqID(r.Context())
		log.Info().Str("request_id", reqID).Msg("sse_stream_opened")

		// subscribe before replay so nothing appended in between is lost
		ch := buf.Subscribe()
		defer buf.Unsubscribe(ch)

		var seen int64
		for _, ev := range buf.ReplayAfter(r.Header.Get("Last-Event-ID")) {
			if err := stream.WriteSSE(w, ev); err != nil {
				return
			}
			seen = eventSeq(ev.EventID)
		}
		flusher.Flush()

		ticker := time.NewTicker(ssePingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-r.Context().Done():
				log.Info().Str("request_id", reqID).Err(r.Context().Err()).Msg("sse_stream_closed")
				return
			case ev, ok := <-ch:
				if !ok {
					return
				}
				if eventSeq(ev.EventID) <= seen {
					continue
				}
				if err := stream.WriteSSE(w, ev); err != nil {
					return
				}
				flusher.Flush()
			case <-ticker.C:
				now := time.Now().UnixMilli()
				ping := stream.Event{Event: "ping", ServerTS: now, Data: map[string]any{"ts": now}}
				if err := stream.WriteSSE(w, ping); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}

func eventSeq(id string) int64 {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
