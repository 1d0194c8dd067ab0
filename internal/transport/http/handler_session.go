package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	appsession "arcade-tournament/internal/app/session"

	"github.com/rs/zerolog/log"
)

type SessionService interface {
	GetOrCreateActive(ctx context.Context) (*appsession.SessionView, error)
	ForceNew(ctx context.Context) (*appsession.SessionView, error)
	ProcessPayouts(ctx context.Context) (*appsession.PayoutReport, error)
}

const (
	actionForceNewSession = "force_new_session"
	actionProcessPayouts  = "process_payouts"
)

type SessionHandlers struct {
	svc      SessionService
	adminKey string
}

func NewSessionHandlers(svc SessionService, adminKey string) *SessionHandlers {
	return &SessionHandlers{svc: svc, adminKey: adminKey}
}

func (h *SessionHandlers) Current() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := h.svc.GetOrCreateActive(r.Context())
		if err != nil {
			writeSessionError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "session": view})
	}
}

func (h *SessionHandlers) Rotation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := h.svc.GetOrCreateActive(r.Context())
		if err != nil {
			writeSessionError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success":       true,
			"session_id":    view.ID,
			"featured_game": view.FeaturedGame,
		})
	}
}

// Action runs an administrative session action. Both actions require the
// admin key when one is configured.
func (h *SessionHandlers) Action() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricSessionActionTotal.Add(1)
		if h.adminKey != "" && !CheckAdminAuth(r, h.adminKey) {
			metricSessionActionErrors.Add(1)
			WriteHTTPError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		var req struct {
			Action string `json:"action"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			metricSessionActionErrors.Add(1)
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		switch req.Action {
		case actionForceNewSession:
			view, err := h.svc.ForceNew(r.Context())
			if err != nil {
				metricSessionActionErrors.Add(1)
				writeSessionError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "session": view})
		case actionProcessPayouts:
			report, err := h.svc.ProcessPayouts(r.Context())
			if err != nil {
				metricSessionActionErrors.Add(1)
				writeSessionError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{
				"success":    true,
				"session_id": report.SessionID,
				"prize_pool": report.PrizePool,
				"top_scores": report.TopScores,
				"awards":     report.Awards,
			})
		default:
			metricSessionActionErrors.Add(1)
			WriteHTTPError(w, http.StatusBadRequest, "invalid_action")
		}
	}
}

func writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, appsession.ErrNoActiveSession):
		WriteHTTPError(w, http.StatusNotFound, "no_active_session")
	case errors.Is(err, appsession.ErrStorage):
		log.Error().Err(err).Msg("session_storage_failed")
		WriteHTTPError(w, http.StatusInternalServerError, "storage_error")
	default:
		log.Error().Err(err).Msg("session_request_failed")
		WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
	}
}
