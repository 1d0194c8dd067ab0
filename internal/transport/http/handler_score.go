package httptransport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	appscore "arcade-tournament/internal/app/score"

	"github.com/rs/zerolog/log"
)

type ScoreService interface {
	Submit(ctx context.Context, in appscore.SubmitInput) (*appscore.SubmitResult, error)
	Leaderboard(ctx context.Context, sessionID string, limit int) (*appscore.LeaderboardResult, error)
}

type ScoreHandlers struct {
	svc ScoreService
}

func NewScoreHandlers(svc ScoreService) *ScoreHandlers {
	return &ScoreHandlers{svc: svc}
}

type submitScoreRequest struct {
	WalletAddress string   `json:"walletAddress"`
	Username      string   `json:"username"`
	Score         *float64 `json:"score"`
	SessionID     string   `json:"sessionId"`
}

func (h *ScoreHandlers) Submit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		metricScoreSubmitTotal.Add(1)
		var req submitScoreRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			metricScoreSubmitErrors.Add(1)
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}
		if req.Score == nil {
			metricScoreSubmitErrors.Add(1)
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		res, err := h.svc.Submit(r.Context(), appscore.SubmitInput{
			WalletAddress: req.WalletAddress,
			Username:      req.Username,
			Score:         *req.Score,
			SessionID:     req.SessionID,
		})
		if err != nil {
			metricScoreSubmitErrors.Add(1)
			writeScoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success":  true,
			"scoreId":  res.ScoreID,
			"updated":  res.Updated,
			"existing": res.Existing,
			"message":  submitMessage(res),
		})
	}
}

func submitMessage(res *appscore.SubmitResult) string {
	switch {
	case res.Existing:
		return "Score already recorded (existing score is higher)"
	case res.Updated:
		return "Score updated successfully"
	default:
		return "Score submitted successfully"
	}
}

func (h *ScoreHandlers) Leaderboard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.URL.Query().Get("sessionId")
		res, err := h.svc.Leaderboard(r.Context(), sessionID, parseLimit(r))
		if err != nil {
			writeScoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success":     true,
			"session_id":  res.SessionID,
			"leaderboard": res.Leaderboard,
			"totalScores": res.TotalScores,
		})
	}
}

func writeScoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, appscore.ErrInvalidRequest):
		WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
	case errors.Is(err, appscore.ErrInvalidWallet):
		WriteHTTPError(w, http.StatusBadRequest, "invalid_wallet_address")
	case errors.Is(err, appscore.ErrScoreOutOfRange):
		WriteHTTPError(w, http.StatusBadRequest, "score_out_of_range")
	case errors.Is(err, appscore.ErrSessionNotActive):
		WriteHTTPError(w, http.StatusBadRequest, "session_not_active")
	case errors.Is(err, appscore.ErrSessionNotFound):
		WriteHTTPError(w, http.StatusNotFound, "session_not_found")
	case errors.Is(err, appscore.ErrStorage):
		log.Error().Err(err).Msg("score_storage_failed")
		WriteHTTPError(w, http.StatusInternalServerError, "storage_error")
	default:
		log.Error().Err(err).Msg("score_request_failed")
		WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
	}
}
