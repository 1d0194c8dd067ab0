package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

const scoreColumns = `id, session_id, player_id, wallet_address, username, score, verified, timestamp`

func scanScore(row pgx.Row) (*Score, error) {
	var sc Score
	if err := row.Scan(&sc.ID, &sc.SessionID, &sc.PlayerID, &sc.WalletAddress, &sc.Username, &sc.Score, &sc.Verified, &sc.Timestamp); err != nil {
		return nil, mapNotFound(err)
	}
	return &sc, nil
}

// UpsertPlayer returns the player for wallet, creating it on first sight.
// The stored username follows the latest submission.
func (s *Store) UpsertPlayer(ctx context.Context, wallet, username string) (*Player, error) {
	var p Player
	err := s.Pool.QueryRow(ctx, `INSERT INTO players (id, wallet_address, username)
		VALUES ($1, $2, $3)
		ON CONFLICT (wallet_address) DO UPDATE SET username = EXCLUDED.username, updated_at = now()
		RETURNING id, wallet_address, username, created_at`, NewID(), wallet, username).
		Scan(&p.ID, &p.WalletAddress, &p.Username, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) GetScore(ctx context.Context, sessionID, wallet string) (*Score, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+scoreColumns+` FROM scores
		WHERE session_id = $1 AND wallet_address = $2`, sessionID, wallet)
	return scanScore(row)
}

// InsertScore stores a first score for (wallet, session). ErrDuplicate means
// a concurrent submission won the insert; ErrSessionClosed means the session
// ended first. The session row is share-locked so a rotation cannot end it
// while the insert is in flight.
func (s *Store) InsertScore(ctx context.Context, sc Score) (*Score, error) {
	if sc.ID == "" {
		sc.ID = NewID()
	}
	row := s.Pool.QueryRow(ctx, `WITH live AS (
			SELECT id FROM game_sessions WHERE id = $2 AND status = 'active' FOR SHARE
		)
		INSERT INTO scores (`+scoreColumns+`)
		SELECT $1::text, live.id, $3::text, $4::text, $5::text, $6::bigint, $7::boolean, $8::timestamptz
		FROM live
		RETURNING `+scoreColumns,
		sc.ID, sc.SessionID, sc.PlayerID, sc.WalletAddress, sc.Username, sc.Score, sc.Verified, timestamptzParam(sc.Timestamp))
	out, err := scanScore(row)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrSessionClosed
	}
	if err != nil {
		return nil, mapUnique(err)
	}
	return out, nil
}

// RaiseScore sets the score only when value is strictly higher than the
// stored one and the score's session is still active. It reports whether the
// row changed; ErrSessionClosed means the session has ended.
func (s *Store) RaiseScore(ctx context.Context, id string, value int64, at time.Time) (bool, error) {
	tag, err := s.Pool.Exec(ctx, `WITH live AS (
			SELECT gs.id FROM game_sessions gs
			JOIN scores sc ON sc.session_id = gs.id
			WHERE sc.id = $1 AND gs.status = 'active'
			FOR SHARE OF gs
		)
		UPDATE scores SET score = $2, timestamp = $3
		FROM live
		WHERE scores.id = $1 AND scores.session_id = live.id AND scores.score < $2`,
		id, value, timestamptzParam(at))
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}
	var status string
	err = s.Pool.QueryRow(ctx, `SELECT gs.status FROM scores sc
		JOIN game_sessions gs ON gs.id = sc.session_id
		WHERE sc.id = $1`, id).Scan(&status)
	if err != nil {
		return false, mapNotFound(err)
	}
	if status != SessionActive {
		return false, ErrSessionClosed
	}
	return false, nil
}

// ListLeaderboard returns verified scores ordered by score, earlier
// timestamp first on ties.
func (s *Store) ListLeaderboard(ctx context.Context, sessionID string, limit int) ([]Score, error) {
	rows, err := s.Pool.Query(ctx, `SELECT `+scoreColumns+` FROM scores
		WHERE session_id = $1 AND verified
		ORDER BY score DESC, timestamp ASC, id ASC
		LIMIT $2`, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Score{}
	for rows.Next() {
		sc, err := scanScore(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *sc)
	}
	return out, rows.Err()
}

func (s *Store) CountVerifiedScores(ctx context.Context, sessionID string) (int, error) {
	var n int
	err := s.Pool.QueryRow(ctx, `SELECT count(*) FROM scores WHERE session_id = $1 AND verified`, sessionID).Scan(&n)
	return n, err
}
