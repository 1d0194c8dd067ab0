package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

const sessionColumns = `id, status, start_time, end_time, entry_fee::text, prize_pool::text, max_players`

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func scanSession(row pgx.Row) (*GameSession, error) {
	var (
		gs        GameSession
		endTime   pgtype.Timestamptz
		fee, pool string
	)
	if err := row.Scan(&gs.ID, &gs.Status, &gs.StartTime, &endTime, &fee, &pool, &gs.MaxPlayers); err != nil {
		return nil, mapNotFound(err)
	}
	gs.EndTime = timePtrVal(endTime)
	var err error
	if gs.EntryFee, err = decimalVal(fee); err != nil {
		return nil, err
	}
	if gs.PrizePool, err = decimalVal(pool); err != nil {
		return nil, err
	}
	return &gs, nil
}

// GetActiveSession returns the most recent active session or ErrNotFound.
func (s *Store) GetActiveSession(ctx context.Context) (*GameSession, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+sessionColumns+` FROM game_sessions
		WHERE status = 'active' ORDER BY start_time DESC LIMIT 1`)
	return scanSession(row)
}

func (s *Store) GetSession(ctx context.Context, id string) (*GameSession, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+sessionColumns+` FROM game_sessions WHERE id = $1`, id)
	return scanSession(row)
}

// CreateSession inserts an active session. It returns ErrDuplicate when
// another active session already exists.
func (s *Store) CreateSession(ctx context.Context, next NewSession) (*GameSession, error) {
	return insertSession(ctx, s.Pool, next)
}

// RotateSession ends expiredID, only if it is still active, and inserts the
// replacement in the same transaction. ErrNotFound means another caller
// already ended it.
func (s *Store) RotateSession(ctx context.Context, expiredID string, endedAt time.Time, next NewSession) (*GameSession, error) {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `UPDATE game_sessions SET status = 'ended', end_time = $2
		WHERE id = $1 AND status = 'active'`, expiredID, timestamptzParam(endedAt))
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotFound
	}
	created, err := insertSession(ctx, tx, next)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

// ReplaceActiveSessions ends every active session and inserts next. It
// reports how many sessions were ended.
func (s *Store) ReplaceActiveSessions(ctx context.Context, endedAt time.Time, next NewSession) (*GameSession, int64, error) {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `UPDATE game_sessions SET status = 'ended', end_time = $1
		WHERE status = 'active'`, timestamptzParam(endedAt))
	if err != nil {
		return nil, 0, err
	}
	created, err := insertSession(ctx, tx, next)
	if err != nil {
		return nil, 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, 0, err
	}
	return created, tag.RowsAffected(), nil
}

// CountSessionPlayers counts distinct wallets with a score row in the session.
func (s *Store) CountSessionPlayers(ctx context.Context, sessionID string) (int, error) {
	var n int
	err := s.Pool.QueryRow(ctx, `SELECT count(DISTINCT wallet_address) FROM scores WHERE session_id = $1`, sessionID).Scan(&n)
	return n, err
}

func insertSession(ctx context.Context, q querier, next NewSession) (*GameSession, error) {
	row := q.QueryRow(ctx, `INSERT INTO game_sessions (id, status, start_time, entry_fee, prize_pool, max_players)
		VALUES ($1, 'active', $2, $3::numeric, $4::numeric, $5)
		RETURNING `+sessionColumns,
		NewID(), timestamptzParam(next.StartTime), next.EntryFee.String(), next.PrizePool.String(), next.MaxPlayers)
	gs, err := scanSession(row)
	if err != nil {
		return nil, mapUnique(err)
	}
	return gs, nil
}
