package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"ridi-pay/internal/domain"
	"ridi-pay/internal/domain/model"
	"ridi-pay/internal/domain/ports/repository"
)

var _ repository.UserRepository = (*userRepo)(nil)

type userRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *userRepo {
	return &userRepo{pool: pool}
}

func (r *userRepo) FindByUIdx(ctx context.Context, tx repository.Tx, uIdx int64) (*model.User, error) {
	q := lockable(`SELECT u_idx, pin, is_using_onetouch_pay, created_at, leaved_at FROM users WHERE u_idx=$1`, tx)
	row, err := pickRow(ctx, r.pool, tx, q, uIdx)
	if err != nil {
		return nil, err
	}
	var u model.User
	if err := row.Scan(&u.UIdx, &u.PinHash, &u.IsOnetouchPay, &u.CreatedAt, &u.LeavedAt); err != nil {
		return nil, dbErr(err, domain.ErrUserNotFound)
	}
	return &u, nil
}

func (r *userRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	const q = `
INSERT INTO users (u_idx, pin, is_using_onetouch_pay, created_at, leaved_at)
VALUES ($1,$2,$3,$4,$5)
ON CONFLICT (u_idx) DO UPDATE SET
  pin=$2, is_using_onetouch_pay=$3, leaved_at=$5, updated_at=NOW();`
	_, err := execSQL(ctx, r.pool, tx, q, u.UIdx, u.PinHash, u.IsOnetouchPay, u.CreatedAt, u.LeavedAt)
	return dbErr(err, domain.ErrUserNotFound)
}

// LockUser takes a transaction-scoped advisory lock keyed by u_idx, so it also
// serializes first-time registrations for users that have no row yet.
func (r *userRepo) LockUser(ctx context.Context, tx repository.Tx, uIdx int64) error {
	t, ok := tx.(pgx.Tx)
	if !ok {
		return domain.ErrInvalidExecContext
	}
	_, err := t.Exec(ctx, `SELECT pg_advisory_xact_lock($1);`, uIdx)
	return dbErr(err, domain.ErrUserNotFound)
}

func (r *userRepo) AddActionHistory(ctx context.Context, tx repository.Tx, h *model.UserActionHistory) error {
	const q = `INSERT INTO user_action_histories (u_idx, action, created_at) VALUES ($1,$2,$3) RETURNING id;`
	row, err := pickRow(ctx, r.pool, tx, q, h.UIdx, h.Action, h.CreatedAt)
	if err != nil {
		return err
	}
	return dbErr(row.Scan(&h.ID), domain.ErrOperationFailed)
}
