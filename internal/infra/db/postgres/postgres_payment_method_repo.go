package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"ridi-pay/internal/domain"
	"ridi-pay/internal/domain/model"
	"ridi-pay/internal/domain/ports/repository"
)

var _ repository.PaymentMethodRepository = (*paymentMethodRepo)(nil)

type paymentMethodRepo struct{ pool *pgxpool.Pool }

func NewPaymentMethodRepo(pool *pgxpool.Pool) *paymentMethodRepo {
	return &paymentMethodRepo{pool: pool}
}

const paymentMethodColumns = `id, uuid, u_idx, type, created_at, deleted_at`

func scanPaymentMethod(row pgx.Row) (*model.PaymentMethod, error) {
	m := &model.PaymentMethod{}
	if err := row.Scan(&m.ID, &m.UUID, &m.UIdx, &m.Type, &m.CreatedAt, &m.DeletedAt); err != nil {
		return nil, err
	}
	return m, nil
}

func (r *paymentMethodRepo) Save(ctx context.Context, tx repository.Tx, m *model.PaymentMethod) error {
	const q = `INSERT INTO payment_methods (uuid, u_idx, type, created_at) VALUES ($1,$2,$3,$4) RETURNING id;`
	row, err := pickRow(ctx, r.pool, tx, q, m.UUID, m.UIdx, m.Type, m.CreatedAt)
	if err != nil {
		return err
	}
	if err := row.Scan(&m.ID); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return dbErr(err, domain.ErrOperationFailed)
	}
	return nil
}

func (r *paymentMethodRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.PaymentMethod, error) {
	q := lockable(`SELECT `+paymentMethodColumns+` FROM payment_methods WHERE id=$1`, tx)
	return r.queryOne(ctx, tx, q, id)
}

func (r *paymentMethodRepo) FindByUUID(ctx context.Context, tx repository.Tx, id uuid.UUID) (*model.PaymentMethod, error) {
	q := lockable(`SELECT `+paymentMethodColumns+` FROM payment_methods WHERE uuid=$1`, tx)
	return r.queryOne(ctx, tx, q, id)
}

func (r *paymentMethodRepo) ListActiveByUser(ctx context.Context, tx repository.Tx, uIdx int64) ([]*model.PaymentMethod, error) {
	q := `SELECT ` + paymentMethodColumns + ` FROM payment_methods WHERE u_idx=$1 AND deleted_at IS NULL ORDER BY created_at ASC, id ASC`
	rows, err := queryRows(ctx, r.pool, tx, q, uIdx)
	if err != nil {
		return nil, dbErr(err, domain.ErrNotFound)
	}
	return collect(rows, func(rs pgx.Rows) (*model.PaymentMethod, error) { return scanPaymentMethod(rs) })
}

func (r *paymentMethodRepo) MarkDeleted(ctx context.Context, tx repository.Tx, id int64, at time.Time) error {
	const q = `UPDATE payment_methods SET deleted_at=$2 WHERE id=$1 AND deleted_at IS NULL;`
	_, err := execSQL(ctx, r.pool, tx, q, id, at)
	return dbErr(err, domain.ErrUnregisteredPaymentMethod)
}

func (r *paymentMethodRepo) queryOne(ctx context.Context, tx repository.Tx, q string, args ...interface{}) (*model.PaymentMethod, error) {
	row, err := pickRow(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, err
	}
	m, err := scanPaymentMethod(row)
	if err != nil {
		return nil, dbErr(err, domain.ErrUnregisteredPaymentMethod)
	}
	return m, nil
}
