package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"ridi-pay/internal/domain"
	"ridi-pay/internal/domain/model"
	"ridi-pay/internal/domain/ports/repository"
)

var _ repository.TransactionRepository = (*transactionRepo)(nil)

type transactionRepo struct{ pool *pgxpool.Pool }

func NewTransactionRepo(pool *pgxpool.Pool) *transactionRepo {
	return &transactionRepo{pool: pool}
}

const transactionColumns = `id, uuid, u_idx, payment_method_id, partner_id, pg_id, partner_transaction_id, pg_transaction_id,
       product_name, amount, status, reserved_at, approved_at, canceled_at`

func scanTransaction(row pgx.Row) (*model.Transaction, error) {
	t := &model.Transaction{}
	err := row.Scan(&t.ID, &t.UUID, &t.UIdx, &t.PaymentMethodID, &t.PartnerID, &t.PgID, &t.PartnerTransactionID, &t.PgTransactionID,
		&t.ProductName, &t.Amount, &t.Status, &t.ReservedAt, &t.ApprovedAt, &t.CanceledAt)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// Save inserts a RESERVED row. The partial unique index on
// (partner_id, partner_transaction_id) WHERE status <> 'CANCELED' rejects duplicates.
func (r *transactionRepo) Save(ctx context.Context, tx repository.Tx, t *model.Transaction) error {
	const q = `
INSERT INTO transactions (
  uuid, u_idx, payment_method_id, partner_id, pg_id, partner_transaction_id, pg_transaction_id,
  product_name, amount, status, reserved_at, approved_at, canceled_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13) RETURNING id;`
	row, err := pickRow(ctx, r.pool, tx, q, t.UUID, t.UIdx, t.PaymentMethodID, t.PartnerID, t.PgID, t.PartnerTransactionID, t.PgTransactionID,
		t.ProductName, t.Amount, t.Status, t.ReservedAt, t.ApprovedAt, t.CanceledAt)
	if err != nil {
		return err
	}
	if err := row.Scan(&t.ID); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyRunningTransaction
		}
		return dbErr(err, domain.ErrOperationFailed)
	}
	return nil
}

func (r *transactionRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Transaction, error) {
	q := lockable(`SELECT `+transactionColumns+` FROM transactions WHERE id=$1`, tx)
	return r.queryOne(ctx, tx, domain.ErrTransactionNotFound, q, id)
}

func (r *transactionRepo) FindByUUID(ctx context.Context, tx repository.Tx, id uuid.UUID) (*model.Transaction, error) {
	q := lockable(`SELECT `+transactionColumns+` FROM transactions WHERE uuid=$1`, tx)
	return r.queryOne(ctx, tx, domain.ErrTransactionNotFound, q, id)
}

func (r *transactionRepo) FindRunning(ctx context.Context, tx repository.Tx, partnerID int64, partnerTransactionID string) (*model.Transaction, error) {
	q := `SELECT ` + transactionColumns + ` FROM transactions
 WHERE partner_id=$1 AND partner_transaction_id=$2 AND status <> 'CANCELED'`
	return r.queryOne(ctx, tx, domain.ErrNotFound, q, partnerID, partnerTransactionID)
}

func (r *transactionRepo) Transition(ctx context.Context, tx repository.Tx, t *model.Transaction, from model.TransactionStatus) (bool, error) {
	const q = `
UPDATE transactions
   SET status=$2, pg_transaction_id=$3, approved_at=$4, canceled_at=$5, updated_at=NOW()
 WHERE id=$1 AND status=$6;`
	tag, err := execSQL(ctx, r.pool, tx, q, t.ID, t.Status, t.PgTransactionID, t.ApprovedAt, t.CanceledAt, from)
	if err != nil {
		return false, dbErr(err, domain.ErrTransactionNotFound)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *transactionRepo) AddHistory(ctx context.Context, tx repository.Tx, h *model.TransactionHistory) error {
	const q = `
INSERT INTO transaction_histories (transaction_id, action, is_success, pg_response_code, pg_response_message, created_at)
VALUES ($1,$2,$3,$4,$5,$6) RETURNING id;`
	row, err := pickRow(ctx, r.pool, tx, q, h.TransactionID, h.Action, h.IsSuccess, h.PgResponseCode, h.PgResponseMessage, h.CreatedAt)
	if err != nil {
		return err
	}
	return dbErr(row.Scan(&h.ID), domain.ErrOperationFailed)
}

func (r *transactionRepo) ListHistory(ctx context.Context, tx repository.Tx, transactionID int64) ([]*model.TransactionHistory, error) {
	const q = `
SELECT id, transaction_id, action, is_success, pg_response_code, pg_response_message, created_at
  FROM transaction_histories WHERE transaction_id=$1 ORDER BY id ASC;`
	rows, err := queryRows(ctx, r.pool, tx, q, transactionID)
	if err != nil {
		return nil, dbErr(err, domain.ErrNotFound)
	}
	return collect(rows, func(rs pgx.Rows) (*model.TransactionHistory, error) {
		h := &model.TransactionHistory{}
		err := rs.Scan(&h.ID, &h.TransactionID, &h.Action, &h.IsSuccess, &h.PgResponseCode, &h.PgResponseMessage, &h.CreatedAt)
		return h, err
	})
}

func (r *transactionRepo) queryOne(ctx context.Context, tx repository.Tx, notFound error, q string, args ...interface{}) (*model.Transaction, error) {
	row, err := pickRow(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, err
	}
	t, err := scanTransaction(row)
	if err != nil {
		return nil, dbErr(err, notFound)
	}
	return t, nil
}
