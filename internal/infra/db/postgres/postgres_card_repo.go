package postgres

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"ridi-pay/internal/domain"
	"ridi-pay/internal/domain/model"
	"ridi-pay/internal/domain/ports/repository"
)

var _ repository.CardRepository = (*cardRepo)(nil)

type cardRepo struct{ pool *pgxpool.Pool }

func NewCardRepo(pool *pgxpool.Pool) *cardRepo {
	return &cardRepo{pool: pool}
}

const cardColumns = `id, payment_method_id, card_issuer_id, pg_id, pg_bill_key, iin, purpose, created_at`

func scanCard(row pgx.Row) (*model.Card, error) {
	c := &model.Card{}
	if err := row.Scan(&c.ID, &c.PaymentMethodID, &c.CardIssuerID, &c.PgID, &c.PgBillKey, &c.Iin, &c.Purpose, &c.CreatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *cardRepo) Save(ctx context.Context, tx repository.Tx, c *model.Card) error {
	const q = `
INSERT INTO cards (payment_method_id, card_issuer_id, pg_id, pg_bill_key, iin, purpose, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING id;`
	row, err := pickRow(ctx, r.pool, tx, q, c.PaymentMethodID, c.CardIssuerID, c.PgID, c.PgBillKey, c.Iin, c.Purpose, c.CreatedAt)
	if err != nil {
		return err
	}
	if err := row.Scan(&c.ID); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return dbErr(err, domain.ErrOperationFailed)
	}
	return nil
}

func (r *cardRepo) ListByPaymentMethod(ctx context.Context, tx repository.Tx, paymentMethodID int64) ([]*model.Card, error) {
	q := `SELECT ` + cardColumns + ` FROM cards WHERE payment_method_id=$1 ORDER BY id ASC`
	rows, err := queryRows(ctx, r.pool, tx, q, paymentMethodID)
	if err != nil {
		return nil, dbErr(err, domain.ErrNotFound)
	}
	return collect(rows, func(rs pgx.Rows) (*model.Card, error) { return scanCard(rs) })
}

func (r *cardRepo) FindByPaymentMethodAndPurpose(ctx context.Context, tx repository.Tx, paymentMethodID int64, purpose model.CardPurpose) (*model.Card, error) {
	q := `SELECT ` + cardColumns + ` FROM cards WHERE payment_method_id=$1 AND purpose=$2`
	row, err := pickRow(ctx, r.pool, tx, q, paymentMethodID, purpose)
	if err != nil {
		return nil, err
	}
	c, err := scanCard(row)
	if err != nil {
		return nil, dbErr(err, domain.ErrNotFound)
	}
	return c, nil
}
