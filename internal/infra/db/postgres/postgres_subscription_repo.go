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

var _ repository.SubscriptionRepository = (*subscriptionRepo)(nil)

type subscriptionRepo struct {
	pool *pgxpool.Pool
}

func NewSubscriptionRepo(pool *pgxpool.Pool) *subscriptionRepo {
	return &subscriptionRepo{pool: pool}
}

func (r *subscriptionRepo) Save(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	const q = `
INSERT INTO subscriptions (uuid, payment_method_id, partner_id, product_name, subscribed_at, unsubscribed_at)
VALUES ($1,$2,$3,$4,$5,$6) RETURNING id;`
	row, err := pickRow(ctx, r.pool, tx, q, s.UUID, s.PaymentMethodID, s.PartnerID, s.ProductName, s.SubscribedAt, s.UnsubscribedAt)
	if err != nil {
		return err
	}
	if err := row.Scan(&s.ID); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyExists
		}
		return dbErr(err, domain.ErrOperationFailed)
	}
	return nil
}

func (r *subscriptionRepo) FindByUUID(ctx context.Context, tx repository.Tx, id uuid.UUID) (*model.Subscription, error) {
	q := lockable(`
SELECT id, uuid, payment_method_id, partner_id, product_name, subscribed_at, unsubscribed_at
  FROM subscriptions
 WHERE uuid=$1`, tx)
	row, err := pickRow(ctx, r.pool, tx, q, id)
	if err != nil {
		return nil, err
	}
	s := &model.Subscription{}
	if err := row.Scan(&s.ID, &s.UUID, &s.PaymentMethodID, &s.PartnerID, &s.ProductName, &s.SubscribedAt, &s.UnsubscribedAt); err != nil {
		return nil, dbErr(err, domain.ErrSubscriptionNotFound)
	}
	return s, nil
}

func (r *subscriptionRepo) Update(ctx context.Context, tx repository.Tx, s *model.Subscription) error {
	const q = `UPDATE subscriptions SET payment_method_id=$2, unsubscribed_at=$3, updated_at=NOW() WHERE id=$1;`
	tag, err := execSQL(ctx, r.pool, tx, q, s.ID, s.PaymentMethodID, s.UnsubscribedAt)
	if err != nil {
		return dbErr(err, domain.ErrSubscriptionNotFound)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSubscriptionNotFound
	}
	return nil
}

func (r *subscriptionRepo) AddPaymentMethodHistory(ctx context.Context, tx repository.Tx, h *model.SubscriptionPaymentMethodHistory) error {
	const q = `
INSERT INTO subscription_payment_method_histories (subscription_id, payment_method_id, created_at)
VALUES ($1,$2,$3) RETURNING id;`
	row, err := pickRow(ctx, r.pool, tx, q, h.SubscriptionID, h.PaymentMethodID, h.CreatedAt)
	if err != nil {
		return err
	}
	return dbErr(row.Scan(&h.ID), domain.ErrOperationFailed)
}

func (r *subscriptionRepo) ListPaymentMethodHistory(ctx context.Context, tx repository.Tx, subscriptionID int64) ([]*model.SubscriptionPaymentMethodHistory, error) {
	const q = `
SELECT id, subscription_id, payment_method_id, created_at
  FROM subscription_payment_method_histories
 WHERE subscription_id=$1
 ORDER BY id ASC;`
	rows, err := queryRows(ctx, r.pool, tx, q, subscriptionID)
	if err != nil {
		return nil, dbErr(err, domain.ErrNotFound)
	}
	return collect(rows, func(rs pgx.Rows) (*model.SubscriptionPaymentMethodHistory, error) {
		h := &model.SubscriptionPaymentMethodHistory{}
		err := rs.Scan(&h.ID, &h.SubscriptionID, &h.PaymentMethodID, &h.CreatedAt)
		return h, err
	})
}
