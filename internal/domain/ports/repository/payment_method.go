package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"ridi-pay/internal/domain/model"
)

// -----------------------------
// Payment methods
// -----------------------------

type PaymentMethodRepository interface {
	// Save inserts m and sets m.ID.
	Save(ctx context.Context, tx Tx, m *model.PaymentMethod) error
	FindByID(ctx context.Context, tx Tx, id int64) (*model.PaymentMethod, error)
	FindByUUID(ctx context.Context, tx Tx, id uuid.UUID) (*model.PaymentMethod, error)
	// ListActiveByUser returns the user's non-deleted payment methods, oldest first.
	ListActiveByUser(ctx context.Context, tx Tx, uIdx int64) ([]*model.PaymentMethod, error)
	MarkDeleted(ctx context.Context, tx Tx, id int64, at time.Time) error
}

// -----------------------------
// Cards
// -----------------------------

type CardRepository interface {
	// Save inserts c and sets c.ID.
	Save(ctx context.Context, tx Tx, c *model.Card) error
	ListByPaymentMethod(ctx context.Context, tx Tx, paymentMethodID int64) ([]*model.Card, error)
	// FindByPaymentMethodAndPurpose returns domain.ErrNotFound if no card row has that purpose.
	FindByPaymentMethodAndPurpose(ctx context.Context, tx Tx, paymentMethodID int64, purpose model.CardPurpose) (*model.Card, error)
}

type CardIssuerRepository interface {
	FindByID(ctx context.Context, tx Tx, id int64) (*model.CardIssuer, error)
	FindByPgAndCode(ctx context.Context, tx Tx, pgID int64, code string) (*model.CardIssuer, error)
}

type PgRepository interface {
	FindByID(ctx context.Context, tx Tx, id int64) (*model.Pg, error)
	// FindActive returns the PG new cards are registered against.
	FindActive(ctx context.Context, tx Tx) (*model.Pg, error)
}
