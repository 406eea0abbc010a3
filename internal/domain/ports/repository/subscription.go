package repository

import (
	"context"

	"github.com/google/uuid"

	"ridi-pay/internal/domain/model"
)

// SubscriptionRepository is the port for recurring-billing agreements.
type SubscriptionRepository interface {
	// Save inserts s and sets s.ID.
	Save(ctx context.Context, tx Tx, s *model.Subscription) error
	// FindByUUID locks the row when called with a transaction handle.
	FindByUUID(ctx context.Context, tx Tx, id uuid.UUID) (*model.Subscription, error)
	// Update persists the payment method binding and unsubscribed-at.
	Update(ctx context.Context, tx Tx, s *model.Subscription) error

	AddPaymentMethodHistory(ctx context.Context, tx Tx, h *model.SubscriptionPaymentMethodHistory) error
	ListPaymentMethodHistory(ctx context.Context, tx Tx, subscriptionID int64) ([]*model.SubscriptionPaymentMethodHistory, error)
}
