package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"ridi-pay/internal/domain"
)

// Subscription binds a payment method to a partner's recurring product.
type Subscription struct {
	ID              int64
	UUID            uuid.UUID
	PaymentMethodID int64
	PartnerID       int64
	ProductName     string
	SubscribedAt    time.Time
	UnsubscribedAt  *time.Time
}

// NewSubscription creates a subscription that is active from now.
func NewSubscription(paymentMethodID, partnerID int64, productName string, now time.Time) (*Subscription, error) {
	if paymentMethodID <= 0 || partnerID <= 0 || strings.TrimSpace(productName) == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Subscription{
		UUID:            uuid.New(),
		PaymentMethodID: paymentMethodID,
		PartnerID:       partnerID,
		ProductName:     productName,
		SubscribedAt:    now,
	}, nil
}

func (s *Subscription) IsOwnedBy(partnerID int64) bool { return s != nil && s.PartnerID == partnerID }
func (s *Subscription) IsActive() bool                 { return s.UnsubscribedAt == nil }

func (s *Subscription) Unsubscribe(at time.Time) error {
	if s.UnsubscribedAt != nil {
		return domain.ErrAlreadyCancelledSubscription
	}
	s.UnsubscribedAt = &at
	return nil
}

// Resume reactivates an unsubscribed subscription.
func (s *Subscription) Resume() error {
	if s.UnsubscribedAt == nil {
		return domain.ErrAlreadyResumedSubscription
	}
	s.UnsubscribedAt = nil
	return nil
}

// SubscriptionPaymentMethodHistory records which payment method backed a subscription from CreatedAt on.
type SubscriptionPaymentMethodHistory struct {
	ID              int64
	SubscriptionID  int64
	PaymentMethodID int64
	CreatedAt       time.Time
}

func NewSubscriptionPaymentMethodHistory(subscriptionID, paymentMethodID int64, at time.Time) *SubscriptionPaymentMethodHistory {
	return &SubscriptionPaymentMethodHistory{
		SubscriptionID:  subscriptionID,
		PaymentMethodID: paymentMethodID,
		CreatedAt:       at,
	}
}
