package model

import (
	"time"

	"github.com/google/uuid"

	"ridi-pay/internal/domain"
)

type PaymentMethodType string

const PaymentMethodTypeCard PaymentMethodType = "CARD"

// PaymentMethod is one registered payment instrument of a user.
// UUID is the only identifier exposed outside the service.
type PaymentMethod struct {
	ID        int64
	UUID      uuid.UUID
	UIdx      int64
	Type      PaymentMethodType
	CreatedAt time.Time
	DeletedAt *time.Time

	Cards []*Card // loaded on demand
}

func NewCardPaymentMethod(uIdx int64) (*PaymentMethod, error) {
	if uIdx <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &PaymentMethod{
		UUID:      uuid.New(),
		UIdx:      uIdx,
		Type:      PaymentMethodTypeCard,
		CreatedAt: time.Now(),
	}, nil
}

func (m *PaymentMethod) IsDeleted() bool { return m != nil && m.DeletedAt != nil }

func (m *PaymentMethod) IsOwnedBy(uIdx int64) bool { return m != nil && m.UIdx == uIdx }

// CardFor returns the card row registered for purpose, or nil.
func (m *PaymentMethod) CardFor(purpose CardPurpose) *Card {
	for _, c := range m.Cards {
		if c.Purpose == purpose {
			return c
		}
	}
	return nil
}
