package api

import (
	"github.com/rs/zerolog"

	"ridi-pay/internal/usecase"
)

// Handlers adapts HTTP requests to the use cases.
type Handlers struct {
	cards         usecase.PaymentMethodUseCase
	users         usecase.UserUseCase
	subscriptions usecase.SubscriptionUseCase
	transactions  usecase.TransactionUseCase
	partners      usecase.PartnerUseCase
	log           *zerolog.Logger
}

func NewHandlers(
	cards usecase.PaymentMethodUseCase,
	users usecase.UserUseCase,
	subscriptions usecase.SubscriptionUseCase,
	transactions usecase.TransactionUseCase,
	partners usecase.PartnerUseCase,
	logger *zerolog.Logger,
) *Handlers {
	return &Handlers{
		cards:         cards,
		users:         users,
		subscriptions: subscriptions,
		transactions:  transactions,
		partners:      partners,
		log:           logger,
	}
}
