// File: internal/usecase/subscription_uc.go
package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"ridi-pay/internal/domain"
	"ridi-pay/internal/domain/model"
	"ridi-pay/internal/domain/ports/repository"
	"ridi-pay/internal/infra/logging"
)

// Compile-time check
var _ SubscriptionUseCase = (*subscriptionUC)(nil)

// SubscriptionUseCase manages recurring-billing agreements between a user and a partner.
type SubscriptionUseCase interface {
	Subscribe(ctx context.Context, uIdx, partnerID int64, paymentMethodUUID uuid.UUID, productName string) (*model.Subscription, error)
	Unsubscribe(ctx context.Context, subscriptionUUID uuid.UUID, partnerID int64) (*model.Subscription, error)
	Resume(ctx context.Context, subscriptionUUID uuid.UUID, partnerID int64) (*model.Subscription, error)
	ChangePaymentMethod(ctx context.Context, uIdx int64, subscriptionUUID, paymentMethodUUID uuid.UUID) (*model.Subscription, error)

	// Pay charges the subscription's billing card.
	Pay(ctx context.Context, in PayInput) (*model.Transaction, error)
	Get(ctx context.Context, subscriptionUUID uuid.UUID, partnerID int64) (*SubscriptionView, error)
}

type PayInput struct {
	SubscriptionUUID     uuid.UUID `validate:"required"`
	PartnerID            int64     `validate:"gt=0"`
	PartnerTransactionID string    `validate:"required,max=64"`
	ProductName          string    `validate:"omitempty,max=255"` // defaults to the subscription's product
	Amount               int64     `validate:"gt=0"`
}

type SubscriptionView struct {
	SubscriptionID  uuid.UUID
	PaymentMethodID uuid.UUID
	ProductName     string
	SubscribedAt    time.Time
	UnsubscribedAt  *time.Time
}

type subscriptionUC struct {
	users         repository.UserRepository
	subscriptions repository.SubscriptionRepository
	methods       repository.PaymentMethodRepository
	cards         PaymentMethodUseCase
	transactions  TransactionUseCase
	tm            repository.TransactionManager
	log           *zerolog.Logger
}

func NewSubscriptionUseCase(
	users repository.UserRepository,
	subscriptions repository.SubscriptionRepository,
	methods repository.PaymentMethodRepository,
	cards PaymentMethodUseCase,
	transactions TransactionUseCase,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *subscriptionUC {
	return &subscriptionUC{
		users:         users,
		subscriptions: subscriptions,
		methods:       methods,
		cards:         cards,
		transactions:  transactions,
		tm:            tm,
		log:           logger,
	}
}

func (u *subscriptionUC) Subscribe(ctx context.Context, uIdx, partnerID int64, paymentMethodUUID uuid.UUID, productName string) (*model.Subscription, error) {
	defer logging.TraceDuration(u.log, "SubscriptionUC.Subscribe")()

	usr, err := u.users.FindByUIdx(ctx, repository.NoTX, uIdx)
	if err != nil {
		return nil, err
	}
	if usr.IsLeaved() {
		return nil, domain.ErrLeavedUser
	}
	pm, _, err := u.cards.GetPayablePaymentMethod(ctx, uIdx, paymentMethodUUID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	s, err := model.NewSubscription(pm.ID, partnerID, productName, now)
	if err != nil {
		return nil, err
	}
	err = u.tm.WithTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(ctx context.Context, tx repository.Tx) error {
		if err := u.subscriptions.Save(ctx, tx, s); err != nil {
			return err
		}
		return u.subscriptions.AddPaymentMethodHistory(ctx, tx, model.NewSubscriptionPaymentMethodHistory(s.ID, pm.ID, now))
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (u *subscriptionUC) Unsubscribe(ctx context.Context, subscriptionUUID uuid.UUID, partnerID int64) (*model.Subscription, error) {
	defer logging.TraceDuration(u.log, "SubscriptionUC.Unsubscribe")()
	return u.transition(ctx, subscriptionUUID, partnerID, func(s *model.Subscription) error {
		return s.Unsubscribe(time.Now())
	})
}

func (u *subscriptionUC) Resume(ctx context.Context, subscriptionUUID uuid.UUID, partnerID int64) (*model.Subscription, error) {
	defer logging.TraceDuration(u.log, "SubscriptionUC.Resume")()
	return u.transition(ctx, subscriptionUUID, partnerID, func(s *model.Subscription) error {
		return s.Resume()
	})
}

func (u *subscriptionUC) transition(ctx context.Context, id uuid.UUID, partnerID int64, apply func(*model.Subscription) error) (*model.Subscription, error) {
	var s *model.Subscription
	err := u.tm.WithTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(ctx context.Context, tx repository.Tx) error {
		var err error
		if s, err = u.findOwned(ctx, tx, id, partnerID); err != nil {
			return err
		}
		if err := apply(s); err != nil {
			return err
		}
		return u.subscriptions.Update(ctx, tx, s)
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (u *subscriptionUC) ChangePaymentMethod(ctx context.Context, uIdx int64, subscriptionUUID, paymentMethodUUID uuid.UUID) (*model.Subscription, error) {
	defer logging.TraceDuration(u.log, "SubscriptionUC.ChangePaymentMethod")()

	pm, _, err := u.cards.GetPayablePaymentMethod(ctx, uIdx, paymentMethodUUID)
	if err != nil {
		return nil, err
	}

	var s *model.Subscription
	err = u.tm.WithTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(ctx context.Context, tx repository.Tx) error {
		var err error
		if s, err = u.subscriptions.FindByUUID(ctx, tx, subscriptionUUID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrSubscriptionNotFound
			}
			return err
		}
		current, err := u.methods.FindByID(ctx, tx, s.PaymentMethodID)
		if err != nil {
			return err
		}
		if !current.IsOwnedBy(uIdx) {
			return domain.ErrNotOwnedSubscription
		}
		if s.PaymentMethodID == pm.ID {
			return nil
		}

		s.PaymentMethodID = pm.ID
		if err := u.subscriptions.Update(ctx, tx, s); err != nil {
			return err
		}
		return u.subscriptions.AddPaymentMethodHistory(ctx, tx, model.NewSubscriptionPaymentMethodHistory(s.ID, pm.ID, time.Now()))
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (u *subscriptionUC) Pay(ctx context.Context, in PayInput) (*model.Transaction, error) {
	defer logging.TraceDuration(u.log, "SubscriptionUC.Pay")()

	if err := validateInput(in); err != nil {
		return nil, err
	}
	s, err := u.findOwned(ctx, repository.NoTX, in.SubscriptionUUID, in.PartnerID)
	if err != nil {
		return nil, err
	}
	if !s.IsActive() {
		return nil, domain.ErrAlreadyCancelledSubscription
	}
	pm, err := u.methods.FindByID(ctx, repository.NoTX, s.PaymentMethodID)
	if err != nil {
		return nil, err
	}

	productName := in.ProductName
	if productName == "" {
		productName = s.ProductName
	}
	return u.transactions.ReserveAndApprove(ctx, ReserveInput{
		UIdx:                 pm.UIdx,
		PartnerID:            in.PartnerID,
		PaymentMethodUUID:    pm.UUID,
		PartnerTransactionID: in.PartnerTransactionID,
		ProductName:          productName,
		Amount:               in.Amount,
	}, model.CardPurposeBilling)
}

func (u *subscriptionUC) Get(ctx context.Context, subscriptionUUID uuid.UUID, partnerID int64) (*SubscriptionView, error) {
	defer logging.TraceDuration(u.log, "SubscriptionUC.Get")()

	s, err := u.findOwned(ctx, repository.NoTX, subscriptionUUID, partnerID)
	if err != nil {
		return nil, err
	}
	pm, err := u.methods.FindByID(ctx, repository.NoTX, s.PaymentMethodID)
	if err != nil {
		return nil, err
	}
	return &SubscriptionView{
		SubscriptionID:  s.UUID,
		PaymentMethodID: pm.UUID,
		ProductName:     s.ProductName,
		SubscribedAt:    s.SubscribedAt,
		UnsubscribedAt:  s.UnsubscribedAt,
	}, nil
}

func (u *subscriptionUC) findOwned(ctx context.Context, tx repository.Tx, id uuid.UUID, partnerID int64) (*model.Subscription, error) {
	s, err := u.subscriptions.FindByUUID(ctx, tx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrSubscriptionNotFound
		}
		return nil, err
	}
	if !s.IsOwnedBy(partnerID) {
		return nil, domain.ErrNotOwnedSubscription
	}
	return s, nil
}
