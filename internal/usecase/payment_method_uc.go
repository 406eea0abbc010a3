// File: internal/usecase/payment_method_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"ridi-pay/internal/domain"
	"ridi-pay/internal/domain/model"
	"ridi-pay/internal/domain/ports/adapter"
	"ridi-pay/internal/domain/ports/repository"
	"ridi-pay/internal/infra/logging"
)

// Compile-time check
var _ PaymentMethodUseCase = (*paymentMethodUC)(nil)

// PaymentMethodUseCase manages the registered cards of users.
type PaymentMethodUseCase interface {
	RegisterCard(ctx context.Context, uIdx int64, cardNumber, expirationDate, cardPassword, taxID string) (*model.PaymentMethod, error)
	DeleteCard(ctx context.Context, uIdx int64, paymentMethodUUID uuid.UUID) error
	ListAvailablePaymentMethods(ctx context.Context, uIdx int64) ([]*model.PaymentMethod, error)

	GetOneTimeBillKey(ctx context.Context, paymentMethodID int64) (string, error)
	GetBillingBillKey(ctx context.Context, paymentMethodID int64) (string, error)

	// GetPayablePaymentMethod checks ownership, liveness and PG payability and returns the
	// method together with its one-time card.
	GetPayablePaymentMethod(ctx context.Context, uIdx int64, paymentMethodUUID uuid.UUID) (*model.PaymentMethod, *model.Card, error)
}

type registerCardInput struct {
	UIdx           int64  `validate:"gt=0"`
	CardNumber     string `validate:"required,numeric,min=13,max=19"`
	ExpirationDate string `validate:"required,numeric,len=4"` // YYMM
	CardPassword   string `validate:"required,numeric,len=2"`
	TaxID          string `validate:"required,numeric,len=6|len=10"` // birth date or business number
}

type paymentMethodUC struct {
	users    repository.UserRepository
	methods  repository.PaymentMethodRepository
	cards    repository.CardRepository
	issuers  repository.CardIssuerRepository
	pgs      repository.PgRepository
	gateways adapter.PgGatewayResolver
	vault    adapter.SecretCipher
	tm       repository.TransactionManager
	log      *zerolog.Logger
}

func NewPaymentMethodUseCase(
	users repository.UserRepository,
	methods repository.PaymentMethodRepository,
	cards repository.CardRepository,
	issuers repository.CardIssuerRepository,
	pgs repository.PgRepository,
	gateways adapter.PgGatewayResolver,
	billKeyVault adapter.SecretCipher,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *paymentMethodUC {
	return &paymentMethodUC{
		users:    users,
		methods:  methods,
		cards:    cards,
		issuers:  issuers,
		pgs:      pgs,
		gateways: gateways,
		vault:    billKeyVault,
		tm:       tm,
		log:      logger,
	}
}

// RegisterCard issues a bill key with the active PG and stores it as a new payment
// method with one card row per purpose.
//
// The "no active method" check runs once before the PG call, to avoid issuing bill keys
// for obvious duplicates, and again inside the transaction under the per-user lock.
func (u *paymentMethodUC) RegisterCard(ctx context.Context, uIdx int64, cardNumber, expirationDate, cardPassword, taxID string) (*model.PaymentMethod, error) {
	defer logging.TraceDuration(u.log, "PaymentMethodUC.RegisterCard")()

	in := registerCardInput{UIdx: uIdx, CardNumber: cardNumber, ExpirationDate: expirationDate, CardPassword: cardPassword, TaxID: taxID}
	if err := validateInput(in); err != nil {
		return nil, err
	}

	usr, err := u.users.FindByUIdx(ctx, repository.NoTX, uIdx)
	switch {
	case errors.Is(err, domain.ErrNotFound):
	case err != nil:
		return nil, err
	case usr.IsLeaved():
		return nil, domain.ErrLeavedUser
	}
	active, err := u.methods.ListActiveByUser(ctx, repository.NoTX, uIdx)
	if err != nil {
		return nil, err
	}
	if len(active) > 0 {
		return nil, domain.ErrCardAlreadyExists
	}

	pg, err := u.pgs.FindActive(ctx, repository.NoTX)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnsupportedPg
		}
		return nil, err
	}
	gw, err := u.gateways.Gateway(pg.Name)
	if err != nil {
		return nil, err
	}

	res, err := gw.RegisterCard(ctx, adapter.RegisterCardRequest{
		CardNumber:     cardNumber,
		ExpirationDate: expirationDate,
		CardPassword:   cardPassword,
		TaxID:          taxID,
	})
	if err != nil {
		logging.With(ctx, u.log).Warn().Err(err).Str("pg", pg.Name).Msg("card registration rejected by pg")
		return nil, fmt.Errorf("%w: %w", domain.ErrCardRegistrationFailed, err)
	}

	issuer, err := u.issuers.FindByPgAndCode(ctx, repository.NoTX, pg.ID, res.CardIssuerCode)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrCardIssuerNotFound
		}
		return nil, err
	}
	encBillKey, err := u.vault.Encrypt([]byte(res.BillKey))
	if err != nil {
		return nil, err
	}

	var pm *model.PaymentMethod
	err = u.tm.WithTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(ctx context.Context, tx repository.Tx) error {
		if err := u.users.LockUser(ctx, tx, uIdx); err != nil {
			return err
		}
		now := time.Now()

		usr, err := u.users.FindByUIdx(ctx, tx, uIdx)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			if usr, err = model.NewUser(uIdx); err != nil {
				return err
			}
			usr.CreatedAt = now
			if err := u.users.Save(ctx, tx, usr); err != nil {
				return err
			}
		case err != nil:
			return err
		case usr.IsLeaved():
			return domain.ErrLeavedUser
		}

		active, err := u.methods.ListActiveByUser(ctx, tx, uIdx)
		if err != nil {
			return err
		}
		if len(active) > 0 {
			return domain.ErrCardAlreadyExists
		}

		m, err := model.NewCardPaymentMethod(uIdx)
		if err != nil {
			return err
		}
		m.CreatedAt = now
		if err := u.methods.Save(ctx, tx, m); err != nil {
			return err
		}

		iin := model.IinOf(cardNumber)
		for _, purpose := range []model.CardPurpose{model.CardPurposeOneTime, model.CardPurposeBilling} {
			c, err := model.NewCard(m.ID, issuer.ID, pg.ID, encBillKey, iin, purpose)
			if err != nil {
				return err
			}
			c.CreatedAt = now
			if err := u.cards.Save(ctx, tx, c); err != nil {
				return err
			}
			c.Issuer = issuer
			m.Cards = append(m.Cards, c)
		}

		if err := u.users.AddActionHistory(ctx, tx, model.NewUserActionHistory(uIdx, model.UserActionAddCard, now)); err != nil {
			return err
		}
		pm = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	logging.With(ctx, u.log).Info().
		Str("payment_method_id", pm.UUID.String()).
		Str("card", logging.MaskCardNumber(cardNumber)).
		Msg("card registered")
	return pm, nil
}

func (u *paymentMethodUC) DeleteCard(ctx context.Context, uIdx int64, paymentMethodUUID uuid.UUID) error {
	defer logging.TraceDuration(u.log, "PaymentMethodUC.DeleteCard")()

	return u.tm.WithTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(ctx context.Context, tx repository.Tx) error {
		m, err := u.methods.FindByUUID(ctx, tx, paymentMethodUUID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.ErrUnregisteredPaymentMethod
			}
			return err
		}
		if !m.IsOwnedBy(uIdx) || m.IsDeleted() {
			return domain.ErrUnregisteredPaymentMethod
		}

		now := time.Now()
		if err := u.methods.MarkDeleted(ctx, tx, m.ID, now); err != nil {
			return err
		}
		return u.users.AddActionHistory(ctx, tx, model.NewUserActionHistory(uIdx, model.UserActionDeleteCard, now))
	})
}

// ListAvailablePaymentMethods returns the user's live methods whose PG can still charge,
// with cards and issuers loaded.
func (u *paymentMethodUC) ListAvailablePaymentMethods(ctx context.Context, uIdx int64) ([]*model.PaymentMethod, error) {
	defer logging.TraceDuration(u.log, "PaymentMethodUC.ListAvailablePaymentMethods")()

	methods, err := u.methods.ListActiveByUser(ctx, repository.NoTX, uIdx)
	if err != nil {
		return nil, err
	}

	payable := map[int64]bool{}
	out := make([]*model.PaymentMethod, 0, len(methods))
	for _, m := range methods {
		cards, err := u.cards.ListByPaymentMethod(ctx, repository.NoTX, m.ID)
		if err != nil {
			return nil, err
		}
		ok := len(cards) > 0
		for _, c := range cards {
			if _, seen := payable[c.PgID]; !seen {
				pg, err := u.pgs.FindByID(ctx, repository.NoTX, c.PgID)
				if err != nil {
					return nil, err
				}
				payable[c.PgID] = pg.IsPayable()
			}
			if !payable[c.PgID] {
				ok = false
				break
			}
			if c.Issuer, err = u.issuers.FindByID(ctx, repository.NoTX, c.CardIssuerID); err != nil {
				return nil, err
			}
		}
		if !ok {
			continue
		}
		m.Cards = cards
		out = append(out, m)
	}
	return out, nil
}

func (u *paymentMethodUC) GetOneTimeBillKey(ctx context.Context, paymentMethodID int64) (string, error) {
	return u.billKey(ctx, paymentMethodID, model.CardPurposeOneTime)
}

func (u *paymentMethodUC) GetBillingBillKey(ctx context.Context, paymentMethodID int64) (string, error) {
	return u.billKey(ctx, paymentMethodID, model.CardPurposeBilling)
}

func (u *paymentMethodUC) billKey(ctx context.Context, paymentMethodID int64, purpose model.CardPurpose) (string, error) {
	c, err := u.cards.FindByPaymentMethodAndPurpose(ctx, repository.NoTX, paymentMethodID, purpose)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return "", domain.ErrUnregisteredPaymentMethod
		}
		return "", err
	}
	plain, err := u.vault.Decrypt(c.PgBillKey)
	if err != nil {
		logging.With(ctx, u.log).Error().Err(err).Int64("card_id", c.ID).Msg("bill key decryption failed")
		return "", err
	}
	return string(plain), nil
}

func (u *paymentMethodUC) GetPayablePaymentMethod(ctx context.Context, uIdx int64, paymentMethodUUID uuid.UUID) (*model.PaymentMethod, *model.Card, error) {
	m, err := u.methods.FindByUUID(ctx, repository.NoTX, paymentMethodUUID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrUnregisteredPaymentMethod
		}
		return nil, nil, err
	}
	if !m.IsOwnedBy(uIdx) || m.IsDeleted() {
		return nil, nil, domain.ErrUnregisteredPaymentMethod
	}

	c, err := u.cards.FindByPaymentMethodAndPurpose(ctx, repository.NoTX, m.ID, model.CardPurposeOneTime)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, domain.ErrUnregisteredPaymentMethod
		}
		return nil, nil, err
	}
	pg, err := u.pgs.FindByID(ctx, repository.NoTX, c.PgID)
	if err != nil {
		return nil, nil, err
	}
	if !pg.IsPayable() {
		return nil, nil, domain.ErrUnsupportedPg
	}
	return m, c, nil
}
