package usecase

import (
	"context"
	"strconv"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"

	"ridi-pay/internal/domain"
	"ridi-pay/internal/domain/model"
	"ridi-pay/internal/domain/ports/adapter"
	"ridi-pay/internal/domain/ports/repository"
	"ridi-pay/internal/infra/logging"
)

// Compile-time check
var _ UserUseCase = (*userUC)(nil)

// UserUseCase exposes the settings a user manages on top of their payment methods.
type UserUseCase interface {
	Get(ctx context.Context, uIdx int64) (*model.User, error)
	UpdatePin(ctx context.Context, uIdx int64, pin string) error
	ValidatePin(ctx context.Context, uIdx int64, pin string) error
	SetOnetouchPay(ctx context.Context, uIdx int64, enable bool) error
	Leave(ctx context.Context, uIdx int64) error
}

type pinInput struct {
	Pin string `validate:"required,numeric,len=6"`
}

type userUC struct {
	users   repository.UserRepository
	methods repository.PaymentMethodRepository
	hasher  adapter.SecretHasher
	abuse   *AbuseBlocker
	policy  AbusePolicy
	tm      repository.TransactionManager
	log     *zerolog.Logger
}

func NewUserUseCase(
	users repository.UserRepository,
	methods repository.PaymentMethodRepository,
	hasher adapter.SecretHasher,
	abuse *AbuseBlocker,
	pinPolicy AbusePolicy,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *userUC {
	return &userUC{
		users:   users,
		methods: methods,
		hasher:  hasher,
		abuse:   abuse,
		policy:  pinPolicy,
		tm:      tm,
		log:     logger,
	}
}

func (u *userUC) Get(ctx context.Context, uIdx int64) (*model.User, error) {
	defer logging.TraceDuration(u.log, "UserUC.Get")()
	return u.users.FindByUIdx(ctx, repository.NoTX, uIdx)
}

func (u *userUC) UpdatePin(ctx context.Context, uIdx int64, pin string) error {
	defer logging.TraceDuration(u.log, "UserUC.UpdatePin")()

	if err := validateInput(pinInput{Pin: pin}); err != nil {
		return err
	}
	hash, err := u.hasher.Hash(pin)
	if err != nil {
		return err
	}

	err = u.modify(ctx, uIdx, model.UserActionUpdatePin, func(usr *model.User) error {
		usr.PinHash = &hash
		return nil
	})
	if err != nil {
		return err
	}
	return u.abuse.Reset(ctx, u.policy, subject(uIdx))
}

// ValidatePin checks the PIN under the pin-entry policy. A successful check clears the
// failure counter.
func (u *userUC) ValidatePin(ctx context.Context, uIdx int64, pin string) error {
	defer logging.TraceDuration(u.log, "UserUC.ValidatePin")()

	usr, err := u.users.FindByUIdx(ctx, repository.NoTX, uIdx)
	if err != nil {
		return err
	}
	if usr.IsLeaved() {
		return domain.ErrLeavedUser
	}
	if !usr.HasPin() {
		return domain.ErrPinNotRegistered
	}

	id := subject(uIdx)
	blocked, remaining, err := u.abuse.IsBlocked(ctx, u.policy, id)
	if err != nil {
		return err
	}
	if blocked {
		return blockedError(domain.ErrPinEntryBlocked, remaining)
	}

	ok, err := u.hasher.Compare(*usr.PinHash, pin)
	if err != nil {
		return err
	}
	if !ok {
		nowBlocked, err := u.abuse.RecordFailureAndCheck(ctx, u.policy, id)
		if err != nil {
			return err
		}
		if nowBlocked {
			return blockedError(domain.ErrPinEntryBlocked, u.policy.BlockedPeriod)
		}
		return domain.ErrUnmatchedPin
	}
	return u.abuse.Reset(ctx, u.policy, id)
}

func (u *userUC) SetOnetouchPay(ctx context.Context, uIdx int64, enable bool) error {
	defer logging.TraceDuration(u.log, "UserUC.SetOnetouchPay")()

	action := model.UserActionDisableOnetouchPay
	if enable {
		action = model.UserActionEnableOnetouchPay
	}
	return u.modify(ctx, uIdx, action, func(usr *model.User) error {
		if enable && !usr.HasPin() {
			return domain.ErrPinNotRegistered
		}
		usr.IsOnetouchPay = &enable
		return nil
	})
}

// Leave is terminal: the user's live payment methods are deleted with it.
func (u *userUC) Leave(ctx context.Context, uIdx int64) error {
	defer logging.TraceDuration(u.log, "UserUC.Leave")()

	return u.tm.WithTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(ctx context.Context, tx repository.Tx) error {
		if err := u.users.LockUser(ctx, tx, uIdx); err != nil {
			return err
		}
		usr, err := u.users.FindByUIdx(ctx, tx, uIdx)
		if err != nil {
			return err
		}
		if usr.IsLeaved() {
			return domain.ErrLeavedUser
		}

		now := time.Now()
		usr.Leave(now)
		if err := u.users.Save(ctx, tx, usr); err != nil {
			return err
		}
		methods, err := u.methods.ListActiveByUser(ctx, tx, uIdx)
		if err != nil {
			return err
		}
		for _, m := range methods {
			if err := u.methods.MarkDeleted(ctx, tx, m.ID, now); err != nil {
				return err
			}
		}
		return u.users.AddActionHistory(ctx, tx, model.NewUserActionHistory(uIdx, model.UserActionLeave, now))
	})
}

// modify applies change to a live user and records action, atomically.
func (u *userUC) modify(ctx context.Context, uIdx int64, action model.UserAction, change func(*model.User) error) error {
	return u.tm.WithTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(ctx context.Context, tx repository.Tx) error {
		if err := u.users.LockUser(ctx, tx, uIdx); err != nil {
			return err
		}
		usr, err := u.users.FindByUIdx(ctx, tx, uIdx)
		if err != nil {
			return err
		}
		if usr.IsLeaved() {
			return domain.ErrLeavedUser
		}
		if err := change(usr); err != nil {
			return err
		}
		if err := u.users.Save(ctx, tx, usr); err != nil {
			return err
		}
		return u.users.AddActionHistory(ctx, tx, model.NewUserActionHistory(uIdx, action, time.Now()))
	})
}

func subject(uIdx int64) string { return strconv.FormatInt(uIdx, 10) }
