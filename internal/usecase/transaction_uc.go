// File: internal/usecase/transaction_uc.go
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
var _ TransactionUseCase = (*transactionUC)(nil)

// settleTimeout bounds a PG call together with the statements and commit that record its
// outcome. It must exceed the gateway's own per-call timeout.
const settleTimeout = 30 * time.Second

// TransactionUseCase drives one-time payments through RESERVED -> APPROVED -> CANCELED.
type TransactionUseCase interface {
	Reserve(ctx context.Context, in ReserveInput) (*model.Transaction, error)
	Approve(ctx context.Context, transactionUUID uuid.UUID, partnerID int64) (*model.Transaction, error)
	Cancel(ctx context.Context, transactionUUID uuid.UUID, partnerID int64, reason string) (*model.Transaction, error)
	GetStatus(ctx context.Context, transactionUUID uuid.UUID, partnerID int64) (*TransactionStatusView, error)

	// ReserveAndApprove charges the card of the given purpose in one call.
	ReserveAndApprove(ctx context.Context, in ReserveInput, purpose model.CardPurpose) (*model.Transaction, error)
}

type ReserveInput struct {
	UIdx                 int64     `validate:"gt=0"`
	PartnerID            int64     `validate:"gt=0"`
	PaymentMethodUUID    uuid.UUID `validate:"required"`
	PartnerTransactionID string    `validate:"required,max=64"`
	ProductName          string    `validate:"required,max=255"`
	Amount               int64     `validate:"gt=0"`
}

// TransactionStatusView is the partner-facing projection of a transaction.
type TransactionStatusView struct {
	TransactionID        uuid.UUID
	PartnerTransactionID string
	PaymentMethodID      uuid.UUID
	ProductName          string
	Amount               int64
	Status               model.TransactionStatus
	ReservedAt           time.Time
	ApprovedAt           *time.Time
	CanceledAt           *time.Time
	ReceiptURL           string
}

type transactionUC struct {
	users        repository.UserRepository
	transactions repository.TransactionRepository
	methods      repository.PaymentMethodRepository
	pgs          repository.PgRepository
	cards        PaymentMethodUseCase
	gateways     adapter.PgGatewayResolver
	tm           repository.TransactionManager
	log          *zerolog.Logger
}

func NewTransactionUseCase(
	users repository.UserRepository,
	transactions repository.TransactionRepository,
	methods repository.PaymentMethodRepository,
	pgs repository.PgRepository,
	cards PaymentMethodUseCase,
	gateways adapter.PgGatewayResolver,
	tm repository.TransactionManager,
	logger *zerolog.Logger,
) *transactionUC {
	return &transactionUC{
		users:        users,
		transactions: transactions,
		methods:      methods,
		pgs:          pgs,
		cards:        cards,
		gateways:     gateways,
		tm:           tm,
		log:          logger,
	}
}

// Reserve records the partner's intent to charge. No PG call is made.
func (u *transactionUC) Reserve(ctx context.Context, in ReserveInput) (*model.Transaction, error) {
	defer logging.TraceDuration(u.log, "TransactionUC.Reserve")()

	if err := validateInput(in); err != nil {
		return nil, err
	}
	usr, err := u.users.FindByUIdx(ctx, repository.NoTX, in.UIdx)
	if err != nil {
		return nil, err
	}
	if usr.IsLeaved() {
		return nil, domain.ErrLeavedUser
	}
	pm, card, err := u.cards.GetPayablePaymentMethod(ctx, in.UIdx, in.PaymentMethodUUID)
	if err != nil {
		return nil, err
	}

	var t *model.Transaction
	err = u.tm.WithTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(ctx context.Context, tx repository.Tx) error {
		running, err := u.transactions.FindRunning(ctx, tx, in.PartnerID, in.PartnerTransactionID)
		switch {
		case err == nil && running != nil:
			return domain.ErrAlreadyRunningTransaction
		case err != nil && !errors.Is(err, domain.ErrNotFound):
			return err
		}

		t, err = model.NewTransaction(in.UIdx, pm.ID, in.PartnerID, card.PgID, in.PartnerTransactionID, in.ProductName, in.Amount, time.Now())
		if err != nil {
			return err
		}
		return u.transactions.Save(ctx, tx, t)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (u *transactionUC) Approve(ctx context.Context, transactionUUID uuid.UUID, partnerID int64) (*model.Transaction, error) {
	defer logging.TraceDuration(u.log, "TransactionUC.Approve")()
	return u.approve(ctx, transactionUUID, partnerID, model.CardPurposeOneTime)
}

func (u *transactionUC) ReserveAndApprove(ctx context.Context, in ReserveInput, purpose model.CardPurpose) (*model.Transaction, error) {
	defer logging.TraceDuration(u.log, "TransactionUC.ReserveAndApprove")()

	t, err := u.Reserve(ctx, in)
	if errors.Is(err, domain.ErrAlreadyRunningTransaction) {
		t, err = u.pendingReservation(ctx, in)
	}
	if err != nil {
		return nil, err
	}
	return u.approve(ctx, t.UUID, in.PartnerID, purpose)
}

// pendingReservation returns the RESERVED transaction a previous failed approval left behind
// for the same charge, so a retry with the same partner transaction id approves it instead
// of being rejected. Anything else running under that id stays ErrAlreadyRunningTransaction.
func (u *transactionUC) pendingReservation(ctx context.Context, in ReserveInput) (*model.Transaction, error) {
	t, err := u.transactions.FindRunning(ctx, repository.NoTX, in.PartnerID, in.PartnerTransactionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrAlreadyRunningTransaction
		}
		return nil, err
	}
	pm, err := u.methods.FindByUUID(ctx, repository.NoTX, in.PaymentMethodUUID)
	if err != nil {
		return nil, err
	}
	if !t.IsReserved() || t.UIdx != in.UIdx || t.PaymentMethodID != pm.ID || t.Amount != in.Amount {
		return nil, domain.ErrAlreadyRunningTransaction
	}
	logging.With(ctx, u.log).Info().Str("transaction_id", t.UUID.String()).Msg("retrying pending reservation")
	return t, nil
}

// approve runs the PG call while holding the row lock on the transaction, so concurrent
// approvals of the same transaction produce exactly one PG charge. A PG failure is
// committed as a failed history row and leaves the transaction RESERVED.
//
// The whole unit runs on a settle context: once the charge request may have reached the
// PG, caller cancellation must not roll back the record of its result.
func (u *transactionUC) approve(ctx context.Context, transactionUUID uuid.UUID, partnerID int64, purpose model.CardPurpose) (*model.Transaction, error) {
	var (
		t       *model.Transaction
		failure error
	)
	sctx, cancel := settleContext(ctx)
	defer cancel()
	err := u.tm.WithTx(sctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(ctx context.Context, tx repository.Tx) error {
		var err error
		if t, err = u.lockOwned(ctx, tx, transactionUUID, partnerID); err != nil {
			return err
		}
		if !t.IsReserved() {
			return domain.ErrNotReservedTransaction
		}

		gw, err := u.payableGateway(ctx, tx, t)
		if err != nil {
			return err
		}
		var billKey string
		if purpose == model.CardPurposeBilling {
			billKey, err = u.cards.GetBillingBillKey(ctx, t.PaymentMethodID)
		} else {
			billKey, err = u.cards.GetOneTimeBillKey(ctx, t.PaymentMethodID)
		}
		if err != nil {
			return err
		}

		res, pgErr := gw.ApproveTransaction(ctx, adapter.ApproveRequest{
			BillKey:     billKey,
			OrderNo:     t.UUID.String(),
			ProductName: t.ProductName,
			Amount:      t.Amount,
		})
		now := time.Now()
		if pgErr != nil {
			pe := asPgError("approve", pgErr)
			h := model.NewTransactionHistory(t.ID, model.TransactionActionApprove, false, pe.Code, pe.Message, now)
			if err := u.transactions.AddHistory(ctx, tx, h); err != nil {
				return err
			}
			failure = fmt.Errorf("%w: %w", domain.ErrTransactionApprovalFailed, pe)
			return nil
		}

		if err := t.Approve(res.PgTransactionID, now); err != nil {
			return err
		}
		ok, err := u.transactions.Transition(ctx, tx, t, model.TransactionStatusReserved)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrNotReservedTransaction
		}
		h := model.NewTransactionHistory(t.ID, model.TransactionActionApprove, true, res.ResponseCode, res.ResponseMessage, now)
		return u.transactions.AddHistory(ctx, tx, h)
	})
	if err != nil {
		return nil, err
	}
	if failure != nil {
		logging.With(ctx, u.log).Warn().Err(failure).Str("transaction_id", transactionUUID.String()).Msg("approval failed")
		return t, failure
	}
	logging.With(ctx, u.log).Info().Str("transaction_id", t.UUID.String()).Int64("amount", t.Amount).Msg("transaction approved")
	return t, nil
}

// Cancel refunds an APPROVED transaction. Reservations cannot be canceled.
func (u *transactionUC) Cancel(ctx context.Context, transactionUUID uuid.UUID, partnerID int64, reason string) (*model.Transaction, error) {
	defer logging.TraceDuration(u.log, "TransactionUC.Cancel")()

	var (
		t       *model.Transaction
		failure error
	)
	sctx, cancel := settleContext(ctx)
	defer cancel()
	err := u.tm.WithTx(sctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(ctx context.Context, tx repository.Tx) error {
		var err error
		if t, err = u.lockOwned(ctx, tx, transactionUUID, partnerID); err != nil {
			return err
		}
		switch {
		case t.IsCanceled():
			return domain.ErrAlreadyCancelledTransaction
		case !t.IsApproved() || t.PgTransactionID == nil:
			return domain.ErrNotApprovedTransaction
		}

		gw, err := u.gatewayFor(ctx, tx, t.PgID)
		if err != nil {
			return err
		}
		res, pgErr := gw.CancelTransaction(ctx, adapter.CancelRequest{PgTransactionID: *t.PgTransactionID, Reason: reason})
		now := time.Now()
		if pgErr != nil {
			pe := asPgError("cancel", pgErr)
			h := model.NewTransactionHistory(t.ID, model.TransactionActionCancel, false, pe.Code, pe.Message, now)
			if err := u.transactions.AddHistory(ctx, tx, h); err != nil {
				return err
			}
			failure = fmt.Errorf("%w: %w", domain.ErrTransactionCancellationFailed, pe)
			return nil
		}

		if err := t.Cancel(now); err != nil {
			return err
		}
		ok, err := u.transactions.Transition(ctx, tx, t, model.TransactionStatusApproved)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrNotApprovedTransaction
		}
		h := model.NewTransactionHistory(t.ID, model.TransactionActionCancel, true, res.ResponseCode, res.ResponseMessage, now)
		return u.transactions.AddHistory(ctx, tx, h)
	})
	if err != nil {
		return nil, err
	}
	if failure != nil {
		logging.With(ctx, u.log).Warn().Err(failure).Str("transaction_id", transactionUUID.String()).Msg("cancellation failed")
		return t, failure
	}
	return t, nil
}

func (u *transactionUC) GetStatus(ctx context.Context, transactionUUID uuid.UUID, partnerID int64) (*TransactionStatusView, error) {
	defer logging.TraceDuration(u.log, "TransactionUC.GetStatus")()

	t, err := u.lockOwned(ctx, repository.NoTX, transactionUUID, partnerID)
	if err != nil {
		return nil, err
	}
	pm, err := u.methods.FindByID(ctx, repository.NoTX, t.PaymentMethodID)
	if err != nil {
		return nil, err
	}

	v := &TransactionStatusView{
		TransactionID:        t.UUID,
		PartnerTransactionID: t.PartnerTransactionID,
		PaymentMethodID:      pm.UUID,
		ProductName:          t.ProductName,
		Amount:               t.Amount,
		Status:               t.Status,
		ReservedAt:           t.ReservedAt,
		ApprovedAt:           t.ApprovedAt,
		CanceledAt:           t.CanceledAt,
	}
	if t.IsApproved() && t.PgTransactionID != nil && pm.Type == model.PaymentMethodTypeCard {
		gw, err := u.gatewayFor(ctx, repository.NoTX, t.PgID)
		if err != nil {
			return nil, err
		}
		v.ReceiptURL = gw.GetReceiptURL(*t.PgTransactionID, t.UUID.String(), t.Amount)
	}
	return v, nil
}

// lockOwned loads the transaction (locking it under tx) and checks the caller owns it.
func (u *transactionUC) lockOwned(ctx context.Context, tx repository.Tx, id uuid.UUID, partnerID int64) (*model.Transaction, error) {
	t, err := u.transactions.FindByUUID(ctx, tx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, err
	}
	if !t.IsOwnedBy(partnerID) {
		return nil, domain.ErrNotOwnedTransaction
	}
	return t, nil
}

// payableGateway re-checks, under the row lock, everything Reserve checked: the user may
// have left, the card may have been deleted or the PG deactivated since the reservation.
func (u *transactionUC) payableGateway(ctx context.Context, tx repository.Tx, t *model.Transaction) (adapter.PgGateway, error) {
	usr, err := u.users.FindByUIdx(ctx, tx, t.UIdx)
	if err != nil {
		return nil, err
	}
	if usr.IsLeaved() {
		return nil, domain.ErrLeavedUser
	}
	pm, err := u.methods.FindByID(ctx, tx, t.PaymentMethodID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnregisteredPaymentMethod
		}
		return nil, err
	}
	if pm.IsDeleted() {
		return nil, domain.ErrUnregisteredPaymentMethod
	}
	pg, err := u.pgs.FindByID(ctx, tx, t.PgID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnsupportedPg
		}
		return nil, err
	}
	if !pg.IsPayable() {
		return nil, domain.ErrUnsupportedPg
	}
	return u.gateways.Gateway(pg.Name)
}

func settleContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), settleTimeout)
}

func (u *transactionUC) gatewayFor(ctx context.Context, tx repository.Tx, pgID int64) (adapter.PgGateway, error) {
	pg, err := u.pgs.FindByID(ctx, tx, pgID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnsupportedPg
		}
		return nil, err
	}
	return u.gateways.Gateway(pg.Name)
}

// asPgError normalizes gateway errors so a history row always has a code.
func asPgError(op string, err error) *domain.PgError {
	if pe, ok := domain.AsPgError(err); ok {
		return pe
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &domain.PgError{Op: op, Code: domain.PgCodeTimeout, Message: "pg call timed out"}
	}
	return &domain.PgError{Op: op, Code: "UNKNOWN", Message: err.Error()}
}
