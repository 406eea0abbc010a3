package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"ridi-pay/internal/domain"
)

type TransactionStatus string

const (
	TransactionStatusReserved TransactionStatus = "RESERVED"
	TransactionStatusApproved TransactionStatus = "APPROVED"
	TransactionStatusCanceled TransactionStatus = "CANCELED"
)

// Transaction is a single charge. Its status only moves forward:
// RESERVED -> APPROVED -> CANCELED.
type Transaction struct {
	ID                   int64
	UUID                 uuid.UUID
	UIdx                 int64
	PaymentMethodID      int64
	PartnerID            int64
	PgID                 int64
	PartnerTransactionID string
	PgTransactionID      *string
	ProductName          string
	Amount               int64
	Status               TransactionStatus
	ReservedAt           time.Time
	ApprovedAt           *time.Time
	CanceledAt           *time.Time
}

func NewTransaction(uIdx, paymentMethodID, partnerID, pgID int64, partnerTransactionID, productName string, amount int64, now time.Time) (*Transaction, error) {
	if uIdx <= 0 || paymentMethodID <= 0 || partnerID <= 0 || pgID <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	if strings.TrimSpace(partnerTransactionID) == "" || strings.TrimSpace(productName) == "" {
		return nil, domain.ErrInvalidArgument
	}
	if amount <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Transaction{
		UUID:                 uuid.New(),
		UIdx:                 uIdx,
		PaymentMethodID:      paymentMethodID,
		PartnerID:            partnerID,
		PgID:                 pgID,
		PartnerTransactionID: partnerTransactionID,
		ProductName:          productName,
		Amount:               amount,
		Status:               TransactionStatusReserved,
		ReservedAt:           now,
	}, nil
}

func (t *Transaction) IsOwnedBy(partnerID int64) bool { return t != nil && t.PartnerID == partnerID }

func (t *Transaction) IsReserved() bool { return t.Status == TransactionStatusReserved }
func (t *Transaction) IsApproved() bool { return t.Status == TransactionStatusApproved }
func (t *Transaction) IsCanceled() bool { return t.Status == TransactionStatusCanceled }

// Approve moves a reserved transaction to APPROVED.
func (t *Transaction) Approve(pgTransactionID string, at time.Time) error {
	if !t.IsReserved() {
		return domain.ErrNotReservedTransaction
	}
	t.Status = TransactionStatusApproved
	t.PgTransactionID = &pgTransactionID
	t.ApprovedAt = &at
	return nil
}

// Cancel moves an approved transaction to CANCELED.
func (t *Transaction) Cancel(at time.Time) error {
	switch t.Status {
	case TransactionStatusCanceled:
		return domain.ErrAlreadyCancelledTransaction
	case TransactionStatusReserved:
		return domain.ErrNotApprovedTransaction
	}
	t.Status = TransactionStatusCanceled
	t.CanceledAt = &at
	return nil
}

type TransactionAction string

const (
	TransactionActionApprove TransactionAction = "APPROVE"
	TransactionActionCancel  TransactionAction = "CANCEL"
)

// TransactionHistory is an immutable record of one approve/cancel attempt.
type TransactionHistory struct {
	ID                int64
	TransactionID     int64
	Action            TransactionAction
	IsSuccess         bool
	PgResponseCode    string
	PgResponseMessage string
	CreatedAt         time.Time
}

func NewTransactionHistory(transactionID int64, action TransactionAction, success bool, code, message string, at time.Time) *TransactionHistory {
	return &TransactionHistory{
		TransactionID:     transactionID,
		Action:            action,
		IsSuccess:         success,
		PgResponseCode:    code,
		PgResponseMessage: message,
		CreatedAt:         at,
	}
}
