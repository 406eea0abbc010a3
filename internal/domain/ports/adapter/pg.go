package adapter

import (
	"context"
	"time"
)

// --- Card registration ---

// RegisterCardRequest carries raw card credentials. Implementations must not log them.
type RegisterCardRequest struct {
	CardNumber     string
	ExpirationDate string // YYMM
	CardPassword   string // first two digits
	TaxID          string // birth date (YYMMDD) or business registration number
}

type RegisterCardResult struct {
	IsSuccess       bool
	ResponseCode    string
	ResponseMessage string
	BillKey         string
	CardIssuerCode  string
}

// --- Approval ---

type ApproveRequest struct {
	BillKey     string
	OrderNo     string
	ProductName string
	Amount      int64
	BuyerName   string
	TaxFree     bool
}

type ApproveResult struct {
	IsSuccess       bool
	ResponseCode    string
	ResponseMessage string
	PgTransactionID string
	Amount          int64
	ApprovedAt      time.Time
}

// --- Cancellation ---

type CancelRequest struct {
	PgTransactionID string
	Reason          string
}

type CancelResult struct {
	IsSuccess       bool
	ResponseCode    string
	ResponseMessage string
	Amount          int64
	CanceledAt      time.Time
}

// PgGateway is the hex port for payment gateway providers.
//
// Non-success outcomes are returned as a *domain.PgError so callers can record the
// provider code and message. A call that exceeds its deadline yields a *domain.PgError
// with code domain.PgCodeTimeout.
type PgGateway interface {
	Name() string

	RegisterCard(ctx context.Context, req RegisterCardRequest) (*RegisterCardResult, error)
	ApproveTransaction(ctx context.Context, req ApproveRequest) (*ApproveResult, error)
	CancelTransaction(ctx context.Context, req CancelRequest) (*CancelResult, error)

	// GetReceiptURL builds the customer-facing receipt link of an approved transaction.
	GetReceiptURL(pgTransactionID, orderNo string, amount int64) string
}

// PgGatewayResolver returns the gateway for a PG name.
type PgGatewayResolver interface {
	Gateway(pgName string) (PgGateway, error)
}
