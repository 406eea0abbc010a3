package domain

import (
	"errors"
	"fmt"
)

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrOperationFailed    = errors.New("database operation failed")
	ErrReadDatabaseRow    = errors.New("failed to read database row")
	ErrInvalidExecContext = errors.New("invalid database execution context")

	// Authorization
	ErrUnauthorizedPartner  = errors.New("unauthorized partner")
	ErrUnauthorizedUser     = errors.New("unauthorized user")
	ErrNotOwnedTransaction  = errors.New("transaction is not owned by the partner")
	ErrNotOwnedSubscription = errors.New("subscription is not owned by the partner")

	// State conflicts
	ErrCardAlreadyExists            = errors.New("user already has a registered card")
	ErrAlreadyRunningTransaction    = errors.New("transaction with the same partner transaction id is already running")
	ErrNotReservedTransaction       = errors.New("transaction is not reserved")
	ErrNotApprovedTransaction       = errors.New("transaction is not approved")
	ErrAlreadyCancelledTransaction  = errors.New("transaction is already cancelled")
	ErrAlreadyCancelledSubscription = errors.New("subscription is already cancelled")
	ErrAlreadyResumedSubscription   = errors.New("subscription is already resumed")
	ErrLeavedUser                   = errors.New("user has left")
	ErrPinNotRegistered             = errors.New("pin is not registered")
	ErrPartnerAlreadyExists         = errors.New("partner name already exists")

	// Not found
	ErrUserNotFound              = fmt.Errorf("user: %w", ErrNotFound)
	ErrTransactionNotFound       = fmt.Errorf("transaction: %w", ErrNotFound)
	ErrSubscriptionNotFound      = fmt.Errorf("subscription: %w", ErrNotFound)
	ErrUnregisteredPaymentMethod = fmt.Errorf("payment method: %w", ErrNotFound)
	ErrUnsupportedPg             = fmt.Errorf("pg: %w", ErrNotFound)
	ErrCardIssuerNotFound        = fmt.Errorf("card issuer: %w", ErrNotFound)

	// External dependencies
	ErrPgOperationFailed             = errors.New("pg operation failed")
	ErrPgTimeout                     = errors.New("pg operation timed out")
	ErrTransactionApprovalFailed     = errors.New("transaction approval failed")
	ErrTransactionCancellationFailed = errors.New("transaction cancellation failed")
	ErrCardRegistrationFailed        = errors.New("card registration failed")
	ErrCryptoIntegrity               = errors.New("ciphertext integrity check failed")
	ErrCounterStoreUnavailable       = errors.New("abuse counter store unavailable")

	// Validation / credentials
	ErrUnmatchedPin         = errors.New("pin does not match")
	ErrUnmatchedPassword    = errors.New("password does not match")
	ErrPinEntryBlocked      = errors.New("pin entry is blocked")
	ErrPasswordEntryBlocked = errors.New("password entry is blocked")
	ErrRateLimited          = errors.New("too many requests")
)

// PgError carries the provider diagnostics of a failed PG operation.
// It matches ErrPgOperationFailed with errors.Is, and ErrPgTimeout when Code is PgCodeTimeout.
type PgError struct {
	Op      string
	Code    string
	Message string
	// UnmatchedCardInfo is set when the provider rejected the card number, password or expiry.
	// Providers limit same-day retries for such failures.
	UnmatchedCardInfo bool
}

// PgCodeTimeout is the synthetic response code recorded when a PG call exceeds its deadline.
const PgCodeTimeout = "TIMEOUT"

func (e *PgError) Error() string {
	return fmt.Sprintf("pg %s failed: [%s] %s", e.Op, e.Code, e.Message)
}

func (e *PgError) Is(target error) bool {
	switch target {
	case ErrPgOperationFailed:
		return true
	case ErrPgTimeout:
		return e.Code == PgCodeTimeout
	}
	return false
}

// AsPgError unwraps a *PgError from err, if any.
func AsPgError(err error) (*PgError, bool) {
	var pe *PgError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
