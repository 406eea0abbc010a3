package domain

import "errors"

// ErrorKind groups domain errors by how a caller should react to them.
type ErrorKind string

const (
	KindAuthorization ErrorKind = "authorization"
	KindConflict      ErrorKind = "conflict"
	KindNotFound      ErrorKind = "not_found"
	KindExternal      ErrorKind = "external"
	KindValidation    ErrorKind = "validation"
	KindBlocked       ErrorKind = "blocked"
	KindInternal      ErrorKind = "internal"
)

type errorClass struct {
	err  error
	code string
	kind ErrorKind
}

// Order matters: more specific errors come first, since several sentinels wrap ErrNotFound
// and failure errors may wrap a *PgError.
var errorClasses = []errorClass{
	{ErrUnauthorizedPartner, "UNAUTHORIZED_PARTNER", KindAuthorization},
	{ErrUnauthorizedUser, "UNAUTHORIZED_USER", KindAuthorization},
	{ErrNotOwnedTransaction, "NOT_OWNED_TRANSACTION", KindAuthorization},
	{ErrNotOwnedSubscription, "NOT_OWNED_SUBSCRIPTION", KindAuthorization},

	{ErrCardAlreadyExists, "CARD_ALREADY_EXISTS", KindConflict},
	{ErrAlreadyRunningTransaction, "ALREADY_RUNNING_TRANSACTION", KindConflict},
	{ErrNotReservedTransaction, "NOT_RESERVED_TRANSACTION", KindConflict},
	{ErrNotApprovedTransaction, "NOT_APPROVED_TRANSACTION", KindConflict},
	{ErrAlreadyCancelledTransaction, "ALREADY_CANCELLED_TRANSACTION", KindConflict},
	{ErrAlreadyCancelledSubscription, "ALREADY_CANCELLED_SUBSCRIPTION", KindConflict},
	{ErrAlreadyResumedSubscription, "ALREADY_RESUMED_SUBSCRIPTION", KindConflict},
	{ErrLeavedUser, "LEAVED_USER", KindConflict},
	{ErrPinNotRegistered, "PIN_NOT_REGISTERED", KindConflict},
	{ErrPartnerAlreadyExists, "PARTNER_ALREADY_EXISTS", KindConflict},
	{ErrAlreadyExists, "ALREADY_EXISTS", KindConflict},

	{ErrPinEntryBlocked, "PIN_ENTRY_BLOCKED", KindBlocked},
	{ErrPasswordEntryBlocked, "PASSWORD_ENTRY_BLOCKED", KindBlocked},
	{ErrRateLimited, "TOO_MANY_REQUESTS", KindBlocked},

	{ErrUserNotFound, "NOT_FOUND_USER", KindNotFound},
	{ErrTransactionNotFound, "NOT_FOUND_TRANSACTION", KindNotFound},
	{ErrSubscriptionNotFound, "NOT_FOUND_SUBSCRIPTION", KindNotFound},
	{ErrUnregisteredPaymentMethod, "UNREGISTERED_PAYMENT_METHOD", KindNotFound},
	{ErrUnsupportedPg, "UNSUPPORTED_PG", KindNotFound},
	{ErrCardIssuerNotFound, "NOT_FOUND_CARD_ISSUER", KindNotFound},
	{ErrNotFound, "NOT_FOUND", KindNotFound},

	{ErrTransactionApprovalFailed, "TRANSACTION_APPROVAL_FAILED", KindExternal},
	{ErrTransactionCancellationFailed, "TRANSACTION_CANCELLATION_FAILED", KindExternal},
	{ErrCardRegistrationFailed, "CARD_REGISTRATION_FAILED", KindExternal},
	{ErrPgTimeout, "PG_TIMEOUT", KindExternal},
	{ErrPgOperationFailed, "PG_OPERATION_FAILED", KindExternal},
	{ErrCryptoIntegrity, "INTERNAL_SERVER_ERROR", KindInternal},
	{ErrCounterStoreUnavailable, "SERVICE_UNAVAILABLE", KindExternal},

	{ErrUnmatchedPin, "UNMATCHED_PIN", KindValidation},
	{ErrUnmatchedPassword, "UNMATCHED_PASSWORD", KindValidation},
	{ErrInvalidArgument, "INVALID_PARAMETER", KindValidation},
}

func classify(err error) (errorClass, bool) {
	for _, c := range errorClasses {
		if errors.Is(err, c.err) {
			return c, true
		}
	}
	return errorClass{}, false
}

// Kind reports the error kind; unknown errors are KindInternal.
func Kind(err error) ErrorKind {
	if c, ok := classify(err); ok {
		return c.kind
	}
	return KindInternal
}

// Code returns a stable machine-readable code for err.
func Code(err error) string {
	if c, ok := classify(err); ok {
		return c.code
	}
	return "INTERNAL_SERVER_ERROR"
}

// Message returns text safe to show a caller. External failures are reported by their
// class only; provider diagnostics travel separately through AsPgError.
func Message(err error) string {
	c, ok := classify(err)
	switch {
	case !ok || c.kind == KindInternal:
		return "internal server error"
	case c.kind == KindExternal:
		return c.err.Error()
	default:
		return err.Error()
	}
}
