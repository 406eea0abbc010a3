package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"ridi-pay/internal/domain"
	"ridi-pay/internal/domain/ports/repository"
	"ridi-pay/internal/infra/logging"
)

const (
	AbuseTypePinEntry      = "pin_entry"
	AbuseTypePasswordEntry = "password_entry"
)

// AbusePolicy bounds the failed attempts allowed per subject.
type AbusePolicy struct {
	Type          string
	Threshold     int
	BlockedPeriod time.Duration
}

var (
	PinEntryPolicy      = AbusePolicy{Type: AbuseTypePinEntry, Threshold: 5, BlockedPeriod: 10 * time.Minute}
	PasswordEntryPolicy = AbusePolicy{Type: AbuseTypePasswordEntry, Threshold: 5, BlockedPeriod: 10 * time.Minute}
)

func (p AbusePolicy) key(id string) string {
	return "abuse:" + p.Type + ":" + id
}

// Clock returns the current time. Tests inject a fake one.
type Clock func() time.Time

// AbuseBlocker counts failures per (policy, subject) in a shared store.
//
// Once the counter reaches the threshold the subject stays blocked until
// blocked_at + BlockedPeriod, after which the store drops the record.
// Store errors are returned wrapped in domain.ErrCounterStoreUnavailable so callers
// refuse the attempt instead of letting it through.
type AbuseBlocker struct {
	store repository.AbuseCounterStore
	now   Clock
	log   *zerolog.Logger
}

func NewAbuseBlocker(store repository.AbuseCounterStore, clock Clock, logger *zerolog.Logger) *AbuseBlocker {
	if clock == nil {
		clock = time.Now
	}
	return &AbuseBlocker{store: store, now: clock, log: logger}
}

// RecordFailureAndCheck records one failed attempt and reports whether the subject is
// now blocked.
func (b *AbuseBlocker) RecordFailureAndCheck(ctx context.Context, p AbusePolicy, id string) (bool, error) {
	defer logging.TraceDuration(b.log, "AbuseBlocker.RecordFailureAndCheck")()

	rec, err := b.store.RecordFailure(ctx, p.key(id), p.Threshold, b.now(), p.BlockedPeriod)
	if err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrCounterStoreUnavailable, err)
	}
	blocked := rec.Count >= int64(p.Threshold)
	if blocked && rec.Count == int64(p.Threshold) {
		logging.With(ctx, b.log).Warn().Str("abuse_type", p.Type).Msg("subject blocked")
	}
	return blocked, nil
}

func (b *AbuseBlocker) GetBlockedAt(ctx context.Context, p AbusePolicy, id string) (*time.Time, error) {
	rec, err := b.store.Get(ctx, p.key(id))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCounterStoreUnavailable, err)
	}
	return rec.BlockedAt, nil
}

// IsBlocked reports whether the subject is blocked and for how much longer.
func (b *AbuseBlocker) IsBlocked(ctx context.Context, p AbusePolicy, id string) (bool, time.Duration, error) {
	blockedAt, err := b.GetBlockedAt(ctx, p, id)
	if err != nil || blockedAt == nil {
		return false, 0, err
	}
	remaining := blockedAt.Add(p.BlockedPeriod).Sub(b.now())
	if remaining <= 0 {
		return false, 0, nil
	}
	return true, remaining, nil
}

func (b *AbuseBlocker) Reset(ctx context.Context, p AbusePolicy, id string) error {
	if err := b.store.Reset(ctx, p.key(id)); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrCounterStoreUnavailable, err)
	}
	return nil
}

// blockedError carries the remaining lockout without exposing anything about the secret.
func blockedError(sentinel error, remaining time.Duration) error {
	return fmt.Errorf("%w: retry in %s", sentinel, remaining.Round(time.Second))
}
