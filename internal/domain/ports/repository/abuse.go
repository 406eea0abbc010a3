package repository

import (
	"context"
	"time"
)

// AbuseRecord is the stored state of one (abuse type, subject) counter.
type AbuseRecord struct {
	Count     int64
	BlockedAt *time.Time
}

// AbuseCounterStore is the shared key-value store behind the abuse blocker.
// Implementations must make RecordFailure a single atomic operation.
type AbuseCounterStore interface {
	// RecordFailure increments the counter of key. When the counter reaches threshold it
	// records blocked_at = now unless already set, and makes the key expire at
	// blocked_at + blockedPeriod.
	RecordFailure(ctx context.Context, key string, threshold int, now time.Time, blockedPeriod time.Duration) (AbuseRecord, error)
	// Get returns a zero record when key does not exist.
	Get(ctx context.Context, key string) (AbuseRecord, error)
	Reset(ctx context.Context, key string) error
}
