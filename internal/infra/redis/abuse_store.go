// File: internal/infra/redis/abuse_store.go
package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"

	"ridi-pay/internal/domain/ports/repository"
	"ridi-pay/internal/infra/metrics"
)

// Each counter is a hash {count, blocked_at(unix seconds)}.
// The counter decays after one blocked period without reaching the threshold; once
// blocked, the key expires at blocked_at + period.
var luaRecordFailure = redis.NewScript(`
local count = redis.call("HINCRBY", KEYS[1], "count", 1)
local threshold = tonumber(ARGV[1])
local now = tonumber(ARGV[2])
local period = tonumber(ARGV[3])
if count == 1 then
	redis.call("EXPIRE", KEYS[1], period)
end
if count >= threshold then
	redis.call("HSETNX", KEYS[1], "blocked_at", now)
	local blocked = tonumber(redis.call("HGET", KEYS[1], "blocked_at"))
	redis.call("EXPIREAT", KEYS[1], blocked + period)
end
return {count, redis.call("HGET", KEYS[1], "blocked_at")}`)

type AbuseStore struct {
	cli *redis.Client
}

var _ repository.AbuseCounterStore = (*AbuseStore)(nil)

func NewAbuseStore(c *Client) *AbuseStore {
	return &AbuseStore{cli: c.cli}
}

func (s *AbuseStore) RecordFailure(ctx context.Context, key string, threshold int, now time.Time, blockedPeriod time.Duration) (repository.AbuseRecord, error) {
	period := int64(blockedPeriod / time.Second)
	if period < 1 {
		period = 1
	}
	res, err := luaRecordFailure.Run(ctx, s.cli, []string{key}, threshold, now.Unix(), period).Slice()
	if err != nil {
		return repository.AbuseRecord{}, fmt.Errorf("record failure: %w", err)
	}
	if len(res) != 2 {
		return repository.AbuseRecord{}, fmt.Errorf("record failure: unexpected reply %v", res)
	}

	var rec repository.AbuseRecord
	count, ok := res[0].(int64)
	if !ok {
		return repository.AbuseRecord{}, fmt.Errorf("record failure: unexpected count %v", res[0])
	}
	rec.Count = count
	if res[1] != nil {
		if rec.BlockedAt, err = parseUnix(fmt.Sprint(res[1])); err != nil {
			return repository.AbuseRecord{}, err
		}
	}
	if rec.Count == int64(threshold) {
		metrics.IncAbuseBlock(abuseType(key))
	}
	return rec, nil
}

func (s *AbuseStore) Get(ctx context.Context, key string) (repository.AbuseRecord, error) {
	vals, err := s.cli.HMGet(ctx, key, "count", "blocked_at").Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return repository.AbuseRecord{}, nil
		}
		return repository.AbuseRecord{}, err
	}

	var rec repository.AbuseRecord
	if v, ok := vals[0].(string); ok {
		if rec.Count, err = strconv.ParseInt(v, 10, 64); err != nil {
			return repository.AbuseRecord{}, fmt.Errorf("parse count: %w", err)
		}
	}
	if v, ok := vals[1].(string); ok {
		if rec.BlockedAt, err = parseUnix(v); err != nil {
			return repository.AbuseRecord{}, err
		}
	}
	return rec, nil
}

func (s *AbuseStore) Reset(ctx context.Context, key string) error {
	return s.cli.Del(ctx, key).Err()
}

func parseUnix(v string) (*time.Time, error) {
	sec, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse blocked_at: %w", err)
	}
	t := time.Unix(sec, 0).UTC()
	return &t, nil
}

// abuseType extracts the policy type from "abuse:{type}:{id}".
func abuseType(key string) string {
	parts := strings.SplitN(key, ":", 3)
	if len(parts) < 2 {
		return "unknown"
	}
	return parts[1]
}
