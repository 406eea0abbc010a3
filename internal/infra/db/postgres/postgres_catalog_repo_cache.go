package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ridi-pay/internal/domain/model"
	"ridi-pay/internal/domain/ports/repository"
	"ridi-pay/internal/infra/metrics"
	red "ridi-pay/internal/infra/redis"
)

// The issuer decorator caches card issuer reads in redis. Lookups inside a
// transaction bypass the cache so callers holding row locks see committed state.
// PG rows are not cached: their status gates payability and must be read live.

var _ repository.CardIssuerRepository = (*cardIssuerRepoCacheDecorator)(nil)

const catalogCacheTTL = 10 * time.Minute

type cardIssuerRepoCacheDecorator struct {
	inner repository.CardIssuerRepository
	cache red.RedisClient
	ttl   time.Duration
}

func NewCardIssuerRepoCacheDecorator(inner repository.CardIssuerRepository, cache red.RedisClient) repository.CardIssuerRepository {
	return &cardIssuerRepoCacheDecorator{inner: inner, cache: cache, ttl: catalogCacheTTL}
}

func (d *cardIssuerRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.CardIssuer, error) {
	if tx != nil {
		return d.inner.FindByID(ctx, tx, id)
	}
	return cached(ctx, d.cache, d.ttl, "card_issuer", fmt.Sprintf("card_issuer:id:%d", id), func() (*model.CardIssuer, error) {
		return d.inner.FindByID(ctx, tx, id)
	})
}

func (d *cardIssuerRepoCacheDecorator) FindByPgAndCode(ctx context.Context, tx repository.Tx, pgID int64, code string) (*model.CardIssuer, error) {
	if tx != nil {
		return d.inner.FindByPgAndCode(ctx, tx, pgID, code)
	}
	return cached(ctx, d.cache, d.ttl, "card_issuer", fmt.Sprintf("card_issuer:pg:%d:%s", pgID, code), func() (*model.CardIssuer, error) {
		return d.inner.FindByPgAndCode(ctx, tx, pgID, code)
	})
}

// cached is a read-through helper. Cache failures fall back to load; errors from
// load are never cached.
func cached[T any](ctx context.Context, cache red.RedisClient, ttl time.Duration, name, key string, load func() (*T, error)) (*T, error) {
	if val, err := cache.Get(ctx, key); err == nil {
		var v T
		if json.Unmarshal([]byte(val), &v) == nil {
			metrics.IncCacheRequest(name, "hit")
			return &v, nil
		}
	}

	metrics.IncCacheRequest(name, "miss")
	v, err := load()
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(v); err == nil {
		_ = cache.Set(ctx, key, b, ttl)
	}
	return v, nil
}
