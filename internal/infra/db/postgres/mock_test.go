//go:build !integration

package postgres

import (
	"context"
	"errors"
	"time"

	"ridi-pay/internal/domain/model"
	"ridi-pay/internal/domain/ports/repository"
)

// --- Mocks for Cache Decorator Tests ---

type mockInnerIssuerRepo struct {
	FindByIDFunc        func(ctx context.Context, tx repository.Tx, id int64) (*model.CardIssuer, error)
	FindByPgAndCodeFunc func(ctx context.Context, tx repository.Tx, pgID int64, code string) (*model.CardIssuer, error)
}

func (m *mockInnerIssuerRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.CardIssuer, error) {
	return m.FindByIDFunc(ctx, tx, id)
}
func (m *mockInnerIssuerRepo) FindByPgAndCode(ctx context.Context, tx repository.Tx, pgID int64, code string) (*model.CardIssuer, error) {
	return m.FindByPgAndCodeFunc(ctx, tx, pgID, code)
}

var errCacheMiss = errors.New("redis: nil")

// mockRedisClient mocks our Redis client wrapper. Unset funcs behave like an empty cache.
type mockRedisClient struct {
	GetFunc func(ctx context.Context, key string) (string, error)
	SetFunc func(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	DelFunc func(ctx context.Context, keys ...string) error
}

func (m *mockRedisClient) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc == nil {
		return "", errCacheMiss
	}
	return m.GetFunc(ctx, key)
}
func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if m.SetFunc == nil {
		return nil
	}
	return m.SetFunc(ctx, key, value, expiration)
}
func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error {
	if m.DelFunc == nil {
		return nil
	}
	return m.DelFunc(ctx, keys...)
}
func (m *mockRedisClient) Ping(ctx context.Context) error                      { return nil }
func (m *mockRedisClient) Incr(ctx context.Context, key string) (int64, error) { return 0, nil }
func (m *mockRedisClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return nil
}
func (m *mockRedisClient) Close() error { return nil }
