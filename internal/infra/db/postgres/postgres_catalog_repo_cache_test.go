//go:build !integration

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"ridi-pay/internal/domain"
	"ridi-pay/internal/domain/model"
	"ridi-pay/internal/domain/ports/repository"
)

func TestCardIssuerRepoCacheDecorator(t *testing.T) {
	ctx := context.Background()
	issuer := &model.CardIssuer{ID: 3, PgID: 1, Code: "CCLG", Name: "Shinhan", Color: "0A2A9C"}
	issuerJSON, _ := json.Marshal(issuer)

	t.Run("FindByID should return from cache on hit", func(t *testing.T) {
		mockRedis := &mockRedisClient{
			GetFunc: func(ctx context.Context, key string) (string, error) {
				if key != "card_issuer:id:3" {
					t.Errorf("unexpected cache key %q", key)
				}
				return string(issuerJSON), nil
			},
		}
		innerRepoCalled := false
		inner := &mockInnerIssuerRepo{
			FindByIDFunc: func(ctx context.Context, tx repository.Tx, id int64) (*model.CardIssuer, error) {
				innerRepoCalled = true
				return nil, nil
			},
		}

		result, err := NewCardIssuerRepoCacheDecorator(inner, mockRedis).FindByID(ctx, nil, 3)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if innerRepoCalled {
			t.Error("inner repository should not be called on a cache hit")
		}
		if result == nil || result.Code != "CCLG" || result.Color != "0A2A9C" {
			t.Errorf("did not return the cached issuer: %+v", result)
		}
	})

	t.Run("FindByPgAndCode should load and fill the cache on miss", func(t *testing.T) {
		var setKey string
		var setTTL time.Duration
		mockRedis := &mockRedisClient{
			SetFunc: func(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
				setKey, setTTL = key, expiration
				return nil
			},
		}
		inner := &mockInnerIssuerRepo{
			FindByPgAndCodeFunc: func(ctx context.Context, tx repository.Tx, pgID int64, code string) (*model.CardIssuer, error) {
				return issuer, nil
			},
		}

		result, err := NewCardIssuerRepoCacheDecorator(inner, mockRedis).FindByPgAndCode(ctx, nil, 1, "CCLG")
		if err != nil || result != issuer {
			t.Fatalf("expected inner result, got %v, %v", result, err)
		}
		if setKey != "card_issuer:pg:1:CCLG" || setTTL != catalogCacheTTL {
			t.Errorf("expected cache fill for card_issuer:pg:1:CCLG, got %q ttl %v", setKey, setTTL)
		}
	})

	t.Run("errors should not be cached", func(t *testing.T) {
		setCalled := false
		mockRedis := &mockRedisClient{
			SetFunc: func(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
				setCalled = true
				return nil
			},
		}
		inner := &mockInnerIssuerRepo{
			FindByIDFunc: func(ctx context.Context, tx repository.Tx, id int64) (*model.CardIssuer, error) {
				return nil, domain.ErrCardIssuerNotFound
			},
		}

		_, err := NewCardIssuerRepoCacheDecorator(inner, mockRedis).FindByID(ctx, nil, 9)
		if !errors.Is(err, domain.ErrCardIssuerNotFound) {
			t.Fatalf("expected ErrCardIssuerNotFound, got %v", err)
		}
		if setCalled {
			t.Error("a failed lookup must not fill the cache")
		}
	})

	t.Run("lookups inside a transaction bypass the cache", func(t *testing.T) {
		mockRedis := &mockRedisClient{
			GetFunc: func(ctx context.Context, key string) (string, error) {
				t.Error("cache must not be read inside a transaction")
				return "", errCacheMiss
			},
		}
		inner := &mockInnerIssuerRepo{
			FindByPgAndCodeFunc: func(ctx context.Context, tx repository.Tx, pgID int64, code string) (*model.CardIssuer, error) {
				return issuer, nil
			},
		}
		got, err := NewCardIssuerRepoCacheDecorator(inner, mockRedis).FindByPgAndCode(ctx, struct{}{}, 1, "CCLG")
		if err != nil || got != issuer {
			t.Fatalf("expected inner issuer, got %v, %v", got, err)
		}
	})

	t.Run("a corrupt cache entry falls back to the database", func(t *testing.T) {
		mockRedis := &mockRedisClient{
			GetFunc: func(ctx context.Context, key string) (string, error) { return "{not json", nil },
		}
		inner := &mockInnerIssuerRepo{
			FindByIDFunc: func(ctx context.Context, tx repository.Tx, id int64) (*model.CardIssuer, error) { return issuer, nil },
		}
		got, err := NewCardIssuerRepoCacheDecorator(inner, mockRedis).FindByID(ctx, nil, 3)
		if err != nil || got.Code != "CCLG" {
			t.Fatalf("expected fallback to inner repo, got %v, %v", got, err)
		}
	})
}
