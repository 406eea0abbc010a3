//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"ridi-pay/internal/domain/model"
	"ridi-pay/internal/domain/ports/repository"
)

type fixture struct {
	user    *model.User
	pg      *model.Pg
	issuer  *model.CardIssuer
	method  *model.PaymentMethod
	partner *model.Partner
}

// seed creates a user with one registered card and a partner.
func seed(t *testing.T, uIdx int64) *fixture {
	t.Helper()
	ctx := context.Background()

	pg, err := NewPgRepo(testPool).FindActive(ctx, repository.NoTX)
	if err != nil {
		t.Fatalf("find active pg: %v", err)
	}
	issuer, err := NewCardIssuerRepo(testPool).FindByPgAndCode(ctx, repository.NoTX, pg.ID, "CCLG")
	if err != nil {
		t.Fatalf("find issuer: %v", err)
	}

	u, _ := model.NewUser(uIdx)
	if err := NewUserRepo(testPool).Save(ctx, repository.NoTX, u); err != nil {
		t.Fatalf("save user: %v", err)
	}
	m, _ := model.NewCardPaymentMethod(uIdx)
	if err := NewPaymentMethodRepo(testPool).Save(ctx, repository.NoTX, m); err != nil {
		t.Fatalf("save payment method: %v", err)
	}
	for _, p := range []model.CardPurpose{model.CardPurposeOneTime, model.CardPurposeBilling} {
		c, _ := model.NewCard(m.ID, issuer.ID, pg.ID, "enc-bill-key", "512345", p)
		if err := NewCardRepo(testPool).Save(ctx, repository.NoTX, c); err != nil {
			t.Fatalf("save card: %v", err)
		}
	}
	partner := &model.Partner{
		Name:         "partner" + uuid.NewString()[:8],
		PasswordHash: "hash",
		APIKey:       uuid.New(),
		SecretKey:    "enc-secret",
		IsValid:      true,
		CreatedAt:    time.Now(),
	}
	if err := NewPartnerRepo(testPool).Save(ctx, repository.NoTX, partner); err != nil {
		t.Fatalf("save partner: %v", err)
	}
	return &fixture{user: u, pg: pg, issuer: issuer, method: m, partner: partner}
}
