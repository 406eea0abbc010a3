package pg_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridi-pay/internal/domain"
	"ridi-pay/internal/domain/ports/adapter"
	pg "ridi-pay/internal/infra/adapters/pg"
)

func TestRegistry_Resolves_CaseInsensitive(t *testing.T) {
	t.Parallel()
	noop := pg.NewNoopGateway()
	r := pg.NewRegistry(noop)

	g, err := r.Gateway("kcp")
	require.NoError(t, err)
	assert.Same(t, noop, g)

	_, err = r.Gateway("TOSS")
	assert.True(t, errors.Is(err, domain.ErrUnsupportedPg))
}

func TestNoopGateway_Lifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	nop := pg.NewNoopGateway()
	logger := zerolog.Nop()
	g := pg.NewInstrumentedGateway(nop, &logger)

	reg, err := g.RegisterCard(ctx, adapter.RegisterCardRequest{CardNumber: "5123456789012345"})
	require.NoError(t, err)

	nop.FailNext("approve", "8001", "declined")
	_, err = g.ApproveTransaction(ctx, adapter.ApproveRequest{BillKey: reg.BillKey, Amount: 500})
	pe, ok := domain.AsPgError(err)
	require.True(t, ok)
	assert.Equal(t, "8001", pe.Code)

	app, err := g.ApproveTransaction(ctx, adapter.ApproveRequest{BillKey: reg.BillKey, Amount: 500})
	require.NoError(t, err)
	assert.Equal(t, int64(500), app.Amount)

	_, err = g.ApproveTransaction(ctx, adapter.ApproveRequest{BillKey: "unknown", Amount: 500})
	assert.True(t, errors.Is(err, domain.ErrPgOperationFailed))

	can, err := g.CancelTransaction(ctx, adapter.CancelRequest{PgTransactionID: app.PgTransactionID})
	require.NoError(t, err)
	assert.Equal(t, int64(500), can.Amount)

	_, err = g.CancelTransaction(ctx, adapter.CancelRequest{PgTransactionID: app.PgTransactionID})
	assert.Error(t, err, "a canceled transaction cannot be canceled again")
}
