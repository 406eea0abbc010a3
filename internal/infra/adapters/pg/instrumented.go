package pg

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"ridi-pay/internal/domain"
	"ridi-pay/internal/domain/ports/adapter"
	"ridi-pay/internal/infra/metrics"
)

// Compile-time check
var _ adapter.PgGateway = (*instrumentedGateway)(nil)

// instrumentedGateway records latency metrics and a log line per PG call.
// Request payloads are never logged.
type instrumentedGateway struct {
	inner adapter.PgGateway
	log   *zerolog.Logger
}

func NewInstrumentedGateway(inner adapter.PgGateway, logger *zerolog.Logger) adapter.PgGateway {
	l := logger.With().Str("component", "pg").Str("pg", inner.Name()).Logger()
	return &instrumentedGateway{inner: inner, log: &l}
}

func (g *instrumentedGateway) Name() string { return g.inner.Name() }

func (g *instrumentedGateway) observe(op string, start time.Time, err error) {
	ms := time.Since(start).Milliseconds()
	metrics.ObservePgCall(g.inner.Name(), op, ms, err == nil)

	if err == nil {
		g.log.Debug().Str("op", op).Int64("latency_ms", ms).Msg("pg call ok")
		return
	}
	ev := g.log.Warn().Str("op", op).Int64("latency_ms", ms)
	if pe, ok := domain.AsPgError(err); ok {
		ev = ev.Str("code", pe.Code).Str("message", pe.Message).Bool("unmatched_card_info", pe.UnmatchedCardInfo)
	} else {
		ev = ev.Err(err)
	}
	ev.Msg("pg call failed")
}

func (g *instrumentedGateway) RegisterCard(ctx context.Context, req adapter.RegisterCardRequest) (res *adapter.RegisterCardResult, err error) {
	defer func(start time.Time) { g.observe("register", start, err) }(time.Now())
	return g.inner.RegisterCard(ctx, req)
}

func (g *instrumentedGateway) ApproveTransaction(ctx context.Context, req adapter.ApproveRequest) (res *adapter.ApproveResult, err error) {
	defer func(start time.Time) { g.observe("approve", start, err) }(time.Now())
	return g.inner.ApproveTransaction(ctx, req)
}

func (g *instrumentedGateway) CancelTransaction(ctx context.Context, req adapter.CancelRequest) (res *adapter.CancelResult, err error) {
	defer func(start time.Time) { g.observe("cancel", start, err) }(time.Now())
	return g.inner.CancelTransaction(ctx, req)
}

func (g *instrumentedGateway) GetReceiptURL(pgTransactionID, orderNo string, amount int64) string {
	return g.inner.GetReceiptURL(pgTransactionID, orderNo, amount)
}
