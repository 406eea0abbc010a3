package pg

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ridi-pay/internal/domain"
	"ridi-pay/internal/domain/model"
	"ridi-pay/internal/domain/ports/adapter"
)

var _ adapter.PgGateway = (*NoopGateway)(nil)

// NoopGateway is an in-memory KCP stand-in for local runs and tests.
// Failures can be queued per operation with FailNext.
type NoopGateway struct {
	mu       sync.Mutex
	seq      int64
	billKeys map[string]struct{}
	approved map[string]int64 // tno -> amount
	failures map[string][]*domain.PgError
}

func NewNoopGateway() *NoopGateway {
	return &NoopGateway{
		billKeys: make(map[string]struct{}),
		approved: make(map[string]int64),
		failures: make(map[string][]*domain.PgError),
	}
}

func (g *NoopGateway) Name() string { return model.PgNameKCP }

// FailNext makes the next call of op ("register", "approve", "cancel") fail with code.
func (g *NoopGateway) FailNext(op, code, message string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failures[op] = append(g.failures[op], &domain.PgError{Op: op, Code: code, Message: message})
}

func (g *NoopGateway) popFailure(op string) *domain.PgError {
	q := g.failures[op]
	if len(q) == 0 {
		return nil
	}
	g.failures[op] = q[1:]
	return q[0]
}

func (g *NoopGateway) next(prefix string) string {
	g.seq++
	return fmt.Sprintf("%s-%d", prefix, g.seq)
}

func (g *NoopGateway) RegisterCard(ctx context.Context, req adapter.RegisterCardRequest) (*adapter.RegisterCardResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if pe := g.popFailure("register"); pe != nil {
		return nil, pe
	}
	key := g.next("noop-billkey")
	g.billKeys[key] = struct{}{}
	return &adapter.RegisterCardResult{
		IsSuccess:      true,
		ResponseCode:   kcpSuccessCode,
		BillKey:        key,
		CardIssuerCode: "CCLG",
	}, nil
}

func (g *NoopGateway) ApproveTransaction(ctx context.Context, req adapter.ApproveRequest) (*adapter.ApproveResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if pe := g.popFailure("approve"); pe != nil {
		return nil, pe
	}
	if _, ok := g.billKeys[req.BillKey]; !ok {
		return nil, &domain.PgError{Op: "approve", Code: "8888", Message: "unknown bill key"}
	}
	tno := g.next("noop-tno")
	g.approved[tno] = req.Amount
	return &adapter.ApproveResult{
		IsSuccess:       true,
		ResponseCode:    kcpSuccessCode,
		PgTransactionID: tno,
		Amount:          req.Amount,
		ApprovedAt:      time.Now(),
	}, nil
}

func (g *NoopGateway) CancelTransaction(ctx context.Context, req adapter.CancelRequest) (*adapter.CancelResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if pe := g.popFailure("cancel"); pe != nil {
		return nil, pe
	}
	amount, ok := g.approved[req.PgTransactionID]
	if !ok {
		return nil, &domain.PgError{Op: "cancel", Code: "8889", Message: "unknown transaction"}
	}
	delete(g.approved, req.PgTransactionID)
	return &adapter.CancelResult{
		IsSuccess:    true,
		ResponseCode: kcpSuccessCode,
		Amount:       amount,
		CanceledAt:   time.Now(),
	}, nil
}

func (g *NoopGateway) GetReceiptURL(pgTransactionID, orderNo string, amount int64) string {
	return fmt.Sprintf("https://example.test/receipt/%s?order_no=%s&amount=%d", pgTransactionID, orderNo, amount)
}
