package pg_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ridi-pay/internal/config"
	"ridi-pay/internal/domain"
	"ridi-pay/internal/domain/ports/adapter"
	pg "ridi-pay/internal/infra/adapters/pg"
)

func newKCP(t *testing.T, h http.HandlerFunc, timeout time.Duration) *pg.KCPGateway {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	g, err := pg.NewKCPGateway(&config.KCPConfig{
		BaseURL:     srv.URL,
		SiteCode:    "T0000",
		SiteKey:     "key",
		GroupID:     "BA001",
		TaxDeductID: "BA002",
		ReceiptBase: "https://admin8.kcp.co.kr",
		Timeout:     timeout,
	})
	require.NoError(t, err)
	return g
}

func decode(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.NewDecoder(r.Body).Decode(&m))
	return m
}

func TestKCPGateway_RegisterCard(t *testing.T) {
	t.Parallel()
	var got map[string]any
	g := newKCP(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payments/batch-key", r.URL.Path)
		got = decode(t, r)
		_, _ = w.Write([]byte(`{"res_cd":"0000","res_msg":"ok","batch_key":"BK-1","card_cd":"CCLG"}`))
	}, time.Second)

	res, err := g.RegisterCard(context.Background(), adapter.RegisterCardRequest{
		CardNumber: "5123456789012345", ExpirationDate: "2912", CardPassword: "12", TaxID: "900101",
	})
	require.NoError(t, err)
	assert.True(t, res.IsSuccess)
	assert.Equal(t, "BK-1", res.BillKey)
	assert.Equal(t, "CCLG", res.CardIssuerCode)

	assert.Equal(t, "T0000", got["site_cd"])
	assert.Equal(t, "BA001", got["group_id"])
	_, err = ulid.ParseStrict(got["ordr_idxx"].(string))
	assert.NoError(t, err, "registration order id should be a ULID")
}

func TestKCPGateway_RegisterCard_UnmatchedCard(t *testing.T) {
	t.Parallel()
	g := newKCP(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"res_cd":"8121","res_msg":"card password mismatch"}`))
	}, time.Second)

	_, err := g.RegisterCard(context.Background(), adapter.RegisterCardRequest{CardNumber: "5123456789012345"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrPgOperationFailed))
	pe, ok := domain.AsPgError(err)
	require.True(t, ok)
	assert.Equal(t, "8121", pe.Code)
	assert.True(t, pe.UnmatchedCardInfo)
	assert.NotContains(t, err.Error(), "5123456789012345")
}

func TestKCPGateway_Approve(t *testing.T) {
	t.Parallel()
	g := newKCP(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payments/batch-order", r.URL.Path)
		body := decode(t, r)
		assert.Equal(t, "BK-1", body["bt_batch_key"])
		assert.Equal(t, "BA002", body["bt_group_id"], "tax free approvals use the tax deduction group")
		assert.EqualValues(t, 1000, body["good_mny"])
		_, _ = w.Write([]byte(`{"res_cd":"0000","res_msg":"ok","tno":"TNO-1","amount":"1000","app_time":"20240301093000"}`))
	}, time.Second)

	res, err := g.ApproveTransaction(context.Background(), adapter.ApproveRequest{
		BillKey: "BK-1", OrderNo: "order-1", ProductName: "book", Amount: 1000, TaxFree: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "TNO-1", res.PgTransactionID)
	assert.Equal(t, int64(1000), res.Amount)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 30, 0, 0, time.UTC), res.ApprovedAt.UTC())
}

func TestKCPGateway_Approve_Declined(t *testing.T) {
	t.Parallel()
	g := newKCP(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"res_cd":"8001","res_msg":"insufficient balance"}`))
	}, time.Second)

	_, err := g.ApproveTransaction(context.Background(), adapter.ApproveRequest{BillKey: "BK-1", Amount: 1000})
	pe, ok := domain.AsPgError(err)
	require.True(t, ok)
	assert.Equal(t, "approve", pe.Op)
	assert.Equal(t, "8001", pe.Code)
	assert.False(t, errors.Is(err, domain.ErrPgTimeout))
}

func TestKCPGateway_Cancel(t *testing.T) {
	t.Parallel()
	g := newKCP(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payments/TNO-1/cancel", r.URL.Path)
		assert.Equal(t, "STSC", decode(t, r)["mod_type"])
		_, _ = w.Write([]byte(`{"res_cd":"0000","res_msg":"ok","amount":"1000","canc_time":"20240301100000"}`))
	}, time.Second)

	res, err := g.CancelTransaction(context.Background(), adapter.CancelRequest{PgTransactionID: "TNO-1", Reason: "refund"})
	require.NoError(t, err)
	assert.True(t, res.IsSuccess)
	assert.Equal(t, int64(1000), res.Amount)
}

func TestKCPGateway_Timeout(t *testing.T) {
	t.Parallel()
	release := make(chan struct{})
	g := newKCP(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}, 50*time.Millisecond)
	defer close(release)

	_, err := g.ApproveTransaction(context.Background(), adapter.ApproveRequest{BillKey: "BK-1", Amount: 1000})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrPgTimeout))
	pe, _ := domain.AsPgError(err)
	assert.Equal(t, domain.PgCodeTimeout, pe.Code)
}

func TestKCPGateway_HTTPFailure(t *testing.T) {
	t.Parallel()
	g := newKCP(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}, time.Second)

	_, err := g.CancelTransaction(context.Background(), adapter.CancelRequest{PgTransactionID: "TNO-1"})
	pe, ok := domain.AsPgError(err)
	require.True(t, ok)
	assert.Equal(t, "HTTP_502", pe.Code)
}

func TestKCPGateway_ReceiptURL(t *testing.T) {
	g := newKCP(t, func(w http.ResponseWriter, r *http.Request) {}, time.Second)
	u, err := url.Parse(g.GetReceiptURL("TNO-1", "order-1", 1000))
	require.NoError(t, err)
	assert.Equal(t, "admin8.kcp.co.kr", u.Host)
	assert.Equal(t, "TNO-1", u.Query().Get("tno"))
	assert.Equal(t, "order-1", u.Query().Get("order_no"))
	assert.Equal(t, "1000", u.Query().Get("trade_mny"))
}

func TestNewKCPGateway_RequiresBaseURL(t *testing.T) {
	_, err := pg.NewKCPGateway(&config.KCPConfig{})
	assert.Error(t, err)
}
