// File: internal/infra/adapters/pg/kcp_gateway.go
package pg

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"ridi-pay/internal/config"
	"ridi-pay/internal/domain"
	"ridi-pay/internal/domain/model"
	"ridi-pay/internal/domain/ports/adapter"
)

var _ adapter.PgGateway = (*KCPGateway)(nil)

const (
	kcpSuccessCode = "0000"
	kcpTimeFormat  = "20060102150405"
	kcpCancelType  = "STSC" // full cancel
)

// Response codes KCP returns when the card number, expiry, password or tax id
// does not match the issuer's records.
var kcpUnmatchedCardCodes = map[string]struct{}{
	"8116": {}, "8117": {}, "8121": {}, "8122": {}, "8131": {}, "8133": {},
}

var kst = time.FixedZone("KST", 9*60*60)

// KCPGateway implements adapter.PgGateway against the KCP batch (bill key) API
// exposed through an HTTP JSON proxy.
type KCPGateway struct {
	baseURL     string
	siteCode    string
	siteKey     string
	groupID     string
	taxDeductID string
	receiptBase string
	timeout     time.Duration
	client      *http.Client
}

func NewKCPGateway(cfg *config.KCPConfig) (*KCPGateway, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("kcp base url empty")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid kcp base url: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &KCPGateway{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		siteCode:    cfg.SiteCode,
		siteKey:     cfg.SiteKey,
		groupID:     cfg.GroupID,
		taxDeductID: cfg.TaxDeductID,
		receiptBase: strings.TrimRight(cfg.ReceiptBase, "/"),
		timeout:     timeout,
		client:      &http.Client{},
	}, nil
}

func (k *KCPGateway) Name() string { return model.PgNameKCP }

type kcpResponse struct {
	ResCd  string `json:"res_cd"`
	ResMsg string `json:"res_msg"`
}

// RegisterCard requests a batch (bill) key for the card.
func (k *KCPGateway) RegisterCard(ctx context.Context, req adapter.RegisterCardRequest) (*adapter.RegisterCardResult, error) {
	payload := map[string]any{
		"site_cd":     k.siteCode,
		"site_key":    k.siteKey,
		"group_id":    k.groupID,
		"ordr_idxx":   newOrderID(),
		"card_no":     req.CardNumber,
		"card_expiry": req.ExpirationDate,
		"card_pw":     req.CardPassword,
		"card_tax_no": req.TaxID,
	}
	var out struct {
		kcpResponse
		BatchKey string `json:"batch_key"`
		CardCd   string `json:"card_cd"`
	}
	if err := k.post(ctx, "register", "/payments/batch-key", payload, &out); err != nil {
		return nil, err
	}
	if out.ResCd != kcpSuccessCode {
		_, unmatched := kcpUnmatchedCardCodes[out.ResCd]
		return nil, &domain.PgError{Op: "register", Code: out.ResCd, Message: out.ResMsg, UnmatchedCardInfo: unmatched}
	}
	if out.BatchKey == "" {
		return nil, &domain.PgError{Op: "register", Code: out.ResCd, Message: "empty batch key"}
	}
	return &adapter.RegisterCardResult{
		IsSuccess:       true,
		ResponseCode:    out.ResCd,
		ResponseMessage: out.ResMsg,
		BillKey:         out.BatchKey,
		CardIssuerCode:  out.CardCd,
	}, nil
}

// ApproveTransaction charges a bill key.
func (k *KCPGateway) ApproveTransaction(ctx context.Context, req adapter.ApproveRequest) (*adapter.ApproveResult, error) {
	groupID := k.groupID
	if req.TaxFree && k.taxDeductID != "" {
		groupID = k.taxDeductID
	}
	payload := map[string]any{
		"site_cd":      k.siteCode,
		"site_key":     k.siteKey,
		"bt_batch_key": req.BillKey,
		"bt_group_id":  groupID,
		"ordr_idxx":    req.OrderNo,
		"good_name":    req.ProductName,
		"good_mny":     req.Amount,
		"buyr_name":    req.BuyerName,
		"currency":     "410", // KRW
	}
	var out struct {
		kcpResponse
		Tno     string `json:"tno"`
		Amount  string `json:"amount"`
		AppTime string `json:"app_time"`
	}
	if err := k.post(ctx, "approve", "/payments/batch-order", payload, &out); err != nil {
		return nil, err
	}
	if out.ResCd != kcpSuccessCode {
		return nil, &domain.PgError{Op: "approve", Code: out.ResCd, Message: out.ResMsg}
	}
	amount, _ := strconv.ParseInt(out.Amount, 10, 64)
	return &adapter.ApproveResult{
		IsSuccess:       true,
		ResponseCode:    out.ResCd,
		ResponseMessage: out.ResMsg,
		PgTransactionID: out.Tno,
		Amount:          amount,
		ApprovedAt:      parseKCPTime(out.AppTime),
	}, nil
}

// CancelTransaction fully cancels an approved charge.
func (k *KCPGateway) CancelTransaction(ctx context.Context, req adapter.CancelRequest) (*adapter.CancelResult, error) {
	payload := map[string]any{
		"site_cd":  k.siteCode,
		"site_key": k.siteKey,
		"mod_type": kcpCancelType,
		"mod_desc": req.Reason,
	}
	var out struct {
		kcpResponse
		Amount   string `json:"amount"`
		CancTime string `json:"canc_time"`
	}
	if err := k.post(ctx, "cancel", "/payments/"+url.PathEscape(req.PgTransactionID)+"/cancel", payload, &out); err != nil {
		return nil, err
	}
	if out.ResCd != kcpSuccessCode {
		return nil, &domain.PgError{Op: "cancel", Code: out.ResCd, Message: out.ResMsg}
	}
	amount, _ := strconv.ParseInt(out.Amount, 10, 64)
	return &adapter.CancelResult{
		IsSuccess:       true,
		ResponseCode:    out.ResCd,
		ResponseMessage: out.ResMsg,
		Amount:          amount,
		CanceledAt:      parseKCPTime(out.CancTime),
	}, nil
}

func (k *KCPGateway) GetReceiptURL(pgTransactionID, orderNo string, amount int64) string {
	q := url.Values{}
	q.Set("cmd", "card_bill")
	q.Set("tno", pgTransactionID)
	q.Set("order_no", orderNo)
	q.Set("trade_mny", strconv.FormatInt(amount, 10))
	return k.receiptBase + "/assist/bill.BillActionNew.do?" + q.Encode()
}

// post sends payload and decodes the JSON reply into out. Transport failures are
// returned as *domain.PgError so the caller always has a code to record.
func (k *KCPGateway) post(ctx context.Context, op, path string, payload any, out any) error {
	ctx, cancel := context.WithTimeout(ctx, k.timeout)
	defer cancel()

	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, k.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := k.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return &domain.PgError{Op: op, Code: domain.PgCodeTimeout, Message: "kcp did not respond in " + k.timeout.String()}
		}
		return &domain.PgError{Op: op, Code: "NETWORK", Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return &domain.PgError{Op: op, Code: domain.PgCodeTimeout, Message: "kcp did not respond in " + k.timeout.String()}
		}
		return &domain.PgError{Op: op, Code: "NETWORK", Message: err.Error()}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &domain.PgError{Op: op, Code: "HTTP_" + strconv.Itoa(resp.StatusCode), Message: http.StatusText(resp.StatusCode)}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &domain.PgError{Op: op, Code: "MALFORMED_RESPONSE", Message: err.Error()}
	}
	return nil
}

func newOrderID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}

func parseKCPTime(s string) time.Time {
	t, err := time.ParseInLocation(kcpTimeFormat, s, kst)
	if err != nil {
		return time.Now()
	}
	return t
}
