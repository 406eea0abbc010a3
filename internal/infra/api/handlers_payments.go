package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"ridi-pay/internal/domain/model"
	"ridi-pay/internal/infra/metrics"
	"ridi-pay/internal/usecase"
)

type reserveRequest struct {
	UIdx                 int64  `json:"u_idx" validate:"gt=0"`
	PaymentMethodID      string `json:"payment_method_id" validate:"required,uuid"`
	PartnerTransactionID string `json:"partner_transaction_id" validate:"required,max=64"`
	ProductName          string `json:"product_name" validate:"required,max=255"`
	Amount               int64  `json:"amount" validate:"gt=0"`
}

type cancelRequest struct {
	Reason string `json:"reason" validate:"max=255"`
}

type transactionResponse struct {
	TransactionID        uuid.UUID               `json:"transaction_id"`
	PartnerTransactionID string                  `json:"partner_transaction_id"`
	PaymentMethodID      *uuid.UUID              `json:"payment_method_id,omitempty"`
	ProductName          string                  `json:"product_name"`
	Amount               int64                   `json:"amount"`
	Status               model.TransactionStatus `json:"status"`
	ReservedAt           time.Time               `json:"reserved_at"`
	ApprovedAt           *time.Time              `json:"approved_at,omitempty"`
	CanceledAt           *time.Time              `json:"canceled_at,omitempty"`
	ReceiptURL           string                  `json:"receipt_url,omitempty"`
}

func fromTransaction(t *model.Transaction) transactionResponse {
	return transactionResponse{
		TransactionID:        t.UUID,
		PartnerTransactionID: t.PartnerTransactionID,
		ProductName:          t.ProductName,
		Amount:               t.Amount,
		Status:               t.Status,
		ReservedAt:           t.ReservedAt,
		ApprovedAt:           t.ApprovedAt,
		CanceledAt:           t.CanceledAt,
	}
}

func fromStatusView(v *usecase.TransactionStatusView) transactionResponse {
	pm := v.PaymentMethodID
	return transactionResponse{
		TransactionID:        v.TransactionID,
		PartnerTransactionID: v.PartnerTransactionID,
		PaymentMethodID:      &pm,
		ProductName:          v.ProductName,
		Amount:               v.Amount,
		Status:               v.Status,
		ReservedAt:           v.ReservedAt,
		ApprovedAt:           v.ApprovedAt,
		CanceledAt:           v.CanceledAt,
		ReceiptURL:           v.ReceiptURL,
	}
}

func (h *Handlers) reserve(w http.ResponseWriter, r *http.Request) {
	partner := partnerFrom(r.Context())
	var req reserveRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	t, err := h.transactions.Reserve(r.Context(), usecase.ReserveInput{
		UIdx:                 req.UIdx,
		PartnerID:            partner.ID,
		PaymentMethodUUID:    uuid.MustParse(req.PaymentMethodID),
		PartnerTransactionID: req.PartnerTransactionID,
		ProductName:          req.ProductName,
		Amount:               req.Amount,
	})
	metrics.IncTransaction("reserve", err == nil)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, fromTransaction(t))
}

func (h *Handlers) approve(w http.ResponseWriter, r *http.Request) {
	txID, err := pathUUID(r, "transaction_id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	t, err := h.transactions.Approve(r.Context(), txID, partnerFrom(r.Context()).ID)
	metrics.IncTransaction("approve", err == nil)
	if err != nil {
		writeTransactionError(w, r, h.log, err, t)
		return
	}
	metrics.AddTransactionAmount("approve", t.Amount)
	writeJSON(w, http.StatusOK, fromTransaction(t))
}

func (h *Handlers) cancel(w http.ResponseWriter, r *http.Request) {
	txID, err := pathUUID(r, "transaction_id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	var req cancelRequest
	if r.ContentLength > 0 {
		if err := decode(r, &req); err != nil {
			writeError(w, r, h.log, err)
			return
		}
	}
	t, err := h.transactions.Cancel(r.Context(), txID, partnerFrom(r.Context()).ID, req.Reason)
	metrics.IncTransaction("cancel", err == nil)
	if err != nil {
		writeTransactionError(w, r, h.log, err, t)
		return
	}
	metrics.AddTransactionAmount("cancel", t.Amount)
	writeJSON(w, http.StatusOK, fromTransaction(t))
}

func (h *Handlers) transactionStatus(w http.ResponseWriter, r *http.Request) {
	txID, err := pathUUID(r, "transaction_id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	v, err := h.transactions.GetStatus(r.Context(), txID, partnerFrom(r.Context()).ID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, fromStatusView(v))
}
