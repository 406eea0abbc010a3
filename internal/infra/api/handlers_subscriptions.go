package api

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"ridi-pay/internal/domain/model"
	"ridi-pay/internal/infra/metrics"
	"ridi-pay/internal/usecase"
)

type subscribeRequest struct {
	UIdx            int64  `json:"u_idx" validate:"gt=0"`
	PaymentMethodID string `json:"payment_method_id" validate:"required,uuid"`
	ProductName     string `json:"product_name" validate:"required,max=255"`
}

type payRequest struct {
	PartnerTransactionID string `json:"partner_transaction_id" validate:"required,max=64"`
	ProductName          string `json:"product_name" validate:"omitempty,max=255"`
	Amount               int64  `json:"amount" validate:"gt=0"`
}

type subscriptionResponse struct {
	SubscriptionID  uuid.UUID  `json:"subscription_id"`
	PaymentMethodID *uuid.UUID `json:"payment_method_id,omitempty"`
	ProductName     string     `json:"product_name"`
	SubscribedAt    time.Time  `json:"subscribed_at"`
	UnsubscribedAt  *time.Time `json:"unsubscribed_at,omitempty"`
}

func fromSubscription(s *model.Subscription) subscriptionResponse {
	return subscriptionResponse{
		SubscriptionID: s.UUID,
		ProductName:    s.ProductName,
		SubscribedAt:   s.SubscribedAt,
		UnsubscribedAt: s.UnsubscribedAt,
	}
}

func (h *Handlers) subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	s, err := h.subscriptions.Subscribe(r.Context(), req.UIdx, partnerFrom(r.Context()).ID, uuid.MustParse(req.PaymentMethodID), req.ProductName)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	metrics.IncSubscription("subscribe")
	resp := fromSubscription(s)
	pm := uuid.MustParse(req.PaymentMethodID)
	resp.PaymentMethodID = &pm
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handlers) unsubscribe(w http.ResponseWriter, r *http.Request) {
	h.subscriptionTransition(w, r, "unsubscribe", h.subscriptions.Unsubscribe)
}

func (h *Handlers) resume(w http.ResponseWriter, r *http.Request) {
	h.subscriptionTransition(w, r, "resume", h.subscriptions.Resume)
}

func (h *Handlers) subscriptionTransition(w http.ResponseWriter, r *http.Request, action string,
	fn func(ctx context.Context, id uuid.UUID, partnerID int64) (*model.Subscription, error)) {
	subID, err := pathUUID(r, "subscription_id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	s, err := fn(r.Context(), subID, partnerFrom(r.Context()).ID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	metrics.IncSubscription(action)
	writeJSON(w, http.StatusOK, fromSubscription(s))
}

func (h *Handlers) paySubscription(w http.ResponseWriter, r *http.Request) {
	subID, err := pathUUID(r, "subscription_id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	var req payRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	t, err := h.subscriptions.Pay(r.Context(), usecase.PayInput{
		SubscriptionUUID:     subID,
		PartnerID:            partnerFrom(r.Context()).ID,
		PartnerTransactionID: req.PartnerTransactionID,
		ProductName:          req.ProductName,
		Amount:               req.Amount,
	})
	metrics.IncTransaction("subscription_pay", err == nil)
	if err != nil {
		writeTransactionError(w, r, h.log, err, t)
		return
	}
	metrics.IncSubscription("pay")
	metrics.AddTransactionAmount("approve", t.Amount)
	writeJSON(w, http.StatusOK, fromTransaction(t))
}

func (h *Handlers) getSubscription(w http.ResponseWriter, r *http.Request) {
	subID, err := pathUUID(r, "subscription_id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	v, err := h.subscriptions.Get(r.Context(), subID, partnerFrom(r.Context()).ID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	pm := v.PaymentMethodID
	writeJSON(w, http.StatusOK, subscriptionResponse{
		SubscriptionID:  v.SubscriptionID,
		PaymentMethodID: &pm,
		ProductName:     v.ProductName,
		SubscribedAt:    v.SubscribedAt,
		UnsubscribedAt:  v.UnsubscribedAt,
	})
}
