package api

import (
	"net/http"

	"github.com/google/uuid"

	"ridi-pay/internal/infra/metrics"
)

type pinRequest struct {
	Pin string `json:"pin" validate:"required"`
}

type onetouchRequest struct {
	Enable *bool `json:"enable_onetouch_pay" validate:"required"`
}

type changePaymentMethodRequest struct {
	PaymentMethodID string `json:"payment_method_id" validate:"required,uuid"`
}

func (h *Handlers) getUser(w http.ResponseWriter, r *http.Request) {
	uIdx, err := pathUIdx(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	u, err := h.users.Get(r.Context(), uIdx)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"u_idx":                 u.UIdx,
		"has_pin":               u.HasPin(),
		"is_using_onetouch_pay": u.IsOnetouchPay,
	})
}

func (h *Handlers) updatePin(w http.ResponseWriter, r *http.Request) {
	uIdx, err := pathUIdx(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	var req pinRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := h.users.UpdatePin(r.Context(), uIdx, req.Pin); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	metrics.IncUserAction("update_pin")
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) validatePin(w http.ResponseWriter, r *http.Request) {
	uIdx, err := pathUIdx(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	var req pinRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := h.users.ValidatePin(r.Context(), uIdx, req.Pin); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) setOnetouchPay(w http.ResponseWriter, r *http.Request) {
	uIdx, err := pathUIdx(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	var req onetouchRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := h.users.SetOnetouchPay(r.Context(), uIdx, *req.Enable); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if *req.Enable {
		metrics.IncUserAction("enable_onetouch_pay")
	} else {
		metrics.IncUserAction("disable_onetouch_pay")
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) leave(w http.ResponseWriter, r *http.Request) {
	uIdx, err := pathUIdx(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if err := h.users.Leave(r.Context(), uIdx); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	metrics.IncUserAction("leave")
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) changeSubscriptionPaymentMethod(w http.ResponseWriter, r *http.Request) {
	uIdx, err := pathUIdx(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	subID, err := pathUUID(r, "subscription_id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	var req changePaymentMethodRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	if _, err := h.subscriptions.ChangePaymentMethod(r.Context(), uIdx, subID, uuid.MustParse(req.PaymentMethodID)); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	metrics.IncSubscription("change_payment_method")
	w.WriteHeader(http.StatusOK)
}
