package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"ridi-pay/internal/domain"
	"ridi-pay/internal/domain/model"
	"ridi-pay/internal/infra/metrics"
)

type registerCardRequest struct {
	CardNumber         string `json:"card_number" validate:"required"`
	CardExpirationDate string `json:"card_expiration_date" validate:"required"`
	CardPassword       string `json:"card_password" validate:"required"`
	TaxID              string `json:"tax_id" validate:"required"`
}

type cardResponse struct {
	PaymentMethodID uuid.UUID `json:"payment_method_id"`
	Iin             string    `json:"iin"`
	IssuerCode      string    `json:"issuer_code,omitempty"`
	IssuerName      string    `json:"issuer_name,omitempty"`
	Color           string    `json:"color,omitempty"`
	LogoImageURL    string    `json:"logo_image_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

func toCardResponse(m *model.PaymentMethod) cardResponse {
	out := cardResponse{PaymentMethodID: m.UUID, CreatedAt: m.CreatedAt}
	c := m.CardFor(model.CardPurposeOneTime)
	if c == nil && len(m.Cards) > 0 {
		c = m.Cards[0]
	}
	if c != nil {
		out.Iin = c.Iin
		if c.Issuer != nil {
			out.IssuerCode = c.Issuer.Code
			out.IssuerName = c.Issuer.Name
			out.Color = c.Issuer.Color
			out.LogoImageURL = c.Issuer.LogoImageURL
		}
	}
	return out
}

func pathUIdx(r *http.Request) (int64, error) {
	uIdx, err := strconv.ParseInt(chi.URLParam(r, "u_idx"), 10, 64)
	if err != nil || uIdx <= 0 {
		return 0, domain.ErrInvalidArgument
	}
	return uIdx, nil
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, domain.ErrInvalidArgument
	}
	return id, nil
}

func (h *Handlers) registerCard(w http.ResponseWriter, r *http.Request) {
	uIdx, err := pathUIdx(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	var req registerCardRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	m, err := h.cards.RegisterCard(r.Context(), uIdx, req.CardNumber, req.CardExpirationDate, req.CardPassword, req.TaxID)
	metrics.IncCard("register", err == nil)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCardResponse(m))
}

func (h *Handlers) deleteCard(w http.ResponseWriter, r *http.Request) {
	uIdx, err := pathUIdx(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	pmID, err := pathUUID(r, "payment_method_id")
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	err = h.cards.DeleteCard(r.Context(), uIdx, pmID)
	metrics.IncCard("delete", err == nil)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) listPaymentMethods(w http.ResponseWriter, r *http.Request) {
	uIdx, err := pathUIdx(r)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	methods, err := h.cards.ListAvailablePaymentMethods(r.Context(), uIdx)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	cards := make([]cardResponse, 0, len(methods))
	for _, m := range methods {
		cards = append(cards, toCardResponse(m))
	}
	writeJSON(w, http.StatusOK, map[string]any{"cards": cards})
}
