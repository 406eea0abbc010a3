package api

import (
	"net/http"

	"github.com/google/uuid"
)

type loginRequest struct {
	Name     string `json:"name" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=128"`
}

type partnerResponse struct {
	Name         string    `json:"name"`
	APIKey       uuid.UUID `json:"api_key"`
	IsFirstParty bool      `json:"is_first_party"`
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	p, err := h.partners.Login(r.Context(), req.Name, req.Password)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, partnerResponse{Name: p.Name, APIKey: p.APIKey, IsFirstParty: p.IsFirstParty})
}
