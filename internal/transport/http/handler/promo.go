package handler

import (
	"net/http"

	"github.com/palmcosmic/api/internal/application/promo"
)

// PromoHandler validates promo codes.
type PromoHandler struct {
	svc promo.Service
}

func NewPromoHandler(svc promo.Service) *PromoHandler { return &PromoHandler{svc: svc} }

func (h *PromoHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var req promo.ValidateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.svc.Validate(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
