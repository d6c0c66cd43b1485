package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/palmcosmic/api/internal/application/horoscope"
)

// HoroscopeHandler serves the cached daily horoscope.
type HoroscopeHandler struct {
	svc horoscope.Service
}

func NewHoroscopeHandler(svc horoscope.Service) *HoroscopeHandler {
	return &HoroscopeHandler{svc: svc}
}

func (h *HoroscopeHandler) Daily(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Daily(r.Context(), chi.URLParam(r, "sign"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
