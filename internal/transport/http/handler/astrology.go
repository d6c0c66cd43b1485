package handler

import (
	"net/http"

	"github.com/palmcosmic/api/internal/application/astrology"
)

// AstrologyHandler exposes sign computation, natal charts, compatibility
// and geocoding.
type AstrologyHandler struct {
	svc astrology.Service
}

func NewAstrologyHandler(svc astrology.Service) *AstrologyHandler {
	return &AstrologyHandler{svc: svc}
}

func (h *AstrologyHandler) Signs(w http.ResponseWriter, r *http.Request) {
	var req astrology.SignsRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.svc.Signs(req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *AstrologyHandler) NatalChart(w http.ResponseWriter, r *http.Request) {
	var req astrology.NatalInput
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	chart, err := h.svc.NatalChart(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chart)
}

func (h *AstrologyHandler) Compatibility(w http.ResponseWriter, r *http.Request) {
	var req astrology.CompatibilityRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.svc.Compatibility(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *AstrologyHandler) Geo(w http.ResponseWriter, r *http.Request) {
	place := r.URL.Query().Get("place")
	if place == "" {
		writeError(w, http.StatusBadRequest, "missing place parameter")
		return
	}
	res, err := h.svc.Geo(r.Context(), place)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
