package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/palmcosmic/api/internal/application/onboarding"
)

// OnboardingHandler exposes the per-visitor wizard state.
type OnboardingHandler struct {
	svc onboarding.Service
}

func NewOnboardingHandler(svc onboarding.Service) *OnboardingHandler {
	return &OnboardingHandler{svc: svc}
}

func (h *OnboardingHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.Get(r.Context(), chi.URLParam(r, "visitorID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *OnboardingHandler) Patch(w http.ResponseWriter, r *http.Request) {
	var req onboarding.PatchRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	a, err := h.svc.Patch(r.Context(), chi.URLParam(r, "visitorID"), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *OnboardingHandler) Reset(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.Reset(r.Context(), chi.URLParam(r, "visitorID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *OnboardingHandler) NextStep(w http.ResponseWriter, r *http.Request) {
	var req onboarding.NextStepRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	route, canContinue, err := h.svc.NextStep(r.Context(), chi.URLParam(r, "visitorID"), req.Step)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"route":       route,
		"canContinue": canContinue,
	})
}
