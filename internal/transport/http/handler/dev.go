package handler

import (
	"net/http"

	"github.com/palmcosmic/api/internal/application/tester"
)

// DevHandler holds internal QA endpoints.
type DevHandler struct {
	svc tester.Service
}

func NewDevHandler(svc tester.Service) *DevHandler { return &DevHandler{svc: svc} }

func (h *DevHandler) ActivateTester(w http.ResponseWriter, r *http.Request) {
	var req tester.ActivateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.Activate(r.Context(), req); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"activated": true})
}
