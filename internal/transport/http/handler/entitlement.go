package handler

import (
	"net/http"

	"github.com/palmcosmic/api/internal/application/entitlement"
)

// EntitlementHandler serves the entitlement snapshot endpoint.
type EntitlementHandler struct {
	svc entitlement.Service
}

func NewEntitlementHandler(svc entitlement.Service) *EntitlementHandler {
	return &EntitlementHandler{svc: svc}
}

// Hydrate prefers the verified cookie identity over whatever ID the client
// sends from its local cache.
func (h *EntitlementHandler) Hydrate(w http.ResponseWriter, r *http.Request) {
	var in entitlement.HydrateInput
	if err := decode(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if c, err := r.Cookie(AccessCookie); err == nil && c.Value != "" {
		in.AuthUserID = c.Value
	} else {
		in.AuthUserID = ""
	}
	res, err := h.svc.Hydrate(r.Context(), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
