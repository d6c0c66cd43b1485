package handler

import (
	"net/http"
	"time"

	"github.com/palmcosmic/api/internal/application/auth"
)

// AccessCookie carries the verified user ID; its presence is what the
// access middleware gates on.
const AccessCookie = "pc_access"

const accessCookieTTL = 30 * 24 * time.Hour

// AuthHandler handles the OTP login flow and session restore.
type AuthHandler struct {
	svc auth.Service
}

func NewAuthHandler(svc auth.Service) *AuthHandler { return &AuthHandler{svc: svc} }

func (h *AuthHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req auth.SendOTPRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.SendOTP(r.Context(), req); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"sent": true})
}

func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req auth.VerifyOTPRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	state, err := h.svc.VerifyOTP(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     AccessCookie,
		Value:    state.UserID,
		Path:     "/",
		Expires:  time.Now().Add(accessCookieTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, state)
}

func (h *AuthHandler) RestoreSession(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(AccessCookie)
	if err != nil || c.Value == "" {
		writeError(w, http.StatusUnauthorized, "no session")
		return
	}
	state, err := h.svc.RestoreSession(r.Context(), c.Value)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:    AccessCookie,
		Value:   "",
		Path:    "/",
		Expires: time.Unix(0, 0),
		MaxAge:  -1,
	})
	writeJSON(w, http.StatusOK, map[string]bool{"loggedOut": true})
}
