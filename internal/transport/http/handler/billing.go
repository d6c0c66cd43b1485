package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/palmcosmic/api/internal/application/billing"
	"github.com/palmcosmic/api/internal/pkg/validate"
)

// BillingHandler exposes checkout creation, fulfillment and the
// subscription lifecycle.
type BillingHandler struct {
	svc billing.Service
}

func NewBillingHandler(svc billing.Service) *BillingHandler {
	return &BillingHandler{svc: svc}
}

func (h *BillingHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req billing.CheckoutRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.svc.CreateCheckout(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *BillingHandler) BundleCheckout(w http.ResponseWriter, r *http.Request) {
	h.oneTime(w, r, h.svc.CreateBundleCheckout)
}

func (h *BillingHandler) ReportCheckout(w http.ResponseWriter, r *http.Request) {
	h.oneTime(w, r, h.svc.CreateReportCheckout)
}

func (h *BillingHandler) CoinCheckout(w http.ResponseWriter, r *http.Request) {
	h.oneTime(w, r, h.svc.CreateCoinCheckout)
}

func (h *BillingHandler) oneTime(w http.ResponseWriter, r *http.Request,
	create func(ctx context.Context, req billing.ReportRequest) (*billing.CheckoutResult, error)) {
	var req billing.ReportRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := create(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *BillingHandler) UpsellCheckout(w http.ResponseWriter, r *http.Request) {
	var req billing.UpsellRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.svc.CreateUpsellCheckout(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *BillingHandler) Fulfill(w http.ResponseWriter, r *http.Request) {
	var req billing.FulfillRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.svc.FulfillSession(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type subscriptionRequest struct {
	UserID string `json:"user_id" validate:"required"`
}

func (h *BillingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req subscriptionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := h.svc.Cancel(r.Context(), req.UserID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *BillingHandler) Resume(w http.ResponseWriter, r *http.Request) {
	var req subscriptionRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.svc.Resume(r.Context(), req.UserID); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"resumed": true})
}

func (h *BillingHandler) ResolvePlan(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if err := validate.Struct(subscriptionRequest{UserID: userID}); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	plan, err := h.svc.ResolvePlan(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"plan": string(plan)})
}
