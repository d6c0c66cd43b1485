package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/palmcosmic/api/internal/application/reading"
)

// ReadingHandler generates and serves palm and full readings.
type ReadingHandler struct {
	svc reading.Service
}

func NewReadingHandler(svc reading.Service) *ReadingHandler {
	return &ReadingHandler{svc: svc}
}

func (h *ReadingHandler) Palm(w http.ResponseWriter, r *http.Request) {
	var req reading.PalmReadingRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rec, content, err := h.svc.PalmReading(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"readingId": rec.ReadingID,
		"content":   content,
	})
}

func (h *ReadingHandler) Full(w http.ResponseWriter, r *http.Request) {
	var req reading.FullReadingRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rec, err := h.svc.FullReading(r.Context(), req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *ReadingHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (h *ReadingHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	recs, err := h.svc.ListByUser(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}
