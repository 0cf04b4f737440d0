package handlers

import (
	"net/http"

	"github.com/nesventory/identifier/internal/models"
	"github.com/nesventory/identifier/internal/review"
)

func (h *Handler) writeEntry(w http.ResponseWriter, index int, entry *models.ReviewEntry) {
	h.writeJSON(w, http.StatusOK, review.View(index, *entry, h.bounds()))
}

func (h *Handler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	index, err := itemIndex(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	entry, err := h.reviewer.Accept(r.Context(), r.PathValue("id"), index)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeEntry(w, index, entry)
}

func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	index, err := itemIndex(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	entry, err := h.reviewer.Reject(r.Context(), r.PathValue("id"), index)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeEntry(w, index, entry)
}

func (h *Handler) HandleAlternatives(w http.ResponseWriter, r *http.Request) {
	index, err := itemIndex(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var request struct {
		Context string `json:"context"`
	}
	if err := decodeJSON(r, &request); err != nil {
		h.writeError(w, err)
		return
	}

	entry, err := h.reviewer.RetryAlternatives(r.Context(), r.PathValue("id"), index, request.Context)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeEntry(w, index, entry)
}

func (h *Handler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	index, err := itemIndex(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var request struct {
		Alternative *int `json:"alternative"`
	}
	if err := decodeJSON(r, &request); err != nil {
		h.writeError(w, err)
		return
	}
	if request.Alternative == nil {
		h.writeError(w, badRequest("ALTERNATIVE_REQUIRED", "alternative is required"))
		return
	}

	entry, err := h.reviewer.SelectAlternative(r.Context(), r.PathValue("id"), index, *request.Alternative)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeEntry(w, index, entry)
}

func (h *Handler) HandleAcceptAll(w http.ResponseWriter, r *http.Request) {
	session, err := h.reviewer.AcceptAll(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeSession(w, http.StatusOK, session)
}
