package handlers

import (
	"net/http"
)

// HandleUpload identifies an uploaded image and opens a review session
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	image, err := h.readImage(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	session, err := h.reviewer.Start(r.Context(), image)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeSession(w, http.StatusCreated, session)
}

// HandleReplaceImage swaps the session image and identifies it again
func (h *Handler) HandleReplaceImage(w http.ResponseWriter, r *http.Request) {
	image, err := h.readImage(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	session, err := h.reviewer.Replace(r.Context(), r.PathValue("id"), image)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeSession(w, http.StatusOK, session)
}

func (h *Handler) HandleClearImage(w http.ResponseWriter, r *http.Request) {
	session, err := h.reviewer.Clear(r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeSession(w, http.StatusOK, session)
}
