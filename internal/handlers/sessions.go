package handlers

import (
	"net/http"

	"github.com/nesventory/identifier/internal/storage"
)

func (h *Handler) HandleSessions(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.sessionViews())
}

func (h *Handler) HandleSessionDetail(w http.ResponseWriter, r *http.Request) {
	session, exists := h.sessionStore.Get(r.PathValue("id"))
	if !exists {
		h.writeError(w, storage.ErrSessionNotFound)
		return
	}
	h.writeSession(w, http.StatusOK, session)
}

func (h *Handler) HandleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if _, exists := h.sessionStore.Get(sessionID); !exists {
		h.writeError(w, storage.ErrSessionNotFound)
		return
	}
	h.sessionStore.Delete(sessionID)
	w.WriteHeader(http.StatusNoContent)
}
