package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/nesventory/identifier/internal/models"
)

func (h *Handler) lookupContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.timeout)
}

// HandleIdentify identifies items without opening a review session
func (h *Handler) HandleIdentify(w http.ResponseWriter, r *http.Request) {
	image, err := h.readImage(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	ctx, cancel := h.lookupContext(r)
	defer cancel()

	items, err := h.lookups.Identify(ctx, image)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string][]models.CandidateItem{"items": items})
}

func (h *Handler) HandleMarket(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	series := strings.TrimSpace(r.URL.Query().Get("series"))
	if name == "" {
		h.writeError(w, badRequest("NAME_REQUIRED", "name is required"))
		return
	}

	ctx, cancel := h.lookupContext(r)
	defer cancel()

	report, err := h.lookups.Market(ctx, name, series)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

func (h *Handler) HandleParseDataTag(w http.ResponseWriter, r *http.Request) {
	image, err := h.readImage(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	ctx, cancel := h.lookupContext(r)
	defer cancel()

	tag, err := h.lookups.ParseDataTag(ctx, image)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, tag)
}

func (h *Handler) HandleLookupBarcode(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Barcode string `json:"barcode"`
		UPC     string `json:"upc"`
	}
	if err := decodeJSON(r, &request); err != nil {
		h.writeError(w, err)
		return
	}

	code := strings.TrimSpace(request.Barcode)
	if code == "" {
		code = strings.TrimSpace(request.UPC)
	}
	if code == "" {
		h.writeError(w, badRequest("BARCODE_REQUIRED", "barcode is required"))
		return
	}

	ctx, cancel := h.lookupContext(r)
	defer cancel()

	result, err := h.lookups.LookupBarcode(ctx, code)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}
