package handlers

import (
	"log/slog"
	"net/http"
)

type healthResponse struct {
	Status           string `json:"status"`
	Version          string `json:"version"`
	GeminiConfigured bool   `json:"geminiConfigured"`
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	configured := h.geminiKeys != nil && h.geminiKeys.Configured(r.Context())
	h.writeJSON(w, http.StatusOK, healthResponse{
		Status:           "healthy",
		Version:          h.version,
		GeminiConfigured: configured,
	})
}

func (h *Handler) apiInfo() map[string]any {
	return map[string]any{
		"message": "NesVentory Department 56 identifier",
		"version": h.version,
		"endpoints": map[string]string{
			"health":         "/health",
			"identify_image": "/nesventory/identify/image",
			"upload":         "/api/upload",
			"sessions":       "/api/sessions",
			"market":         "/api/market",
			"parse_data_tag": "/parse-data-tag",
			"lookup_barcode": "/lookup-barcode",
			"metrics":        "/metrics",
		},
	}
}

func (h *Handler) HandleAPIInfo(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.apiInfo())
}

func (h *Handler) HandleHealthcheck(w http.ResponseWriter, r *http.Request) {
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Unable to write healthcheck", "err", err)
	}
}
