package handlers

import (
	"net/http"
	"slices"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Routes registers every endpoint on a new mux behind the CORS middleware
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/upload", h.HandleUpload)
	mux.HandleFunc("GET /api/sessions", h.HandleSessions)
	mux.HandleFunc("GET /api/sessions/{id}", h.HandleSessionDetail)
	mux.HandleFunc("DELETE /api/sessions/{id}", h.HandleDeleteSession)
	mux.HandleFunc("PUT /api/sessions/{id}/image", h.HandleReplaceImage)
	mux.HandleFunc("DELETE /api/sessions/{id}/image", h.HandleClearImage)
	mux.HandleFunc("POST /api/sessions/{id}/accept-all", h.HandleAcceptAll)
	mux.HandleFunc("POST /api/sessions/{id}/items/{index}/accept", h.HandleAccept)
	mux.HandleFunc("POST /api/sessions/{id}/items/{index}/reject", h.HandleReject)
	mux.HandleFunc("POST /api/sessions/{id}/items/{index}/alternatives", h.HandleAlternatives)
	mux.HandleFunc("POST /api/sessions/{id}/items/{index}/select", h.HandleSelect)
	mux.HandleFunc("GET /api/market", h.HandleMarket)
	mux.HandleFunc("GET /api", h.HandleAPIInfo)

	mux.HandleFunc("POST /nesventory/identify/image", h.HandleIdentify)
	mux.HandleFunc("POST /parse-data-tag", h.HandleParseDataTag)
	mux.HandleFunc("POST /lookup-barcode", h.HandleLookupBarcode)
	mux.HandleFunc("GET /health", h.HandleHealth)
	mux.HandleFunc("GET /healthcheck", h.HandleHealthcheck)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /", h.HandleStatic)

	return h.cors(mux)
}

// cors lets the inventory front end call the API from another origin
func (h *Handler) cors(next http.Handler) http.Handler {
	anyOrigin := slices.Contains(h.origins, "*")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case anyOrigin:
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && slices.Contains(h.origins, origin):
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
