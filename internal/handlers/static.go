package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

var apiPrefixes = []string{"api", "health", "nesventory", "parse-data-tag", "lookup-barcode", "metrics"}

// HandleStatic serves the front end. Unknown paths fall back to index.html
// for client-side routing; without a built front end the root returns the
// API description.
func (h *Handler) HandleStatic(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/")

	for _, prefix := range apiPrefixes {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			http.NotFound(w, r)
			return
		}
	}

	// Prevent directory traversal attacks
	if strings.Contains(path, "..") {
		http.Error(w, "Invalid file path", http.StatusBadRequest)
		return
	}

	index := filepath.Join(h.staticDir, "index.html")
	if path != "" {
		full := filepath.Join(h.staticDir, filepath.FromSlash(path))
		if info, err := os.Stat(full); err == nil && !info.IsDir() {
			setContentType(w, full)
			http.ServeFile(w, r, full)
			return
		}
	}

	if _, err := os.Stat(index); err != nil {
		if path == "" {
			h.writeJSON(w, http.StatusOK, h.apiInfo())
			return
		}
		http.Error(w, "Frontend not built", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/html")
	http.ServeFile(w, r, index)
}

func setContentType(w http.ResponseWriter, path string) {
	switch {
	case strings.HasSuffix(path, ".css"):
		w.Header().Set("Content-Type", "text/css")
	case strings.HasSuffix(path, ".js"):
		w.Header().Set("Content-Type", "application/javascript")
	case strings.HasSuffix(path, ".html"):
		w.Header().Set("Content-Type", "text/html")
	}
}
