package handlers

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/nesventory/identifier/internal/models"
)

const maxImageSize = 10 * 1024 * 1024

// readImage accepts a multipart upload in "file" (or "files") or a JSON
// body with an image_url to fetch
func (h *Handler) readImage(r *http.Request) (*models.ImagePayload, error) {
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		var request struct {
			ImageURL string `json:"image_url"`
		}
		if err := decodeJSON(r, &request); err != nil {
			return nil, err
		}
		if request.ImageURL == "" {
			return nil, badRequest("IMAGE_URL_REQUIRED", "image_url is required")
		}
		data, mimeType, err := h.downloadImage(r.Context(), request.ImageURL)
		if err != nil {
			return nil, badRequest("DOWNLOAD_FAILED", "Failed to process image URL: "+err.Error())
		}
		return newPayload(data, mimeType)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		file, header, err = r.FormFile("files")
		if err != nil {
			return nil, badRequest("FILE_REQUIRED", "Failed to read file: "+err.Error())
		}
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file contents: %w", err)
	}
	return newPayload(data, header.Header.Get("Content-Type"))
}

func newPayload(data []byte, mimeType string) (*models.ImagePayload, error) {
	if len(data) == 0 {
		return nil, badRequest("EMPTY_FILE", "The uploaded file is empty")
	}
	if len(data) > maxImageSize {
		return nil, badRequest("FILE_TOO_LARGE", "File too large (max 10MB)")
	}

	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = strings.TrimSpace(mimeType[:i])
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, badRequest("INVALID_FILE_TYPE", fmt.Sprintf("File type '%s' is not supported. Only image files are accepted.", mimeType))
	}

	if cfg, format, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		slog.Debug("Image received", "format", format, "width", cfg.Width, "height", cfg.Height, "bytes", len(data))
	} else {
		slog.Debug("Image received", "mime", mimeType, "bytes", len(data))
	}

	return models.NewImagePayload(data, mimeType), nil
}

func (h *Handler) downloadImage(ctx context.Context, imageURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("failed to download image: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image data: %w", err)
	}

	return data, resp.Header.Get("Content-Type"), nil
}
