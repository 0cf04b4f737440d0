package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/nesventory/identifier/internal/apikey"
	"github.com/nesventory/identifier/internal/identification"
	"github.com/nesventory/identifier/internal/models"
	"github.com/nesventory/identifier/internal/review"
	"github.com/nesventory/identifier/internal/storage"
)

// Lookups are the stateless AI operations exposed over HTTP
type Lookups interface {
	Identify(ctx context.Context, image *models.ImagePayload) ([]models.CandidateItem, error)
	Market(ctx context.Context, name, series string) (*models.MarketReport, error)
	ParseDataTag(ctx context.Context, image *models.ImagePayload) (*models.DataTag, error)
	LookupBarcode(ctx context.Context, code string) (*models.BarcodeResult, error)
}

// KeyStatus reports whether an AI service has a usable key
type KeyStatus interface {
	Configured(ctx context.Context) bool
}

type Options struct {
	Store        *storage.SessionStore
	Reviewer     *review.Reviewer
	Lookups      Lookups
	GeminiKeys   KeyStatus
	FoundingYear int
	StaticDir    string
	Version      string
	Timeout      time.Duration
	HTTPClient   *http.Client

	// AllowedOrigins lists browser origins allowed to call the API. "*" or
	// an empty list allows any.
	AllowedOrigins []string
}

type Handler struct {
	sessionStore *storage.SessionStore
	reviewer     *review.Reviewer
	lookups      Lookups
	geminiKeys   KeyStatus
	foundingYear int
	staticDir    string
	version      string
	origins      []string
	timeout      time.Duration
	httpClient   *http.Client
}

func New(opts Options) *Handler {
	h := &Handler{
		sessionStore: opts.Store,
		reviewer:     opts.Reviewer,
		lookups:      opts.Lookups,
		geminiKeys:   opts.GeminiKeys,
		foundingYear: opts.FoundingYear,
		staticDir:    opts.StaticDir,
		version:      opts.Version,
		origins:      opts.AllowedOrigins,
		timeout:      opts.Timeout,
		httpClient:   opts.HTTPClient,
	}
	if h.foundingYear == 0 {
		h.foundingYear = review.FoundingYear
	}
	if h.timeout <= 0 {
		h.timeout = 60 * time.Second
	}
	if len(h.origins) == 0 {
		h.origins = []string{"*"}
	}
	if h.httpClient == nil {
		h.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return h
}

type errorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	ErrorCode string `json:"errorCode"`
}

// inputError is a problem with the request itself
type inputError struct {
	code    string
	message string
}

func (e *inputError) Error() string { return e.message }

func badRequest(code, message string) error {
	return &inputError{code: code, message: message}
}

// Response helpers
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Unable to encode JSON response", "err", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		slog.Error("Request failed", "code", code, "err", err)
	} else {
		slog.Warn("Request rejected", "code", code, "err", err)
	}
	h.writeJSON(w, status, errorResponse{
		Error:     http.StatusText(status),
		Message:   err.Error(),
		ErrorCode: code,
	})
}

// classify maps domain errors to an HTTP status and a stable error code
func classify(err error) (int, string) {
	var in *inputError
	switch {
	case errors.As(err, &in):
		return http.StatusBadRequest, in.code
	case errors.Is(err, apikey.ErrMissingAPIKey):
		return http.StatusServiceUnavailable, "SERVICE_NOT_CONFIGURED"
	case errors.Is(err, storage.ErrSessionNotFound):
		return http.StatusNotFound, "SESSION_NOT_FOUND"
	case errors.Is(err, review.ErrItemNotFound):
		return http.StatusNotFound, "ITEM_NOT_FOUND"
	case errors.Is(err, review.ErrNoAlternative):
		return http.StatusNotFound, "ALTERNATIVE_NOT_FOUND"
	case errors.Is(err, review.ErrEmptyContext):
		return http.StatusBadRequest, "CONTEXT_REQUIRED"
	case errors.Is(err, review.ErrStale):
		return http.StatusConflict, "STALE"
	case errors.Is(err, review.ErrItemBusy):
		return http.StatusConflict, "ITEM_BUSY"
	case errors.Is(err, review.ErrNotRecognized):
		return http.StatusConflict, "NOT_RECOGNIZED"
	case errors.Is(err, review.ErrIllegalTransition):
		return http.StatusConflict, "ILLEGAL_TRANSITION"
	case errors.Is(err, review.ErrBatchAborted):
		return http.StatusBadGateway, "BATCH_ABORTED"
	case errors.Is(err, identification.ErrNoResponse),
		errors.Is(err, identification.ErrMalformedResponse),
		errors.Is(err, identification.ErrNoMarketData):
		return http.StatusBadGateway, "SERVICE_RESPONSE_ERROR"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "TIMEOUT"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

func (h *Handler) bounds() review.YearBounds {
	return review.YearBounds{Min: h.foundingYear, Max: time.Now().Year() + 1}
}

func (h *Handler) writeSession(w http.ResponseWriter, status int, session *models.Session) {
	h.writeJSON(w, status, review.ViewSession(session, h.bounds()))
}

func (h *Handler) sessionViews() []review.SessionView {
	sessions := h.sessionStore.GetAll()
	views := make([]review.SessionView, 0, len(sessions))
	for _, session := range sessions {
		views = append(views, review.ViewSession(session, h.bounds()))
	}
	sort.Slice(views, func(i, j int) bool {
		return views[i].CreatedAt.Before(views[j].CreatedAt)
	})
	return views
}

func itemIndex(r *http.Request) (int, error) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		return 0, badRequest("INVALID_INDEX", "item index must be an integer")
	}
	return index, nil
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return badRequest("INVALID_JSON", "Invalid JSON: "+err.Error())
	}
	return nil
}
