package submission

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/nesventory/identifier/internal/metrics"
	"github.com/nesventory/identifier/internal/models"
)

const (
	inventoryPath = "/v1/inventory/items"
	trainingPath  = "/v1/training/submit"

	EndpointInventory = "inventory"
	EndpointTraining  = "training"
)

// Action is the user decision reported to the training endpoint
type Action string

const (
	ActionAccepted Action = "ACCEPTED"
	ActionRejected Action = "REJECTED"
)

// Record is one reviewed item on its way to the external endpoints
type Record struct {
	Item   models.CandidateItem
	Image  *models.ImagePayload
	Action Action
}

// Submitter delivers reviewed items
type Submitter interface {
	Submit(ctx context.Context, rec Record) error
}

// ImageMeta describes the source image without its contents
type ImageMeta struct {
	MIMEType string `json:"mimeType"`
	Size     int    `json:"size"`
}

// Feedback is the training endpoint payload
type Feedback struct {
	ItemData   models.CandidateItem `json:"itemData"`
	ImageMeta  *ImageMeta           `json:"imageMeta"`
	Timestamp  string               `json:"timestamp"`
	UserAction Action               `json:"userAction"`
	Source     string               `json:"source"`
}

// Error is a failed delivery to one endpoint
type Error struct {
	Endpoint   string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s submission returned status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s submission failed: %v", e.Endpoint, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Client posts to the inventory-add and training-feedback endpoints. An
// empty base URL disables that endpoint.
type Client struct {
	inventoryURL string
	trainingURL  string
	source       string
	httpClient   *http.Client
	now          func() time.Time
}

// NewClient creates a client
func NewClient(inventoryURL, trainingURL, source string, timeout time.Duration) *Client {
	return &Client{
		inventoryURL: strings.TrimRight(inventoryURL, "/"),
		trainingURL:  strings.TrimRight(trainingURL, "/"),
		source:       source,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		now: time.Now,
	}
}

// AddInventory posts the full item record
func (c *Client) AddInventory(ctx context.Context, item models.CandidateItem) error {
	if c.inventoryURL == "" {
		return nil
	}
	return c.post(ctx, EndpointInventory, c.inventoryURL+inventoryPath, item)
}

// SubmitTraining posts a feedback envelope
func (c *Client) SubmitTraining(ctx context.Context, fb Feedback) error {
	if c.trainingURL == "" {
		return nil
	}
	return c.post(ctx, EndpointTraining, c.trainingURL+trainingPath, fb)
}

// Submit sends accepted items to inventory and every decision to training
func (c *Client) Submit(ctx context.Context, rec Record) error {
	var errs []error
	if rec.Action == ActionAccepted {
		if err := c.AddInventory(ctx, rec.Item); err != nil {
			errs = append(errs, err)
		}
	}
	if err := c.SubmitTraining(ctx, c.feedback(rec)); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (c *Client) feedback(rec Record) Feedback {
	fb := Feedback{
		ItemData:   rec.Item,
		Timestamp:  c.now().UTC().Format(time.RFC3339),
		UserAction: rec.Action,
		Source:     c.source,
	}
	if rec.Image != nil {
		fb.ImageMeta = &ImageMeta{MIMEType: rec.Image.MIMEType, Size: rec.Image.Size()}
	}
	return fb
}

func (c *Client) post(ctx context.Context, endpoint, url string, body any) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return &Error{Endpoint: endpoint, Err: fmt.Errorf("failed to marshal body: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return &Error{Endpoint: endpoint, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Endpoint: endpoint, StatusCode: resp.StatusCode}
	}
	return nil
}

type softFail struct {
	next Submitter
}

// SoftFail wraps a submitter so that delivery failures are logged and
// counted but never returned. Backend outages must not block review.
func SoftFail(next Submitter) Submitter {
	return &softFail{next: next}
}

func (s *softFail) Submit(ctx context.Context, rec Record) error {
	err := s.next.Submit(ctx, rec)
	if err == nil {
		return nil
	}

	for _, e := range flatten(err) {
		endpoint := "unknown"
		var subErr *Error
		if errors.As(e, &subErr) {
			endpoint = subErr.Endpoint
		}
		metrics.SubmissionFailures.WithLabelValues(endpoint).Inc()
		slog.Warn("Submission failed, continuing", "endpoint", endpoint, "item", rec.Item.Name, "action", rec.Action, "err", e)
	}
	return nil
}

func flatten(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}
