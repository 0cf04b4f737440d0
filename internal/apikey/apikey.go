package apikey

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"
)

// ErrMissingAPIKey means no source produced a key. Identification cannot
// proceed without one.
var ErrMissingAPIKey = errors.New("api key not configured")

// State is the lifecycle position of a Store
type State int

const (
	Uninitialized State = iota
	Loaded
	Invalidated
)

func (s State) String() string {
	switch s {
	case Loaded:
		return "loaded"
	case Invalidated:
		return "invalidated"
	default:
		return "uninitialized"
	}
}

// Source produces an API key. An empty key with a nil error means the
// source has nothing to offer.
type Source interface {
	Fetch(ctx context.Context) (string, error)
}

// Env reads a key from an environment variable
type Env string

func (e Env) Fetch(context.Context) (string, error) {
	return strings.TrimSpace(os.Getenv(string(e))), nil
}

// Static is a fixed key, mostly useful in tests and for flags
type Static string

func (s Static) Fetch(context.Context) (string, error) {
	return string(s), nil
}

// Remote fetches {"apiKey": "..."} from a config endpoint
type Remote struct {
	URL        string
	HTTPClient *http.Client
}

// NewRemote creates a remote source with a bounded client
func NewRemote(url string) *Remote {
	return &Remote{
		URL: url,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (r *Remote) Fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.URL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create config request: %w", err)
	}

	resp, err := r.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch config: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("config endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	var payload struct {
		APIKey string `json:"apiKey"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode config: %w", err)
	}
	return strings.TrimSpace(payload.APIKey), nil
}

// Store caches the first non-empty key any source returns. Providers call
// Invalidate when the AI service rejects the key so the next call reloads.
// Sources are consulted without holding the lock, so a slow remote source
// never blocks callers that only need the cached key or the state.
type Store struct {
	name    string
	sources []Source

	mu    sync.Mutex
	key   string
	state State
	// epoch changes on Invalidate so a fetch that started before it cannot
	// cache a key afterwards
	epoch int
}

// NewStore creates a store that tries sources in order
func NewStore(name string, sources ...Source) *Store {
	return &Store{
		name:    name,
		sources: sources,
	}
}

// Key returns the cached key, loading it on first use
func (s *Store) Key(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.state == Loaded {
		key := s.key
		s.mu.Unlock()
		return key, nil
	}
	epoch := s.epoch
	s.mu.Unlock()

	key, err := s.fetch(ctx)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Loaded {
		return s.key, nil
	}
	if s.epoch == epoch {
		s.key = key
		s.state = Loaded
		slog.Debug("API key loaded", "store", s.name)
	}
	return key, nil
}

func (s *Store) fetch(ctx context.Context) (string, error) {
	var errs []error
	for _, src := range s.sources {
		key, err := src.Fetch(ctx)
		if err != nil {
			slog.Warn("API key source failed", "store", s.name, "err", err)
			errs = append(errs, err)
			continue
		}
		if key != "" {
			return key, nil
		}
	}

	if len(errs) > 0 {
		return "", fmt.Errorf("%w for %s: %w", ErrMissingAPIKey, s.name, errors.Join(errs...))
	}
	return "", fmt.Errorf("%w for %s", ErrMissingAPIKey, s.name)
}

// Configured reports whether a key can be obtained right now
func (s *Store) Configured(ctx context.Context) bool {
	_, err := s.Key(ctx)
	return err == nil
}

// Invalidate drops the cached key
func (s *Store) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Loaded {
		slog.Info("API key invalidated", "store", s.name)
	}
	s.key = ""
	s.state = Invalidated
	s.epoch++
}

// State reports the lifecycle state
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
