package review

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nesventory/identifier/internal/metrics"
	"github.com/nesventory/identifier/internal/models"
	"github.com/nesventory/identifier/internal/storage"
	"github.com/nesventory/identifier/internal/submission"
)

var (
	ErrItemBusy      = errors.New("item has an operation in progress")
	ErrStale         = errors.New("session changed while the operation was running")
	ErrNotRecognized = errors.New("item is not a recognized Department 56 piece")
	ErrItemNotFound  = errors.New("item not found")
	ErrNoAlternative = errors.New("alternative not found")
	ErrEmptyContext  = errors.New("additional context is required")
	ErrBatchAborted  = errors.New("accept all aborted")
	ErrNoImage       = errors.New("session has no image")
)

const (
	noAlternativesMessage = "No alternatives found. Add details about the piece and try again."
	correctedSuffix       = " (User Corrected)"
	defaultOpTimeout      = 60 * time.Second
)

// Identifier is the AI side of the review workflow
type Identifier interface {
	Identify(ctx context.Context, image *models.ImagePayload) ([]models.CandidateItem, error)
	Alternatives(ctx context.Context, image *models.ImagePayload, rejectedName, userContext string) ([]models.AlternativeCandidate, error)
	ProviderName() string
	Model() string
}

// Reviewer drives candidates through accept, reject and correction.
//
// Network calls never run under the store lock. An operation first claims
// its item (marking it pending and noting the session generation), then
// calls out, then commits only if the generation is unchanged. Replacing or
// clearing the image bumps the generation, so late results for the old
// image are dropped with ErrStale.
type Reviewer struct {
	store      *storage.SessionStore
	identifier Identifier
	submitter  submission.Submitter
	soft       submission.Submitter
	timeout    time.Duration
	now        func() time.Time
}

// NewReviewer creates a reviewer. Single decisions are delivered soft-fail;
// AcceptAll sees submitter errors directly. A zero timeout uses the default.
func NewReviewer(store *storage.SessionStore, identifier Identifier, submitter submission.Submitter, timeout time.Duration) *Reviewer {
	if timeout <= 0 {
		timeout = defaultOpTimeout
	}
	return &Reviewer{
		store:      store,
		identifier: identifier,
		submitter:  submitter,
		soft:       submission.SoftFail(submitter),
		timeout:    timeout,
		now:        time.Now,
	}
}

func (r *Reviewer) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

// Start identifies the items in an image and opens a session for them
func (r *Reviewer) Start(ctx context.Context, image *models.ImagePayload) (*models.Session, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	items, err := r.identifier.Identify(ctx, image)
	if err != nil {
		return nil, err
	}

	session := &models.Session{
		ID:        uuid.NewString(),
		Image:     image,
		Entries:   newEntries(items),
		Provider:  r.identifier.ProviderName(),
		Model:     r.identifier.Model(),
		CreatedAt: r.now(),
	}
	r.store.Set(session.ID, session)

	slog.Info("Opened review session", "session", session.ID, "items", len(items))
	return session.Clone(), nil
}

// Replace swaps the session image and identifies it again. Work still in
// flight for the previous image is discarded. The previous candidates stay
// in place, busy, until the new ones arrive; if identification fails they
// are released and the previous image is kept.
func (r *Reviewer) Replace(ctx context.Context, sessionID string, image *models.ImagePayload) (*models.Session, error) {
	var generation int
	_, err := r.store.Update(sessionID, func(s *models.Session) error {
		s.Generation++
		generation = s.Generation
		for i := range s.Entries {
			s.Entries[i].Pending = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	items, err := r.identifier.Identify(ctx, image)
	if err != nil {
		r.restore(sessionID, generation)
		slog.Warn("Replacement image could not be identified, keeping previous batch", "session", sessionID, "err", err)
		return nil, err
	}

	return r.store.Update(sessionID, func(s *models.Session) error {
		if s.Generation != generation {
			return ErrStale
		}
		s.Image = image
		s.Entries = newEntries(items)
		return nil
	})
}

// restore releases the previous batch after a failed replacement
func (r *Reviewer) restore(sessionID string, generation int) {
	_, _ = r.store.Update(sessionID, func(s *models.Session) error {
		if s.Generation != generation {
			return ErrStale
		}
		for i := range s.Entries {
			s.Entries[i].Pending = false
		}
		return nil
	})
}

// Clear drops the image and every candidate
func (r *Reviewer) Clear(sessionID string) (*models.Session, error) {
	return r.store.Update(sessionID, func(s *models.Session) error {
		s.Generation++
		s.Image = nil
		s.Entries = nil
		return nil
	})
}

// Accept submits the item as identified and marks it accepted. Submission
// failures are logged and do not block the transition.
func (r *Reviewer) Accept(ctx context.Context, sessionID string, index int) (*models.ReviewEntry, error) {
	c, err := r.claim(sessionID, index, func(e *models.ReviewEntry) error {
		_, err := Transition(e.Item.ReviewState, EventAccept)
		return err
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	r.submit(ctx, submission.Record{Item: c.item, Image: c.image, Action: submission.ActionAccepted})

	return r.commit(sessionID, index, c, func(e *models.ReviewEntry) error {
		next, err := Transition(e.Item.ReviewState, EventAccept)
		if err != nil {
			return err
		}
		e.Item.ReviewState = next
		metrics.ReviewTransitions.WithLabelValues(string(EventAccept)).Inc()
		return nil
	})
}

// Reject marks the item rejected straight away, reports the rejection and
// looks for alternatives seeded with the rejected name.
func (r *Reviewer) Reject(ctx context.Context, sessionID string, index int) (*models.ReviewEntry, error) {
	c, err := r.claim(sessionID, index, func(e *models.ReviewEntry) error {
		next, err := Transition(e.Item.ReviewState, EventReject)
		if err != nil {
			return err
		}
		e.Item.ReviewState = next
		e.Alternatives = nil
		e.AwaitingContext = false
		e.LookupError = ""
		metrics.ReviewTransitions.WithLabelValues(string(EventReject)).Inc()
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	r.submit(ctx, submission.Record{Item: c.item, Image: c.image, Action: submission.ActionRejected})

	return r.lookupAlternatives(ctx, sessionID, index, c, "")
}

// RetryAlternatives asks again with extra context from the user
func (r *Reviewer) RetryAlternatives(ctx context.Context, sessionID string, index int, userContext string) (*models.ReviewEntry, error) {
	userContext = strings.TrimSpace(userContext)
	if userContext == "" {
		return nil, ErrEmptyContext
	}

	c, err := r.claim(sessionID, index, func(e *models.ReviewEntry) error {
		if e.Item.ReviewState != models.ReviewRejected {
			return fmt.Errorf("%w: alternatives are only offered for rejected items", ErrIllegalTransition)
		}
		e.AwaitingContext = false
		e.LookupError = ""
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.lookupAlternatives(ctx, sessionID, index, c, userContext)
}

func (r *Reviewer) lookupAlternatives(ctx context.Context, sessionID string, index int, c claim, userContext string) (*models.ReviewEntry, error) {
	if c.image == nil {
		return r.commit(sessionID, index, c, func(e *models.ReviewEntry) error {
			e.AwaitingContext = true
			e.LookupError = ErrNoImage.Error()
			return nil
		})
	}

	alternatives, lookupErr := r.identifier.Alternatives(ctx, c.image, c.item.Name, userContext)
	if lookupErr != nil {
		slog.Warn("Alternatives lookup failed", "session", sessionID, "item", index, "err", lookupErr)
	}

	return r.commit(sessionID, index, c, func(e *models.ReviewEntry) error {
		switch {
		case lookupErr != nil:
			e.Alternatives = nil
			e.AwaitingContext = true
			e.LookupError = lookupErr.Error()
		case len(alternatives) == 0:
			e.Alternatives = nil
			e.AwaitingContext = true
			e.LookupError = noAlternativesMessage
		default:
			e.Alternatives = alternatives
			e.AwaitingContext = false
			e.LookupError = ""
		}
		return nil
	})
}

// SelectAlternative replaces a rejected identification with one of its
// alternatives, accepts it and submits the corrected record.
func (r *Reviewer) SelectAlternative(ctx context.Context, sessionID string, index, alternative int) (*models.ReviewEntry, error) {
	c, err := r.claim(sessionID, index, func(e *models.ReviewEntry) error {
		next, err := Transition(e.Item.ReviewState, EventSelectAlternative)
		if err != nil {
			return err
		}
		if alternative < 0 || alternative >= len(e.Alternatives) {
			return fmt.Errorf("%w: %d", ErrNoAlternative, alternative)
		}

		alt := e.Alternatives[alternative]
		e.Item.Name = alt.Name
		e.Item.Series = alt.Series
		e.Item.Description = alt.Reason + correctedSuffix
		e.Item.ReviewState = next
		e.Alternatives = nil
		e.AwaitingContext = false
		e.LookupError = ""
		metrics.ReviewTransitions.WithLabelValues(string(EventSelectAlternative)).Inc()
		return nil
	})
	if err != nil {
		return nil, err
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()
	r.submit(ctx, submission.Record{Item: c.item, Image: c.image, Action: submission.ActionAccepted})

	return r.commit(sessionID, index, c, nil)
}

// AcceptAll submits every idle genuine item at once. If any submission
// fails, no item changes state and the first error is returned.
func (r *Reviewer) AcceptAll(ctx context.Context, sessionID string) (*models.Session, error) {
	var (
		claimed    []int
		records    []submission.Record
		generation int
	)
	session, err := r.store.Update(sessionID, func(s *models.Session) error {
		generation = s.Generation
		for i := range s.Entries {
			e := &s.Entries[i]
			if e.Pending || !e.Item.IsGenuine || state(e) != models.ReviewIdle {
				continue
			}
			e.Pending = true
			claimed = append(claimed, i)
			records = append(records, submission.Record{Item: e.Item, Image: s.Image, Action: submission.ActionAccepted})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(claimed) == 0 {
		return session, nil
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	for _, rec := range records {
		g.Go(func() error {
			return r.submitter.Submit(gctx, rec)
		})
	}
	submitErr := g.Wait()

	session, err = r.store.Update(sessionID, func(s *models.Session) error {
		if s.Generation != generation {
			return ErrStale
		}
		for _, i := range claimed {
			e := &s.Entries[i]
			e.Pending = false
			if submitErr == nil {
				e.Item.ReviewState = models.ReviewAccepted
				metrics.ReviewTransitions.WithLabelValues(string(EventAccept)).Inc()
			}
		}
		return nil
	})
	if err != nil {
		return nil, stale(err)
	}

	if submitErr != nil {
		slog.Error("Accept all aborted", "session", sessionID, "items", len(claimed), "err", submitErr)
		return nil, fmt.Errorf("%w: %w", ErrBatchAborted, submitErr)
	}

	slog.Info("Accepted all items", "session", sessionID, "items", len(claimed))
	return session, nil
}

type claim struct {
	item       models.CandidateItem
	image      *models.ImagePayload
	generation int
}

// claim marks an item pending after prepare has checked and updated it
func (r *Reviewer) claim(sessionID string, index int, prepare func(*models.ReviewEntry) error) (claim, error) {
	var c claim
	_, err := r.store.Update(sessionID, func(s *models.Session) error {
		e, err := entryAt(s, index)
		if err != nil {
			return err
		}
		if e.Pending {
			return ErrItemBusy
		}
		if !e.Item.IsGenuine {
			return ErrNotRecognized
		}
		if err := prepare(e); err != nil {
			return err
		}
		e.Pending = true
		c = claim{item: e.Item, image: s.Image, generation: s.Generation}
		return nil
	})
	return c, err
}

// commit applies the result of a claimed operation and clears pending. If
// apply fails the item is still released.
func (r *Reviewer) commit(sessionID string, index int, c claim, apply func(*models.ReviewEntry) error) (*models.ReviewEntry, error) {
	var out models.ReviewEntry
	_, err := r.store.Update(sessionID, func(s *models.Session) error {
		if s.Generation != c.generation {
			return ErrStale
		}
		e, err := entryAt(s, index)
		if err != nil {
			return ErrStale
		}
		e.Pending = false
		if apply != nil {
			if err := apply(e); err != nil {
				return err
			}
		}
		out = e.Clone()
		return nil
	})
	if err == nil {
		return &out, nil
	}

	err = stale(err)
	if !errors.Is(err, ErrStale) {
		r.release(sessionID, index, c.generation)
	}
	return nil, err
}

func (r *Reviewer) release(sessionID string, index, generation int) {
	_, _ = r.store.Update(sessionID, func(s *models.Session) error {
		if s.Generation != generation {
			return ErrStale
		}
		e, err := entryAt(s, index)
		if err != nil {
			return err
		}
		e.Pending = false
		return nil
	})
}

// submit delivers a single decision. Failures never block review.
func (r *Reviewer) submit(ctx context.Context, rec submission.Record) {
	_ = r.soft.Submit(ctx, rec)
}

func entryAt(s *models.Session, index int) (*models.ReviewEntry, error) {
	if index < 0 || index >= len(s.Entries) {
		return nil, fmt.Errorf("%w: %d", ErrItemNotFound, index)
	}
	return &s.Entries[index], nil
}

func state(e *models.ReviewEntry) models.ReviewState {
	if e.Item.ReviewState == "" {
		return models.ReviewIdle
	}
	return e.Item.ReviewState
}

// stale reports a session deleted mid-operation as stale
func stale(err error) error {
	if errors.Is(err, storage.ErrSessionNotFound) {
		return fmt.Errorf("%w: %w", ErrStale, err)
	}
	return err
}

func newEntries(items []models.CandidateItem) []models.ReviewEntry {
	entries := make([]models.ReviewEntry, len(items))
	for i, item := range items {
		if item.ReviewState == "" {
			item.ReviewState = models.ReviewIdle
		}
		entries[i] = models.ReviewEntry{Item: item}
	}
	return entries
}
