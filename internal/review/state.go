package review

import (
	"errors"
	"fmt"

	"github.com/nesventory/identifier/internal/models"
)

// Event is a user action on a candidate
type Event string

const (
	EventAccept            Event = "accept"
	EventReject            Event = "reject"
	EventSelectAlternative Event = "select_alternative"
)

var ErrIllegalTransition = errors.New("illegal review transition")

// Transition is the review reducer. Accepted is terminal; a rejected item
// can only move forward by picking one of its alternatives.
func Transition(state models.ReviewState, event Event) (models.ReviewState, error) {
	if state == "" {
		state = models.ReviewIdle
	}

	switch {
	case state == models.ReviewIdle && event == EventAccept:
		return models.ReviewAccepted, nil
	case state == models.ReviewIdle && event == EventReject:
		return models.ReviewRejected, nil
	case state == models.ReviewRejected && event == EventSelectAlternative:
		return models.ReviewAccepted, nil
	}

	return state, fmt.Errorf("%w: cannot %s an item that is %s", ErrIllegalTransition, event, state)
}
