package review

import (
	"time"

	"github.com/nesventory/identifier/internal/models"
)

// Status is how an item is presented to the user
type Status string

const (
	StatusReview        Status = "review"
	StatusNotRecognized Status = "not_recognized"
)

// Action is something the user may do to an item right now
type Action string

const (
	ActionAccept            Action = "accept"
	ActionReject            Action = "reject"
	ActionRetryAlternatives Action = "retry_alternatives"
	ActionSelectAlternative Action = "select_alternative"
)

// ItemView is the display record for one review entry
type ItemView struct {
	Index           int                           `json:"index"`
	Item            models.CandidateItem          `json:"item"`
	Status          Status                        `json:"status"`
	Rarity          string                        `json:"rarity"`
	Warning         string                        `json:"warning,omitempty"`
	ConfidenceScore float64                       `json:"confidenceScore"`
	Actions         []Action                      `json:"actions"`
	Alternatives    []models.AlternativeCandidate `json:"alternatives,omitempty"`
	AwaitingContext bool                          `json:"awaitingContext"`
	LookupError     string                        `json:"lookupError,omitempty"`
	Pending         bool                          `json:"pending"`
}

// ImageMeta describes a session image without its contents
type ImageMeta struct {
	MIMEType string `json:"mimeType"`
	Size     int    `json:"size"`
}

// SessionView is the display record for a whole batch
type SessionView struct {
	ID         string     `json:"id"`
	Provider   string     `json:"provider,omitempty"`
	Model      string     `json:"model,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	Generation int        `json:"generation"`
	Image      *ImageMeta `json:"image"`
	Items      []ItemView `json:"items"`
}

// View builds the display record for an entry. Items that are not genuine
// are shown with their confidence but offer no actions.
func View(index int, entry models.ReviewEntry, bounds YearBounds) ItemView {
	status := StatusReview
	if !entry.Item.IsGenuine {
		status = StatusNotRecognized
	}

	return ItemView{
		Index:           index,
		Item:            entry.Item,
		Status:          status,
		Rarity:          InferRarity(entry.Item),
		Warning:         YearWarning(entry.Item, bounds),
		ConfidenceScore: entry.Item.ConfidenceScore,
		Actions:         AllowedActions(entry),
		Alternatives:    entry.Alternatives,
		AwaitingContext: entry.AwaitingContext,
		LookupError:     entry.LookupError,
		Pending:         entry.Pending,
	}
}

// AllowedActions lists what the user can do with an entry in its current state
func AllowedActions(entry models.ReviewEntry) []Action {
	actions := []Action{}
	if entry.Pending || !entry.Item.IsGenuine {
		return actions
	}

	switch entry.Item.ReviewState {
	case models.ReviewIdle, "":
		actions = append(actions, ActionAccept, ActionReject)
	case models.ReviewRejected:
		if len(entry.Alternatives) > 0 {
			actions = append(actions, ActionSelectAlternative)
		}
		actions = append(actions, ActionRetryAlternatives)
	}
	return actions
}

// ViewSession builds the display record for a session
func ViewSession(session *models.Session, bounds YearBounds) SessionView {
	v := SessionView{
		ID:         session.ID,
		Provider:   session.Provider,
		Model:      session.Model,
		CreatedAt:  session.CreatedAt,
		Generation: session.Generation,
		Items:      make([]ItemView, len(session.Entries)),
	}
	if session.Image != nil {
		v.Image = &ImageMeta{MIMEType: session.Image.MIMEType, Size: session.Image.Size()}
	}
	for i, e := range session.Entries {
		v.Items[i] = View(i, e, bounds)
	}
	return v
}
