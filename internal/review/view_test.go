package review

import (
	"testing"

	"github.com/nesventory/identifier/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestAllowedActions(t *testing.T) {
	alts := []models.AlternativeCandidate{{Name: "Fezziwig's Warehouse"}}

	tests := []struct {
		name  string
		entry models.ReviewEntry
		want  []Action
	}{
		{"idle", models.ReviewEntry{Item: models.CandidateItem{IsGenuine: true, ReviewState: models.ReviewIdle}}, []Action{ActionAccept, ActionReject}},
		{"accepted", models.ReviewEntry{Item: models.CandidateItem{IsGenuine: true, ReviewState: models.ReviewAccepted}}, []Action{}},
		{"rejected awaiting context", models.ReviewEntry{Item: models.CandidateItem{IsGenuine: true, ReviewState: models.ReviewRejected}, AwaitingContext: true}, []Action{ActionRetryAlternatives}},
		{"rejected with alternatives", models.ReviewEntry{Item: models.CandidateItem{IsGenuine: true, ReviewState: models.ReviewRejected}, Alternatives: alts}, []Action{ActionSelectAlternative, ActionRetryAlternatives}},
		{"pending", models.ReviewEntry{Item: models.CandidateItem{IsGenuine: true, ReviewState: models.ReviewIdle}, Pending: true}, []Action{}},
		{"not genuine", models.ReviewEntry{Item: models.CandidateItem{IsGenuine: false, ReviewState: models.ReviewIdle}}, []Action{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AllowedActions(tt.entry))
		})
	}
}

func TestViewNotRecognized(t *testing.T) {
	entry := models.ReviewEntry{Item: models.CandidateItem{Name: "Lemax Village Bakery", IsGenuine: false, ConfidenceScore: 35, ReviewState: models.ReviewIdle}}

	v := View(0, entry, YearBounds{Min: 1976, Max: 2026})
	assert.Equal(t, StatusNotRecognized, v.Status)
	assert.Equal(t, 35.0, v.ConfidenceScore)
	assert.Empty(t, v.Actions)
}

func TestViewSession(t *testing.T) {
	session := &models.Session{
		ID:    "s1",
		Image: models.NewImagePayload([]byte("jpeg"), "image/jpeg"),
		Entries: []models.ReviewEntry{
			{Item: models.CandidateItem{Name: "Cherry Lane Shops", IsGenuine: true, YearIntroduced: year(1970), ReviewState: models.ReviewIdle}},
		},
	}

	v := ViewSession(session, YearBounds{Min: 1976, Max: 2026})
	assert.Equal(t, &ImageMeta{MIMEType: "image/jpeg", Size: 4}, v.Image)
	assert.Len(t, v.Items, 1)
	assert.Equal(t, StatusReview, v.Items[0].Status)
	assert.Equal(t, RarityActive, v.Items[0].Rarity)
	assert.Contains(t, v.Items[0].Warning, "1970")
}
