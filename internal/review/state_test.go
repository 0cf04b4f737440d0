package review

import (
	"testing"

	"github.com/nesventory/identifier/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		name    string
		state   models.ReviewState
		event   Event
		want    models.ReviewState
		illegal bool
	}{
		{"accept idle", models.ReviewIdle, EventAccept, models.ReviewAccepted, false},
		{"reject idle", models.ReviewIdle, EventReject, models.ReviewRejected, false},
		{"empty state is idle", "", EventAccept, models.ReviewAccepted, false},
		{"select after reject", models.ReviewRejected, EventSelectAlternative, models.ReviewAccepted, false},
		{"select from idle", models.ReviewIdle, EventSelectAlternative, models.ReviewIdle, true},
		{"select from accepted", models.ReviewAccepted, EventSelectAlternative, models.ReviewAccepted, true},
		{"accept twice", models.ReviewAccepted, EventAccept, models.ReviewAccepted, true},
		{"reject accepted", models.ReviewAccepted, EventReject, models.ReviewAccepted, true},
		{"accept rejected", models.ReviewRejected, EventAccept, models.ReviewRejected, true},
		{"reject twice", models.ReviewRejected, EventReject, models.ReviewRejected, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Transition(tt.state, tt.event)
			if tt.illegal {
				require.ErrorIs(t, err, ErrIllegalTransition)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

// Accepting first leaves no path to a correction
func TestSelectAlternativeOnlyFromRejected(t *testing.T) {
	accepted, err := Transition(models.ReviewIdle, EventAccept)
	require.NoError(t, err)

	_, err = Transition(accepted, EventSelectAlternative)
	assert.ErrorIs(t, err, ErrIllegalTransition)

	for _, s := range []models.ReviewState{models.ReviewIdle, models.ReviewAccepted, models.ReviewRejected} {
		_, err := Transition(s, EventSelectAlternative)
		if s == models.ReviewRejected {
			assert.NoError(t, err)
		} else {
			assert.Error(t, err, s)
		}
	}
}
