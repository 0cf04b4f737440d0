package storage

import (
	"errors"
	"testing"

	"github.com/nesventory/identifier/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(id string) *models.Session {
	return &models.Session{
		ID: id,
		Entries: []models.ReviewEntry{
			{Item: models.CandidateItem{Name: "Ada's Bakery", ReviewState: models.ReviewIdle}},
		},
	}
}

func TestGetReturnsCopy(t *testing.T) {
	store := New()
	store.Set("s1", newSession("s1"))

	got, ok := store.Get("s1")
	require.True(t, ok)
	got.Entries[0].Item.Name = "changed"

	again, _ := store.Get("s1")
	assert.Equal(t, "Ada's Bakery", again.Entries[0].Item.Name)
}

func TestUpdateIsAllOrNothing(t *testing.T) {
	store := New()
	store.Set("s1", newSession("s1"))

	_, err := store.Update("s1", func(s *models.Session) error {
		s.Entries[0].Item.ReviewState = models.ReviewAccepted
		return errors.New("nope")
	})
	require.Error(t, err)

	got, _ := store.Get("s1")
	assert.Equal(t, models.ReviewIdle, got.Entries[0].Item.ReviewState)

	updated, err := store.Update("s1", func(s *models.Session) error {
		s.Entries[0].Item.ReviewState = models.ReviewAccepted
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, models.ReviewAccepted, updated.Entries[0].Item.ReviewState)

	got, _ = store.Get("s1")
	assert.Equal(t, models.ReviewAccepted, got.Entries[0].Item.ReviewState)
}

func TestUpdateMissingSession(t *testing.T) {
	_, err := New().Update("nope", func(*models.Session) error { return nil })
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestDelete(t *testing.T) {
	store := New()
	store.Set("s1", newSession("s1"))
	store.Set("s2", newSession("s2"))
	store.Delete("s1")

	_, ok := store.Get("s1")
	assert.False(t, ok)
	assert.Len(t, store.GetAll(), 1)
}
