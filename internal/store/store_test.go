package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"study-tracker/internal/models"
)

func session(id, date string) models.Session {
	return models.Session{
		ID: id, Date: date, Start: "19:00", End: "20:00",
		Topic: "Estudio", Status: models.StatusPlanned,
	}
}

func TestReplaceSortsByDate(t *testing.T) {
	s := New()
	s.Replace([]models.Session{
		session("c", "2024-03-06"),
		session("a", "2024-03-04"),
		session("b", "2024-03-05"),
	})

	snap := s.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{snap[0].ID, snap[1].ID, snap[2].ID})
}

func TestReplaceIsWholesale(t *testing.T) {
	s := New()
	s.Replace([]models.Session{session("a", "2024-03-04")})
	s.Replace([]models.Session{session("b", "2024-03-05")})

	_, ok := s.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 1, s.Len())
}

func TestPutKeepsDateOrder(t *testing.T) {
	s := New()
	s.Replace([]models.Session{
		session("a", "2024-03-04"),
		session("c", "2024-03-08"),
	})

	s.Put(session("b", "2024-03-06"))
	snap := s.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, "b", snap[1].ID)

	// Overwrite with a new date re-slots it.
	s.Put(session("b", "2024-03-09"))
	snap = s.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, "b", snap[2].ID)
}

func TestMutateCannotChangeID(t *testing.T) {
	s := New()
	s.Replace([]models.Session{session("a", "2024-03-04")})

	ok := s.Mutate("a", func(sess *models.Session) {
		sess.ID = "hijacked"
		sess.Status = models.StatusDone
	})
	require.True(t, ok)

	got, found := s.Get("a")
	require.True(t, found)
	assert.Equal(t, "a", got.ID)
	assert.Equal(t, models.StatusDone, got.Status)
}

func TestMutateUnknownID(t *testing.T) {
	s := New()
	assert.False(t, s.Mutate("nope", func(*models.Session) {}))
}

func TestDelete(t *testing.T) {
	s := New()
	s.Replace([]models.Session{
		session("a", "2024-03-04"),
		session("b", "2024-03-05"),
		session("c", "2024-03-06"),
	})

	require.True(t, s.Delete("b"))
	assert.False(t, s.Delete("b"))
	assert.Equal(t, 2, s.Len())

	// Index stays consistent after the shift.
	got, ok := s.Get("c")
	require.True(t, ok)
	assert.Equal(t, "c", got.ID)
}

func TestSnapshotIsACopy(t *testing.T) {
	s := New()
	s.Replace([]models.Session{session("a", "2024-03-04")})

	snap := s.Snapshot()
	snap[0].Topic = "mutated"

	got, _ := s.Get("a")
	assert.Equal(t, "Estudio", got.Topic)
}
