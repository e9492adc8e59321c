package remote

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"study-tracker/internal/models"
)

func doc(id, date string) models.Session {
	return models.Session{
		ID: id, Date: date, Start: "19:00", End: "20:00",
		Topic: "Estudio", Status: models.StatusPlanned,
	}
}

func TestMemStoreSetAllAndSnapshot(t *testing.T) {
	m := NewMemStore()
	require.NoError(t, m.SetAll(context.Background(), []models.Session{
		doc("b", "2024-03-05"),
		doc("a", "2024-03-04"),
	}))

	snap := m.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "a", snap[0].ID, "snapshots come back date ascending")
}

func TestMemStoreUpdateMergesFields(t *testing.T) {
	m := NewMemStore()
	require.NoError(t, m.SetAll(context.Background(), []models.Session{doc("a", "2024-03-04")}))

	require.NoError(t, m.Update(context.Background(), "a", Fields{
		"status":      models.StatusDone,
		"realMinutes": 45,
	}))

	snap := m.Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, models.StatusDone, snap[0].Status)
	assert.Equal(t, 45, snap[0].RealMinutes)
	// Unmentioned fields untouched.
	assert.Equal(t, "Estudio", snap[0].Topic)
	assert.Equal(t, "19:00", snap[0].Start)
}

func TestMemStoreDeleteAndClear(t *testing.T) {
	m := NewMemStore()
	require.NoError(t, m.SetAll(context.Background(), []models.Session{
		doc("a", "2024-03-04"), doc("b", "2024-03-05"),
	}))

	require.NoError(t, m.Delete(context.Background(), "a"))
	assert.Len(t, m.Snapshot(), 1)

	require.NoError(t, m.Clear(context.Background()))
	assert.Empty(t, m.Snapshot())
}

func TestMemStoreSubscribeDeliversOnChange(t *testing.T) {
	m := NewMemStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := m.Subscribe(ctx)
	require.NoError(t, err)

	// First delivery is the current (empty) state.
	select {
	case snap := <-ch:
		assert.Empty(t, snap)
	case <-time.After(time.Second):
		t.Fatal("no initial snapshot")
	}

	require.NoError(t, m.SetAll(context.Background(), []models.Session{doc("a", "2024-03-04")}))

	select {
	case snap := <-ch:
		require.Len(t, snap, 1)
		assert.Equal(t, "a", snap[0].ID)
	case <-time.After(time.Second):
		t.Fatal("no snapshot after change")
	}
}

func TestMemStoreSubscribeStopsOnCancel(t *testing.T) {
	m := NewMemStore()
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := m.Subscribe(ctx)
	require.NoError(t, err)
	<-ch // initial

	cancel()
	assert.Eventually(t, func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		return len(m.subs) == 0
	}, time.Second, 10*time.Millisecond, "canceled subscriber should be removed")
}
