package remote

import (
	"context"
	"sort"
	"sync"

	"study-tracker/internal/models"
)

// MemStore is an in-process Store used by tests and by a second engine in
// the same process when exercising sync behavior.
type MemStore struct {
	mu   sync.Mutex
	docs map[string]models.Session
	subs []chan []models.Session
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{docs: map[string]models.Session{}}
}

// SetAll implements Store.
func (m *MemStore) SetAll(_ context.Context, sessions []models.Session) error {
	m.mu.Lock()
	m.docs = make(map[string]models.Session, len(sessions))
	for _, s := range sessions {
		m.docs[s.ID] = s
	}
	m.broadcastLocked()
	m.mu.Unlock()
	return nil
}

// Update implements Store. Unknown field names are ignored, matching a
// schemaless document store.
func (m *MemStore) Update(_ context.Context, id string, fields Fields) error {
	m.mu.Lock()
	doc := m.docs[id]
	doc.ID = id
	for k, v := range fields {
		switch k {
		case "date":
			doc.Date, _ = v.(string)
		case "start":
			doc.Start, _ = v.(string)
		case "end":
			doc.End, _ = v.(string)
		case "topic":
			doc.Topic, _ = v.(string)
		case "status":
			doc.Status, _ = v.(string)
		case "realMinutes":
			switch n := v.(type) {
			case int:
				doc.RealMinutes = n
			case float64:
				doc.RealMinutes = int(n)
			}
		case "note":
			doc.Note, _ = v.(string)
		}
	}
	m.docs[id] = doc
	m.broadcastLocked()
	m.mu.Unlock()
	return nil
}

// Delete implements Store.
func (m *MemStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.docs, id)
	m.broadcastLocked()
	m.mu.Unlock()
	return nil
}

// Clear implements Store.
func (m *MemStore) Clear(_ context.Context) error {
	m.mu.Lock()
	m.docs = map[string]models.Session{}
	m.broadcastLocked()
	m.mu.Unlock()
	return nil
}

// Subscribe implements Store.
func (m *MemStore) Subscribe(ctx context.Context) (<-chan []models.Session, error) {
	ch := make(chan []models.Session, 16)
	m.mu.Lock()
	m.subs = append(m.subs, ch)
	ch <- m.snapshotLocked()
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		for i, sub := range m.subs {
			if sub == ch {
				m.subs = append(m.subs[:i], m.subs[i+1:]...)
				break
			}
		}
		close(ch)
		m.mu.Unlock()
	}()
	return ch, nil
}

// Snapshot returns the current collection, date ascending. Test helper.
func (m *MemStore) Snapshot() []models.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *MemStore) snapshotLocked() []models.Session {
	out := make([]models.Session, 0, len(m.docs))
	for _, s := range m.docs {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (m *MemStore) broadcastLocked() {
	snap := m.snapshotLocked()
	for _, ch := range m.subs {
		select {
		case ch <- snap:
		default: // slow subscriber; it will catch up on the next change
		}
	}
}
