// Package store holds the in-memory session collection that the rest of
// the engine treats as the single source of truth.
package store

import (
	"sort"

	"study-tracker/internal/models"
)

// Store is an ordered collection of sessions indexed by id. It does no
// locking of its own; the engine serializes all access.
type Store struct {
	sessions []models.Session
	byID     map[string]int
}

// New returns an empty store.
func New() *Store {
	return &Store{byID: map[string]int{}}
}

// Len returns the number of sessions.
func (s *Store) Len() int { return len(s.sessions) }

// Get returns a copy of the session with the given id.
func (s *Store) Get(id string) (models.Session, bool) {
	i, ok := s.byID[id]
	if !ok {
		return models.Session{}, false
	}
	return s.sessions[i], true
}

// Snapshot returns a copy of the full collection in store order. Callers
// may keep or mutate the slice freely.
func (s *Store) Snapshot() []models.Session {
	out := make([]models.Session, len(s.sessions))
	copy(out, s.sessions)
	return out
}

// Replace swaps the entire collection in one step, re-sorted by date
// ascending (ties keep payload order). This is the only way bulk data
// enters the store, so observers never see a half-applied list.
func (s *Store) Replace(sessions []models.Session) {
	next := make([]models.Session, len(sessions))
	copy(next, sessions)
	sort.SliceStable(next, func(i, j int) bool { return next[i].Date < next[j].Date })

	byID := make(map[string]int, len(next))
	for i := range next {
		byID[next[i].ID] = i
	}
	s.sessions = next
	s.byID = byID
}

// Put inserts or overwrites a single session, keeping date order.
func (s *Store) Put(sess models.Session) {
	if i, ok := s.byID[sess.ID]; ok {
		if s.sessions[i].Date == sess.Date {
			s.sessions[i] = sess
			return
		}
		s.removeAt(i)
	}
	// Insert before the first later date.
	at := sort.Search(len(s.sessions), func(i int) bool { return s.sessions[i].Date > sess.Date })
	s.sessions = append(s.sessions, models.Session{})
	copy(s.sessions[at+1:], s.sessions[at:])
	s.sessions[at] = sess
	s.reindex(at)
}

// Mutate applies fn to the stored session with the given id. It returns
// false when the id is unknown; fn cannot change the id.
func (s *Store) Mutate(id string, fn func(*models.Session)) bool {
	i, ok := s.byID[id]
	if !ok {
		return false
	}
	sess := s.sessions[i]
	fn(&sess)
	sess.ID = id
	s.sessions[i] = sess
	return true
}

// Delete removes the session with the given id.
func (s *Store) Delete(id string) bool {
	i, ok := s.byID[id]
	if !ok {
		return false
	}
	s.removeAt(i)
	return true
}

func (s *Store) removeAt(i int) {
	delete(s.byID, s.sessions[i].ID)
	s.sessions = append(s.sessions[:i], s.sessions[i+1:]...)
	s.reindex(i)
}

func (s *Store) reindex(from int) {
	for i := from; i < len(s.sessions); i++ {
		s.byID[s.sessions[i].ID] = i
	}
}
