// Package engine is the persistence coordinator: it owns the in-memory
// session store, the sqlite cache, the optional remote store and the
// stopwatch, and it is the only path through which any of them mutate.
//
// Write discipline: every mutation lands in the in-memory store first, is
// written to the local cache synchronously, and is then pushed to the
// remote store asynchronously. Remote failures never roll anything back;
// they surface as transient notices. Once a remote subscription is
// connected, its snapshots are authoritative and replace the store
// wholesale.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"study-tracker/internal/models"
	"study-tracker/internal/remote"
	"study-tracker/internal/storage"
	"study-tracker/internal/store"
	"study-tracker/internal/timer"
)

// ErrStaleTimerTarget reports that a finalized timer pointed at a session
// that was deleted while the timer ran. The pending minutes are discarded
// and the timer cleared; callers treat this as a notice, not a failure.
var ErrStaleTimerTarget = errors.New("timer target session no longer exists")

var errNoRemote = errors.New("no remote store configured")

// PersistenceError wraps a local-cache or remote-store failure. The
// in-memory state it accompanies is still valid.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string { return "persistence: " + e.Op + ": " + e.Err.Error() }
func (e *PersistenceError) Unwrap() error { return e.Err }

// Engine coordinates the store, cache, remote and timer. All exported
// methods are safe for concurrent use; a single mutex serializes every
// store mutation, so async remote work only ever races against future
// states, never the mutation path itself.
type Engine struct {
	mu     sync.Mutex
	store  *store.Store
	cache  *storage.Cache
	remote remote.Store
	timer  *timer.Timer

	weeklyGoal int
	now        func() time.Time

	// remoteMu serializes remote writes so a bulk upload can never
	// interleave with a per-session update.
	remoteMu sync.Mutex
	writes   sync.WaitGroup

	subGen    int
	subCancel context.CancelFunc

	noticeMu sync.Mutex
	notices  []string
}

// New builds an engine from the local cache, restoring the session list,
// the weekly goal and any persisted timer. rs may be nil when no remote
// store is configured; nowFn overrides the clock for tests.
func New(cache *storage.Cache, rs remote.Store, nowFn func() time.Time) (*Engine, error) {
	if nowFn == nil {
		nowFn = time.Now
	}

	sessions, err := cache.LoadSessions()
	if err != nil {
		return nil, fmt.Errorf("load cached sessions: %w", err)
	}
	goal, err := cache.WeeklyGoal()
	if err != nil {
		return nil, fmt.Errorf("load weekly goal: %w", err)
	}
	tstate, err := cache.TimerState()
	if err != nil {
		return nil, fmt.Errorf("load timer state: %w", err)
	}

	e := &Engine{
		store:      store.New(),
		cache:      cache,
		remote:     rs,
		timer:      timer.New(nowFn),
		weeklyGoal: goal,
		now:        nowFn,
	}
	e.store.Replace(sessions)
	e.timer.Restore(tstate)
	return e, nil
}

// Start connects the remote subscription, if a remote store is configured.
// Each delivered snapshot replaces the in-memory store wholesale and
// rewrites the cache. Safe to call when no remote is configured (no-op).
func (e *Engine) Start(ctx context.Context) error {
	if e.remote == nil {
		return nil
	}

	e.mu.Lock()
	if e.subCancel != nil {
		e.subCancel()
	}
	e.subGen++
	gen := e.subGen
	subCtx, cancel := context.WithCancel(ctx)
	e.subCancel = cancel
	e.mu.Unlock()

	ch, err := e.remote.Subscribe(subCtx)
	if err != nil {
		cancel()
		return &PersistenceError{Op: "subscribe", Err: err}
	}

	go func() {
		for snap := range ch {
			e.applySnapshot(gen, snap)
		}
	}()
	return nil
}

// applySnapshot installs a remote snapshot unless it belongs to a
// superseded subscription.
func (e *Engine) applySnapshot(gen int, sessions []models.Session) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gen != e.subGen {
		return
	}
	e.store.Replace(sessions)
	if err := e.cache.ReplaceSessions(e.store.Snapshot()); err != nil {
		log.Printf("Cache rewrite after remote snapshot: %v", err)
		e.addNotice("local cache update failed: " + err.Error())
	}
}

// Close tears down the subscription, flushes the timer state and closes
// the cache after in-flight remote writes drain.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.subCancel != nil {
		e.subCancel()
		e.subCancel = nil
	}
	e.subGen++
	if err := e.cache.SetTimerState(e.timer.Snapshot()); err != nil {
		log.Printf("Flush timer state: %v", err)
	}
	e.mu.Unlock()

	e.writes.Wait()
	return e.cache.Close()
}

// Sessions returns a snapshot of the full collection in date order.
func (e *Engine) Sessions() []models.Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Snapshot()
}

// Session returns one session by id.
func (e *Engine) Session(id string) (models.Session, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Get(id)
}

// WeeklyGoal returns the weekly goal in minutes.
func (e *Engine) WeeklyGoal() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.weeklyGoal
}

// SetWeeklyGoal stores a new weekly goal.
func (e *Engine) SetWeeklyGoal(minutes int) error {
	if minutes < 0 {
		return &models.ValidationError{Field: "weeklyGoal", Reason: "must not be negative"}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.weeklyGoal = minutes
	if err := e.cache.SetWeeklyGoal(minutes); err != nil {
		return &PersistenceError{Op: "store weekly goal", Err: err}
	}
	return nil
}

// CreateSession validates and adds a new session with a fresh id.
func (e *Engine) CreateSession(date, start, end, topic string) (models.Session, error) {
	s := models.Session{
		ID:     uuid.NewString(),
		Date:   strings.TrimSpace(date),
		Start:  strings.TrimSpace(start),
		End:    strings.TrimSpace(end),
		Topic:  strings.TrimSpace(topic),
		Status: models.StatusPlanned,
	}
	if err := s.Validate(); err != nil {
		return models.Session{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.store.Put(s)
	return s, e.persist(s)
}

// UpdateSession applies a full edit to an existing session. The id must
// already exist; all fields are re-validated. This is also the one path
// that may lower RealMinutes (an explicit reset).
func (e *Engine) UpdateSession(s models.Session) error {
	if err := s.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.store.Get(s.ID); !ok {
		return &models.ValidationError{Field: "id", Reason: "unknown session " + s.ID}
	}
	e.store.Put(s)
	return e.persist(s)
}

// SetStatus marks a session planned, done or missed.
func (e *Engine) SetStatus(id, status string) error {
	if !models.ValidStatus(status) {
		return &models.ValidationError{Field: "status", Reason: "unknown value " + status}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	ok := e.store.Mutate(id, func(s *models.Session) { s.Status = status })
	if !ok {
		return &models.ValidationError{Field: "id", Reason: "unknown session " + id}
	}
	s, _ := e.store.Get(id)
	return e.persistFields(s, remote.Fields{"status": status})
}

// SetNote replaces a session's annotation.
func (e *Engine) SetNote(id, note string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	ok := e.store.Mutate(id, func(s *models.Session) { s.Note = note })
	if !ok {
		return &models.ValidationError{Field: "id", Reason: "unknown session " + id}
	}
	s, _ := e.store.Get(id)
	return e.persistFields(s, remote.Fields{"note": note})
}

// DeleteSession removes a session from the store, the cache and the
// remote collection.
func (e *Engine) DeleteSession(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.store.Delete(id) {
		return &models.ValidationError{Field: "id", Reason: "unknown session " + id}
	}
	if err := e.cache.DeleteSession(id); err != nil {
		return &PersistenceError{Op: "delete session", Err: err}
	}
	e.pushRemote("delete session", func(ctx context.Context) error {
		return e.remote.Delete(ctx, id)
	})
	return nil
}

// persist writes one session to the cache synchronously and pushes the
// whole document to the remote store asynchronously. Callers hold e.mu.
func (e *Engine) persist(s models.Session) error {
	return e.persistFields(s, remote.Fields{
		"date": s.Date, "start": s.Start, "end": s.End, "topic": s.Topic,
		"status": s.Status, "realMinutes": s.RealMinutes, "note": s.Note,
	})
}

// persistFields is persist with a partial remote update: only the given
// fields are merged into the remote document. Callers hold e.mu.
func (e *Engine) persistFields(s models.Session, fields remote.Fields) error {
	if err := e.cache.UpsertSession(s); err != nil {
		return &PersistenceError{Op: "cache session " + s.ID, Err: err}
	}
	e.pushRemote("update session "+s.ID, func(ctx context.Context) error {
		return e.remote.Update(ctx, s.ID, fields)
	})
	return nil
}

// pushRemote runs a remote write in the background. Failures are logged
// and queued as user-visible notices; nothing is rolled back.
func (e *Engine) pushRemote(op string, fn func(context.Context) error) {
	if e.remote == nil {
		return
	}
	e.writes.Add(1)
	go func() {
		defer e.writes.Done()
		e.remoteMu.Lock()
		defer e.remoteMu.Unlock()
		if err := fn(context.Background()); err != nil {
			log.Printf("Remote %s: %v", op, err)
			e.addNotice("sync failed (" + op + "); changes kept locally")
		}
	}()
}

func (e *Engine) addNotice(msg string) {
	e.noticeMu.Lock()
	e.notices = append(e.notices, msg)
	if len(e.notices) > 20 {
		e.notices = e.notices[len(e.notices)-20:]
	}
	e.noticeMu.Unlock()
}

// DrainNotices returns and clears pending transient notices.
func (e *Engine) DrainNotices() []string {
	e.noticeMu.Lock()
	defer e.noticeMu.Unlock()
	out := e.notices
	e.notices = nil
	return out
}
