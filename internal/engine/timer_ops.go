package engine

import (
	"study-tracker/internal/models"
	"study-tracker/internal/remote"
	"study-tracker/internal/timer"
)

// TimerStatus is the live view of the stopwatch for display.
type TimerStatus struct {
	State     timer.State
	ElapsedMs int64
	Topic     string
}

// Timer returns the current stopwatch state and computed elapsed time.
// Reading it has no side effects.
func (e *Engine) Timer() TimerStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	st := e.timer.Snapshot()
	ts := TimerStatus{State: st, ElapsedMs: e.timer.ElapsedMs()}
	if s, ok := e.store.Get(st.SessionID); ok {
		ts.Topic = s.Topic
	}
	return ts
}

// StartTimer begins (or resumes) timing the given session. If another
// session occupies the slot its uncommitted interval is discarded.
func (e *Engine) StartTimer(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.store.Get(id); !ok {
		return &models.ValidationError{Field: "id", Reason: "unknown session " + id}
	}
	e.timer.Start(id)
	return e.persistTimer()
}

// PauseTimer banks the running interval. No-op when not running.
func (e *Engine) PauseTimer() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.timer.Pause()
	return e.persistTimer()
}

// ResumeTimer restarts a paused stopwatch. No-op when idle or running.
func (e *Engine) ResumeTimer() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.timer.Resume()
	return e.persistTimer()
}

// StopTimer finalizes the stopwatch, crediting the rounded minutes to the
// target session and optionally marking it done. Stopping an idle timer
// does nothing. If the target was deleted while the timer ran, the minutes
// are discarded, the timer still clears, and ErrStaleTimerTarget is
// returned so callers can tell the user. The credit lands in the in-memory
// store before any cache write; a failed write is reported but never rolls
// the credit back.
func (e *Engine) StopTimer(markDone bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	id, delta, ok := e.timer.Stop()
	if !ok {
		return nil
	}

	mutated := e.store.Mutate(id, func(s *models.Session) {
		s.RealMinutes += delta
		if markDone {
			s.Status = models.StatusDone
		}
	})
	timerErr := e.persistTimer()
	if !mutated {
		if timerErr != nil {
			return timerErr
		}
		return ErrStaleTimerTarget
	}

	s, _ := e.store.Get(id)
	fields := remote.Fields{"realMinutes": s.RealMinutes}
	if markDone {
		fields["status"] = s.Status
	}
	if err := e.persistFields(s, fields); err != nil {
		return err
	}
	return timerErr
}

// persistTimer mirrors the stopwatch state into the cache so it survives a
// restart. Callers hold e.mu.
func (e *Engine) persistTimer() error {
	if err := e.cache.SetTimerState(e.timer.Snapshot()); err != nil {
		return &PersistenceError{Op: "cache timer state", Err: err}
	}
	return nil
}
