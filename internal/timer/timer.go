// Package timer implements the single-slot stopwatch: one session may be
// timed at a time, elapsed time is always computed from wall-clock reads,
// and minutes reach a session only when the timer is stopped.
package timer

import "time"

// State is a snapshot of the stopwatch, also the shape persisted to the
// local cache so a running timer survives a process restart.
type State struct {
	SessionID     string    `json:"sessionId"`
	StartedAt     time.Time `json:"startedAt"`
	AccumulatedMs int64     `json:"accumulatedMs"`
	Running       bool      `json:"running"`
}

// Active reports whether the slot is occupied (running or paused).
func (s State) Active() bool { return s.SessionID != "" }

// Timer is the stopwatch state machine. It is not self-synchronizing; the
// engine serializes access along with every other store mutation.
type Timer struct {
	state State
	now   func() time.Time
}

// New returns an idle timer. nowFn overrides the clock for tests; nil means
// time.Now.
func New(nowFn func() time.Time) *Timer {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Timer{now: nowFn}
}

// Restore seeds the timer from a persisted snapshot.
func (t *Timer) Restore(s State) { t.state = s }

// Snapshot returns the current state for persistence or display.
func (t *Timer) Snapshot() State { return t.state }

// ElapsedMs computes the live elapsed milliseconds without side effects.
// Zero when idle.
func (t *Timer) ElapsedMs() int64 {
	if !t.state.Active() {
		return 0
	}
	ms := t.state.AccumulatedMs
	if t.state.Running {
		ms += t.now().Sub(t.state.StartedAt).Milliseconds()
	}
	return ms
}

// Start begins timing session id. There is one slot: starting a different
// session while one is being timed discards the previous target's
// uncommitted interval and hands the slot over with a fresh count. Starting
// the session already being timed resumes it if paused and is otherwise a
// no-op.
func (t *Timer) Start(id string) {
	if t.state.SessionID == id {
		if t.state.Active() && !t.state.Running {
			t.Resume()
		}
		return
	}
	t.state = State{SessionID: id, StartedAt: t.now(), Running: true}
}

// Pause banks the running interval. No-op unless running.
func (t *Timer) Pause() {
	if !t.state.Running {
		return
	}
	t.state.AccumulatedMs += t.now().Sub(t.state.StartedAt).Milliseconds()
	t.state.Running = false
}

// Resume restarts a paused timer. No-op if idle or already running.
func (t *Timer) Resume() {
	if !t.state.Active() || t.state.Running {
		return
	}
	t.state.StartedAt = t.now()
	t.state.Running = true
}

// Stop finalizes the timer and clears the slot. It returns the session the
// time belongs to and the minute delta, rounded to the nearest minute and
// never negative. ok is false when the timer was idle and there is nothing
// to commit.
func (t *Timer) Stop() (sessionID string, deltaMinutes int, ok bool) {
	if !t.state.Active() {
		return "", 0, false
	}
	totalMs := t.ElapsedMs()
	deltaMinutes = int((totalMs + 30_000) / 60_000)
	if deltaMinutes < 0 {
		deltaMinutes = 0
	}
	sessionID = t.state.SessionID
	t.state = State{}
	return sessionID, deltaMinutes, true
}
