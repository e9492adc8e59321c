package handlers

import (
	"errors"
	"log"
	"net/http"

	"study-tracker/internal/engine"
	"study-tracker/internal/timeutil"
)

func (h *Handlers) timerView() TimerView {
	ts := h.eng.Timer()
	return TimerView{
		Active:    ts.State.Active(),
		Running:   ts.State.Running,
		SessionID: ts.State.SessionID,
		Topic:     ts.Topic,
		Elapsed:   timeutil.FormatElapsed(ts.ElapsedMs),
	}
}

// TimerWidget renders the stopwatch partial. The page polls it with htmx;
// each poll is a display refresh, not a state transition.
func (h *Handlers) TimerWidget(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "timer.html", h.timerView())
}

// StartTimer begins timing the session in the path.
func (h *Handlers) StartTimer(w http.ResponseWriter, r *http.Request) {
	if err := h.eng.StartTimer(r.PathValue("id")); err != nil {
		h.fail(w, "StartTimer", err)
		return
	}
	h.render(w, r, "timer.html", h.timerView())
}

// PauseTimer banks the running interval.
func (h *Handlers) PauseTimer(w http.ResponseWriter, r *http.Request) {
	if err := h.eng.PauseTimer(); err != nil {
		h.fail(w, "PauseTimer", err)
		return
	}
	h.render(w, r, "timer.html", h.timerView())
}

// ResumeTimer restarts a paused stopwatch.
func (h *Handlers) ResumeTimer(w http.ResponseWriter, r *http.Request) {
	if err := h.eng.ResumeTimer(); err != nil {
		h.fail(w, "ResumeTimer", err)
		return
	}
	h.render(w, r, "timer.html", h.timerView())
}

// StopTimer finalizes the stopwatch. markDone=1 also marks the session
// done. A stale target is reported but not treated as a failure.
func (h *Handlers) StopTimer(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	markDone := r.FormValue("markDone") == "1"

	err := h.eng.StopTimer(markDone)
	if errors.Is(err, engine.ErrStaleTimerTarget) {
		log.Printf("StopTimer: %v", err)
	} else if err != nil {
		h.fail(w, "StopTimer", err)
		return
	}
	h.redirectBack(w, r)
}
