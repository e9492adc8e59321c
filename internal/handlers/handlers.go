package handlers

import (
	"errors"
	"html/template"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"study-tracker/internal/engine"
	"study-tracker/internal/filter"
	"study-tracker/internal/models"
	"study-tracker/internal/stats"
	"study-tracker/internal/timeutil"
)

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	eng         *engine.Engine
	templateDir string
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(eng *engine.Engine, templateDir string) *Handlers {
	return &Handlers{eng: eng, templateDir: templateDir}
}

// SessionItem decorates a session for the list views.
type SessionItem struct {
	models.Session
	TimeRange      string
	PlannedMinutes int
	DayTitle       string
}

// DayGroup groups the current week's sessions by date.
type DayGroup struct {
	Date  string
	Items []SessionItem
}

// TimerView is the stopwatch widget state.
type TimerView struct {
	Active    bool
	Running   bool
	SessionID string
	Topic     string
	Elapsed   string
}

// ListViewModel is the data passed to the sessions page.
type ListViewModel struct {
	Today        string
	TodayItems   []SessionItem
	Upcoming     []SessionItem
	WeekDays     []DayGroup
	FilterStatus string
	Search       string
	Overall      stats.Overall
	Goal         stats.GoalStatus
	Timer        TimerView
	Notices      []string
	HasRemote    bool
}

// ListSessions renders the main page: today's sessions, the filtered
// upcoming list and the current-week grid.
func (h *Handlers) ListSessions(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = filter.StatusAll
	}
	search := r.URL.Query().Get("q")

	sessions := h.eng.Sessions()
	filtered := filter.Apply(sessions, status, search)
	now := time.Now()
	today := now.Format("2006-01-02")

	vm := ListViewModel{
		Today:        today,
		FilterStatus: status,
		Search:       search,
		Overall:      stats.OverallProgress(sessions),
		Goal:         stats.CurrentWeekGoal(sessions, h.eng.WeeklyGoal(), now),
		Timer:        h.timerView(),
		Notices:      h.eng.DrainNotices(),
		HasRemote:    h.eng.HasRemote(),
	}

	for _, s := range sessions {
		if s.Date == today {
			vm.TodayItems = append(vm.TodayItems, sessionItem(s))
		}
	}

	weekKey := timeutil.WeekStart(now).Format("2006-01-02")
	dayIdx := map[string]int{}
	for _, s := range filtered {
		if s.Date >= today && len(vm.Upcoming) < 10 {
			vm.Upcoming = append(vm.Upcoming, sessionItem(s))
		}
		if timeutil.WeekKey(s.Date) == weekKey {
			i, ok := dayIdx[s.Date]
			if !ok {
				i = len(vm.WeekDays)
				dayIdx[s.Date] = i
				vm.WeekDays = append(vm.WeekDays, DayGroup{Date: s.Date})
			}
			vm.WeekDays[i].Items = append(vm.WeekDays[i].Items, sessionItem(s))
		}
	}

	h.render(w, r, "sessions.html", vm)
}

// UpdateStatus handles the done/missed/planned buttons and the week-grid
// toggle.
func (h *Handlers) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	id := r.PathValue("id")
	if err := h.eng.SetStatus(id, r.FormValue("status")); err != nil {
		h.fail(w, "UpdateStatus", err)
		return
	}
	h.redirectBack(w, r)
}

// UpdateNote handles the note form on a session row.
func (h *Handlers) UpdateNote(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.eng.SetNote(r.PathValue("id"), r.FormValue("note")); err != nil {
		h.fail(w, "UpdateNote", err)
		return
	}
	h.redirectBack(w, r)
}

// CreateSession handles the new-session form.
func (h *Handlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	_, err := h.eng.CreateSession(
		r.FormValue("date"), r.FormValue("start"), r.FormValue("end"), r.FormValue("topic"),
	)
	if err != nil {
		h.fail(w, "CreateSession", err)
		return
	}
	h.redirectBack(w, r)
}

// UpdateSession handles the full-edit form, including an explicit
// real-minutes reset.
func (h *Handlers) UpdateSession(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	id := r.PathValue("id")
	prev, ok := h.eng.Session(id)
	if !ok {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	s := prev
	s.Date = r.FormValue("date")
	s.Start = r.FormValue("start")
	s.End = r.FormValue("end")
	s.Topic = strings.TrimSpace(r.FormValue("topic"))
	s.Status = r.FormValue("status")
	s.Note = r.FormValue("note")
	if v := r.FormValue("realMinutes"); v != "" {
		n, err := parseNonNegative(v)
		if err != nil {
			http.Error(w, "realMinutes must be a non-negative number", http.StatusBadRequest)
			return
		}
		s.RealMinutes = n
	}

	if err := h.eng.UpdateSession(s); err != nil {
		h.fail(w, "UpdateSession", err)
		return
	}
	h.redirectBack(w, r)
}

// DeleteSession removes a session.
func (h *Handlers) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.eng.DeleteSession(r.PathValue("id")); err != nil {
		h.fail(w, "DeleteSession", err)
		return
	}
	h.redirectBack(w, r)
}

func sessionItem(s models.Session) SessionItem {
	item := SessionItem{Session: s, TimeRange: s.Start + " — " + s.End}
	if mins, err := timeutil.MinutesBetween(s.Start, s.End); err == nil {
		item.PlannedMinutes = mins
	}
	if d, err := time.Parse("2006-01-02", s.Date); err == nil {
		item.DayTitle = d.Format("Mon 02 Jan")
	} else {
		item.DayTitle = s.Date
	}
	return item
}

func parseNonNegative(v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, &models.ValidationError{Field: "realMinutes", Reason: "must be a non-negative number"}
	}
	return n, nil
}

// fail maps engine errors onto responses: validation problems are the
// caller's fault, anything else is logged as a server error.
func (h *Handlers) fail(w http.ResponseWriter, op string, err error) {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		http.Error(w, verr.Error(), http.StatusBadRequest)
		return
	}
	log.Printf("%s error: %v", op, err)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

func (h *Handlers) redirectBack(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Location", `{"path":"/sessions", "target":"#content"}`)
		return
	}
	http.Redirect(w, r, "/sessions", http.StatusSeeOther)
}

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, viewName string, data any) {
	tmpl, err := template.ParseFiles(filepath.Join(h.templateDir, "base.html"), filepath.Join(h.templateDir, viewName))
	if err != nil {
		log.Printf("Template error: %v", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	target := "base.html"
	if r.Header.Get("HX-Request") == "true" {
		target = "content"
	}
	if err := tmpl.ExecuteTemplate(w, target, data); err != nil {
		log.Printf("Template execution error: %v", err)
	}
}
