package handlers

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"study-tracker/internal/seed"
)

// Import payloads larger than this are rejected outright.
const maxImportBytes = 4 << 20

// SettingsViewModel is the data passed to the settings page.
type SettingsViewModel struct {
	WeeklyGoal int
	HasRemote  bool
	Notices    []string
	Message    string
}

// Settings renders the settings page.
func (h *Handlers) Settings(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "settings.html", SettingsViewModel{
		WeeklyGoal: h.eng.WeeklyGoal(),
		HasRemote:  h.eng.HasRemote(),
		Notices:    h.eng.DrainNotices(),
		Message:    r.URL.Query().Get("msg"),
	})
}

// SetGoal stores a new weekly goal in minutes.
func (h *Handlers) SetGoal(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	minutes, err := strconv.Atoi(r.FormValue("minutes"))
	if err != nil {
		http.Error(w, "minutes must be a number", http.StatusBadRequest)
		return
	}
	if err := h.eng.SetWeeklyGoal(minutes); err != nil {
		h.fail(w, "SetGoal", err)
		return
	}
	http.Redirect(w, r, "/settings?msg=Objetivo+semanal+guardado", http.StatusSeeOther)
}

// GeneratePlan replaces the session set with a freshly seeded plan.
func (h *Handlers) GeneratePlan(w http.ResponseWriter, r *http.Request) {
	weeks := h.weeksParam(r)
	plan := seed.Generate(weeks, time.Now())
	if err := h.eng.ReplaceAll(plan, -1); err != nil {
		h.fail(w, "GeneratePlan", err)
		return
	}
	http.Redirect(w, r, "/settings?msg=Plan+regenerado", http.StatusSeeOther)
}

// UploadPlan pushes a freshly seeded plan to the remote store as one
// batched write. The settings page asks for confirmation first, since the
// remote collection is overwritten wholesale.
func (h *Handlers) UploadPlan(w http.ResponseWriter, r *http.Request) {
	weeks := h.weeksParam(r)
	if err := h.eng.UploadAll(seed.Generate(weeks, time.Now())); err != nil {
		h.fail(w, "UploadPlan", err)
		return
	}
	http.Redirect(w, r, "/settings?msg=Plan+enviado+a+la+nube", http.StatusSeeOther)
}

// ClearRemote deletes the whole remote collection. Confirmed client-side.
func (h *Handlers) ClearRemote(w http.ResponseWriter, r *http.Request) {
	if err := h.eng.ClearRemote(); err != nil {
		h.fail(w, "ClearRemote", err)
		return
	}
	http.Redirect(w, r, "/settings?msg=Nube+vaciada", http.StatusSeeOther)
}

// ExportPlan downloads the current plan as JSON.
func (h *Handlers) ExportPlan(w http.ResponseWriter, r *http.Request) {
	data, filename, err := h.eng.ExportPlan()
	if err != nil {
		h.fail(w, "ExportPlan", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := w.Write(data); err != nil {
		log.Printf("ExportPlan write: %v", err)
	}
}

// ImportPlan installs an uploaded plan file. A malformed file leaves the
// current plan untouched.
func (h *Handlers) ImportPlan(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		http.Error(w, "invalid upload", http.StatusBadRequest)
		return
	}
	file, _, err := r.FormFile("plan")
	if err != nil {
		http.Error(w, "missing plan file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImportBytes))
	if err != nil {
		http.Error(w, "could not read upload", http.StatusBadRequest)
		return
	}
	if err := h.eng.ImportPlan(data); err != nil {
		h.fail(w, "ImportPlan", err)
		return
	}
	http.Redirect(w, r, "/settings?msg=Plan+importado", http.StatusSeeOther)
}

func (h *Handlers) weeksParam(r *http.Request) int {
	if err := r.ParseForm(); err != nil {
		return 24
	}
	weeks, err := strconv.Atoi(r.FormValue("weeks"))
	if err != nil || weeks < 1 {
		return 24
	}
	return weeks
}
