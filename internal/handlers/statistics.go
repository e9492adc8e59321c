package handlers

import (
	"net/http"
	"time"

	"study-tracker/internal/stats"
)

// Top topics shown on the statistics page.
const topicLimit = 8

// StatsViewModel is the data passed to the statistics view template.
type StatsViewModel struct {
	Overall stats.Overall
	Weeks   []stats.WeekRow
	Topics  []stats.TopicRow
	Goal    stats.GoalStatus
}

// Statistics renders the statistics page: overall completion, the weekly
// breakdown, the per-topic planned-vs-real table and the weekly goal
// gauge. Everything is recomputed from the current snapshot.
func (h *Handlers) Statistics(w http.ResponseWriter, r *http.Request) {
	sessions := h.eng.Sessions()

	h.render(w, r, "stats.html", StatsViewModel{
		Overall: stats.OverallProgress(sessions),
		Weeks:   stats.WeeklyBreakdown(sessions),
		Topics:  stats.TopicBreakdown(sessions, topicLimit),
		Goal:    stats.CurrentWeekGoal(sessions, h.eng.WeeklyGoal(), time.Now()),
	})
}
