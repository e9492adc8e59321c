// Package stats derives progress metrics from a session snapshot. Every
// function is a pure recomputation; nothing here caches or persists
// aggregates, so the numbers can never drift from the store.
package stats

import (
	"math"
	"sort"
	"time"

	"study-tracker/internal/models"
	"study-tracker/internal/timeutil"
)

// Overall is the headline counter set: sessions planned, sessions done,
// and their ratio as a percentage.
type Overall struct {
	Planned int
	Done    int
	Percent float64
}

// WeekRow is one row of the weekly breakdown, keyed by the Monday of the
// ISO week.
type WeekRow struct {
	WeekStart   string
	Planned     int
	Done        int
	Percent     int
	DoneMinutes int
}

// TopicRow compares the minutes a topic was scheduled for against the
// minutes actually logged.
type TopicRow struct {
	Topic          string
	PlannedMinutes int
	RealMinutes    int
}

// GoalStatus compares logged minutes in the current ISO week against the
// weekly goal.
type GoalStatus struct {
	Goal    int
	Real    int
	Percent int
}

// OverallProgress counts done sessions against the total. An empty set
// reports zero percent rather than dividing by zero.
func OverallProgress(sessions []models.Session) Overall {
	done := 0
	for _, s := range sessions {
		if s.Status == models.StatusDone {
			done++
		}
	}
	total := len(sessions)
	denom := total
	if denom == 0 {
		denom = 1
	}
	return Overall{
		Planned: total,
		Done:    done,
		Percent: float64(done) / float64(denom) * 100,
	}
}

// WeeklyBreakdown groups sessions by the Monday of their ISO week,
// ascending. Done minutes sum RealMinutes over the week's sessions.
func WeeklyBreakdown(sessions []models.Session) []WeekRow {
	byWeek := map[string]*WeekRow{}
	for _, s := range sessions {
		key := timeutil.WeekKey(s.Date)
		row, ok := byWeek[key]
		if !ok {
			row = &WeekRow{WeekStart: key}
			byWeek[key] = row
		}
		row.Planned++
		if s.Status == models.StatusDone {
			row.Done++
		}
		row.DoneMinutes += s.RealMinutes
	}

	rows := make([]WeekRow, 0, len(byWeek))
	for _, row := range byWeek {
		if row.Planned > 0 {
			row.Percent = int(math.Round(float64(row.Done) / float64(row.Planned) * 100))
		}
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].WeekStart < rows[j].WeekStart })
	return rows
}

// TopicBreakdown sums planned and real minutes per topic and returns the
// top n topics by planned minutes, descending (ties break on topic name so
// the order is stable). n <= 0 means all topics.
func TopicBreakdown(sessions []models.Session, n int) []TopicRow {
	byTopic := map[string]*TopicRow{}
	for _, s := range sessions {
		row, ok := byTopic[s.Topic]
		if !ok {
			row = &TopicRow{Topic: s.Topic}
			byTopic[s.Topic] = row
		}
		if mins, err := timeutil.MinutesBetween(s.Start, s.End); err == nil {
			row.PlannedMinutes += mins
		}
		row.RealMinutes += s.RealMinutes
	}

	rows := make([]TopicRow, 0, len(byTopic))
	for _, row := range byTopic {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].PlannedMinutes != rows[j].PlannedMinutes {
			return rows[i].PlannedMinutes > rows[j].PlannedMinutes
		}
		return rows[i].Topic < rows[j].Topic
	})
	if n > 0 && len(rows) > n {
		rows = rows[:n]
	}
	return rows
}

// CurrentWeekGoal sums RealMinutes over sessions falling in the same ISO
// week as today and scores them against the goal, capped at 100 percent.
// A zero goal always scores zero.
func CurrentWeekGoal(sessions []models.Session, goal int, today time.Time) GoalStatus {
	week := timeutil.WeekStart(today).Format("2006-01-02")
	real := 0
	for _, s := range sessions {
		if timeutil.WeekKey(s.Date) == week {
			real += s.RealMinutes
		}
	}
	st := GoalStatus{Goal: goal, Real: real}
	if goal > 0 {
		st.Percent = int(math.Round(float64(real) / float64(goal) * 100))
		if st.Percent > 100 {
			st.Percent = 100
		}
	}
	return st
}
