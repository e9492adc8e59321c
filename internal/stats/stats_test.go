package stats

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"study-tracker/internal/models"
)

func mkSession(id, date, start, end, topic, status string, realMinutes int) models.Session {
	return models.Session{
		ID: id, Date: date, Start: start, End: end,
		Topic: topic, Status: status, RealMinutes: realMinutes,
	}
}

func TestOverallProgress(t *testing.T) {
	empty := OverallProgress(nil)
	assert.Equal(t, 0, empty.Planned)
	assert.Equal(t, float64(0), empty.Percent)

	sessions := []models.Session{
		mkSession("a", "2024-03-04", "19:00", "20:00", "Estudio", models.StatusDone, 60),
		mkSession("b", "2024-03-05", "19:00", "20:00", "Estudio", models.StatusPlanned, 0),
		mkSession("c", "2024-03-06", "19:00", "20:00", "Estudio", models.StatusMissed, 0),
		mkSession("d", "2024-03-07", "19:00", "20:00", "Estudio", models.StatusDone, 45),
	}
	got := OverallProgress(sessions)
	assert.Equal(t, 4, got.Planned)
	assert.Equal(t, 2, got.Done)
	assert.InDelta(t, 50.0, got.Percent, 0.001)
}

func TestOverallProgressPercentBounded(t *testing.T) {
	for n := 0; n < 5; n++ {
		var sessions []models.Session
		for i := 0; i < n; i++ {
			sessions = append(sessions,
				mkSession(fmt.Sprintf("s%d", i), "2024-03-04", "19:00", "20:00", "Estudio", models.StatusDone, 0))
		}
		p := OverallProgress(sessions).Percent
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 100.0)
	}
}

func TestWeeklyBreakdownScenario(t *testing.T) {
	// One week of sessions, Monday through Sunday, day 3 done with 60
	// minutes logged.
	var sessions []models.Session
	for d := 0; d < 7; d++ {
		date := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC).AddDate(0, 0, d).Format("2006-01-02")
		status := models.StatusPlanned
		real := 0
		if d == 2 {
			status = models.StatusDone
			real = 60
		}
		sessions = append(sessions, mkSession(fmt.Sprintf("d%d", d), date, "19:00", "20:00", "Estudio", status, real))
	}

	rows := WeeklyBreakdown(sessions)
	require.Len(t, rows, 1)
	assert.Equal(t, "2024-03-04", rows[0].WeekStart)
	assert.Equal(t, 7, rows[0].Planned)
	assert.Equal(t, 1, rows[0].Done)
	assert.Equal(t, 14, rows[0].Percent)
	assert.Equal(t, 60, rows[0].DoneMinutes)
}

func TestWeeklyBreakdownOrderedAscending(t *testing.T) {
	sessions := []models.Session{
		mkSession("b", "2024-03-12", "19:00", "20:00", "Estudio", models.StatusPlanned, 0),
		mkSession("a", "2024-03-04", "19:00", "20:00", "Estudio", models.StatusDone, 30),
		mkSession("c", "2024-02-26", "19:00", "20:00", "Estudio", models.StatusPlanned, 0),
	}
	rows := WeeklyBreakdown(sessions)
	require.Len(t, rows, 3)
	assert.Equal(t, "2024-02-26", rows[0].WeekStart)
	assert.Equal(t, "2024-03-04", rows[1].WeekStart)
	assert.Equal(t, "2024-03-11", rows[2].WeekStart)
}

func TestTopicBreakdown(t *testing.T) {
	sessions := []models.Session{
		mkSession("a", "2024-03-04", "09:00", "11:00", "Proyecto / Portafolio", models.StatusDone, 90),
		mkSession("b", "2024-03-04", "19:00", "20:00", "Estudio", models.StatusDone, 55),
		mkSession("c", "2024-03-05", "19:00", "20:00", "Estudio", models.StatusPlanned, 0),
		mkSession("d", "2024-03-06", "19:00", "20:00", "Inglés", models.StatusPlanned, 0),
	}

	rows := TopicBreakdown(sessions, 2)
	require.Len(t, rows, 2)
	// Project: 120 planned; Estudio: 120 planned; tie broken by name.
	assert.Equal(t, "Estudio", rows[0].Topic)
	assert.Equal(t, 120, rows[0].PlannedMinutes)
	assert.Equal(t, 55, rows[0].RealMinutes)
	assert.Equal(t, "Proyecto / Portafolio", rows[1].Topic)
	assert.Equal(t, 90, rows[1].RealMinutes)

	all := TopicBreakdown(sessions, 0)
	assert.Len(t, all, 3)
}

func TestCurrentWeekGoal(t *testing.T) {
	today := time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC) // Wednesday
	sessions := []models.Session{
		mkSession("a", "2024-03-04", "19:00", "20:00", "Estudio", models.StatusDone, 60),
		mkSession("b", "2024-03-06", "19:00", "20:00", "Estudio", models.StatusDone, 30),
		mkSession("c", "2024-02-26", "19:00", "20:00", "Estudio", models.StatusDone, 500), // prior week
	}

	got := CurrentWeekGoal(sessions, 150, today)
	assert.Equal(t, 150, got.Goal)
	assert.Equal(t, 90, got.Real)
	assert.Equal(t, 60, got.Percent)
}

func TestCurrentWeekGoalCapsAtHundred(t *testing.T) {
	today := time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)
	sessions := []models.Session{
		mkSession("a", "2024-03-04", "19:00", "20:00", "Estudio", models.StatusDone, 500),
	}
	got := CurrentWeekGoal(sessions, 100, today)
	assert.Equal(t, 100, got.Percent)
}

func TestCurrentWeekGoalZeroGoal(t *testing.T) {
	today := time.Date(2024, 3, 6, 12, 0, 0, 0, time.UTC)
	sessions := []models.Session{
		mkSession("a", "2024-03-04", "19:00", "20:00", "Estudio", models.StatusDone, 120),
	}
	got := CurrentWeekGoal(sessions, 0, today)
	assert.Equal(t, 0, got.Percent)
	assert.Equal(t, 120, got.Real)
}
