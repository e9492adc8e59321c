// Package seed generates the base study plan: a daily evening study block,
// plus a weekend morning project block.
package seed

import (
	"fmt"
	"time"

	"study-tracker/internal/models"
)

const (
	TopicStudy   = "Estudio"
	TopicProject = "Proyecto / Portafolio"
)

// Generate builds a plan of the given number of weeks starting on the day
// of `from`. Weekends get a 09:00-11:00 project session and the 19:00-20:00
// study session; weekdays the study session only. Ids encode week, day and
// slot so regenerating the same span yields the same ids.
func Generate(weeks int, from time.Time) []models.Session {
	if weeks < 1 {
		weeks = 1
	}
	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())

	var sessions []models.Session
	for w := 0; w < weeks; w++ {
		for d := 0; d < 7; d++ {
			day := start.AddDate(0, 0, w*7+d)
			date := day.Format("2006-01-02")

			if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
				sessions = append(sessions, models.Session{
					ID:     fmt.Sprintf("%d-%d-am", w, d),
					Date:   date,
					Start:  "09:00",
					End:    "11:00",
					Topic:  TopicProject,
					Status: models.StatusPlanned,
				})
			}
			sessions = append(sessions, models.Session{
				ID:     fmt.Sprintf("%d-%d-pm", w, d),
				Date:   date,
				Start:  "19:00",
				End:    "20:00",
				Topic:  TopicStudy,
				Status: models.StatusPlanned,
			})
		}
	}
	return sessions
}
