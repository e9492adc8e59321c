// Package timeutil holds the pure clock arithmetic the tracker is built on:
// HH:MM parsing, overnight-aware duration math, and ISO-week keying.
package timeutil

import (
	"fmt"
	"time"

	"study-tracker/internal/models"
)

const minutesPerDay = 24 * 60

// ParseTimeOfDay splits a 24-hour HH:MM string into hour and minute.
func ParseTimeOfDay(s string) (hour, minute int, err error) {
	if !models.ValidTimeOfDay(s) {
		return 0, 0, &models.ValidationError{Field: "time", Reason: s + " is not HH:MM"}
	}
	fmt.Sscanf(s, "%d:%d", &hour, &minute)
	return hour, minute, nil
}

// MinutesBetween returns the minutes from start to end, both HH:MM. An end
// at or before the start means the block crosses midnight and gets a +24h
// rollover, so the result is positive for every valid pair.
func MinutesBetween(start, end string) (int, error) {
	sh, sm, err := ParseTimeOfDay(start)
	if err != nil {
		return 0, err
	}
	eh, em, err := ParseTimeOfDay(end)
	if err != nil {
		return 0, err
	}
	diff := (eh*60 + em) - (sh*60 + sm)
	if diff <= 0 {
		diff += minutesPerDay
	}
	return diff, nil
}

// WeekStart returns the Monday on or before d, at midnight in d's location.
// Applying it to its own result is a no-op.
func WeekStart(d time.Time) time.Time {
	d = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
	offset := (int(d.Weekday()) + 6) % 7 // Monday=0 ... Sunday=6
	return d.AddDate(0, 0, -offset)
}

// WeekKey is WeekStart for ISO-date strings; it returns the Monday as an
// ISO date. Unparseable input is returned unchanged so a corrupt row groups
// under its own key instead of poisoning a real week.
func WeekKey(isoDate string) string {
	d, err := time.Parse("2006-01-02", isoDate)
	if err != nil {
		return isoDate
	}
	return WeekStart(d).Format("2006-01-02")
}

// FormatElapsed renders a millisecond count as MM:SS for the stopwatch
// display. Negative input clamps to zero; minutes may exceed two digits.
func FormatElapsed(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	totalSec := ms / 1000
	return fmt.Sprintf("%02d:%02d", totalSec/60, totalSec%60)
}
