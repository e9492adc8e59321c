// Package filter narrows a session list by status and topic search.
package filter

import (
	"strings"

	"study-tracker/internal/models"
)

// StatusAll passes every status.
const StatusAll = "all"

// Apply returns the sessions matching both predicates, preserving input
// order. status "all" (or empty) passes everything; search is trimmed and
// matched case-insensitively as a substring of the topic, with an empty
// search passing everything.
func Apply(sessions []models.Session, status, search string) []models.Session {
	search = strings.ToLower(strings.TrimSpace(search))
	filterStatus := status != "" && status != StatusAll

	out := make([]models.Session, 0, len(sessions))
	for _, s := range sessions {
		if filterStatus && s.Status != status {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(s.Topic), search) {
			continue
		}
		out = append(out, s)
	}
	return out
}
