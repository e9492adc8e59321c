package models

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Session statuses. Any status may follow any other; transitions are
// user-driven and idempotent.
const (
	StatusPlanned = "planned"
	StatusDone    = "done"
	StatusMissed  = "missed"
)

var timeOfDayRe = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// Session represents one scheduled or logged block of study time.
type Session struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Topic       string `json:"topic"`
	Status      string `json:"status"`
	RealMinutes int    `json:"realMinutes"`
	Note        string `json:"note"`
}

// Plan is the export/import payload: the full session list plus the
// weekly goal in minutes.
type Plan struct {
	Sessions   []Session `json:"sessions"`
	WeeklyGoal int       `json:"weeklyGoal"`
}

// ValidationError reports malformed user input. Operations that return it
// leave all state untouched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation: " + e.Reason
	}
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

// ValidStatus reports whether s is one of the three session statuses.
func ValidStatus(s string) bool {
	return s == StatusPlanned || s == StatusDone || s == StatusMissed
}

// ValidTimeOfDay reports whether s is a 24-hour HH:MM value.
func ValidTimeOfDay(s string) bool {
	return timeOfDayRe.MatchString(s)
}

// Validate checks the fields an edit operation is allowed to set. Seeded
// sessions are constructed from trusted constants and skip this.
func (s *Session) Validate() error {
	if s.ID == "" {
		return &ValidationError{Field: "id", Reason: "must not be empty"}
	}
	if s.Date == "" {
		return &ValidationError{Field: "date", Reason: "must not be empty"}
	}
	if !ValidTimeOfDay(s.Start) {
		return &ValidationError{Field: "start", Reason: "must be HH:MM"}
	}
	if !ValidTimeOfDay(s.End) {
		return &ValidationError{Field: "end", Reason: "must be HH:MM"}
	}
	if strings.TrimSpace(s.Topic) == "" {
		return &ValidationError{Field: "topic", Reason: "must not be empty"}
	}
	if !ValidStatus(s.Status) {
		return &ValidationError{Field: "status", Reason: "must be planned, done or missed"}
	}
	if s.RealMinutes < 0 {
		return &ValidationError{Field: "realMinutes", Reason: "must not be negative"}
	}
	return nil
}

// rawSession mirrors Session with optional fields kept as pointers so the
// decoder can tell "absent" from "zero" and fill defaults in one place.
type rawSession struct {
	ID          *string `json:"id"`
	Date        *string `json:"date"`
	Start       *string `json:"start"`
	End         *string `json:"end"`
	Topic       *string `json:"topic"`
	Status      *string `json:"status"`
	RealMinutes *int    `json:"realMinutes"`
	Note        *string `json:"note"`
}

func (r *rawSession) session() (Session, error) {
	for name, p := range map[string]*string{
		"id": r.ID, "date": r.Date, "start": r.Start,
		"end": r.End, "topic": r.Topic, "status": r.Status,
	} {
		if p == nil {
			return Session{}, &ValidationError{Field: name, Reason: "missing"}
		}
	}
	s := Session{
		ID:     *r.ID,
		Date:   *r.Date,
		Start:  *r.Start,
		End:    *r.End,
		Topic:  *r.Topic,
		Status: *r.Status,
	}
	if r.RealMinutes != nil {
		s.RealMinutes = *r.RealMinutes
	}
	if r.Note != nil {
		s.Note = *r.Note
	}
	if !ValidStatus(s.Status) {
		return Session{}, &ValidationError{Field: "status", Reason: "unknown value " + s.Status}
	}
	if s.RealMinutes < 0 {
		return Session{}, &ValidationError{Field: "realMinutes", Reason: "must not be negative"}
	}
	return s, nil
}

// DecodePlan parses an import payload. Two shapes are accepted: the current
// {"sessions": [...], "weeklyGoal": n} object, and the legacy bare array of
// session objects (weekly goal left at -1, meaning "not supplied"). Any
// malformed session rejects the whole payload.
func DecodePlan(data []byte) (*Plan, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, &ValidationError{Reason: "empty payload"}
	}

	var raws []rawSession
	goal := -1

	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(data, &raws); err != nil {
			return nil, &ValidationError{Reason: "malformed session array: " + err.Error()}
		}
	case '{':
		var obj struct {
			Sessions   *[]rawSession `json:"sessions"`
			WeeklyGoal *int          `json:"weeklyGoal"`
		}
		if err := json.Unmarshal(data, &obj); err != nil {
			return nil, &ValidationError{Reason: "malformed payload: " + err.Error()}
		}
		if obj.Sessions == nil {
			return nil, &ValidationError{Field: "sessions", Reason: "missing"}
		}
		raws = *obj.Sessions
		if obj.WeeklyGoal != nil {
			if *obj.WeeklyGoal < 0 {
				return nil, &ValidationError{Field: "weeklyGoal", Reason: "must not be negative"}
			}
			goal = *obj.WeeklyGoal
		}
	default:
		return nil, &ValidationError{Reason: "payload is neither an array nor an object"}
	}

	sessions := make([]Session, 0, len(raws))
	seen := make(map[string]struct{}, len(raws))
	for i := range raws {
		s, err := raws[i].session()
		if err != nil {
			return nil, fmt.Errorf("session %d: %w", i, err)
		}
		if _, dup := seen[s.ID]; dup {
			return nil, &ValidationError{Field: "id", Reason: "duplicate " + s.ID}
		}
		seen[s.ID] = struct{}{}
		sessions = append(sessions, s)
	}
	return &Plan{Sessions: sessions, WeeklyGoal: goal}, nil
}

// EncodePlan renders the export payload with indentation, matching the
// plan-estudio-<date>.json files the app downloads.
func EncodePlan(p *Plan) ([]byte, error) {
	if p.Sessions == nil {
		p.Sessions = []Session{}
	}
	return json.MarshalIndent(p, "", "  ")
}
