package seed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"study-tracker/internal/models"
)

func TestGenerateOneWeek(t *testing.T) {
	// Starting on a Monday: 5 weekday sessions + 2 weekend days with 2
	// sessions each.
	monday := time.Date(2024, 3, 4, 15, 30, 0, 0, time.UTC)
	plan := Generate(1, monday)
	require.Len(t, plan, 9)

	var am, pm int
	for _, s := range plan {
		require.NoError(t, s.Validate(), "seeded session %s must be valid", s.ID)
		assert.Equal(t, models.StatusPlanned, s.Status)
		switch s.Topic {
		case TopicProject:
			am++
			assert.Equal(t, "09:00", s.Start)
			assert.Equal(t, "11:00", s.End)
		case TopicStudy:
			pm++
			assert.Equal(t, "19:00", s.Start)
			assert.Equal(t, "20:00", s.End)
		default:
			t.Fatalf("unexpected topic %q", s.Topic)
		}
	}
	assert.Equal(t, 2, am)
	assert.Equal(t, 7, pm)
}

func TestGenerateDatesAreConsecutive(t *testing.T) {
	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	plan := Generate(2, start)

	first := plan[0].Date
	last := plan[len(plan)-1].Date
	assert.Equal(t, "2024-03-04", first)
	assert.Equal(t, "2024-03-17", last)
}

func TestGenerateIDsAreStable(t *testing.T) {
	start := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	a := Generate(3, start)
	b := Generate(3, start)
	require.Equal(t, len(a), len(b))
	for i := range a {
		assert.Equal(t, a[i].ID, b[i].ID)
	}

	// No duplicates.
	seen := map[string]bool{}
	for _, s := range a {
		assert.False(t, seen[s.ID], "duplicate id %s", s.ID)
		seen[s.ID] = true
	}
}

func TestGenerateClampsWeeks(t *testing.T) {
	plan := Generate(0, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC))
	assert.Len(t, plan, 9, "weeks below 1 clamp to 1")
}
