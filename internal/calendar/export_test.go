package calendar

import (
	"strings"
	"testing"
	"time"

	"github.com/NomadCrew/neoevents/types"
	ical "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExport(t *testing.T) {
	events := []types.Event{
		{ID: "e1", Title: "Rock Night", Description: "Music", Category: "Rock", Date: "2024-06-15", Lat: 43.26, Lng: -2.93},
		{ID: "e2", Title: "Undated", Date: "TBA"},
		{ID: "e3", Title: "No Venue", Description: "Arts", Category: "Theatre", Date: "2024-06-16"},
	}
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

	out := Export(events, time.UTC, now)
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "-//NeoEvents//Favorites//EN")

	cal, err := ical.ParseCalendar(strings.NewReader(out))
	require.NoError(t, err)

	vevents := cal.Events()
	require.Len(t, vevents, 2)

	first := vevents[0]
	assert.Equal(t, "e1@neoevents", first.Id())
	assert.Equal(t, "Rock Night", first.GetProperty(ical.ComponentPropertySummary).Value)
	assert.Equal(t, "43.26,-2.93", first.GetProperty(ical.ComponentPropertyLocation).Value)
	assert.Contains(t, first.GetProperty(ical.ComponentPropertyDtStart).Value, "20240615")

	second := vevents[1]
	assert.Equal(t, "e3@neoevents", second.Id())
	assert.Nil(t, second.GetProperty(ical.ComponentPropertyLocation))
}

func TestExport_Empty(t *testing.T) {
	out := Export(nil, time.UTC, time.Now())
	cal, err := ical.ParseCalendar(strings.NewReader(out))
	require.NoError(t, err)
	assert.Empty(t, cal.Events())
}
