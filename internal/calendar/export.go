// Package calendar renders favorited events as an iCalendar feed.
package calendar

import (
	"fmt"
	"time"

	"github.com/NomadCrew/neoevents/internal/filter"
	"github.com/NomadCrew/neoevents/pkg/valueobjects"
	"github.com/NomadCrew/neoevents/types"
	ical "github.com/arran4/golang-ical"
)

const (
	productID    = "-//NeoEvents//Favorites//EN"
	calendarName = "NeoEvents favorites"
	uidDomain    = "neoevents"
)

// Export builds a VCALENDAR with one all-day VEVENT per event. Events whose
// date does not parse are skipped. now stamps DTSTAMP.
func Export(events []types.Event, loc *time.Location, now time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName(calendarName)

	for _, e := range events {
		day, ok := filter.ParseDate(e.Date, loc)
		if !ok {
			continue
		}

		ev := cal.AddEvent(fmt.Sprintf("%s@%s", e.ID, uidDomain))
		ev.SetDtStampTime(now.UTC())
		ev.SetSummary(e.Title)
		ev.SetDescription(fmt.Sprintf("%s · %s", e.Category, e.Description))
		ev.SetAllDayStartAt(day)
		ev.SetAllDayEndAt(day.AddDate(0, 0, 1))
		if e.Lat != 0 || e.Lng != 0 {
			ev.SetLocation(valueobjects.FromCoordinates(e.Coordinates()).String())
		}
	}

	return cal.Serialize()
}
