// Package calendar renders a single event as an iCalendar file.
package calendar

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/PaoComPlanta/rota-da-festa/internal/models"
)

const (
	ContentType = "text/calendar"
	ProductID   = "-//Rota da Festa//PT"

	// Duration is assumed for every event; the source data has no end time.
	Duration = 2 * time.Hour

	floatingLayout = "20060102T150405"
)

// Payload is a ready-to-serve calendar file.
type Payload struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Export builds the calendar entry for ev. Times are written as floating
// local times so the client keeps the wall clock of the event. Text values
// are escaped by the encoder. The output depends only on ev.
func Export(ev models.Event) (Payload, error) {
	day, err := ev.CalendarDate()
	if err != nil {
		return Payload{}, fmt.Errorf("event %d: %w", ev.ID, err)
	}
	clock, err := ev.Clock()
	if err != nil {
		return Payload{}, fmt.Errorf("event %d: %w", ev.ID, err)
	}
	start := day.At(clock, time.UTC)
	end := start.Add(Duration)

	description := ev.Description
	if strings.TrimSpace(description) == "" {
		description = ev.Category
	}

	geo := ";"
	if pos, ok := ev.Coordinates(); ok {
		geo = formatFloat(pos.Latitude) + ";" + formatFloat(pos.Longitude)
	}

	cal := ical.NewCalendarFor("Rota da Festa")
	cal.SetProductId(ProductID)

	vevent := cal.AddEvent(UID(ev.ID))
	vevent.SetProperty(ical.ComponentPropertyDtStart, start.Format(floatingLayout))
	vevent.SetProperty(ical.ComponentPropertyDtEnd, end.Format(floatingLayout))
	vevent.SetProperty(ical.ComponentPropertySummary, ev.Name)
	vevent.SetProperty(ical.ComponentPropertyLocation, ev.Location)
	vevent.SetProperty(ical.ComponentPropertyDescription, description)
	vevent.SetProperty(ical.ComponentPropertyGeo, geo)

	return Payload{
		Filename:    Filename(ev.Name),
		ContentType: ContentType,
		Body:        []byte(cal.Serialize(ical.WithNewLineWindows)),
	}, nil
}

// UID is the stable identifier of the calendar entry for an event id.
func UID(id int64) string {
	return "evento-" + strconv.FormatInt(id, 10) + "@rotadafesta.pt"
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9À-ÿ ]`)

// Filename derives a download name from the event name.
func Filename(name string) string {
	base := strings.TrimSpace(unsafeFilenameChars.ReplaceAllString(name, ""))
	if base == "" {
		base = "evento"
	}
	return base + ".ics"
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
