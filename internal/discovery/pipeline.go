// Package discovery turns the raw event list into what a user browses:
// filtered, ranked and annotated with distance.
package discovery

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/PaoComPlanta/rota-da-festa/internal/models"
)

// AnnotatedEvent is an event with its distance from a reference point.
// DistanceKm is nil when there is no reference point or the event has no
// coordinates.
type AnnotatedEvent struct {
	models.Event
	DistanceKm *float64 `json:"distancia_km,omitempty"`
}

// Query is the viewer's current selection.
type Query struct {
	Search    string
	Kind      KindFilter
	Age       AgeFilter
	Reference *models.Coordinates
}

// Filter applies the query to events and returns a new ranked slice.
// The age filter is applied as given even when Kind excludes sports;
// clearing it is up to the caller.
func Filter(events []models.Event, q Query) []AnnotatedEvent {
	term := strings.ToLower(strings.TrimSpace(q.Search))

	out := make([]AnnotatedEvent, 0, len(events))
	for _, ev := range events {
		if !ev.Status.Visible() {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(ev.Name), term) {
			continue
		}
		if !q.Kind.Matches(ev.Kind) {
			continue
		}
		if !q.Age.Matches(ev.AgeBracket) {
			continue
		}
		out = append(out, AnnotatedEvent{Event: ev})
	}

	if q.Reference != nil {
		for i := range out {
			out[i].DistanceKm = distanceFrom(*q.Reference, out[i].Event)
		}
		sort.SliceStable(out, func(i, j int) bool {
			return closer(out[i].DistanceKm, out[j].DistanceKm)
		})
	} else {
		sortByStart(out)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return postponedRank(out[i].Status) < postponedRank(out[j].Status)
	})
	return out
}

func distanceFrom(ref models.Coordinates, ev models.Event) *float64 {
	pos, ok := ev.Coordinates()
	if !ok {
		return nil
	}
	d := ref.DistanceKm(pos)
	if math.IsNaN(d) {
		return nil
	}
	return &d
}

// closer orders known distances ascending, unknown ones last.
func closer(a, b *float64) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return *a < *b
	}
}

func sortByStart(events []AnnotatedEvent) {
	type keyed struct {
		ev    AnnotatedEvent
		start time.Time
		ok    bool
	}
	ks := make([]keyed, len(events))
	for i, ev := range events {
		t, err := ev.Start(time.UTC)
		ks[i] = keyed{ev: ev, start: t, ok: err == nil}
	}
	sort.SliceStable(ks, func(i, j int) bool {
		a, b := ks[i], ks[j]
		switch {
		case !a.ok:
			return false
		case !b.ok:
			return true
		default:
			return a.start.Before(b.start)
		}
	})
	for i := range ks {
		events[i] = ks[i].ev
	}
}

func postponedRank(s models.EventStatus) int {
	if s == models.StatusPostponed {
		return 1
	}
	return 0
}
