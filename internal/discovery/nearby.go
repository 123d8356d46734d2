package discovery

import (
	"sort"

	"github.com/PaoComPlanta/rota-da-festa/internal/models"
)

const (
	NearbyRadiusKm   = 15.0
	NearbyWindowDays = 7
	NearbyLimit      = 5
)

// Nearby returns up to NearbyLimit visible events strictly closer than
// NearbyRadiusKm to focal and at most NearbyWindowDays apart in date,
// nearest first. Distances are measured from the focal event. Events
// without coordinates or with an unparseable date never match.
func Nearby(focal models.Event, candidates []models.Event) []AnnotatedEvent {
	origin, ok := focal.Coordinates()
	if !ok {
		return []AnnotatedEvent{}
	}
	day, err := focal.CalendarDate()
	if err != nil {
		return []AnnotatedEvent{}
	}

	out := make([]AnnotatedEvent, 0, NearbyLimit)
	for _, ev := range candidates {
		if ev.ID == focal.ID || !ev.Status.Visible() {
			continue
		}
		pos, ok := ev.Coordinates()
		if !ok {
			continue
		}
		evDay, err := ev.CalendarDate()
		if err != nil {
			continue
		}
		if gap := day.DaysUntil(evDay); gap > NearbyWindowDays || gap < -NearbyWindowDays {
			continue
		}
		d := origin.DistanceKm(pos)
		// a NaN distance fails this comparison and is dropped
		if !(d < NearbyRadiusKm) {
			continue
		}
		out = append(out, AnnotatedEvent{Event: ev, DistanceKm: &d})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return *out[i].DistanceKm < *out[j].DistanceKm
	})
	if len(out) > NearbyLimit {
		out = out[:NearbyLimit]
	}
	return out
}
