// Package countdown classifies how far away an event is from a given instant.
package countdown

import (
	"fmt"
	"math"
	"time"

	"github.com/PaoComPlanta/rota-da-festa/internal/models"
)

// Tier is an urgency class, declared in classification order.
type Tier int

const (
	Unparseable Tier = iota
	Past
	InProgress
	StartingSoon
	Today
	Tomorrow
	WithinWeek
	Future
)

var tierNames = [...]string{
	Unparseable:  "unparseable",
	Past:         "past",
	InProgress:   "in_progress",
	StartingSoon: "starting_soon",
	Today:        "today",
	Tomorrow:     "tomorrow",
	WithinWeek:   "within_week",
	Future:       "future",
}

func (t Tier) String() string {
	if t < 0 || int(t) >= len(tierNames) {
		return fmt.Sprintf("tier(%d)", int(t))
	}
	return tierNames[t]
}

func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

const (
	// GraceWindow is how long after its start an event still counts as running.
	GraceWindow = 2 * time.Hour
	soonWindow  = time.Hour
	weekDays    = 7
)

// Countdown is the classification plus the remaining amount at the
// granularity of its tier.
type Countdown struct {
	Tier    Tier   `json:"tier"`
	Minutes int    `json:"minutes,omitempty"`
	Hours   int    `json:"hours,omitempty"`
	Days    int    `json:"days,omitempty"`
	Label   string `json:"label"`
}

// Classify places an event starting at date and clock (wall time in now's
// location) against now. It never fails: bad input yields Unparseable.
func Classify(date, clock string, now time.Time) Countdown {
	day, err := models.ParseDate(date)
	if err != nil {
		return Countdown{Tier: Unparseable, Label: "Data por confirmar"}
	}
	hm, err := models.ParseClock(clock)
	if err != nil {
		return Countdown{Tier: Unparseable, Label: "Data por confirmar"}
	}

	start := day.At(hm, now.Location())
	diff := start.Sub(now)

	switch {
	case diff < -GraceWindow:
		return Countdown{Tier: Past, Label: "Já decorreu"}
	case diff < 0:
		return Countdown{Tier: InProgress, Label: "A decorrer"}
	case diff < soonWindow:
		// partial minutes round up but stay inside the hour
		mins := min(int(math.Ceil(diff.Minutes())), 59)
		if mins == 0 {
			return Countdown{Tier: StartingSoon, Label: "Começa agora"}
		}
		return Countdown{Tier: StartingSoon, Minutes: mins, Label: fmt.Sprintf("Começa em %d min", mins)}
	}

	days := models.DateOf(now).DaysUntil(day)
	switch {
	case days <= 0:
		hours := int(diff / time.Hour)
		if hours == 1 {
			return Countdown{Tier: Today, Hours: 1, Label: "Falta 1 hora"}
		}
		return Countdown{Tier: Today, Hours: hours, Label: fmt.Sprintf("Faltam %d horas", hours)}
	case days == 1:
		return Countdown{Tier: Tomorrow, Days: 1, Label: "Amanhã às " + hm.String()}
	case days <= weekDays:
		return Countdown{Tier: WithinWeek, Days: days, Label: fmt.Sprintf("Faltam %d dias", days)}
	default:
		return Countdown{Tier: Future, Days: days, Label: fmt.Sprintf("Faltam %d dias", days)}
	}
}

// ClassifyEvent is Classify over an event's date and time.
func ClassifyEvent(ev models.Event, now time.Time) Countdown {
	return Classify(ev.Date, ev.Time, now)
}
