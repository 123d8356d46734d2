package models

import (
	"fmt"
	"strings"
	"time"
)

// EventKind is the event type stored in the "tipo" column.
type EventKind string

const (
	KindSports         EventKind = "Futebol"
	KindFestivity      EventKind = "Festa/Romaria"
	KindCultureLeisure EventKind = "Cultura/Lazer"
)

// Icon returns the map marker glyph for the kind.
func (k EventKind) Icon() string {
	if k == KindSports {
		return "⚽"
	}
	return "🎉"
}

// AgeBracket is the competition level ("escalao") of a football fixture.
type AgeBracket string

const (
	AgeSeniors   AgeBracket = "Seniores"
	AgeU23       AgeBracket = "Sub-23"
	AgeU19       AgeBracket = "Sub-19"
	AgeU17       AgeBracket = "Sub-17"
	AgeU15       AgeBracket = "Sub-15"
	AgeU13       AgeBracket = "Sub-13"
	AgeBenjamins AgeBracket = "Benjamins"
	AgeTraquinas AgeBracket = "Traquinas"
)

var AgeBrackets = []AgeBracket{AgeSeniors, AgeU23, AgeU19, AgeU17, AgeU15, AgeU13, AgeBenjamins, AgeTraquinas}

type EventStatus string

const (
	StatusPendingReview EventStatus = "pendente"
	StatusApproved      EventStatus = "aprovado"
	StatusPostponed     EventStatus = "adiado"
	StatusRejected      EventStatus = "rejeitado"
)

// Visible reports whether events with this status may be shown to users.
func (s EventStatus) Visible() bool {
	return s == StatusApproved || s == StatusPostponed
}

// Event mirrors a row of the "eventos" table.
type Event struct {
	ID           int64       `json:"id"`
	Name         string      `json:"nome" validate:"required"`
	Kind         EventKind   `json:"tipo"`
	Category     string      `json:"categoria,omitempty"`
	AgeBracket   AgeBracket  `json:"escalao,omitempty"`
	HomeTeam     string      `json:"equipa_casa,omitempty"`
	AwayTeam     string      `json:"equipa_fora,omitempty"`
	HomeTeamURL  string      `json:"url_equipa_casa,omitempty"`
	AwayTeamURL  string      `json:"url_equipa_fora,omitempty"`
	StandingsURL string      `json:"url_classificacao,omitempty"`
	Date         string      `json:"data"`
	Time         string      `json:"hora,omitempty"`
	Location     string      `json:"local"`
	Latitude     *float64    `json:"latitude"`
	Longitude    *float64    `json:"longitude"`
	Price        string      `json:"preco,omitempty"`
	Description  string      `json:"descricao,omitempty"`
	MapsURL      string      `json:"url_maps,omitempty"`
	Status       EventStatus `json:"status"`
}

// Coordinates returns the event position, or false when either axis is unset.
func (e Event) Coordinates() (Coordinates, bool) {
	if e.Latitude == nil || e.Longitude == nil {
		return Coordinates{}, false
	}
	return Coordinates{Latitude: *e.Latitude, Longitude: *e.Longitude}, true
}

// CalendarDate parses the event date.
func (e Event) CalendarDate() (CalendarDate, error) {
	return ParseDate(e.Date)
}

// Clock parses the event time; an empty time is midnight.
func (e Event) Clock() (ClockTime, error) {
	return ParseClock(e.Time)
}

// Start resolves the wall-clock start of the event in loc.
func (e Event) Start(loc *time.Location) (time.Time, error) {
	d, err := e.CalendarDate()
	if err != nil {
		return time.Time{}, err
	}
	c, err := e.Clock()
	if err != nil {
		return time.Time{}, err
	}
	return d.At(c, loc), nil
}

// ShareText is the one-line summary used when sharing an event.
func (e Event) ShareText() string {
	clock, err := e.Clock()
	hora := strings.TrimSpace(e.Time)
	if err == nil {
		hora = clock.String()
	}
	return fmt.Sprintf("%s — %s às %s em %s", e.Name, e.Date, hora, e.Location)
}
