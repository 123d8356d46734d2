package models

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var (
	ErrMissingDate = errors.New("date is missing")
	ErrBadDate     = errors.New("malformed date")
	ErrBadClock    = errors.New("malformed time")
)

const dateLayout = "2006-01-02"

// CalendarDate is a civil date with no zone attached.
type CalendarDate struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate accepts YYYY-MM-DD only.
func ParseDate(s string) (CalendarDate, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return CalendarDate{}, ErrMissingDate
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return CalendarDate{}, fmt.Errorf("%w: %q", ErrBadDate, s)
	}
	return CalendarDate{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// DateOf returns the civil date of t in t's own location.
func DateOf(t time.Time) CalendarDate {
	y, m, d := t.Date()
	return CalendarDate{Year: y, Month: m, Day: d}
}

func (d CalendarDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// At combines the date with a clock time in loc.
func (d CalendarDate) At(c ClockTime, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, c.Hour, c.Minute, 0, 0, loc)
}

// Midday anchors the date at 12:00 UTC so day arithmetic never crosses a DST edge.
func (d CalendarDate) Midday() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 12, 0, 0, 0, time.UTC)
}

// DaysUntil is the signed number of calendar days from d to other.
func (d CalendarDate) DaysUntil(other CalendarDate) int {
	return int(math.Round(other.Midday().Sub(d.Midday()).Hours() / 24))
}

// Weekday returns the Portuguese weekday name.
func (d CalendarDate) Weekday() string {
	return weekdaysPT[d.Midday().Weekday()]
}

var weekdaysPT = [...]string{"Domingo", "Segunda", "Terça", "Quarta", "Quinta", "Sexta", "Sábado"}

// ClockTime is a wall-clock hour and minute.
type ClockTime struct {
	Hour   int
	Minute int
}

// ParseClock accepts HH:MM and HH:MM:SS. Empty input is midnight.
func ParseClock(s string) (ClockTime, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return ClockTime{}, nil
	}
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return ClockTime{Hour: t.Hour(), Minute: t.Minute()}, nil
		}
	}
	return ClockTime{}, fmt.Errorf("%w: %q", ErrBadClock, s)
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}
