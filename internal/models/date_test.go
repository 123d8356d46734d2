package models

import (
	"errors"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    CalendarDate
		wantErr error
	}{
		{"2025-06-10", CalendarDate{2025, time.June, 10}, nil},
		{" 2024-02-29 ", CalendarDate{2024, time.February, 29}, nil},
		{"", CalendarDate{}, ErrMissingDate},
		{"10/06/2025", CalendarDate{}, ErrBadDate},
		{"2025-02-30", CalendarDate{}, ErrBadDate},
		{"2025-6-1", CalendarDate{}, ErrBadDate},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.in)
		if tt.wantErr != nil {
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ParseDate(%q) err = %v, want %v", tt.in, err, tt.wantErr)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDate(%q) unexpected error: %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDate(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in   string
		want ClockTime
		ok   bool
	}{
		{"", ClockTime{}, true},
		{"15:00", ClockTime{15, 0}, true},
		{"09:30:00", ClockTime{9, 30}, true},
		{"25:00", ClockTime{}, false},
		{"tarde", ClockTime{}, false},
	}
	for _, tt := range tests {
		got, err := ParseClock(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ParseClock(%q) err = %v, ok want %v", tt.in, err, tt.ok)
			continue
		}
		if tt.ok && got != tt.want {
			t.Errorf("ParseClock(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestDaysUntilAcrossDST(t *testing.T) {
	// Portugal moves clocks forward on the last Sunday of March
	a := CalendarDate{2025, time.March, 29}
	b := CalendarDate{2025, time.March, 31}
	if d := a.DaysUntil(b); d != 2 {
		t.Errorf("DaysUntil = %d, want 2", d)
	}
	if d := b.DaysUntil(a); d != -2 {
		t.Errorf("DaysUntil = %d, want -2", d)
	}
}

func TestWeekday(t *testing.T) {
	if got := (CalendarDate{2025, time.June, 10}).Weekday(); got != "Terça" {
		t.Errorf("Weekday = %q, want Terça", got)
	}
}

func TestEventStartDefaultsToMidnight(t *testing.T) {
	ev := Event{Date: "2025-06-10"}
	start, err := ev.Start(time.UTC)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if start.Hour() != 0 || start.Minute() != 0 {
		t.Errorf("start = %v, want midnight", start)
	}

	ev.Time = "xx"
	if _, err := ev.Start(time.UTC); !errors.Is(err, ErrBadClock) {
		t.Errorf("expected ErrBadClock, got %v", err)
	}
}

func TestShareText(t *testing.T) {
	ev := Event{Name: "Festa de São João", Date: "2025-06-23", Time: "21:00:00", Location: "Braga"}
	want := "Festa de São João — 2025-06-23 às 21:00 em Braga"
	if got := ev.ShareText(); got != want {
		t.Errorf("ShareText = %q, want %q", got, want)
	}
}
