package weather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/PaoComPlanta/rota-da-festa/internal/models"
)

func ptr(f float64) *float64 { return &f }

type countingRecorder struct {
	mu       sync.Mutex
	outcomes map[string]int
}

func (c *countingRecorder) WeatherRequest(outcome string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.outcomes == nil {
		c.outcomes = map[string]int{}
	}
	c.outcomes[outcome]++
}

type stubProvider struct {
	calls int
	daily Daily
	err   error
}

func (s *stubProvider) Daily(ctx context.Context, pos models.Coordinates, day models.CalendarDate) (Daily, error) {
	s.calls++
	return s.daily, s.err
}

var now = time.Date(2025, time.June, 10, 14, 30, 0, 0, time.UTC)

func placed(date string) models.Event {
	return models.Event{ID: 1, Date: date, Latitude: ptr(41.55), Longitude: ptr(-8.42)}
}

func TestOpenMeteoDaily(t *testing.T) {
	var query map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/forecast" {
			http.NotFound(w, r)
			return
		}
		query = map[string]string{}
		for k := range r.URL.Query() {
			query[k] = r.URL.Query().Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"daily":{"time":["2025-06-12"],"temperature_2m_max":[24.6],"temperature_2m_min":[13.4],"weathercode":[61]}}`))
	}))
	defer srv.Close()

	om := NewOpenMeteo(srv.URL, 2*time.Second, "Europe/Lisbon")
	d, err := om.Daily(context.Background(), models.Coordinates{Latitude: 41.55, Longitude: -8.42}, models.CalendarDate{Year: 2025, Month: time.June, Day: 12})
	if err != nil {
		t.Fatalf("Daily: %v", err)
	}
	if d.TempMax != 24.6 || d.TempMin != 13.4 || d.Code != 61 {
		t.Errorf("unexpected forecast %+v", d)
	}
	if query["start_date"] != "2025-06-12" || query["end_date"] != "2025-06-12" {
		t.Errorf("dates not forwarded: %v", query)
	}
	if query["timezone"] != "Europe/Lisbon" || query["latitude"] != "41.55" {
		t.Errorf("unexpected query: %v", query)
	}
}

func TestOpenMeteoMissingData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"daily":{"time":["2025-06-12"],"temperature_2m_max":[null],"temperature_2m_min":[null],"weathercode":[null]}}`))
	}))
	defer srv.Close()

	_, err := NewOpenMeteo(srv.URL, time.Second, "").Daily(context.Background(), models.Coordinates{}, models.CalendarDate{Year: 2025, Month: 6, Day: 12})
	if !errors.Is(err, ErrNoData) {
		t.Errorf("err = %v, want ErrNoData", err)
	}
}

func TestOpenMeteoBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadRequest)
	}))
	defer srv.Close()

	if _, err := NewOpenMeteo(srv.URL, time.Second, "").Daily(context.Background(), models.Coordinates{}, models.CalendarDate{Year: 2025, Month: 6, Day: 12}); err == nil {
		t.Error("expected an error for a 400 response")
	}
}

func TestForEventRoundsAndDescribes(t *testing.T) {
	stub := &stubProvider{daily: Daily{TempMax: 24.6, TempMin: 13.4, Code: 3}}
	svc := NewService(stub, time.Hour, nil, nil)

	f := svc.ForEvent(context.Background(), placed("2025-06-12"), now)
	want := Forecast{Available: true, TempMax: 25, TempMin: 13, Code: 3, Icon: "☁️", Description: "Nublado"}
	if f != want {
		t.Errorf("forecast = %+v, want %+v", f, want)
	}
}

func TestForEventWindow(t *testing.T) {
	stub := &stubProvider{daily: Daily{Code: 0}}
	rec := &countingRecorder{}
	svc := NewService(stub, time.Hour, rec, nil)

	tests := []struct {
		date      string
		available bool
	}{
		{"2025-06-09", false},
		{"2025-06-10", true},
		{"2025-06-24", true},
		{"2025-06-25", false},
		{"sem data", false},
	}
	for _, tt := range tests {
		if got := svc.ForEvent(context.Background(), placed(tt.date), now); got.Available != tt.available {
			t.Errorf("%s: available = %v, want %v", tt.date, got.Available, tt.available)
		}
	}
	if stub.calls != 2 {
		t.Errorf("provider calls = %d, want 2", stub.calls)
	}
	if rec.outcomes["skipped"] != 3 {
		t.Errorf("skipped = %d, want 3", rec.outcomes["skipped"])
	}
}

func TestForEventWithoutCoordinates(t *testing.T) {
	stub := &stubProvider{}
	svc := NewService(stub, time.Hour, nil, nil)
	if f := svc.ForEvent(context.Background(), models.Event{Date: "2025-06-11"}, now); f.Available {
		t.Error("forecast should be unavailable without coordinates")
	}
	if stub.calls != 0 {
		t.Error("provider should not be called")
	}
}

func TestForEventProviderError(t *testing.T) {
	svc := NewService(&stubProvider{err: errors.New("timeout")}, time.Hour, nil, nil)
	if f := svc.ForEvent(context.Background(), placed("2025-06-11"), now); f != (Forecast{}) {
		t.Errorf("expected unavailable forecast, got %+v", f)
	}
}

func TestForEventCaches(t *testing.T) {
	stub := &stubProvider{daily: Daily{Code: 1}}
	rec := &countingRecorder{}
	svc := NewService(stub, time.Hour, rec, nil)

	svc.ForEvent(context.Background(), placed("2025-06-11"), now)
	svc.ForEvent(context.Background(), placed("2025-06-11"), now.Add(30*time.Minute))
	if stub.calls != 1 {
		t.Errorf("calls within ttl = %d, want 1", stub.calls)
	}
	svc.ForEvent(context.Background(), placed("2025-06-11"), now.Add(2*time.Hour))
	if stub.calls != 2 {
		t.Errorf("calls after ttl = %d, want 2", stub.calls)
	}
	if rec.outcomes["hit"] != 1 || rec.outcomes["miss"] != 2 {
		t.Errorf("outcomes = %v", rec.outcomes)
	}
}

func TestForEventDropsExpiredEntries(t *testing.T) {
	svc := NewService(&stubProvider{daily: Daily{Code: 1}}, time.Hour, nil, nil)

	for _, date := range []string{"2025-06-11", "2025-06-12", "2025-06-13"} {
		svc.ForEvent(context.Background(), placed(date), now)
	}
	if len(svc.entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(svc.entries))
	}

	svc.ForEvent(context.Background(), placed("2025-06-14"), now.Add(2*time.Hour))
	if len(svc.entries) != 1 {
		t.Errorf("entries after ttl = %d, want 1", len(svc.entries))
	}
}

func TestDescribeUnknown(t *testing.T) {
	if _, desc := Describe(42); desc != "Desconhecido" {
		t.Errorf("desc = %q", desc)
	}
	if icon, desc := Describe(95); desc != "Trovoada" || icon != "⛈" {
		t.Errorf("95 = %q %q", icon, desc)
	}
}
