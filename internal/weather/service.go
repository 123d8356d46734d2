// Package weather enriches events with a daily forecast.
package weather

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/PaoComPlanta/rota-da-festa/internal/models"
)

// HorizonDays is how far ahead forecasts are requested.
const HorizonDays = 14

// Forecast is the enrichment attached to an event. Available is false when
// no forecast could be obtained; the other fields are then empty.
type Forecast struct {
	Available   bool   `json:"available"`
	TempMax     int    `json:"temp_max,omitempty"`
	TempMin     int    `json:"temp_min,omitempty"`
	Code        int    `json:"code,omitempty"`
	Icon        string `json:"icon,omitempty"`
	Description string `json:"description,omitempty"`
}

// Recorder counts lookups by outcome.
type Recorder interface {
	WeatherRequest(outcome string)
}

type cacheEntry struct {
	daily   Daily
	expires time.Time
}

// Service wraps a Provider with the forecast window and a TTL cache.
type Service struct {
	provider Provider
	ttl      time.Duration
	recorder Recorder
	logger   *slog.Logger

	mu      sync.RWMutex
	entries map[string]cacheEntry
}

func NewService(provider Provider, ttl time.Duration, recorder Recorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		provider: provider,
		ttl:      ttl,
		recorder: recorder,
		logger:   logger,
		entries:  make(map[string]cacheEntry),
	}
}

// ForEvent returns the forecast for ev when it has coordinates and falls
// within HorizonDays of now. It never fails.
func (s *Service) ForEvent(ctx context.Context, ev models.Event, now time.Time) Forecast {
	pos, ok := ev.Coordinates()
	if !ok {
		s.record("skipped")
		return Forecast{}
	}
	day, err := ev.CalendarDate()
	if err != nil {
		s.record("skipped")
		return Forecast{}
	}
	ahead := models.DateOf(now).DaysUntil(day)
	if ahead < 0 || ahead > HorizonDays {
		s.record("skipped")
		return Forecast{}
	}

	key := fmt.Sprintf("%.4f,%.4f,%s", pos.Latitude, pos.Longitude, day)
	if d, ok := s.cached(key, now); ok {
		s.record("hit")
		return toForecast(d)
	}

	d, err := s.provider.Daily(ctx, pos, day)
	if err != nil {
		s.record("error")
		s.logger.Warn("Weather lookup failed", "event_id", ev.ID, "date", day.String(), "error", err)
		return Forecast{}
	}
	s.record("miss")

	s.store(key, d, now)

	return toForecast(d)
}

func (s *Service) cached(key string, now time.Time) (Daily, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[key]
	if !ok || !now.Before(e.expires) {
		return Daily{}, false
	}
	return e.daily, true
}

// store adds an entry and drops every expired one.
func (s *Service) store(key string, d Daily, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, e := range s.entries {
		if !now.Before(e.expires) {
			delete(s.entries, k)
		}
	}
	s.entries[key] = cacheEntry{daily: d, expires: now.Add(s.ttl)}
}

func (s *Service) record(outcome string) {
	if s.recorder != nil {
		s.recorder.WeatherRequest(outcome)
	}
}

func toForecast(d Daily) Forecast {
	icon, desc := Describe(d.Code)
	return Forecast{
		Available:   true,
		TempMax:     int(math.Round(d.TempMax)),
		TempMin:     int(math.Round(d.TempMin)),
		Code:        d.Code,
		Icon:        icon,
		Description: desc,
	}
}
