package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/PaoComPlanta/rota-da-festa/internal/calendar"
	"github.com/PaoComPlanta/rota-da-festa/internal/countdown"
	"github.com/PaoComPlanta/rota-da-festa/internal/discovery"
	"github.com/PaoComPlanta/rota-da-festa/internal/helpers"
	"github.com/PaoComPlanta/rota-da-festa/internal/models"
	"github.com/PaoComPlanta/rota-da-festa/internal/weather"
)

var (
	ErrEventsNotLoaded = errors.New("events have not been loaded yet")
	ErrEventNotFound   = errors.New("event not found")
)

const DefaultRefreshSpec = "@every 5m"

// RefreshRecorder observes snapshot reloads.
type RefreshRecorder interface {
	EventsRefreshed(count int, err error)
}

// Viewer is the per-request context of whoever is browsing.
type Viewer struct {
	Session   string
	Reference *models.Coordinates
	Now       time.Time
}

// Links are the outbound URLs shown with an event.
type Links struct {
	Directions string `json:"directions,omitempty"`
	Maps       string `json:"maps,omitempty"`
	HomeTeam   string `json:"home_team,omitempty"`
	AwayTeam   string `json:"away_team,omitempty"`
	Standings  string `json:"standings,omitempty"`
}

// EventDetail is everything shown for one selected event.
type EventDetail struct {
	Event       models.Event               `json:"event"`
	DistanceKm  *float64                   `json:"distancia_km,omitempty"`
	Countdown   countdown.Countdown        `json:"countdown"`
	Weekday     string                     `json:"weekday,omitempty"`
	Weather     weather.Forecast           `json:"weather"`
	Nearby      []discovery.AnnotatedEvent `json:"nearby"`
	Links       Links                      `json:"links"`
	ShareText   string                     `json:"share_text"`
	IsFavourite bool                       `json:"is_favourite"`
}

// EventService serves discovery queries from an in-memory snapshot of the
// event store.
type EventService struct {
	store      models.EventStore
	weather    *weather.Service
	favourites *FavouriteService
	recorder   RefreshRecorder
	logger     *slog.Logger

	mu       sync.RWMutex
	events   []models.Event
	loaded   bool
	loadedAt time.Time
}

func NewEventService(store models.EventStore, weatherSvc *weather.Service, favourites *FavouriteService, recorder RefreshRecorder, logger *slog.Logger) *EventService {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventService{
		store:      store,
		weather:    weatherSvc,
		favourites: favourites,
		recorder:   recorder,
		logger:     logger,
	}
}

// Refresh replaces the snapshot with the store's current contents. On
// failure the previous snapshot is kept.
func (es *EventService) Refresh(ctx context.Context) error {
	events, err := es.store.ListEvents(ctx)
	if es.recorder != nil {
		es.recorder.EventsRefreshed(len(events), err)
	}
	if err != nil {
		es.logger.Error("Failed to refresh events", "error", err)
		return fmt.Errorf("refresh events: %w", err)
	}

	es.mu.Lock()
	es.events = events
	es.loaded = true
	es.loadedAt = time.Now()
	es.mu.Unlock()

	es.logger.Info("Events refreshed", "count", len(events))
	return nil
}

// StartRefresher reloads the snapshot on the given cron schedule. The
// returned scheduler must be stopped by the caller.
func (es *EventService) StartRefresher(spec string, timeout time.Duration) (*cron.Cron, error) {
	if spec == "" {
		spec = DefaultRefreshSpec
	}
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		_ = es.Refresh(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("invalid refresh schedule %q: %w", spec, err)
	}
	c.Start()
	return c, nil
}

func (es *EventService) snapshot() ([]models.Event, error) {
	es.mu.RLock()
	defer es.mu.RUnlock()
	if !es.loaded {
		return nil, ErrEventsNotLoaded
	}
	return es.events, nil
}

// LoadedAt reports when the snapshot was last replaced.
func (es *EventService) LoadedAt() (time.Time, bool) {
	es.mu.RLock()
	defer es.mu.RUnlock()
	return es.loadedAt, es.loaded
}

func (es *EventService) List(q discovery.Query) ([]discovery.AnnotatedEvent, error) {
	events, err := es.snapshot()
	if err != nil {
		return nil, err
	}
	return discovery.Filter(events, q), nil
}

func (es *EventService) Markers(q discovery.Query) ([]discovery.Marker, error) {
	list, err := es.List(q)
	if err != nil {
		return nil, err
	}
	return discovery.Markers(list), nil
}

// find returns a visible event by id.
func (es *EventService) find(id int64) (models.Event, []models.Event, error) {
	events, err := es.snapshot()
	if err != nil {
		return models.Event{}, nil, err
	}
	for _, ev := range events {
		if ev.ID == id && ev.Status.Visible() {
			return ev, events, nil
		}
	}
	return models.Event{}, nil, fmt.Errorf("%w: %d", ErrEventNotFound, id)
}

func (es *EventService) Detail(ctx context.Context, id int64, viewer Viewer) (*EventDetail, error) {
	ev, events, err := es.find(id)
	if err != nil {
		return nil, err
	}

	detail := &EventDetail{
		Event:     ev,
		Countdown: countdown.ClassifyEvent(ev, viewer.Now),
		Nearby:    discovery.Nearby(ev, events),
		Links:     buildLinks(ev, viewer.Reference),
		ShareText: ev.ShareText(),
	}
	if day, err := ev.CalendarDate(); err == nil {
		detail.Weekday = day.Weekday()
	}
	if pos, ok := ev.Coordinates(); ok && viewer.Reference != nil {
		d := viewer.Reference.DistanceKm(pos)
		detail.DistanceKm = &d
	}
	if es.weather != nil {
		detail.Weather = es.weather.ForEvent(ctx, ev, viewer.Now)
	}
	if es.favourites != nil && viewer.Session != "" {
		detail.IsFavourite = es.favourites.IsFavourite(viewer.Session, ev.ID)
	}
	return detail, nil
}

func buildLinks(ev models.Event, reference *models.Coordinates) Links {
	links := Links{Maps: ev.MapsURL}
	if pos, ok := ev.Coordinates(); ok {
		links.Directions = helpers.Directions(reference, pos)
	}
	if ev.Kind == models.KindSports {
		links.HomeTeam = helpers.TeamLink(ev.HomeTeamURL, ev.HomeTeam)
		links.AwayTeam = helpers.TeamLink(ev.AwayTeamURL, ev.AwayTeam)
		links.Standings = helpers.TeamLink(ev.StandingsURL, ev.Category)
	}
	return links
}

func (es *EventService) Calendar(id int64) (calendar.Payload, error) {
	ev, _, err := es.find(id)
	if err != nil {
		return calendar.Payload{}, err
	}
	return calendar.Export(ev)
}
