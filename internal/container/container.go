package container

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/supabase-community/supabase-go"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/PaoComPlanta/rota-da-festa/internal/cache"
	"github.com/PaoComPlanta/rota-da-festa/internal/config"
	"github.com/PaoComPlanta/rota-da-festa/internal/helpers"
	"github.com/PaoComPlanta/rota-da-festa/internal/metrics"
	"github.com/PaoComPlanta/rota-da-festa/internal/models"
	"github.com/PaoComPlanta/rota-da-festa/internal/services"
	"github.com/PaoComPlanta/rota-da-festa/internal/weather"
)

// Container holds all application dependencies
type Container struct {
	Logger *slog.Logger
	Config *config.Config

	// Database clients
	SupabaseClient *supabase.Client
	MongoDBClient  *mongo.Client

	Metrics        *metrics.Metrics
	TokenValidator *helpers.TokenValidator

	EventService      *services.EventService
	FavouritesService *services.FavouriteService
	LocationService   *services.LocationService
	AuthService       *services.AuthService

	// Now is the service clock in the configured timezone.
	Now func() time.Time
}

// NewContainer wires stores and services from the configuration. The Mongo
// client may be nil unless the mongo favourites backend is selected.
func NewContainer(
	cfg *config.Config,
	logger *slog.Logger,
	supabaseClient *supabase.Client,
	mongoDBClient *mongo.Client,
) (*Container, error) {
	supa := models.SupabaseNewRepo(supabaseClient, cfg.SupabaseURL, cfg.SupabaseAnonKey)
	m := metrics.New(logger)

	local, err := localCache(cfg)
	if err != nil {
		return nil, err
	}

	var remote models.FavouritesStore = supa
	if cfg.UsesMongo() {
		if mongoDBClient == nil {
			return nil, fmt.Errorf("mongo favourites backend selected without a MongoDB client")
		}
		remote = models.MongodbNewRepo(mongoDBClient, models.DBName)
	}

	var events models.EventStore = supa
	if cfg.EventsSource == config.SourceFile {
		events = models.NewFileEventStore(cfg.EventsFile)
	}

	presets, defaultPreset := services.DefaultPresets, cfg.DefaultPreset
	if cfg.LocationPresetsFile != "" {
		loaded, def, err := services.LoadPresets(cfg.LocationPresetsFile)
		if err != nil {
			return nil, err
		}
		presets = loaded
		if def != "" {
			defaultPreset = def
		}
	}

	provider := weather.NewOpenMeteo(cfg.WeatherBaseURL, cfg.WeatherTimeout, cfg.Timezone)
	weatherService := weather.NewService(provider, cfg.WeatherCacheTTL, m, logger)

	favouriteService := services.NewFavouriteService(local, remote, m, logger, cfg.PropagationTimeout)
	locationService := services.NewLocationService(presets, defaultPreset, local, logger)
	eventService := services.NewEventService(events, weatherService, favouriteService, m, logger)
	authService := services.NewAuthService(supa, favouriteService, logger)

	validator, err := tokenValidator(cfg)
	if err != nil {
		// anonymous browsing still works
		logger.Warn("Token validation disabled", "error", err)
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	return &Container{
		Logger:            logger,
		Config:            cfg,
		SupabaseClient:    supabaseClient,
		MongoDBClient:     mongoDBClient,
		Metrics:           m,
		TokenValidator:    validator,
		EventService:      eventService,
		FavouritesService: favouriteService,
		LocationService:   locationService,
		AuthService:       authService,
		Now:               func() time.Time { return time.Now().In(loc) },
	}, nil
}

func localCache(cfg *config.Config) (cache.Store, error) {
	if cfg.CacheDir == "" {
		return cache.NewMemoryStore(), nil
	}
	store, err := cache.NewFileStore(cfg.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("open cache dir: %w", err)
	}
	return store, nil
}

func tokenValidator(cfg *config.Config) (*helpers.TokenValidator, error) {
	if cfg.SupabaseJWTSecret != "" {
		return helpers.NewHMACValidator(cfg.SupabaseJWTSecret)
	}
	return helpers.NewJWKSValidator(cfg.SupabaseURL)
}

// Close waits for pending favourite writes and releases background
// resources. Database clients are closed by their owner.
func (c *Container) Close() {
	if c.FavouritesService != nil {
		c.FavouritesService.Wait()
	}
	if c.TokenValidator != nil {
		c.TokenValidator.Close()
	}
}
