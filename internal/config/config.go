package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
	_ "time/tzdata"
)

const (
	BackendSupabase = "supabase"
	BackendMongo    = "mongo"
	SourceFile      = "file"
)

type Config struct {
	Port              string
	SupabaseURL       string
	SupabaseAnonKey   string
	SupabaseJWTSecret string
	MongoDBURI        string
	MongoDBPassword   string
	Environment       string
	LogLevel          string
	FrontendURL       string

	FavouritesBackend  string
	PropagationTimeout time.Duration

	EventsSource  string
	EventsFile    string
	EventsRefresh string

	CacheDir string
	Timezone string
	Location *time.Location

	WeatherBaseURL  string
	WeatherTimeout  time.Duration
	WeatherCacheTTL time.Duration

	LocationPresetsFile string
	DefaultPreset       string
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:              getEnvWithDefault("PORT", "8080"),
		SupabaseURL:       os.Getenv("SUPABASE_URL"),
		SupabaseAnonKey:   os.Getenv("SUPABASE_URL_ANON_KEY"),
		SupabaseJWTSecret: os.Getenv("SUPABASE_JWT_SECRET"),
		MongoDBURI:        os.Getenv("MONGODB_URI"),
		MongoDBPassword:   os.Getenv("MONGODB_PASSWORD"),
		Environment:       getEnvWithDefault("ENVIRONMENT", "development"),
		LogLevel:          getEnvWithDefault("LOG_LEVEL", "info"),
		FrontendURL:       getEnvWithDefault("FRONTEND_URL", "http://localhost:3000"),

		FavouritesBackend: strings.ToLower(getEnvWithDefault("FAVOURITES_BACKEND", BackendSupabase)),
		EventsSource:      strings.ToLower(getEnvWithDefault("EVENTS_SOURCE", BackendSupabase)),
		EventsFile:        getEnvWithDefault("EVENTS_FILE", "eventos.json"),
		EventsRefresh:     getEnvWithDefault("EVENTS_REFRESH", "@every 5m"),

		CacheDir: os.Getenv("CACHE_DIR"),
		Timezone: getEnvWithDefault("TIMEZONE", "Europe/Lisbon"),

		WeatherBaseURL:      getEnvWithDefault("WEATHER_BASE_URL", "https://api.open-meteo.com"),
		LocationPresetsFile: os.Getenv("LOCATION_PRESETS_FILE"),
		DefaultPreset:       strings.ToLower(getEnvWithDefault("DEFAULT_PRESET", "braga")),
	}

	var err error
	if cfg.PropagationTimeout, err = getDuration("PROPAGATION_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.WeatherTimeout, err = getDuration("WEATHER_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.WeatherCacheTTL, err = getDuration("WEATHER_CACHE_TTL", time.Hour); err != nil {
		return nil, err
	}

	// Validate required fields
	if cfg.SupabaseURL == "" {
		return nil, fmt.Errorf("SUPABASE_URL is required")
	}
	if cfg.SupabaseAnonKey == "" {
		return nil, fmt.Errorf("SUPABASE_URL_ANON_KEY is required")
	}

	switch cfg.FavouritesBackend {
	case BackendSupabase:
	case BackendMongo:
		if cfg.MongoDBURI == "" {
			return nil, fmt.Errorf("MONGODB_URI is required when FAVOURITES_BACKEND=mongo")
		}
	default:
		return nil, fmt.Errorf("FAVOURITES_BACKEND must be %q or %q, got %q", BackendSupabase, BackendMongo, cfg.FavouritesBackend)
	}

	switch cfg.EventsSource {
	case BackendSupabase, SourceFile:
	default:
		return nil, fmt.Errorf("EVENTS_SOURCE must be %q or %q, got %q", BackendSupabase, SourceFile, cfg.EventsSource)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Timezone, err)
	}
	cfg.Location = loc

	return cfg, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) UsesMongo() bool {
	return c.FavouritesBackend == BackendMongo
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
