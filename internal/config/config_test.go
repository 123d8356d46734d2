package config

import (
	"log/slog"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Setenv("SUPABASE_URL", "https://abc.supabase.co")
	t.Setenv("SUPABASE_URL_ANON_KEY", "anon")
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequired(t)
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != "8080" || cfg.EventsSource != BackendSupabase || cfg.FavouritesBackend != BackendSupabase {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.PropagationTimeout != 10*time.Second || cfg.WeatherCacheTTL != time.Hour {
		t.Errorf("durations = %v %v", cfg.PropagationTimeout, cfg.WeatherCacheTTL)
	}
	if cfg.Location == nil || cfg.Location.String() != "Europe/Lisbon" {
		t.Errorf("location = %v", cfg.Location)
	}
	if cfg.UsesMongo() {
		t.Error("mongo enabled by default")
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing supabase url", map[string]string{"SUPABASE_URL": ""}},
		{"mongo without uri", map[string]string{"FAVOURITES_BACKEND": "mongo"}},
		{"unknown backend", map[string]string{"FAVOURITES_BACKEND": "redis"}},
		{"unknown source", map[string]string{"EVENTS_SOURCE": "csv"}},
		{"bad duration", map[string]string{"WEATHER_TIMEOUT": "soon"}},
		{"bad timezone", map[string]string{"TIMEZONE": "Mars/Olympus"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := LoadConfig(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLoadConfigMongo(t *testing.T) {
	setRequired(t)
	t.Setenv("FAVOURITES_BACKEND", "Mongo")
	t.Setenv("MONGODB_URI", "mongodb+srv://u:<password>@cluster")
	t.Setenv("PROPAGATION_TIMEOUT", "3s")
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.UsesMongo() || cfg.PropagationTimeout != 3*time.Second {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestSlogLevel(t *testing.T) {
	for in, want := range map[string]slog.Level{
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
		"":      slog.LevelInfo,
		"loud":  slog.LevelInfo,
	} {
		if got := (&Config{LogLevel: in}).SlogLevel(); got != want {
			t.Errorf("SlogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
