package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/PaoComPlanta/rota-da-festa/internal/cache"
	"github.com/PaoComPlanta/rota-da-festa/internal/models"
)

const (
	// PresetNone disables distance ordering.
	PresetNone = "none"
	// PresetGPS marks a location chosen by explicit coordinates.
	PresetGPS = "gps"

	DefaultPresetKey = "braga"
)

var ErrUnknownPreset = errors.New("unknown location preset")

// Preset is a named reference location users can pick.
type Preset struct {
	Key                string `yaml:"key" json:"key" validate:"required"`
	Name               string `yaml:"name" json:"name" validate:"required"`
	models.Coordinates `yaml:",inline"`
}

// DefaultPresets are the towns offered when no presets file is configured.
var DefaultPresets = []Preset{
	{Key: "braga", Name: "Braga", Coordinates: models.Coordinates{Latitude: 41.5503, Longitude: -8.4270}},
	{Key: "porto", Name: "Porto", Coordinates: models.Coordinates{Latitude: 41.1579, Longitude: -8.6291}},
	{Key: "aveiro", Name: "Aveiro", Coordinates: models.Coordinates{Latitude: 40.6405, Longitude: -8.6538}},
	{Key: "guimaraes", Name: "Guimarães", Coordinates: models.Coordinates{Latitude: 41.4425, Longitude: -8.2918}},
	{Key: "agueda", Name: "Águeda", Coordinates: models.Coordinates{Latitude: 40.5744, Longitude: -8.4485}},
	{Key: "ovar", Name: "Ovar", Coordinates: models.Coordinates{Latitude: 40.8601, Longitude: -8.6247}},
	{Key: "feira", Name: "S. M. Feira", Coordinates: models.Coordinates{Latitude: 40.9255, Longitude: -8.5414}},
}

type presetsFile struct {
	Default string   `yaml:"default"`
	Presets []Preset `yaml:"presets"`
}

// LoadPresets reads presets from a YAML file of the form
//
//	default: porto
//	presets:
//	  - {key: porto, name: Porto, lat: 41.1579, lng: -8.6291}
func LoadPresets(path string) ([]Preset, string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read presets: %w", err)
	}
	var f presetsFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, "", fmt.Errorf("parse presets %s: %w", path, err)
	}
	if len(f.Presets) == 0 {
		return nil, "", fmt.Errorf("presets file %s has no presets", path)
	}
	for i := range f.Presets {
		f.Presets[i].Key = strings.ToLower(strings.TrimSpace(f.Presets[i].Key))
		if err := models.Validate.Struct(f.Presets[i]); err != nil {
			return nil, "", fmt.Errorf("preset %d: %w", i, err)
		}
	}
	return f.Presets, strings.ToLower(strings.TrimSpace(f.Default)), nil
}

// LocationChoice is what a session remembers as its reference location.
type LocationChoice struct {
	Preset      string              `json:"preset"`
	Coordinates *models.Coordinates `json:"coordinates,omitempty"`
}

type LocationService struct {
	presets    []Preset
	byKey      map[string]Preset
	defaultKey string
	local      cache.Store
	logger     *slog.Logger
}

func NewLocationService(presets []Preset, defaultKey string, local cache.Store, logger *slog.Logger) *LocationService {
	if len(presets) == 0 {
		presets = DefaultPresets
	}
	if logger == nil {
		logger = slog.Default()
	}
	byKey := make(map[string]Preset, len(presets))
	for _, p := range presets {
		byKey[p.Key] = p
	}
	if _, ok := byKey[defaultKey]; !ok && defaultKey != PresetNone {
		defaultKey = presets[0].Key
	}
	return &LocationService{
		presets:    presets,
		byKey:      byKey,
		defaultKey: defaultKey,
		local:      local,
		logger:     logger,
	}
}

func (ls *LocationService) Presets() []Preset {
	return append([]Preset(nil), ls.presets...)
}

func (ls *LocationService) DefaultKey() string {
	return ls.defaultKey
}

// Resolve turns a preset key into coordinates. PresetNone resolves to nil.
func (ls *LocationService) Resolve(key string) (*models.Coordinates, error) {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == PresetNone {
		return nil, nil
	}
	p, ok := ls.byKey[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, key)
	}
	c := p.Coordinates
	return &c, nil
}

func locationKey(session string) string {
	return "location:" + session
}

// Choose validates and remembers a choice for the session. It returns the
// coordinates now in effect, nil when distance ordering is off.
func (ls *LocationService) Choose(session string, choice LocationChoice) (*models.Coordinates, error) {
	choice.Preset = strings.ToLower(strings.TrimSpace(choice.Preset))

	var ref *models.Coordinates
	switch {
	case choice.Coordinates != nil:
		if err := models.Validate.Struct(choice.Coordinates); err != nil {
			return nil, fmt.Errorf("invalid coordinates: %w", err)
		}
		choice.Preset = PresetGPS
		c := *choice.Coordinates
		ref = &c
	default:
		r, err := ls.Resolve(choice.Preset)
		if err != nil {
			return nil, err
		}
		choice.Coordinates = nil
		ref = r
	}

	if session != "" {
		raw, err := json.Marshal(choice)
		if err == nil {
			err = ls.local.Put(locationKey(session), raw)
		}
		if err != nil {
			ls.logger.Warn("Failed to persist location choice", "session", session, "error", err)
		}
	}
	return ref, nil
}

// Current returns the session's remembered choice, or the default preset.
func (ls *LocationService) Current(session string) LocationChoice {
	fallback := LocationChoice{Preset: ls.defaultKey}
	if session == "" {
		return fallback
	}
	raw, err := ls.local.Get(locationKey(session))
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			ls.logger.Warn("Failed to read location choice", "session", session, "error", err)
		}
		return fallback
	}
	var choice LocationChoice
	if err := json.Unmarshal(raw, &choice); err != nil {
		return fallback
	}
	return choice
}

// Reference resolves the session's current choice to coordinates.
func (ls *LocationService) Reference(session string) *models.Coordinates {
	choice := ls.Current(session)
	if choice.Coordinates != nil {
		c := *choice.Coordinates
		return &c
	}
	ref, err := ls.Resolve(choice.Preset)
	if err != nil {
		ref, _ = ls.Resolve(ls.defaultKey)
	}
	return ref
}
