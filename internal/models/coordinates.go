package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PaoComPlanta/rota-da-festa/internal/geo"
)

// Coordinates is a decimal-degree position.
type Coordinates struct {
	Latitude  float64 `json:"lat" yaml:"lat" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"lng" yaml:"lng" validate:"gte=-180,lte=180"`
}

// DistanceKm is the great-circle distance from c to o.
func (c Coordinates) DistanceKm(o Coordinates) float64 {
	return geo.DistanceKm(c.Latitude, c.Longitude, o.Latitude, o.Longitude)
}

func (c Coordinates) String() string {
	return strconv.FormatFloat(c.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(c.Longitude, 'f', -1, 64)
}

// ParseCoordinates reads "lat,lng" or a WKT point "POINT(lng lat)".
func ParseCoordinates(s string) (Coordinates, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Coordinates{}, fmt.Errorf("empty coordinates")
	}

	var c Coordinates
	var lon, lat float64
	if _, err := fmt.Sscanf(s, "POINT(%f %f)", &lon, &lat); err == nil {
		c = Coordinates{Latitude: lat, Longitude: lon}
	} else if _, err := fmt.Sscanf(s, "SRID=4326;POINT(%f %f)", &lon, &lat); err == nil {
		c = Coordinates{Latitude: lat, Longitude: lon}
	} else {
		parts := strings.Split(s, ",")
		if len(parts) != 2 {
			return Coordinates{}, fmt.Errorf("failed to parse coordinates from: %q", s)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return Coordinates{}, fmt.Errorf("invalid latitude %q: %w", parts[0], err)
		}
		lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return Coordinates{}, fmt.Errorf("invalid longitude %q: %w", parts[1], err)
		}
		c = Coordinates{Latitude: lat, Longitude: lng}
	}

	if err := Validate.Struct(c); err != nil {
		return Coordinates{}, fmt.Errorf("coordinates out of range: %w", err)
	}
	return c, nil
}
