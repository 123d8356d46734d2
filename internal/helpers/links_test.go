package helpers

import (
	"testing"

	"github.com/PaoComPlanta/rota-da-festa/internal/models"
)

func TestTeamLink(t *testing.T) {
	if got := TeamLink("https://www.zerozero.pt/equipa/sc-braga/13", "SC Braga"); got != "https://www.zerozero.pt/equipa/sc-braga/13" {
		t.Errorf("direct link not preferred: %s", got)
	}
	if got := TeamLink("  ", "SC Braga B"); got != "https://www.zerozero.pt/search.php?search=SC+Braga+B" {
		t.Errorf("search fallback = %s", got)
	}
	if got := TeamLink("", ""); got != "" {
		t.Errorf("expected empty link, got %s", got)
	}
}

func TestDirections(t *testing.T) {
	dest := models.Coordinates{Latitude: 41.5503, Longitude: -8.427}
	if got := Directions(nil, dest); got != "https://www.google.com/maps/dir/?api=1&destination=41.5503,-8.427" {
		t.Errorf("without origin = %s", got)
	}
	origin := &models.Coordinates{Latitude: 41.1579, Longitude: -8.6291}
	want := "https://www.google.com/maps/dir/?api=1&origin=41.1579,-8.6291&destination=41.5503,-8.427"
	if got := Directions(origin, dest); got != want {
		t.Errorf("with origin = %s", got)
	}
}
