package helpers

import (
	"net/url"
	"strings"

	"github.com/PaoComPlanta/rota-da-festa/internal/models"
)

const (
	zeroZeroSearchURL = "https://www.zerozero.pt/search.php?search="
	mapsDirectionsURL = "https://www.google.com/maps/dir/?api=1"
)

// ZeroZeroSearch is the search page for a team or competition name.
func ZeroZeroSearch(term string) string {
	return zeroZeroSearchURL + url.QueryEscape(term)
}

// TeamLink prefers a stored direct URL and falls back to a search by name.
// It returns "" when both are empty.
func TeamLink(direct, name string) string {
	if d := strings.TrimSpace(direct); d != "" {
		return d
	}
	if n := strings.TrimSpace(name); n != "" {
		return ZeroZeroSearch(n)
	}
	return ""
}

// Directions builds a Google Maps route URL. A nil origin lets Maps use the
// device location.
func Directions(origin *models.Coordinates, dest models.Coordinates) string {
	v := mapsDirectionsURL
	if origin != nil {
		v += "&origin=" + origin.String()
	}
	return v + "&destination=" + dest.String()
}

func StringTrim(s string) string {
	return strings.TrimSpace(s)
}
