package discovery

import "github.com/PaoComPlanta/rota-da-festa/internal/models"

// Marker is the map pin for one event.
type Marker struct {
	ID         int64              `json:"id"`
	Name       string             `json:"nome"`
	Kind       models.EventKind   `json:"tipo"`
	Icon       string             `json:"icone"`
	Position   models.Coordinates `json:"posicao"`
	Date       string             `json:"data"`
	Time       string             `json:"hora,omitempty"`
	Location   string             `json:"local"`
	Price      string             `json:"preco,omitempty"`
	Postponed  bool               `json:"adiado"`
	DistanceKm *float64           `json:"distancia_km,omitempty"`
}

// Markers keeps the order of events and skips the ones that cannot be placed.
func Markers(events []AnnotatedEvent) []Marker {
	out := make([]Marker, 0, len(events))
	for _, ev := range events {
		pos, ok := ev.Coordinates()
		if !ok {
			continue
		}
		out = append(out, Marker{
			ID:         ev.ID,
			Name:       ev.Name,
			Kind:       ev.Kind,
			Icon:       ev.Kind.Icon(),
			Position:   pos,
			Date:       ev.Date,
			Time:       ev.Time,
			Location:   ev.Location,
			Price:      ev.Price,
			Postponed:  ev.Status == models.StatusPostponed,
			DistanceKm: ev.DistanceKm,
		})
	}
	return out
}
