package models

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/supabase-community/supabase-go"
)

const sampleRows = `[
  {"id": 1, "nome": "SC Braga vs FC Porto", "tipo": "Futebol", "escalao": "Sub-19",
   "data": "2025-06-10", "hora": "15:00:00", "local": "Braga", "latitude": 41.56, "longitude": -8.43,
   "preco": "5€", "status": "aprovado"},
  {"id": 2, "nome": "Romaria da Senhora", "tipo": "Festa/Romaria",
   "data": "2025-06-12", "local": "Aveiro", "latitude": null, "longitude": null, "status": "adiado"}
]`

func checkSampleRows(t *testing.T, events []Event) {
	t.Helper()
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].AgeBracket != AgeU19 || events[0].Kind != KindSports || events[0].Status != StatusApproved {
		t.Errorf("unexpected first event: %+v", events[0])
	}
	if _, ok := events[0].Coordinates(); !ok {
		t.Error("first event should have coordinates")
	}
	if _, ok := events[1].Coordinates(); ok {
		t.Error("second event should not have coordinates")
	}
	if events[1].Status != StatusPostponed {
		t.Errorf("status = %q, want adiado", events[1].Status)
	}
}

func TestFileEventStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eventos.json")
	if err := os.WriteFile(path, []byte(sampleRows), 0o644); err != nil {
		t.Fatal(err)
	}

	events, err := NewFileEventStore(path).ListEvents(context.Background())
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	checkSampleRows(t, events)
}

func TestFileEventStoreMissingFile(t *testing.T) {
	_, err := NewFileEventStore(filepath.Join(t.TempDir(), "nope.json")).ListEvents(context.Background())
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
}

func TestSupabaseListEvents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/"+EventsTable) {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(sampleRows))
	}))
	defer srv.Close()

	client, err := supabase.NewClient(srv.URL, "anon-key", nil)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	events, err := SupabaseNewRepo(client, srv.URL, "anon-key").ListEvents(context.Background())
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	checkSampleRows(t, events)
}
