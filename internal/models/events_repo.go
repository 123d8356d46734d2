package models

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

// EventStore is the read-only source of events.
type EventStore interface {
	ListEvents(ctx context.Context) ([]Event, error)
}

const eventColumns = "id,nome,tipo,categoria,escalao,equipa_casa,equipa_fora,url_equipa_casa,url_equipa_fora,url_classificacao,data,hora,local,latitude,longitude,preco,descricao,url_maps,status"

func (su *SupabaseRepo) ListEvents(ctx context.Context) ([]Event, error) {
	raw, status, err := su.supabaseClient.From(EventsTable).
		Select(eventColumns, "", false).
		Execute()
	if err != nil {
		if status != 0 {
			return nil, fmt.Errorf("postgrest error: status=%d body=%s err=%v", status, string(raw), err)
		}
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	var events []Event
	if err := json.Unmarshal(raw, &events); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event rows: %w", err)
	}
	return events, nil
}

// FileEventStore serves events from a JSON array on disk, in the same
// shape as the "eventos" rows.
type FileEventStore struct {
	path string
}

func NewFileEventStore(path string) *FileEventStore {
	return &FileEventStore{path: path}
}

func (f *FileEventStore) ListEvents(ctx context.Context) ([]Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("read events file: %w", err)
	}
	var events []Event
	if err := json.Unmarshal(b, &events); err != nil {
		return nil, fmt.Errorf("parse events file %s: %w", f.path, err)
	}
	return events, nil
}
