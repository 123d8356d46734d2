package models

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/google/uuid"
)

type favouriteRow struct {
	UserID  string `json:"user_id"`
	EventID int64  `json:"evento_id"`
}

func (su *SupabaseRepo) ListFavourites(ctx context.Context, userID uuid.UUID, accessToken string) ([]int64, error) {
	client, err := su.GetAuthenticatedClient(accessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create authenticated client: %w", err)
	}

	raw, status, err := client.From(FavouritesTable).
		Select("user_id,evento_id", "", false).
		Eq("user_id", userID.String()).
		Execute()
	if err != nil {
		if status != 0 {
			return nil, fmt.Errorf("postgrest error: status=%d body=%s err=%v", status, string(raw), err)
		}
		return nil, fmt.Errorf("failed to list favourites: %w", err)
	}

	var rows []favouriteRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal favourite rows: %w", err)
	}

	ids := make([]int64, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.EventID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (su *SupabaseRepo) AddFavourite(ctx context.Context, userID uuid.UUID, accessToken string, eventID int64) error {
	client, err := su.GetAuthenticatedClient(accessToken)
	if err != nil {
		return fmt.Errorf("failed to create authenticated client: %w", err)
	}

	row := favouriteRow{UserID: userID.String(), EventID: eventID}
	// upsert on the pair keeps repeated adds harmless
	_, _, err = client.From(FavouritesTable).
		Insert(row, true, "user_id,evento_id", "minimal", "").
		Execute()
	if err != nil {
		return fmt.Errorf("failed to add favourite %d: %w", eventID, err)
	}
	return nil
}

func (su *SupabaseRepo) RemoveFavourite(ctx context.Context, userID uuid.UUID, accessToken string, eventID int64) error {
	client, err := su.GetAuthenticatedClient(accessToken)
	if err != nil {
		return fmt.Errorf("failed to create authenticated client: %w", err)
	}

	_, _, err = client.From(FavouritesTable).
		Delete("minimal", "").
		Eq("user_id", userID.String()).
		Eq("evento_id", strconv.FormatInt(eventID, 10)).
		Execute()
	if err != nil {
		return fmt.Errorf("failed to remove favourite %d: %w", eventID, err)
	}
	return nil
}
