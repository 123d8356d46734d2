package models

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const FavouriteColName = "favourites"

// FavouritesStore persists the favourite events of an authenticated user.
// Add and remove are idempotent per (user, event) pair. accessToken is the
// caller's session token, for backends that enforce row level security.
type FavouritesStore interface {
	ListFavourites(ctx context.Context, userID uuid.UUID, accessToken string) ([]int64, error)
	AddFavourite(ctx context.Context, userID uuid.UUID, accessToken string, eventID int64) error
	RemoveFavourite(ctx context.Context, userID uuid.UUID, accessToken string, eventID int64) error
}

type FavouriteItem struct {
	EventID int64     `bson:"event_id" json:"event_id"`
	AddedAt time.Time `bson:"added_at" json:"added_at"`
}

// Favourite is the per-user document: one entry in Items per favourite event,
// keyed by the decimal event id.
type Favourite struct {
	ID        primitive.ObjectID       `bson:"_id,omitempty" json:"id"`
	UserID    string                   `bson:"user_id" json:"user_id" validate:"required,uuid"`
	Items     map[string]FavouriteItem `bson:"items" json:"items"`
	CreatedAt time.Time                `bson:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt time.Time                `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// EventIDs returns the favourite ids in ascending order.
func (f *Favourite) EventIDs() []int64 {
	ids := make([]int64, 0, len(f.Items))
	for _, item := range f.Items {
		ids = append(ids, item.EventID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func itemKey(eventID int64) string {
	return "items." + strconv.FormatInt(eventID, 10)
}

func (mdb *MongodbRepo) AddFavourite(ctx context.Context, userID uuid.UUID, _ string, eventID int64) error {
	col, err := mdb.GetCollection(ctx, FavouriteColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}
	now := time.Now()
	filter := bson.M{"user_id": userID.String()}

	update := bson.M{
		"$set": bson.M{
			"updated_at": now,
			itemKey(eventID): FavouriteItem{
				EventID: eventID,
				AddedAt: now,
			},
		},
		"$setOnInsert": bson.M{
			"user_id":    userID.String(),
			"created_at": now,
		},
	}

	if _, err := col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("error upserting favourite: %w", err)
	}
	return nil
}

func (mdb *MongodbRepo) RemoveFavourite(ctx context.Context, userID uuid.UUID, _ string, eventID int64) error {
	col, err := mdb.GetCollection(ctx, FavouriteColName)
	if err != nil {
		return fmt.Errorf("error getting collection: %w", err)
	}

	filter := bson.M{"user_id": userID.String()}
	update := bson.M{
		"$unset": bson.M{itemKey(eventID): ""},
		"$set":   bson.M{"updated_at": time.Now()},
	}

	if _, err := col.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("error removing favourite: %w", err)
	}
	return nil
}

func (mdb *MongodbRepo) ListFavourites(ctx context.Context, userID uuid.UUID, _ string) ([]int64, error) {
	col, err := mdb.GetCollection(ctx, FavouriteColName)
	if err != nil {
		return nil, fmt.Errorf("error getting collection: %w", err)
	}

	var fav Favourite
	err = col.FindOne(ctx, bson.M{"user_id": userID.String()}).Decode(&fav)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return []int64{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error finding favourites: %w", err)
	}
	return fav.EventIDs(), nil
}
