package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	bookingerrors "clinicore/internal/booking/errors"
	"clinicore/pkg/config"
	"clinicore/pkg/model"
)

const (
	SlotCollection = "Slots"
)

// SlotStore is the reservation engine's view of the slot catalog: reads plus
// the booked_count adjustment that only runs inside a confirm or cancel
// transaction.
type SlotStore interface {
	FindByID(ctx context.Context, id string) (*model.Slot, error)
	IncrementBooked(ctx context.Context, id string, delta int) error
	ListAvailability(ctx context.Context, hospitalID, date string, now time.Time) ([]*model.SlotAvailability, error)
}

type mongoSlotStore struct {
	cfg        *config.Config
	collection *mongo.Collection
	locks      *mongo.Collection
}

func NewMongoSlotStore(cfg *config.Config) SlotStore {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSlotStore{
		cfg:        cfg,
		collection: db.Collection(SlotCollection),
		locks:      db.Collection(LockCollection),
	}
}

func (r *mongoSlotStore) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoSlotStore) FindByID(ctx context.Context, id string) (*model.Slot, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", bookingerrors.ErrInvalidID, id)
	}

	var slot model.Slot
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&slot)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingerrors.ErrSlotNotFound
		}
		return nil, fmt.Errorf("failed to find slot: %w", err)
	}

	return &slot, nil
}

func (r *mongoSlotStore) IncrementBooked(ctx context.Context, id string, delta int) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", bookingerrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$inc": bson.M{"booked_count": delta}},
	)
	if err != nil {
		return fmt.Errorf("failed to adjust booked count: %w", err)
	}
	if result.MatchedCount == 0 {
		return bookingerrors.ErrSlotNotFound
	}

	return nil
}

// ListAvailability joins each slot with its live lock count in one pipeline.
// The expires_at > now filter must stay identical to the engine's capacity
// check, or clients would see availability that immediately rejects.
func (r *mongoSlotStore) ListAvailability(ctx context.Context, hospitalID, date string, now time.Time) ([]*model.SlotAvailability, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	match := bson.M{"hospital_id": hospitalID}
	if date != "" {
		match["date"] = date
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sort", Value: bson.D{{Key: "start_time", Value: 1}}}},
		{{Key: "$lookup", Value: bson.M{
			"from": LockCollection,
			"let":  bson.M{"sid": bson.M{"$toString": "$_id"}},
			"pipeline": bson.A{
				bson.M{"$match": bson.M{"$expr": bson.M{"$and": bson.A{
					bson.M{"$eq": bson.A{"$slot_id", "$$sid"}},
					bson.M{"$gt": bson.A{"$expires_at", now}},
				}}}},
				bson.M{"$count": "n"},
			},
			"as": "live_locks",
		}}},
		{{Key: "$addFields", Value: bson.M{
			"active_locks": bson.M{"$ifNull": bson.A{bson.M{"$first": "$live_locks.n"}, 0}},
		}}},
		{{Key: "$addFields", Value: bson.M{
			"available_count": bson.M{"$max": bson.A{0, bson.M{"$subtract": bson.A{
				"$max_capacity",
				bson.M{"$add": bson.A{"$booked_count", "$active_locks"}},
			}}}},
			"is_full": bson.M{"$gte": bson.A{
				bson.M{"$add": bson.A{"$booked_count", "$active_locks"}},
				"$max_capacity",
			}},
		}}},
		{{Key: "$project", Value: bson.M{"live_locks": 0}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate slot availability: %w", err)
	}
	defer cursor.Close(ctx)

	var results []*model.SlotAvailability
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("failed to decode slot availability: %w", err)
	}

	return results, nil
}
