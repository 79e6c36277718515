package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	sloterrors "clinicore/internal/slots/errors"
	"clinicore/pkg/config"
	"clinicore/pkg/model"
)

const (
	SlotCollection = "Slots"
)

type SlotRepository interface {
	InsertMany(ctx context.Context, slots []*model.Slot) (int, error)
	FindByID(ctx context.Context, id string) (*model.Slot, error)
	FindByHospital(ctx context.Context, hospitalID, date string, limit int, offset int64) ([]*model.Slot, error)
	CountByHospital(ctx context.Context, hospitalID, date string) (int64, error)
	DeleteByID(ctx context.Context, id string) error
	DeleteByDay(ctx context.Context, hospitalID, date string) (int64, error)
}

type mongoSlotRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoSlotRepository(cfg *config.Config) SlotRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSlotRepository{
		cfg:        cfg,
		collection: db.Collection(SlotCollection),
	}
}

func (r *mongoSlotRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

func (r *mongoSlotRepository) InsertMany(ctx context.Context, slots []*model.Slot) (int, error) {
	if len(slots) == 0 {
		return 0, nil
	}

	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC()
	docs := make([]any, 0, len(slots))
	for _, slot := range slots {
		slot.CreatedAt = now
		docs = append(docs, slot)
	}

	// Unordered so one duplicated day does not abort the rest of the run.
	result, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			inserted := 0
			if result != nil {
				inserted = len(result.InsertedIDs)
			}
			return inserted, fmt.Errorf("%w: %d of %d inserted", sloterrors.ErrDuplicateSlot, inserted, len(slots))
		}
		return 0, fmt.Errorf("failed to insert slots: %w", err)
	}

	return len(result.InsertedIDs), nil
}

func (r *mongoSlotRepository) FindByID(ctx context.Context, id string) (*model.Slot, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", sloterrors.ErrInvalidID, id)
	}

	var slot model.Slot
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&slot)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, sloterrors.ErrSlotNotFound
		}
		return nil, fmt.Errorf("failed to find slot: %w", err)
	}

	return &slot, nil
}

func (r *mongoSlotRepository) FindByHospital(ctx context.Context, hospitalID, date string, limit int, offset int64) ([]*model.Slot, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"hospital_id": hospitalID}
	if date != "" {
		filter["date"] = date
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "start_time", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list slots: %w", err)
	}
	defer cursor.Close(ctx)

	var slots []*model.Slot
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("failed to decode slots: %w", err)
	}

	return slots, nil
}

func (r *mongoSlotRepository) CountByHospital(ctx context.Context, hospitalID, date string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"hospital_id": hospitalID}
	if date != "" {
		filter["date"] = date
	}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count slots: %w", err)
	}
	return count, nil
}

// DeleteByID refuses to remove a slot that already has confirmed bookings:
// the filter carries the booked_count guard so check and delete are one
// atomic operation.
func (r *mongoSlotRepository) DeleteByID(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", sloterrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{
		"_id":          objectID,
		"booked_count": 0,
	})
	if err != nil {
		return fmt.Errorf("failed to delete slot: %w", err)
	}
	if result.DeletedCount == 0 {
		var slot model.Slot
		ferr := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&slot)
		if ferr == nil {
			return sloterrors.ErrSlotHasBookings
		}
		return sloterrors.ErrSlotNotFound
	}

	return nil
}

func (r *mongoSlotRepository) DeleteByDay(ctx context.Context, hospitalID, date string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteMany(ctx, bson.M{
		"hospital_id":  hospitalID,
		"date":         date,
		"booked_count": 0,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete slots for day: %w", err)
	}

	return result.DeletedCount, nil
}
