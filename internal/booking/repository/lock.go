package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	bookingerrors "clinicore/internal/booking/errors"
	"clinicore/pkg/config"
	"clinicore/pkg/model"
)

const (
	LockCollection = "Slot_locks"
)

// LockLedger holds the live soft reservations. Every count query filters on
// expires_at so that a lock past its TTL never counts, even before the
// sweeper or the store's TTL index has removed the row.
type LockLedger interface {
	Insert(ctx context.Context, lock *model.SlotLock) error
	FindByID(ctx context.Context, lockID string) (*model.SlotLock, error)
	FindByAttemptID(ctx context.Context, attemptID string) (*model.SlotLock, error)
	CountLiveBySlot(ctx context.Context, slotID string, now time.Time) (int64, error)
	Delete(ctx context.Context, lockID string) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type mongoLockLedger struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoLockLedger(cfg *config.Config) LockLedger {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoLockLedger{
		cfg:        cfg,
		collection: db.Collection(LockCollection),
	}
}

func (r *mongoLockLedger) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

func (r *mongoLockLedger) Insert(ctx context.Context, lock *model.SlotLock) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	lock.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)

	_, err := r.collection.InsertOne(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", bookingerrors.ErrAttemptExists, lock.BookingAttemptID)
		}
		return fmt.Errorf("failed to insert slot lock: %w", err)
	}

	return nil
}

func (r *mongoLockLedger) FindByID(ctx context.Context, lockID string) (*model.SlotLock, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var lock model.SlotLock
	err := r.collection.FindOne(ctx, bson.M{"_id": lockID}).Decode(&lock)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingerrors.ErrLockNotFound
		}
		return nil, fmt.Errorf("failed to find slot lock: %w", err)
	}

	return &lock, nil
}

func (r *mongoLockLedger) FindByAttemptID(ctx context.Context, attemptID string) (*model.SlotLock, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var lock model.SlotLock
	err := r.collection.FindOne(ctx, bson.M{"booking_attempt_id": attemptID}).Decode(&lock)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingerrors.ErrLockNotFound
		}
		return nil, fmt.Errorf("failed to find slot lock by attempt id: %w", err)
	}

	return &lock, nil
}

func (r *mongoLockLedger) CountLiveBySlot(ctx context.Context, slotID string, now time.Time) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{
		"slot_id":    slotID,
		"expires_at": bson.M{"$gt": now},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count live locks: %w", err)
	}

	return count, nil
}

func (r *mongoLockLedger) Delete(ctx context.Context, lockID string) (bool, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID})
	if err != nil {
		return false, fmt.Errorf("failed to delete slot lock: %w", err)
	}

	return result.DeletedCount > 0, nil
}

func (r *mongoLockLedger) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteMany(ctx, bson.M{
		"expires_at": bson.M{"$lte": now},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired locks: %w", err)
	}

	return result.DeletedCount, nil
}
