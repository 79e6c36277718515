package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	bookingerrors "clinicore/internal/booking/errors"
	"clinicore/pkg/config"
	"clinicore/pkg/model"
)

const (
	AdmissionCollection = "Admission_locks"
)

// AdmissionGate serializes lock admission per slot. The first writer to
// insert the slot's mutex document owns the check-and-insert critical
// section; everyone else gets ErrAdmissionHeld immediately rather than
// queuing. The TTL bounds how long a crashed holder can block a slot.
type AdmissionGate interface {
	Acquire(ctx context.Context, slotID string, ttl time.Duration) error
	Release(ctx context.Context, slotID string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type mongoAdmissionGate struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoAdmissionGate(cfg *config.Config) AdmissionGate {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAdmissionGate{
		cfg:        cfg,
		collection: db.Collection(AdmissionCollection),
	}
}

func admissionID(slotID string) string {
	return "slot_admission_" + slotID
}

func (r *mongoAdmissionGate) Acquire(ctx context.Context, slotID string, ttl time.Duration) error {
	now := time.Now().UTC()
	doc := &model.AdmissionLock{
		ID:        admissionID(slotID),
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}

	_, err := r.collection.InsertOne(ctx, doc)
	if err == nil {
		return nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return err
	}

	// A stale document from a crashed holder should not block the slot:
	// evict it when expired and claim in the same conditional delete.
	result, derr := r.collection.DeleteOne(ctx, bson.M{
		"_id":        admissionID(slotID),
		"expires_at": bson.M{"$lte": now},
	})
	if derr != nil {
		return derr
	}
	if result.DeletedCount == 0 {
		return bookingerrors.ErrAdmissionHeld
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return bookingerrors.ErrAdmissionHeld
		}
		return err
	}

	return nil
}

func (r *mongoAdmissionGate) Release(ctx context.Context, slotID string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": admissionID(slotID)})
	return err
}

func (r *mongoAdmissionGate) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{
		"expires_at": bson.M{"$lte": now},
	})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}
