package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"clinicore/pkg/config"
	"clinicore/pkg/model"
)

const (
	AppointmentCollection = "Appointments"
)

// AppointmentWriter is the engine-side write surface for appointments. The
// wider read/manage surface lives in the appointments domain; confirm only
// ever inserts, inside the same transaction that consumes the lock.
type AppointmentWriter interface {
	Insert(ctx context.Context, appointment *model.Appointment) (string, error)
}

type mongoAppointmentWriter struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoAppointmentWriter(cfg *config.Config) AppointmentWriter {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAppointmentWriter{
		cfg:        cfg,
		collection: db.Collection(AppointmentCollection),
	}
}

func (r *mongoAppointmentWriter) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

func (r *mongoAppointmentWriter) Insert(ctx context.Context, appointment *model.Appointment) (string, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, appointment)
	if err != nil {
		return "", fmt.Errorf("failed to create appointment: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		appointment.ID = oid.Hex()
	}
	return appointment.ID, nil
}
