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

	appointmenterrors "clinicore/internal/appointments/errors"
	"clinicore/pkg/config"
	mongotx "clinicore/pkg/db/mongo"
	"clinicore/pkg/model"
)

const (
	CollectionName     = "Appointments"
	SlotCollectionName = "Slots"
)

// AppointmentRepository is the read/manage surface over the appointment
// ledger. Rows are addressed by their public appointment_id, never by the
// Mongo _id. Cancellation touches the slot's booked_count, so the repository
// also carries the transaction plumbing and the slot decrement.
type AppointmentRepository interface {
	FindByAppointmentID(ctx context.Context, appointmentID string) (*model.Appointment, error)
	FindToday(ctx context.Context, hospitalID string, dayStart, dayEnd time.Time) ([]*model.Appointment, error)
	MarkCheckedIn(ctx context.Context, appointmentID string, at time.Time) error
	MarkCancelled(ctx context.Context, appointmentID string) error
	DecrementSlotBooked(ctx context.Context, slotID string) error

	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoAppointmentRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	slots      *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoAppointmentRepository(cfg *config.Config) AppointmentRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAppointmentRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		slots:      db.Collection(SlotCollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoAppointmentRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

func (r *mongoAppointmentRepository) FindByAppointmentID(ctx context.Context, appointmentID string) (*model.Appointment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var appointment model.Appointment
	err := r.collection.FindOne(ctx, bson.M{"appointment_id": appointmentID}).Decode(&appointment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", appointmenterrors.ErrNotFound, appointmentID)
		}
		return nil, fmt.Errorf("failed to find appointment: %w", err)
	}
	return &appointment, nil
}

func (r *mongoAppointmentRepository) FindToday(ctx context.Context, hospitalID string, dayStart, dayEnd time.Time) ([]*model.Appointment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"hospital_id": hospitalID,
		"slot_start_time": bson.M{
			"$gte": dayStart,
			"$lt":  dayEnd,
		},
		"status": bson.M{"$ne": config.StatusCancelled},
	}

	opts := options.Find().SetSort(bson.D{{Key: "slot_start_time", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query today's appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var appointments []*model.Appointment
	if err := cursor.All(ctx, &appointments); err != nil {
		return nil, fmt.Errorf("failed to decode appointments: %w", err)
	}

	return appointments, nil
}

// MarkCheckedIn flips booked to checked_in. The status guard sits in the
// update filter so a double check-in or a check-in after cancel loses the
// race atomically.
func (r *mongoAppointmentRepository) MarkCheckedIn(ctx context.Context, appointmentID string, at time.Time) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"appointment_id": appointmentID, "status": config.StatusBooked},
		bson.M{"$set": bson.M{
			"status":        config.StatusCheckedIn,
			"checked_in_at": at,
		}},
	)
	if err != nil {
		return fmt.Errorf("failed to check in appointment: %w", err)
	}
	if result.MatchedCount == 0 {
		count, cerr := r.collection.CountDocuments(ctx, bson.M{"appointment_id": appointmentID})
		if cerr == nil && count == 0 {
			return fmt.Errorf("%w: %s", appointmenterrors.ErrNotFound, appointmentID)
		}
		return appointmenterrors.ErrNotCheckable
	}

	return nil
}

func (r *mongoAppointmentRepository) MarkCancelled(ctx context.Context, appointmentID string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx,
		bson.M{
			"appointment_id": appointmentID,
			"status":         bson.M{"$ne": config.StatusCancelled},
		},
		bson.M{"$set": bson.M{"status": config.StatusCancelled}},
	)
	if err != nil {
		return fmt.Errorf("failed to cancel appointment: %w", err)
	}
	if result.MatchedCount == 0 {
		count, cerr := r.collection.CountDocuments(ctx, bson.M{"appointment_id": appointmentID})
		if cerr == nil && count == 0 {
			return fmt.Errorf("%w: %s", appointmenterrors.ErrNotFound, appointmentID)
		}
		return appointmenterrors.ErrAlreadyCancelled
	}

	return nil
}

func (r *mongoAppointmentRepository) DecrementSlotBooked(ctx context.Context, slotID string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(slotID)
	if err != nil {
		return fmt.Errorf("%w: %s", appointmenterrors.ErrInvalidID, slotID)
	}

	// The guard keeps a double-submitted cancel from driving the count
	// negative.
	_, err = r.slots.UpdateOne(ctx,
		bson.M{"_id": objectID, "booked_count": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"booked_count": -1}},
	)
	if err != nil {
		return fmt.Errorf("failed to decrement booked count: %w", err)
	}

	return nil
}

func (r *mongoAppointmentRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
