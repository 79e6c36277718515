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

	hospitalerrors "clinicore/internal/hospitals/errors"
	"clinicore/pkg/config"
	"clinicore/pkg/model"
)

const (
	CollectionName = "Hospitals"
)

type HospitalRepository interface {
	Create(ctx context.Context, hospital *model.Hospital) error
	FindByID(ctx context.Context, id string) (*model.Hospital, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Hospital, error)
	FindByCity(ctx context.Context, city string, limit int, offset int64) ([]*model.Hospital, error)
	Count(ctx context.Context) (int64, error)
	CountByCity(ctx context.Context, city string) (int64, error)
	Update(ctx context.Context, id string, update *model.HospitalUpdate) error
	Delete(ctx context.Context, id string) error
}

type mongoHospitalRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoHospitalRepository(cfg *config.Config) HospitalRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoHospitalRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoHospitalRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

func (r *mongoHospitalRepository) Create(ctx context.Context, hospital *model.Hospital) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	hospital.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, hospital)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s / %s", hospitalerrors.ErrDuplicateName, hospital.Name, hospital.City)
		}
		return fmt.Errorf("failed to create hospital: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		hospital.ID = oid.Hex()
	}

	return nil
}

func (r *mongoHospitalRepository) FindByID(ctx context.Context, id string) (*model.Hospital, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", hospitalerrors.ErrInvalidID, id)
	}

	var hospital model.Hospital
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&hospital)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", hospitalerrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find hospital: %w", err)
	}
	return &hospital, nil
}

func (r *mongoHospitalRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Hospital, error) {
	return r.find(ctx, bson.M{}, limit, offset)
}

func (r *mongoHospitalRepository) FindByCity(ctx context.Context, city string, limit int, offset int64) ([]*model.Hospital, error) {
	return r.find(ctx, bson.M{"city": city}, limit, offset)
}

func (r *mongoHospitalRepository) find(ctx context.Context, filter bson.M, limit int, offset int64) ([]*model.Hospital, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query hospitals: %w", err)
	}
	defer cursor.Close(ctx)

	var hospitals []*model.Hospital
	if err = cursor.All(ctx, &hospitals); err != nil {
		return nil, fmt.Errorf("failed to decode hospitals: %w", err)
	}

	return hospitals, nil
}

func (r *mongoHospitalRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count hospitals: %w", err)
	}
	return count, nil
}

func (r *mongoHospitalRepository) CountByCity(ctx context.Context, city string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"city": city})
	if err != nil {
		return 0, fmt.Errorf("failed to count hospitals by city: %w", err)
	}
	return count, nil
}

func (r *mongoHospitalRepository) Update(ctx context.Context, id string, update *model.HospitalUpdate) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", hospitalerrors.ErrInvalidID, id)
	}

	set := bson.M{}
	if update.Name != "" {
		set["name"] = update.Name
	}
	if update.City != "" {
		set["city"] = update.City
	}
	if update.Address != "" {
		set["address"] = update.Address
	}
	if update.Phone != "" {
		set["phone"] = update.Phone
	}
	if len(set) == 0 {
		return nil
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update hospital: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", hospitalerrors.ErrNotFound, id)
	}

	return nil
}

func (r *mongoHospitalRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", hospitalerrors.ErrInvalidID, id)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete hospital: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", hospitalerrors.ErrNotFound, id)
	}

	return nil
}
