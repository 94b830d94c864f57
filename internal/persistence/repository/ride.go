package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/nortavo/dispatch/internal/domain"
	"github.com/nortavo/dispatch/internal/persistence/db"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type rideRepository struct {
	db *mongo.Database
}

func NewRideRepository(database *mongo.Database) domain.RideRepository {
	return &rideRepository{
		db: database,
	}
}

func (r *rideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	if ride.ID.IsZero() {
		ride.ID = primitive.NewObjectID()
	}

	collection := r.db.Collection(db.RidesCollection)

	if _, err := collection.InsertOne(ctx, ride); err != nil {
		return fmt.Errorf("failed to insert ride: %w", err)
	}

	return nil
}

func (r *rideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	collection := r.db.Collection(db.RidesCollection)

	var ride domain.Ride
	err = collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&ride)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrRideNotFound
	}
	if err != nil {
		return nil, err
	}

	return &ride, nil
}

// UpdateStatus performs a find-and-update returning the post-mutation
// document, so the caller publishes exactly the snapshot that was
// persisted.
func (r *rideRepository) UpdateStatus(ctx context.Context, id string, status domain.RideStatus) (*domain.Ride, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrInvalidID
	}

	collection := r.db.Collection(db.RidesCollection)

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var ride domain.Ride
	err = collection.FindOneAndUpdate(ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"status": status}},
		opts,
	).Decode(&ride)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrRideNotFound
	}
	if err != nil {
		return nil, err
	}

	return &ride, nil
}

func (r *rideRepository) EnsureIndexes(ctx context.Context) error {
	collection := r.db.Collection(db.RidesCollection)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
			},
		},
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
			},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
