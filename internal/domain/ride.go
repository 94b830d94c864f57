package domain

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrRideNotFound = errors.New("ride not found")
	ErrInvalidID    = errors.New("invalid entity id")
)

type RideStatus string

const (
	RidePending    RideStatus = "pending"
	RideAccepted   RideStatus = "accepted"
	RideInProgress RideStatus = "in_progress"
	RideCompleted  RideStatus = "completed"
	RideCancelled  RideStatus = "cancelled"
)

func ValidRideStatus(status RideStatus) bool {
	switch status {
	case RidePending, RideAccepted, RideInProgress, RideCompleted, RideCancelled:
		return true
	}
	return false
}

type GeoPoint struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

// Ride is the full snapshot published on every ride event. Distance is in
// kilometers and EstimatedTime in minutes, both filled at creation from the
// mapping service.
type Ride struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          string             `bson:"user_id" json:"userId"`
	PickupLocation  GeoPoint           `bson:"pickup_location" json:"pickupLocation"`
	DropoffLocation GeoPoint           `bson:"dropoff_location" json:"dropoffLocation"`
	Status          RideStatus         `bson:"status" json:"status"`
	DriverID        string             `bson:"driver_id,omitempty" json:"driverId,omitempty"`
	Distance        float64            `bson:"distance,omitempty" json:"distance,omitempty"`
	EstimatedTime   float64            `bson:"estimated_time,omitempty" json:"estimatedTime,omitempty"`
}

type RideRepository interface {
	Create(ctx context.Context, ride *Ride) error
	GetByID(ctx context.Context, id string) (*Ride, error)
	UpdateStatus(ctx context.Context, id string, status RideStatus) (*Ride, error)
	EnsureIndexes(ctx context.Context) error
}
