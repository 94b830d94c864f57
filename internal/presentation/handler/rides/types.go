package rides

import (
	"errors"

	"github.com/nortavo/dispatch/internal/domain"
)

type createRideRequest struct {
	UserID          string          `json:"userId" example:"user-42"`
	PickupLocation  domain.GeoPoint `json:"pickupLocation"`
	DropoffLocation domain.GeoPoint `json:"dropoffLocation"`
}

func (req *createRideRequest) Validate() error {
	if req.UserID == "" {
		return errors.New("userId is required")
	}
	if !validGeoPoint(req.PickupLocation) {
		return errors.New("pickupLocation is out of range")
	}
	if !validGeoPoint(req.DropoffLocation) {
		return errors.New("dropoffLocation is out of range")
	}
	return nil
}

func validGeoPoint(p domain.GeoPoint) bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

type updateRideStatusRequest struct {
	Status domain.RideStatus `json:"status" example:"accepted" enum:"pending,accepted,in_progress,completed,cancelled"`
}
