package orders

import (
	"errors"

	"github.com/nortavo/dispatch/internal/domain"
)

type createOrderRequest struct {
	UserID           string             `json:"userId" example:"user-42"`
	RestaurantID     string             `json:"restaurantId" example:"resto-7"`
	Items            []domain.OrderItem `json:"items"`
	DeliveryLocation domain.GeoPoint    `json:"deliveryLocation"`
}

func (req *createOrderRequest) Validate() error {
	if req.UserID == "" {
		return errors.New("userId is required")
	}
	if req.RestaurantID == "" {
		return errors.New("restaurantId is required")
	}
	if len(req.Items) == 0 {
		return errors.New("at least one item is required")
	}
	for _, item := range req.Items {
		if item.ItemID == "" {
			return errors.New("item id is required")
		}
		if item.Quantity <= 0 {
			return errors.New("item quantity must be positive")
		}
	}
	if req.DeliveryLocation.Lat < -90 || req.DeliveryLocation.Lat > 90 ||
		req.DeliveryLocation.Lng < -180 || req.DeliveryLocation.Lng > 180 {
		return errors.New("deliveryLocation is out of range")
	}
	return nil
}

type updateOrderStatusRequest struct {
	Status domain.OrderStatus `json:"status" example:"preparing" enum:"pending,preparing,picked_up,delivered,cancelled"`
}
