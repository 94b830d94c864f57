package domain

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ErrOrderNotFound = errors.New("order not found")

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPreparing OrderStatus = "preparing"
	OrderPickedUp  OrderStatus = "picked_up"
	OrderDelivered OrderStatus = "delivered"
	OrderCancelled OrderStatus = "cancelled"
)

func ValidOrderStatus(status OrderStatus) bool {
	switch status {
	case OrderPending, OrderPreparing, OrderPickedUp, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

type OrderItem struct {
	ItemID   string `bson:"item_id" json:"itemId"`
	Quantity int    `bson:"quantity" json:"quantity"`
}

type Order struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID           string             `bson:"user_id" json:"userId"`
	RestaurantID     string             `bson:"restaurant_id" json:"restaurantId"`
	Items            []OrderItem        `bson:"items" json:"items"`
	DeliveryLocation GeoPoint           `bson:"delivery_location" json:"deliveryLocation"`
	Status           OrderStatus        `bson:"status" json:"status"`
	DriverID         string             `bson:"driver_id,omitempty" json:"driverId,omitempty"`
}

type OrderRepository interface {
	Create(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, id string) (*Order, error)
	UpdateStatus(ctx context.Context, id string, status OrderStatus) (*Order, error)
	EnsureIndexes(ctx context.Context) error
}
