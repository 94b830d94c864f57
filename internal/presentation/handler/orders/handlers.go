package orders

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nortavo/dispatch/internal/domain"
	"github.com/nortavo/dispatch/internal/infrastructure/json"
	"github.com/nortavo/dispatch/internal/infrastructure/logging"
)

type eventPublisher interface {
	Publish(ctx context.Context, kind domain.EntityKind, event domain.EventType, entityID string, snapshot any) error
}

type Handler struct {
	orders    domain.OrderRepository
	publisher eventPublisher
	logger    logging.Logger
}

func NewHandler(orders domain.OrderRepository, publisher eventPublisher, logger logging.Logger) *Handler {
	return &Handler{
		orders:    orders,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateOrderHandler godoc
// @Summary      Place a new food order
// @Description  Creates an order in pending status and publishes an order.created event
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body createOrderRequest true "Order parameters"
// @Success      201 {object} domain.Order "Order created"
// @Failure      400 {object} map[string]interface{} "Bad request - validation error"
// @Failure      500 {object} map[string]interface{} "Internal server error"
// @Router       /api/v1/orders [post]
func (h *Handler) CreateOrderHandler(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.Read(w, r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	if err := req.Validate(); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	ctx := r.Context()

	order := &domain.Order{
		UserID:           req.UserID,
		RestaurantID:     req.RestaurantID,
		Items:            req.Items,
		DeliveryLocation: req.DeliveryLocation,
		Status:           domain.OrderPending,
	}

	if err := h.orders.Create(ctx, order); err != nil {
		json.WriteInternalError(w, err)
		return
	}

	if err := h.publisher.Publish(ctx, domain.KindOrder, domain.EventCreated, order.ID.Hex(), order); err != nil {
		h.logger.Error(logging.RabbitMQ, logging.Publish, "failed to publish order created", map[logging.ExtraKey]any{
			logging.EntityID:     order.ID.Hex(),
			logging.ErrorMessage: err.Error(),
		})
	}

	json.Write(w, http.StatusCreated, order)
}

// UpdateOrderStatusHandler godoc
// @Summary      Update order status
// @Description  Transitions an order to a new status and publishes an order.updated event carrying the full updated snapshot
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        orderId path string true "Order ID"
// @Param        request body updateOrderStatusRequest true "New status"
// @Success      200 {object} domain.Order "Updated order"
// @Failure      400 {object} map[string]interface{} "Bad request - invalid ID or status"
// @Failure      404 {object} map[string]interface{} "Order not found"
// @Failure      500 {object} map[string]interface{} "Internal server error"
// @Router       /api/v1/orders/{orderId}/status [patch]
func (h *Handler) UpdateOrderStatusHandler(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")
	if orderID == "" {
		json.WriteValidationError(w, errors.New("order ID is missing"))
		return
	}

	var req updateOrderStatusRequest
	if err := json.Read(w, r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	if !domain.ValidOrderStatus(req.Status) {
		json.WriteBadRequestError(w, "Unknown order status")
		return
	}

	ctx := r.Context()

	order, err := h.orders.UpdateStatus(ctx, orderID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidID):
			json.WriteBadRequestError(w, "Invalid order ID")
		case errors.Is(err, domain.ErrOrderNotFound):
			json.WriteError(w, http.StatusNotFound, err, "Order not found")
		default:
			json.WriteInternalError(w, err)
		}
		return
	}

	if err := h.publisher.Publish(ctx, domain.KindOrder, domain.EventUpdated, order.ID.Hex(), order); err != nil {
		h.logger.Error(logging.RabbitMQ, logging.Publish, "failed to publish order updated", map[logging.ExtraKey]any{
			logging.EntityID:     order.ID.Hex(),
			logging.ErrorMessage: err.Error(),
		})
	}

	json.Write(w, http.StatusOK, order)
}

// GetOrderHandler godoc
// @Summary      Get order details
// @Description  Retrieves the current snapshot of an order
// @Tags         orders
// @Produce      json
// @Param        orderId path string true "Order ID"
// @Success      200 {object} domain.Order "Order details"
// @Failure      400 {object} map[string]interface{} "Bad request - invalid ID"
// @Failure      404 {object} map[string]interface{} "Order not found"
// @Failure      500 {object} map[string]interface{} "Internal server error"
// @Router       /api/v1/orders/{orderId} [get]
func (h *Handler) GetOrderHandler(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")
	if orderID == "" {
		json.WriteValidationError(w, errors.New("order ID is missing"))
		return
	}

	order, err := h.orders.GetByID(r.Context(), orderID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidID):
			json.WriteBadRequestError(w, "Invalid order ID")
		case errors.Is(err, domain.ErrOrderNotFound):
			json.WriteError(w, http.StatusNotFound, err, "Order not found")
		default:
			json.WriteInternalError(w, err)
		}
		return
	}

	json.Write(w, http.StatusOK, order)
}
