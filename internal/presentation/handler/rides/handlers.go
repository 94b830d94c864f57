package rides

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/nortavo/dispatch/internal/domain"
	"github.com/nortavo/dispatch/internal/infrastructure/json"
	"github.com/nortavo/dispatch/internal/infrastructure/logging"
	"github.com/nortavo/dispatch/internal/infrastructure/maps"
)

type eventPublisher interface {
	Publish(ctx context.Context, kind domain.EntityKind, event domain.EventType, entityID string, snapshot any) error
}

type Handler struct {
	rides     domain.RideRepository
	estimator maps.Estimator
	publisher eventPublisher
	logger    logging.Logger
}

func NewHandler(
	rides domain.RideRepository,
	estimator maps.Estimator,
	publisher eventPublisher,
	logger logging.Logger,
) *Handler {
	return &Handler{
		rides:     rides,
		estimator: estimator,
		publisher: publisher,
		logger:    logger,
	}
}

// CreateRideHandler godoc
// @Summary      Request a new ride
// @Description  Creates a ride in pending status, estimates distance and duration for the route, and publishes a ride.created event
// @Tags         rides
// @Accept       json
// @Produce      json
// @Param        request body createRideRequest true "Ride request parameters"
// @Success      201 {object} domain.Ride "Ride created"
// @Failure      400 {object} map[string]interface{} "Bad request - validation error"
// @Failure      502 {object} map[string]interface{} "Bad gateway - route estimation failed"
// @Failure      500 {object} map[string]interface{} "Internal server error"
// @Router       /api/v1/rides [post]
func (h *Handler) CreateRideHandler(w http.ResponseWriter, r *http.Request) {
	var req createRideRequest
	if err := json.Read(w, r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	if err := req.Validate(); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	ctx := r.Context()

	estimate, err := h.estimator.Estimate(ctx, req.PickupLocation, req.DropoffLocation)
	if err != nil {
		h.logger.Error(logging.General, logging.ExternalService, "route estimation failed", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
		json.WriteError(w, http.StatusBadGateway, err, "Failed to estimate route")
		return
	}

	ride := &domain.Ride{
		UserID:          req.UserID,
		PickupLocation:  req.PickupLocation,
		DropoffLocation: req.DropoffLocation,
		Status:          domain.RidePending,
		Distance:        estimate.DistanceKm,
		EstimatedTime:   estimate.DurationMinutes,
	}

	if err := h.rides.Create(ctx, ride); err != nil {
		json.WriteInternalError(w, err)
		return
	}

	if err := h.publisher.Publish(ctx, domain.KindRide, domain.EventCreated, ride.ID.Hex(), ride); err != nil {
		h.logger.Error(logging.RabbitMQ, logging.Publish, "failed to publish ride created", map[logging.ExtraKey]any{
			logging.EntityID:     ride.ID.Hex(),
			logging.ErrorMessage: err.Error(),
		})
	}

	json.Write(w, http.StatusCreated, ride)
}

// UpdateRideStatusHandler godoc
// @Summary      Update ride status
// @Description  Transitions a ride to a new status and publishes a ride.updated event carrying the full updated snapshot
// @Tags         rides
// @Accept       json
// @Produce      json
// @Param        rideId path string true "Ride ID"
// @Param        request body updateRideStatusRequest true "New status"
// @Success      200 {object} domain.Ride "Updated ride"
// @Failure      400 {object} map[string]interface{} "Bad request - invalid ID or status"
// @Failure      404 {object} map[string]interface{} "Ride not found"
// @Failure      500 {object} map[string]interface{} "Internal server error"
// @Router       /api/v1/rides/{rideId}/status [patch]
func (h *Handler) UpdateRideStatusHandler(w http.ResponseWriter, r *http.Request) {
	rideID := chi.URLParam(r, "rideId")
	if rideID == "" {
		json.WriteValidationError(w, errors.New("ride ID is missing"))
		return
	}

	var req updateRideStatusRequest
	if err := json.Read(w, r, &req); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	if !domain.ValidRideStatus(req.Status) {
		json.WriteBadRequestError(w, "Unknown ride status")
		return
	}

	ctx := r.Context()

	ride, err := h.rides.UpdateStatus(ctx, rideID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidID):
			json.WriteBadRequestError(w, "Invalid ride ID")
		case errors.Is(err, domain.ErrRideNotFound):
			json.WriteError(w, http.StatusNotFound, err, "Ride not found")
		default:
			json.WriteInternalError(w, err)
		}
		return
	}

	if err := h.publisher.Publish(ctx, domain.KindRide, domain.EventUpdated, ride.ID.Hex(), ride); err != nil {
		h.logger.Error(logging.RabbitMQ, logging.Publish, "failed to publish ride updated", map[logging.ExtraKey]any{
			logging.EntityID:     ride.ID.Hex(),
			logging.ErrorMessage: err.Error(),
		})
	}

	json.Write(w, http.StatusOK, ride)
}

// GetRideHandler godoc
// @Summary      Get ride details
// @Description  Retrieves the current snapshot of a ride
// @Tags         rides
// @Produce      json
// @Param        rideId path string true "Ride ID"
// @Success      200 {object} domain.Ride "Ride details"
// @Failure      400 {object} map[string]interface{} "Bad request - invalid ID"
// @Failure      404 {object} map[string]interface{} "Ride not found"
// @Failure      500 {object} map[string]interface{} "Internal server error"
// @Router       /api/v1/rides/{rideId} [get]
func (h *Handler) GetRideHandler(w http.ResponseWriter, r *http.Request) {
	rideID := chi.URLParam(r, "rideId")
	if rideID == "" {
		json.WriteValidationError(w, errors.New("ride ID is missing"))
		return
	}

	ride, err := h.rides.GetByID(r.Context(), rideID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidID):
			json.WriteBadRequestError(w, "Invalid ride ID")
		case errors.Is(err, domain.ErrRideNotFound):
			json.WriteError(w, http.StatusNotFound, err, "Ride not found")
		default:
			json.WriteInternalError(w, err)
		}
		return
	}

	json.Write(w, http.StatusOK, ride)
}
