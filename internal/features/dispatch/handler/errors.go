package handler

import (
	"errors"
	"net/http"

	"courier-dispatch/internal/core/logger"
	"courier-dispatch/internal/features/dispatch/domain"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorResponse represents an error response with Ray ID.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// Reason is the machine-readable cause.
	Reason domain.Reason `json:"reason"`
	// RayID is the unique request identifier for tracing.
	RayID string `json:"ray_id,omitempty"`
	// DistanceMeters is set on outside_geofence so the courier knows how far off they are.
	DistanceMeters *float64 `json:"distance_meters,omitempty"`
}

var statusByReason = map[domain.Reason]int{
	domain.ReasonNoSession:         http.StatusUnauthorized,
	domain.ReasonForbidden:         http.StatusForbidden,
	domain.ReasonValidation:        http.StatusBadRequest,
	domain.ReasonNotFound:          http.StatusNotFound,
	domain.ReasonNoLongerAvailable: http.StatusConflict,
	domain.ReasonInvalidTransition: http.StatusConflict,
	domain.ReasonOutsideGeofence:   http.StatusUnprocessableEntity,
	domain.ReasonOfferExpired:      http.StatusGone,
	domain.ReasonNoCurrentOffer:    http.StatusConflict,
	domain.ReasonNoOpenWindow:      http.StatusConflict,
}

func rayID(c *fiber.Ctx) string {
	if id, ok := c.Locals("requestid").(string); ok {
		return id
	}
	return "unknown"
}

// respondError writes err as an ErrorResponse. Unknown errors are logged and
// hidden behind a generic message.
func respondError(c *fiber.Ctx, err error) error {
	reason := domain.ReasonOf(err)
	resp := ErrorResponse{
		Message: err.Error(),
		Reason:  reason,
		RayID:   rayID(c),
	}

	var geo *domain.GeofenceError
	if errors.As(err, &geo) {
		d := geo.DistanceMeters
		resp.DistanceMeters = &d
	}

	status, ok := statusByReason[reason]
	if !ok {
		logger.Get().Error("Unhandled dispatch error",
			zap.String("ray_id", resp.RayID),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		status = http.StatusInternalServerError
		resp.Message = "internal server error"
	}

	return c.Status(status).JSON(resp)
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
		Message: msg,
		Reason:  domain.ReasonValidation,
		RayID:   rayID(c),
	})
}
