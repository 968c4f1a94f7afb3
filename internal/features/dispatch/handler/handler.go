package handler

import (
	"context"
	"net/http"

	"courier-dispatch/internal/core/auth"
	"courier-dispatch/internal/features/dispatch/domain"
	"courier-dispatch/internal/features/dispatch/ports"

	"github.com/gofiber/fiber/v2"
)

// DispatchHandler handles HTTP requests for the shipment lifecycle.
type DispatchHandler struct {
	service ports.DispatchService
}

// NewDispatchHandler creates a new DispatchHandler.
func NewDispatchHandler(service ports.DispatchService) *DispatchHandler {
	return &DispatchHandler{
		service: service,
	}
}

// RegisterRoutes mounts every dispatch route on r. Authentication is the caller's job.
func (h *DispatchHandler) RegisterRoutes(r fiber.Router) {
	r.Post("/quotes", h.Quote)
	r.Post("/feed", h.Feed)

	s := r.Group("/shipments")
	s.Post("/", h.CreateShipment)
	s.Get("/:id", h.GetShipment)

	s.Post("/:id/window", h.OpenWindow)
	s.Delete("/:id/window", h.CloseWindow)
	s.Post("/:id/window/accept", h.AcceptWindow)
	s.Post("/:id/window/reject", h.RejectWindow)

	s.Post("/:id/start", h.Start)
	s.Post("/:id/arrive-pickup", h.ArriveAtPickup)
	s.Post("/:id/pickup", h.Pickup)
	s.Post("/:id/depart", h.Depart)
	s.Post("/:id/arrive-dropoff", h.ArriveAtDropoff)
	s.Post("/:id/deliver", h.Deliver)
	s.Post("/:id/abandon", h.Abandon)
	s.Post("/:id/cancel", h.Cancel)

	s.Post("/:id/offers", h.SubmitOffer)
	s.Post("/:id/offers/accept", h.AcceptOffer)
	s.Post("/:id/offers/reject", h.RejectOffer)
}

// actorOf converts the session identity. A missing identity yields the zero
// Actor, which the engine rejects with no_session.
func actorOf(c *fiber.Ctx) domain.Actor {
	id, ok := auth.FromContext(c)
	if !ok {
		return domain.Actor{}
	}
	return domain.Actor{
		ID:   id.UserID,
		Name: id.Name,
		Role: domain.Role(id.Role),
		City: id.City,
	}
}

// parse decodes and validates the JSON body into dst.
func parse(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return domain.Invalidf("invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		return domain.Invalidf("%s", validationMessage(err))
	}
	return nil
}

// Quote godoc
// @Summary Preview the price of a shipment
// @Description Resolves the route and applies the pricing formula without storing anything.
// @Tags quotes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param shipment body ShipmentRequest true "Pickup, dropoff and package"
// @Success 200 {object} domain.Quote
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /quotes [post]
func (h *DispatchHandler) Quote(c *fiber.Ctx) error {
	var req ShipmentRequest
	if err := parse(c, &req); err != nil {
		return respondError(c, err)
	}

	quote, err := h.service.Quote(c.UserContext(), req.toDomain())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(quote)
}

// CreateShipment godoc
// @Summary Create a shipment
// @Description Prices the route and stores a new shipment in CREATED.
// @Tags shipments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param shipment body ShipmentRequest true "Pickup, dropoff and package"
// @Success 201 {object} domain.Shipment
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /shipments [post]
func (h *DispatchHandler) CreateShipment(c *fiber.Ctx) error {
	var req ShipmentRequest
	if err := parse(c, &req); err != nil {
		return respondError(c, err)
	}

	s, err := h.service.CreateShipment(c.UserContext(), actorOf(c), req.toDomain())
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(http.StatusCreated).JSON(s)
}

// GetShipment godoc
// @Summary Get a shipment
// @Description Returns the shipment with its full timeline if the caller may see it.
// @Tags shipments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Shipment ID"
// @Success 200 {object} domain.Shipment
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /shipments/{id} [get]
func (h *DispatchHandler) GetShipment(c *fiber.Ctx) error {
	s, err := h.service.Get(c.UserContext(), actorOf(c), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(s)
}

// Feed godoc
// @Summary Courier feed
// @Description Claims this round's notifications for the caller. Not idempotent: every
// @Description returned shipment spends one of its notifications, so clients must not retry blindly.
// @Tags dispatch
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Shipment
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /feed [post]
func (h *DispatchHandler) Feed(c *fiber.Ctx) error {
	items, err := h.service.Feed(c.UserContext(), actorOf(c))
	if err != nil {
		return respondError(c, err)
	}
	if items == nil {
		items = []*domain.Shipment{}
	}
	return c.JSON(items)
}

// OpenWindow godoc
// @Summary Open a decision window
// @Description Starts the countdown during which the courier must accept or reject.
// @Tags dispatch
// @Produce json
// @Security BearerAuth
// @Param id path string true "Shipment ID"
// @Success 200 {object} WindowResponse
// @Failure 409 {object} ErrorResponse
// @Router /shipments/{id}/window [post]
func (h *DispatchHandler) OpenWindow(c *fiber.Ctx) error {
	id := c.Params("id")
	deadline, err := h.service.OpenWindow(c.UserContext(), actorOf(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(WindowResponse{ShipmentID: id, Deadline: deadline})
}

// CloseWindow godoc
// @Summary Close a decision window
// @Description Dismissing the window counts as a rejection.
// @Tags dispatch
// @Security BearerAuth
// @Param id path string true "Shipment ID"
// @Success 204
// @Failure 409 {object} ErrorResponse
// @Router /shipments/{id}/window [delete]
func (h *DispatchHandler) CloseWindow(c *fiber.Ctx) error {
	if err := h.service.CloseWindow(c.UserContext(), actorOf(c), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// AcceptWindow godoc
// @Summary Accept inside the window
// @Tags dispatch
// @Produce json
// @Security BearerAuth
// @Param id path string true "Shipment ID"
// @Success 200 {object} domain.Shipment
// @Failure 409 {object} ErrorResponse
// @Router /shipments/{id}/window/accept [post]
func (h *DispatchHandler) AcceptWindow(c *fiber.Ctx) error {
	return h.reply(c)(h.service.AcceptWindow(c.UserContext(), actorOf(c), c.Params("id")))
}

// RejectWindow godoc
// @Summary Reject inside the window
// @Tags dispatch
// @Produce json
// @Security BearerAuth
// @Param id path string true "Shipment ID"
// @Success 200 {object} domain.Shipment
// @Failure 409 {object} ErrorResponse
// @Router /shipments/{id}/window/reject [post]
func (h *DispatchHandler) RejectWindow(c *fiber.Ctx) error {
	return h.reply(c)(h.service.RejectWindow(c.UserContext(), actorOf(c), c.Params("id")))
}

// Start godoc
// @Summary Start an accepted counter-offer
// @Tags lifecycle
// @Produce json
// @Security BearerAuth
// @Param id path string true "Shipment ID"
// @Success 200 {object} domain.Shipment
// @Failure 409 {object} ErrorResponse
// @Router /shipments/{id}/start [post]
func (h *DispatchHandler) Start(c *fiber.Ctx) error {
	return h.reply(c)(h.service.StartAcceptedOffer(c.UserContext(), actorOf(c), c.Params("id")))
}

// ArriveAtPickup godoc
// @Summary Confirm arrival at pickup
// @Tags lifecycle
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Shipment ID"
// @Param position body PositionRequest true "Courier position"
// @Success 200 {object} domain.Shipment
// @Failure 422 {object} ErrorResponse
// @Router /shipments/{id}/arrive-pickup [post]
func (h *DispatchHandler) ArriveAtPickup(c *fiber.Ctx) error {
	return h.milestone(c, h.service.ConfirmArrivalAtPickup)
}

// Pickup godoc
// @Summary Confirm pickup
// @Tags lifecycle
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Shipment ID"
// @Param position body PositionRequest true "Courier position"
// @Success 200 {object} domain.Shipment
// @Failure 422 {object} ErrorResponse
// @Router /shipments/{id}/pickup [post]
func (h *DispatchHandler) Pickup(c *fiber.Ctx) error {
	return h.milestone(c, h.service.ConfirmPickup)
}

// Depart godoc
// @Summary Depart towards the dropoff
// @Tags lifecycle
// @Produce json
// @Security BearerAuth
// @Param id path string true "Shipment ID"
// @Success 200 {object} domain.Shipment
// @Failure 409 {object} ErrorResponse
// @Router /shipments/{id}/depart [post]
func (h *DispatchHandler) Depart(c *fiber.Ctx) error {
	return h.reply(c)(h.service.DepartToDropoff(c.UserContext(), actorOf(c), c.Params("id")))
}

// ArriveAtDropoff godoc
// @Summary Confirm arrival at dropoff
// @Tags lifecycle
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Shipment ID"
// @Param position body PositionRequest true "Courier position"
// @Success 200 {object} domain.Shipment
// @Failure 422 {object} ErrorResponse
// @Router /shipments/{id}/arrive-dropoff [post]
func (h *DispatchHandler) ArriveAtDropoff(c *fiber.Ctx) error {
	return h.milestone(c, h.service.ConfirmArrivalAtDropoff)
}

// Deliver godoc
// @Summary Confirm delivery
// @Tags lifecycle
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Shipment ID"
// @Param position body PositionRequest true "Courier position"
// @Success 200 {object} domain.Shipment
// @Failure 422 {object} ErrorResponse
// @Router /shipments/{id}/deliver [post]
func (h *DispatchHandler) Deliver(c *fiber.Ctx) error {
	return h.milestone(c, h.service.ConfirmDelivery)
}

// Abandon godoc
// @Summary Abandon a shipment
// @Description The courier gives the shipment back; it returns to CREATED.
// @Tags lifecycle
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Shipment ID"
// @Param reason body ReasonRequest false "Why"
// @Success 200 {object} domain.Shipment
// @Failure 403 {object} ErrorResponse
// @Router /shipments/{id}/abandon [post]
func (h *DispatchHandler) Abandon(c *fiber.Ctx) error {
	reason, err := optionalReason(c)
	if err != nil {
		return respondError(c, err)
	}
	return h.reply(c)(h.service.Abandon(c.UserContext(), actorOf(c), c.Params("id"), reason))
}

// Cancel godoc
// @Summary Cancel a shipment
// @Description Only the owning client may cancel, and only before pickup.
// @Tags lifecycle
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Shipment ID"
// @Param reason body ReasonRequest false "Why"
// @Success 200 {object} domain.Shipment
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /shipments/{id}/cancel [post]
func (h *DispatchHandler) Cancel(c *fiber.Ctx) error {
	reason, err := optionalReason(c)
	if err != nil {
		return respondError(c, err)
	}
	return h.reply(c)(h.service.Cancel(c.UserContext(), actorOf(c), c.Params("id"), reason))
}

// SubmitOffer godoc
// @Summary Submit a counter-offer
// @Tags offers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Shipment ID"
// @Param offer body OfferRequest true "Offer"
// @Success 200 {object} domain.Shipment
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /shipments/{id}/offers [post]
func (h *DispatchHandler) SubmitOffer(c *fiber.Ctx) error {
	var req OfferRequest
	if err := parse(c, &req); err != nil {
		return respondError(c, err)
	}
	in := ports.OfferInput{Price: req.Price, Message: req.Message}
	return h.reply(c)(h.service.SubmitOffer(c.UserContext(), actorOf(c), c.Params("id"), in))
}

// AcceptOffer godoc
// @Summary Accept the current counter-offer
// @Description Fails with no_longer_available when offerId is no longer the current offer.
// @Tags offers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Shipment ID"
// @Param decision body OfferDecisionRequest true "Offer being accepted"
// @Success 200 {object} domain.Shipment
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 410 {object} ErrorResponse
// @Router /shipments/{id}/offers/accept [post]
func (h *DispatchHandler) AcceptOffer(c *fiber.Ctx) error {
	var req OfferDecisionRequest
	if err := parse(c, &req); err != nil {
		return respondError(c, err)
	}
	return h.reply(c)(h.service.AcceptOffer(c.UserContext(), actorOf(c), c.Params("id"), req.OfferID))
}

// RejectOffer godoc
// @Summary Reject the current counter-offer
// @Description Fails with no_longer_available when offerId is no longer the current offer.
// @Tags offers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Shipment ID"
// @Param decision body OfferDecisionRequest true "Offer being rejected"
// @Success 200 {object} domain.Shipment
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /shipments/{id}/offers/reject [post]
func (h *DispatchHandler) RejectOffer(c *fiber.Ctx) error {
	var req OfferDecisionRequest
	if err := parse(c, &req); err != nil {
		return respondError(c, err)
	}
	return h.reply(c)(h.service.RejectOffer(c.UserContext(), actorOf(c), c.Params("id"), req.OfferID))
}

type milestoneFunc func(ctx context.Context, actor domain.Actor, id string, in ports.MilestoneInput) (*domain.Shipment, error)

func (h *DispatchHandler) milestone(c *fiber.Ctx, confirm milestoneFunc) error {
	var req PositionRequest
	if err := parse(c, &req); err != nil {
		return respondError(c, err)
	}
	return h.reply(c)(confirm(c.UserContext(), actorOf(c), c.Params("id"), req.toDomain()))
}

// reply writes the shipment or the error.
func (h *DispatchHandler) reply(c *fiber.Ctx) func(*domain.Shipment, error) error {
	return func(s *domain.Shipment, err error) error {
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(s)
	}
}

func optionalReason(c *fiber.Ctx) (string, error) {
	if len(c.Body()) == 0 {
		return "", nil
	}
	var req ReasonRequest
	if err := parse(c, &req); err != nil {
		return "", err
	}
	return req.Reason, nil
}
