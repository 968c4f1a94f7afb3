package service

import (
	"context"
	"fmt"
	"strings"

	"courier-dispatch/internal/core/logger"
	"courier-dispatch/internal/features/dispatch/domain"
	"courier-dispatch/internal/features/dispatch/ports"

	"github.com/google/uuid"
	"github.com/zoobzio/clockz"
	"go.uber.org/zap"
)

// Settings holds the tunables of the dispatch engine.
type Settings struct {
	Pricing             domain.PricingRules
	GeofenceMeters      float64
	EscalationThreshold int
}

// StateMachine is the only component allowed to move a shipment between
// states. Every operation is a guarded conditional write that appends one
// timeline event.
type StateMachine struct {
	committer
	routing    ports.RoutingService
	pricing    *domain.PricingEngine
	geofence   *domain.GeofenceValidator
	escalation domain.EscalationPolicy
	newID      func() string
}

// NewStateMachine creates a new StateMachine.
func NewStateMachine(repo ports.ShipmentRepository, routing ports.RoutingService, events ports.EventPublisher, settings Settings) *StateMachine {
	return &StateMachine{
		committer: committer{
			repo:   repo,
			events: events,
			clock:  clockz.RealClock,
			logger: logger.Named("dispatch"),
		},
		routing:    routing,
		pricing:    domain.NewPricingEngine(settings.Pricing),
		geofence:   domain.NewGeofenceValidator(settings.GeofenceMeters),
		escalation: domain.NewEscalationPolicy(settings.EscalationThreshold),
		newID:      uuid.NewString,
	}
}

// WithClock sets a custom clock for testing.
func (m *StateMachine) WithClock(clock clockz.Clock) *StateMachine {
	m.clock = clock
	return m
}

// Quote resolves and routes the input and prices it without storing anything.
func (m *StateMachine) Quote(ctx context.Context, in domain.NewShipmentInput) (domain.Quote, error) {
	if err := in.Validate(); err != nil {
		return domain.Quote{}, err
	}
	_, _, quote, err := m.price(ctx, in)
	return quote, err
}

// CreateShipment stores a new CREATED shipment for the acting client.
func (m *StateMachine) CreateShipment(ctx context.Context, actor domain.Actor, in domain.NewShipmentInput) (*domain.Shipment, error) {
	if err := actor.Require(domain.RoleClient); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	pickup, dropoff, quote, err := m.price(ctx, in)
	if err != nil {
		return nil, err
	}
	in.Pickup = pickup
	in.Dropoff = dropoff
	if in.City == "" {
		in.City = actor.City
	}

	s := domain.NewShipment(m.newID(), actor, in, quote, m.now())
	if err := m.repo.Create(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to create shipment: %w", err)
	}

	m.logger.Info("Shipment created",
		zap.String("shipment_id", s.ID),
		zap.String("actor_id", actor.ID),
		zap.Float64("price", quote.Total),
		zap.Float64("distance_km", quote.DistanceKm),
	)
	m.publish(ctx, s)
	return s, nil
}

func (m *StateMachine) price(ctx context.Context, in domain.NewShipmentInput) (domain.Location, domain.Location, domain.Quote, error) {
	pickup, err := m.resolve(ctx, "pickup", in.Pickup)
	if err != nil {
		return domain.Location{}, domain.Location{}, domain.Quote{}, err
	}
	dropoff, err := m.resolve(ctx, "dropoff", in.Dropoff)
	if err != nil {
		return domain.Location{}, domain.Location{}, domain.Quote{}, err
	}

	route, err := m.routing.Route(ctx, pickup, dropoff)
	if err != nil {
		return domain.Location{}, domain.Location{}, domain.Quote{}, fmt.Errorf("failed to route shipment: %w", err)
	}

	return pickup, dropoff, m.pricing.Quote(route.DistanceKm, route.DurationMin, in.Package), nil
}

// resolve geocodes loc when it only carries an address.
func (m *StateMachine) resolve(ctx context.Context, which string, loc domain.Location) (domain.Location, error) {
	if loc.HasCoordinates() {
		return loc, nil
	}
	resolved, err := m.routing.Geocode(ctx, loc.Address)
	if err != nil {
		return domain.Location{}, domain.Invalidf("cannot resolve %s address %q: %v", which, loc.Address, err)
	}
	resolved.Address = loc.Address
	return resolved, nil
}

// Get returns a shipment the actor is allowed to see: its owner, the courier
// holding it, or any courier while it is still up for dispatch.
func (m *StateMachine) Get(ctx context.Context, actor domain.Actor, id string) (*domain.Shipment, error) {
	if err := actor.Require(""); err != nil {
		return nil, err
	}

	s, err := m.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	switch actor.Role {
	case domain.RoleClient:
		if s.ClientID != actor.ID {
			return nil, domain.ErrForbidden
		}
	case domain.RoleCourier:
		if s.CourierID != actor.ID && !s.State.IsPreAssignment() {
			return nil, domain.ErrForbidden
		}
	default:
		return nil, domain.ErrForbidden
	}
	return s, nil
}

// AcceptDispatch assigns the courier at the quoted price. The write only
// lands if the shipment is still unassigned, so concurrent accepts yield a
// single winner.
func (m *StateMachine) AcceptDispatch(ctx context.Context, actor domain.Actor, id string) (*domain.Shipment, error) {
	if err := actor.Require(domain.RoleCourier); err != nil {
		return nil, err
	}

	return m.commit(ctx, actor, id, "accept_dispatch", func(s *domain.Shipment) error {
		if s.CourierID != "" || !domain.CanTransition(s.State, domain.StateEnRoute) || !s.State.IsPreAssignment() {
			return fmt.Errorf("%w: shipment is %s", domain.ErrNoLongerAvailable, s.State)
		}

		at := m.now()
		if err := s.Transition(domain.StateEnRoute, at, domain.TimelineEvent{
			Type:        domain.EventDispatchAccepted,
			Description: fmt.Sprintf("accepted by courier %s", courierLabel(actor)),
			Payload: map[string]any{
				"courierUid": actor.ID,
				"price":      s.EffectivePrice(),
			},
		}); err != nil {
			return err
		}
		s.AssignCourier(actor.ID, actor.Name)
		s.CurrentOffer = nil
		s.PickedUp = false
		return nil
	})
}

// RejectDispatch records a courier rejection and escalates to negotiation
// the first time the threshold is reached.
func (m *StateMachine) RejectDispatch(ctx context.Context, actor domain.Actor, id string, cause domain.RejectionCause) (*domain.Shipment, error) {
	if err := actor.Require(domain.RoleCourier); err != nil {
		return nil, err
	}

	var escalated bool
	s, err := m.commit(ctx, actor, id, "reject_dispatch", func(s *domain.Shipment) error {
		var err error
		escalated, err = m.escalation.OnRejection(s, actor, cause, m.now())
		return err
	})
	if err != nil {
		return nil, err
	}

	if escalated {
		m.logger.Info("Shipment escalated to negotiation",
			zap.String("shipment_id", id),
			zap.Int("rejection_count", s.RejectionCount),
		)
	}
	return s, nil
}

// StartAcceptedOffer moves the winning courier of a negotiation onto the road.
func (m *StateMachine) StartAcceptedOffer(ctx context.Context, actor domain.Actor, id string) (*domain.Shipment, error) {
	if err := actor.Require(domain.RoleCourier); err != nil {
		return nil, err
	}

	return m.commit(ctx, actor, id, "start_offer", func(s *domain.Shipment) error {
		if err := holds(s, actor); err != nil {
			return err
		}
		if s.State != domain.StateAcceptedOffer {
			return invalidFrom(s.State, "start")
		}
		return s.Transition(domain.StateEnRoute, m.now(), domain.TimelineEvent{
			Type:        domain.EventOfferStarted,
			Description: fmt.Sprintf("courier %s started at the agreed price", courierLabel(actor)),
			Payload:     map[string]any{"price": s.EffectivePrice()},
		})
	})
}

// ConfirmArrivalAtPickup is geofenced against the pickup point.
func (m *StateMachine) ConfirmArrivalAtPickup(ctx context.Context, actor domain.Actor, id string, in ports.MilestoneInput) (*domain.Shipment, error) {
	return m.milestone(ctx, actor, id, "arrive_pickup", func(s *domain.Shipment) error {
		onWay := s.State == domain.StateEnRoute && !s.PickedUp
		if !onWay && s.State != domain.StateAssigned {
			return invalidFrom(s.State, "arrive at pickup")
		}
		if err := m.geofence.Require("pickup", in.Position, s.Pickup); err != nil {
			return err
		}
		return s.Transition(domain.StateArrivedPickup, m.now(), milestoneEvent(domain.EventArrivedPickup, "arrived at pickup", in))
	})
}

// ConfirmPickup is geofenced against the pickup point.
func (m *StateMachine) ConfirmPickup(ctx context.Context, actor domain.Actor, id string, in ports.MilestoneInput) (*domain.Shipment, error) {
	return m.milestone(ctx, actor, id, "pickup", func(s *domain.Shipment) error {
		if s.State != domain.StateArrivedPickup {
			return invalidFrom(s.State, "pick up")
		}
		if err := m.geofence.Require("pickup", in.Position, s.Pickup); err != nil {
			return err
		}
		if err := s.Transition(domain.StatePickedUp, m.now(), milestoneEvent(domain.EventPickedUp, "package picked up", in)); err != nil {
			return err
		}
		s.PickedUp = true
		return nil
	})
}

// DepartToDropoff reuses EN_ROUTE for the leg toward the destination.
func (m *StateMachine) DepartToDropoff(ctx context.Context, actor domain.Actor, id string) (*domain.Shipment, error) {
	return m.milestone(ctx, actor, id, "depart", func(s *domain.Shipment) error {
		if s.State != domain.StatePickedUp {
			return invalidFrom(s.State, "depart")
		}
		return s.Transition(domain.StateEnRoute, m.now(), domain.TimelineEvent{
			Type:        domain.EventDepartedToDropoff,
			Description: "on the way to dropoff",
		})
	})
}

// ConfirmArrivalAtDropoff is geofenced against the dropoff point.
func (m *StateMachine) ConfirmArrivalAtDropoff(ctx context.Context, actor domain.Actor, id string, in ports.MilestoneInput) (*domain.Shipment, error) {
	return m.milestone(ctx, actor, id, "arrive_dropoff", func(s *domain.Shipment) error {
		if s.State != domain.StateEnRoute || !s.PickedUp {
			return invalidFrom(s.State, "arrive at dropoff")
		}
		if err := m.geofence.Require("dropoff", in.Position, s.Dropoff); err != nil {
			return err
		}
		return s.Transition(domain.StateArrivedDropoff, m.now(), milestoneEvent(domain.EventArrivedDropoff, "arrived at dropoff", in))
	})
}

// ConfirmDelivery is geofenced against the dropoff point and may skip the
// explicit arrival step.
func (m *StateMachine) ConfirmDelivery(ctx context.Context, actor domain.Actor, id string, in ports.MilestoneInput) (*domain.Shipment, error) {
	return m.milestone(ctx, actor, id, "deliver", func(s *domain.Shipment) error {
		ready := s.State == domain.StateArrivedDropoff || (s.State == domain.StateEnRoute && s.PickedUp)
		if !ready {
			return invalidFrom(s.State, "deliver")
		}
		if err := m.geofence.Require("dropoff", in.Position, s.Dropoff); err != nil {
			return err
		}
		ev := milestoneEvent(domain.EventDelivered, "package delivered", in)
		ev.Payload["price"] = s.EffectivePrice()
		return s.Transition(domain.StateDelivered, m.now(), ev)
	})
}

// Abandon releases the shipment back to dispatch and starts a new courier cycle.
func (m *StateMachine) Abandon(ctx context.Context, actor domain.Actor, id, reason string) (*domain.Shipment, error) {
	return m.milestone(ctx, actor, id, "abandon", func(s *domain.Shipment) error {
		if err := s.Transition(domain.StateCourierAbandoned, m.now(), domain.TimelineEvent{
			Type:        domain.EventCourierAbandoned,
			Description: fmt.Sprintf("abandoned by courier %s", courierLabel(actor)),
			Payload: map[string]any{
				"courierUid": actor.ID,
				"reason":     strings.TrimSpace(reason),
			},
		}); err != nil {
			return err
		}
		s.ReleaseCourier()
		s.CurrentOffer = nil
		s.AcceptedOffer = nil
		s.PickedUp = false
		s.RejectionCount = 0
		s.RejectedBy = nil
		s.EscalatedAt = nil
		return nil
	})
}

// Cancel is reserved to the owning client and only allowed before pickup.
func (m *StateMachine) Cancel(ctx context.Context, actor domain.Actor, id, reason string) (*domain.Shipment, error) {
	if err := actor.Require(domain.RoleClient); err != nil {
		return nil, err
	}

	return m.commit(ctx, actor, id, "cancel", func(s *domain.Shipment) error {
		if s.ClientID != actor.ID {
			return domain.ErrForbidden
		}
		if s.PickedUp {
			return invalidFrom(s.State, "cancel after pickup")
		}
		if err := s.Transition(domain.StateCancelled, m.now(), domain.TimelineEvent{
			Type:        domain.EventShipmentCancelled,
			Description: "cancelled by client",
			Payload: map[string]any{
				"reason":     strings.TrimSpace(reason),
				"courierUid": s.CourierID,
			},
		}); err != nil {
			return err
		}
		s.ReleaseCourier()
		s.CurrentOffer = nil
		return nil
	})
}

// milestone runs fn for the courier currently holding the shipment.
func (m *StateMachine) milestone(ctx context.Context, actor domain.Actor, id, op string, fn ports.ShipmentMutation) (*domain.Shipment, error) {
	if err := actor.Require(domain.RoleCourier); err != nil {
		return nil, err
	}
	return m.commit(ctx, actor, id, op, func(s *domain.Shipment) error {
		if err := holds(s, actor); err != nil {
			return err
		}
		return fn(s)
	})
}

func holds(s *domain.Shipment, actor domain.Actor) error {
	if s.CourierID == "" || s.CourierID != actor.ID {
		return fmt.Errorf("%w: shipment is not held by %s", domain.ErrForbidden, actor.ID)
	}
	return nil
}

func invalidFrom(state domain.State, action string) error {
	return fmt.Errorf("%w: cannot %s from %s", domain.ErrInvalidTransition, action, state)
}

func milestoneEvent(t domain.EventType, desc string, in ports.MilestoneInput) domain.TimelineEvent {
	return domain.TimelineEvent{
		Type:        t,
		Description: desc,
		Payload: map[string]any{
			"lat": in.Position.Lat,
			"lng": in.Position.Lng,
		},
	}
}

func courierLabel(actor domain.Actor) string {
	if actor.Name != "" {
		return actor.Name
	}
	return actor.ID
}
