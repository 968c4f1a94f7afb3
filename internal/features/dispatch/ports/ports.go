package ports

import (
	"context"
	"time"

	"courier-dispatch/internal/features/dispatch/domain"
)

// ShipmentMutation changes a freshly read shipment. Returning an error aborts
// the write. It may run more than once under contention.
type ShipmentMutation func(s *domain.Shipment) error

// ShipmentRepository is the secondary port for shipment documents.
type ShipmentRepository interface {
	Create(ctx context.Context, s *domain.Shipment) error
	Get(ctx context.Context, id string) (*domain.Shipment, error)
	// Update applies fn to the stored shipment and commits only if nobody else
	// wrote it in between.
	Update(ctx context.Context, id string, fn ShipmentMutation) (*domain.Shipment, error)
	ListByCity(ctx context.Context, city string) ([]*domain.Shipment, error)
}

// CourierDirectory tracks which couriers are active in which city so the
// sweeper knows whom to push shipments to.
type CourierDirectory interface {
	RegisterCourier(ctx context.Context, city, courierID string) error
	CouriersIn(ctx context.Context, city string) ([]string, error)
	Cities(ctx context.Context) ([]string, error)
}

// Route is what the routing service returns for a path.
type Route struct {
	Coordinates []domain.Location `json:"coordinates"`
	DistanceKm  float64           `json:"distanceKm"`
	DurationMin float64           `json:"durationMin"`
	Estimated   bool              `json:"estimated"`
}

// RoutingService resolves paths and addresses.
type RoutingService interface {
	Route(ctx context.Context, from, to domain.Location) (*Route, error)
	Geocode(ctx context.Context, address string) (domain.Location, error)
}

// Notification is what a courier is shown about a shipment.
type Notification struct {
	ShipmentID string    `json:"shipmentId"`
	City       string    `json:"city,omitempty"`
	Price      float64   `json:"price"`
	DistanceKm float64   `json:"distKm"`
	SentAt     time.Time `json:"sentAt"`
}

// Notifier delivers a notification to one courier.
type Notifier interface {
	Notify(ctx context.Context, courierID string, n Notification) error
}

// ShipmentEvent is a lifecycle change published after it is committed.
type ShipmentEvent struct {
	ShipmentID string               `json:"shipmentId"`
	Type       domain.EventType     `json:"type"`
	State      domain.State         `json:"state"`
	CourierID  string               `json:"courierUid,omitempty"`
	Price      float64              `json:"price"`
	Event      domain.TimelineEvent `json:"event"`
}

// EventPublisher streams lifecycle events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, ev ShipmentEvent) error
	Close() error
}

// MilestoneInput carries the courier position at confirmation time.
type MilestoneInput struct {
	Position domain.Location
}

// OfferInput is a counter-offer submission.
type OfferInput struct {
	Price   float64
	Message string
}

// DispatchService is the primary port used by the HTTP handler.
type DispatchService interface {
	Quote(ctx context.Context, in domain.NewShipmentInput) (domain.Quote, error)
	CreateShipment(ctx context.Context, actor domain.Actor, in domain.NewShipmentInput) (*domain.Shipment, error)
	Get(ctx context.Context, actor domain.Actor, id string) (*domain.Shipment, error)
	Feed(ctx context.Context, actor domain.Actor) ([]*domain.Shipment, error)

	OpenWindow(ctx context.Context, actor domain.Actor, id string) (time.Time, error)
	CloseWindow(ctx context.Context, actor domain.Actor, id string) error
	AcceptWindow(ctx context.Context, actor domain.Actor, id string) (*domain.Shipment, error)
	RejectWindow(ctx context.Context, actor domain.Actor, id string) (*domain.Shipment, error)

	StartAcceptedOffer(ctx context.Context, actor domain.Actor, id string) (*domain.Shipment, error)
	ConfirmArrivalAtPickup(ctx context.Context, actor domain.Actor, id string, in MilestoneInput) (*domain.Shipment, error)
	ConfirmPickup(ctx context.Context, actor domain.Actor, id string, in MilestoneInput) (*domain.Shipment, error)
	DepartToDropoff(ctx context.Context, actor domain.Actor, id string) (*domain.Shipment, error)
	ConfirmArrivalAtDropoff(ctx context.Context, actor domain.Actor, id string, in MilestoneInput) (*domain.Shipment, error)
	ConfirmDelivery(ctx context.Context, actor domain.Actor, id string, in MilestoneInput) (*domain.Shipment, error)
	Abandon(ctx context.Context, actor domain.Actor, id, reason string) (*domain.Shipment, error)
	Cancel(ctx context.Context, actor domain.Actor, id, reason string) (*domain.Shipment, error)

	SubmitOffer(ctx context.Context, actor domain.Actor, id string, in OfferInput) (*domain.Shipment, error)
	// AcceptOffer and RejectOffer apply to offerID only; a replaced offer is
	// reported as no longer available.
	AcceptOffer(ctx context.Context, actor domain.Actor, id, offerID string) (*domain.Shipment, error)
	RejectOffer(ctx context.Context, actor domain.Actor, id, offerID string) (*domain.Shipment, error)
}
