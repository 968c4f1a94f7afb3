package domain

import (
	"fmt"
	"slices"
	"time"
)

// EventType names a timeline entry.
type EventType string

const (
	EventShipmentCreated    EventType = "SHIPMENT_CREATED"
	EventDispatchAccepted   EventType = "DISPATCH_ACCEPTED"
	EventCourierRejected    EventType = "COURIER_REJECTED"
	EventRejectionEscalated EventType = "REJECTION_ESCALATED"
	EventOfferSubmitted     EventType = "OFFER_SUBMITTED"
	EventOfferAccepted      EventType = "OFFER_ACCEPTED"
	EventOfferRejected      EventType = "OFFER_REJECTED"
	EventOfferStarted       EventType = "OFFER_STARTED"
	EventArrivedPickup      EventType = "ARRIVED_PICKUP"
	EventPickedUp           EventType = "PICKED_UP"
	EventDepartedToDropoff  EventType = "DEPARTED_TO_DROPOFF"
	EventArrivedDropoff     EventType = "ARRIVED_DROPOFF"
	EventDelivered          EventType = "DELIVERED"
	EventCourierAbandoned   EventType = "COURIER_ABANDONED"
	EventShipmentCancelled  EventType = "SHIPMENT_CANCELLED"
)

// Location is a point with an optional free-text address.
type Location struct {
	Address string  `json:"endereco,omitempty"`
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
}

// HasCoordinates reports whether the point was resolved.
func (l Location) HasCoordinates() bool {
	return l.Lat != 0 || l.Lng != 0
}

// Dimensions holds the package size in centimetres.
type Dimensions struct {
	Length float64 `json:"c"`
	Width  float64 `json:"l"`
	Height float64 `json:"a"`
}

// Package describes what is being shipped.
type Package struct {
	WeightKg      float64    `json:"pesoKg"`
	Dimensions    Dimensions `json:"dim"`
	Fragile       bool       `json:"fragil"`
	DeclaredValue float64    `json:"valorDeclarado"`
}

// Quote is computed once at creation and anchors every negotiation.
type Quote struct {
	BasePrice     float64 `json:"precoBase"`
	VariablePrice float64 `json:"precoVariavel"`
	Total         float64 `json:"preco"`
	DistanceKm    float64 `json:"distKm"`
	DurationMin   float64 `json:"tempoMin"`
	Currency      string  `json:"moeda"`
}

// CourierOffer is a courier-proposed price alternative to the quote.
type CourierOffer struct {
	ID           string    `json:"id"`
	CourierID    string    `json:"courierUid"`
	CourierName  string    `json:"courierName"`
	OfferedPrice float64   `json:"offeredPrice"`
	Message      string    `json:"message,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// Expired reports whether the offer can no longer be accepted at now.
func (o CourierOffer) Expired(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}

// TimelineEvent is one append-only audit entry.
type TimelineEvent struct {
	Type        EventType      `json:"tipo"`
	Description string         `json:"descricao"`
	Payload     map[string]any `json:"payload,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
}

// Shipment is the aggregate root of the dispatch lifecycle. It is stored as a
// single document and mutated only through Transition inside a conditional write.
type Shipment struct {
	ID                 string          `json:"id"`
	ClientID           string          `json:"clienteUid"`
	CourierID          string          `json:"courierUid,omitempty"`
	CourierName        string          `json:"courierName,omitempty"`
	Pickup             Location        `json:"pickup"`
	Dropoff            Location        `json:"dropoff"`
	Package            Package         `json:"pacote"`
	Quote              Quote           `json:"quote"`
	State              State           `json:"state"`
	EtaMin             int             `json:"etaMin"`
	Timeline           []TimelineEvent `json:"timeline"`
	Offers             []CourierOffer  `json:"offers"`
	CurrentOffer       *CourierOffer   `json:"currentOffer,omitempty"`
	AcceptedOffer      *CourierOffer   `json:"acceptedOffer,omitempty"`
	NotificationCount  int             `json:"notificationCount"`
	LastNotificationAt *time.Time      `json:"lastNotificationAt,omitempty"`
	City               string          `json:"city,omitempty"`
	RejectionCount     int             `json:"rejectionCount"`
	RejectedBy         []string        `json:"rejectedBy,omitempty"`
	EscalatedAt        *time.Time      `json:"escalatedAt,omitempty"`
	PickedUp           bool            `json:"pickedUp"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
	Version            int64           `json:"version"`
}

// EffectivePrice is the accepted counter-offer when there is one, otherwise the quote.
func (s *Shipment) EffectivePrice() float64 {
	if s.AcceptedOffer != nil {
		return s.AcceptedOffer.OfferedPrice
	}
	return s.Quote.Total
}

// Transition moves the shipment to `to` and appends exactly one timeline
// event. The table in state.go decides legality.
func (s *Shipment) Transition(to State, at time.Time, event TimelineEvent) error {
	if !CanTransition(s.State, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.State, to)
	}

	payload := make(map[string]any, len(event.Payload)+2)
	for k, v := range event.Payload {
		payload[k] = v
	}
	payload["from"] = string(s.State)
	payload["to"] = string(to)

	event.Payload = payload
	event.Timestamp = at

	s.State = to
	s.Timeline = append(s.Timeline, event)
	s.UpdatedAt = at
	return nil
}

// HasRejected reports whether the courier already turned the shipment down in
// the current dispatch cycle.
func (s *Shipment) HasRejected(courierID string) bool {
	return slices.Contains(s.RejectedBy, courierID)
}

// AssignCourier attaches the courier; the caller performs the transition.
func (s *Shipment) AssignCourier(id, name string) {
	s.CourierID = id
	s.CourierName = name
}

// ReleaseCourier detaches the courier.
func (s *Shipment) ReleaseCourier() {
	s.CourierID = ""
	s.CourierName = ""
}

// LastEvent returns the newest timeline entry.
func (s *Shipment) LastEvent() (TimelineEvent, bool) {
	if len(s.Timeline) == 0 {
		return TimelineEvent{}, false
	}
	return s.Timeline[len(s.Timeline)-1], true
}

// NewShipmentInput is what a client supplies when creating a shipment.
type NewShipmentInput struct {
	Pickup  Location
	Dropoff Location
	Package Package
	City    string
}

// Validate rejects inputs that cannot be priced or dispatched.
func (in NewShipmentInput) Validate() error {
	if in.Package.WeightKg < 0 {
		return Invalidf("weight must not be negative")
	}
	if in.Package.DeclaredValue < 0 {
		return Invalidf("declared value must not be negative")
	}
	d := in.Package.Dimensions
	if d.Length < 0 || d.Width < 0 || d.Height < 0 {
		return Invalidf("dimensions must not be negative")
	}
	if !in.Pickup.HasCoordinates() && in.Pickup.Address == "" {
		return Invalidf("pickup needs coordinates or an address")
	}
	if !in.Dropoff.HasCoordinates() && in.Dropoff.Address == "" {
		return Invalidf("dropoff needs coordinates or an address")
	}
	return nil
}

// NewShipment builds a CREATED shipment with its creation event.
func NewShipment(id string, client Actor, in NewShipmentInput, quote Quote, at time.Time) *Shipment {
	s := &Shipment{
		ID:        id,
		ClientID:  client.ID,
		Pickup:    in.Pickup,
		Dropoff:   in.Dropoff,
		Package:   in.Package,
		Quote:     quote,
		State:     StateCreated,
		EtaMin:    int(quote.DurationMin + 0.5),
		Timeline:  []TimelineEvent{},
		Offers:    []CourierOffer{},
		City:      in.City,
		CreatedAt: at,
		UpdatedAt: at,
	}
	s.Timeline = append(s.Timeline, TimelineEvent{
		Type:        EventShipmentCreated,
		Description: fmt.Sprintf("shipment created by %s", client.ID),
		Payload: map[string]any{
			"to":    string(StateCreated),
			"price": quote.Total,
		},
		Timestamp: at,
	})
	return s
}
