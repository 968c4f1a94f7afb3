package service

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"courier-dispatch/internal/core/logger"
	"courier-dispatch/internal/features/dispatch/domain"
	"courier-dispatch/internal/features/dispatch/ports"

	"github.com/google/uuid"
	"github.com/zoobzio/clockz"
)

const (
	defaultOfferTTL = 24 * time.Hour
	maxOfferMessage = 280
)

// Negotiator runs the counter-offer sub-protocol once a shipment has escalated.
type Negotiator struct {
	committer
	offerTTL time.Duration
	newID    func() string
}

// NewNegotiator creates a new Negotiator; a non-positive ttl means 24h.
func NewNegotiator(repo ports.ShipmentRepository, events ports.EventPublisher, offerTTL time.Duration) *Negotiator {
	if offerTTL <= 0 {
		offerTTL = defaultOfferTTL
	}
	return &Negotiator{
		committer: committer{
			repo:   repo,
			events: events,
			clock:  clockz.RealClock,
			logger: logger.Named("negotiation"),
		},
		offerTTL: offerTTL,
		newID:    uuid.NewString,
	}
}

// WithClock sets a custom clock for testing.
func (n *Negotiator) WithClock(clock clockz.Clock) *Negotiator {
	n.clock = clock
	return n
}

// SubmitOffer records a courier's price proposal and makes it the current
// offer. A newer submission replaces the pointer; history is kept.
func (n *Negotiator) SubmitOffer(ctx context.Context, actor domain.Actor, id string, in ports.OfferInput) (*domain.Shipment, error) {
	if err := actor.Require(domain.RoleCourier); err != nil {
		return nil, err
	}
	if math.IsNaN(in.Price) || math.IsInf(in.Price, 0) || in.Price <= 0 {
		return nil, domain.Invalidf("offer price must be positive")
	}
	message := strings.TrimSpace(in.Message)
	if utf8.RuneCountInString(message) > maxOfferMessage {
		return nil, domain.Invalidf("offer message exceeds %d characters", maxOfferMessage)
	}
	price := math.Round(in.Price*100) / 100

	return n.commit(ctx, actor, id, "submit_offer", func(s *domain.Shipment) error {
		if s.CourierID == actor.ID {
			return fmt.Errorf("%w: courier already holds the shipment", domain.ErrForbidden)
		}
		if !s.State.IsNegotiating() {
			return fmt.Errorf("%w: shipment is %s", domain.ErrNoLongerAvailable, s.State)
		}

		at := n.now()
		offer := domain.CourierOffer{
			ID:           n.newID(),
			CourierID:    actor.ID,
			CourierName:  actor.Name,
			OfferedPrice: price,
			Message:      message,
			CreatedAt:    at,
			ExpiresAt:    at.Add(n.offerTTL),
		}

		if err := s.Transition(domain.StateCounterOffer, at, domain.TimelineEvent{
			Type:        domain.EventOfferSubmitted,
			Description: fmt.Sprintf("courier %s offered %.2f", courierLabel(actor), price),
			Payload: map[string]any{
				"offerId":      offer.ID,
				"courierUid":   actor.ID,
				"offeredPrice": price,
				"quotePrice":   s.Quote.Total,
			},
		}); err != nil {
			return err
		}
		s.Offers = append(s.Offers, offer)
		s.CurrentOffer = &offer
		return nil
	})
}

// AcceptOffer assigns the offering courier and makes the offered price the
// effective price. offerID must still be the current offer at write time, so a
// replacement submitted after the client looked loses with no_longer_available.
func (n *Negotiator) AcceptOffer(ctx context.Context, actor domain.Actor, id, offerID string) (*domain.Shipment, error) {
	if err := actor.Require(domain.RoleClient); err != nil {
		return nil, err
	}
	if offerID == "" {
		return nil, domain.Invalidf("offer id is required")
	}

	return n.commit(ctx, actor, id, "accept_offer", func(s *domain.Shipment) error {
		offer, err := currentOffer(s, actor, offerID)
		if err != nil {
			return err
		}

		at := n.now()
		if offer.Expired(at) {
			return fmt.Errorf("%w: expired at %s", domain.ErrOfferExpired, offer.ExpiresAt.Format(time.RFC3339))
		}

		if err := s.Transition(domain.StateAcceptedOffer, at, domain.TimelineEvent{
			Type:        domain.EventOfferAccepted,
			Description: fmt.Sprintf("offer of %.2f from %s accepted", offer.OfferedPrice, offer.CourierID),
			Payload: map[string]any{
				"offerId":      offer.ID,
				"courierUid":   offer.CourierID,
				"offeredPrice": offer.OfferedPrice,
				"quotePrice":   s.Quote.Total,
			},
		}); err != nil {
			return err
		}
		s.AcceptedOffer = &offer
		s.CurrentOffer = nil
		s.AssignCourier(offer.CourierID, offer.CourierName)
		return nil
	})
}

// RejectOffer returns the shipment to normal dispatch. The rejection count
// is left untouched. Like AcceptOffer it applies only to offerID.
func (n *Negotiator) RejectOffer(ctx context.Context, actor domain.Actor, id, offerID string) (*domain.Shipment, error) {
	if err := actor.Require(domain.RoleClient); err != nil {
		return nil, err
	}
	if offerID == "" {
		return nil, domain.Invalidf("offer id is required")
	}

	return n.commit(ctx, actor, id, "reject_offer", func(s *domain.Shipment) error {
		offer, err := currentOffer(s, actor, offerID)
		if err != nil {
			return err
		}

		if err := s.Transition(domain.StateCreated, n.now(), domain.TimelineEvent{
			Type:        domain.EventOfferRejected,
			Description: fmt.Sprintf("offer of %.2f from %s rejected", offer.OfferedPrice, offer.CourierID),
			Payload: map[string]any{
				"offerId":      offer.ID,
				"courierUid":   offer.CourierID,
				"offeredPrice": offer.OfferedPrice,
			},
		}); err != nil {
			return err
		}
		s.CurrentOffer = nil
		return nil
	})
}

func currentOffer(s *domain.Shipment, client domain.Actor, offerID string) (domain.CourierOffer, error) {
	if s.ClientID != client.ID {
		return domain.CourierOffer{}, domain.ErrForbidden
	}
	if s.State != domain.StateCounterOffer || s.CurrentOffer == nil {
		return domain.CourierOffer{}, fmt.Errorf("%w: shipment is %s", domain.ErrNoCurrentOffer, s.State)
	}
	if s.CurrentOffer.ID != offerID {
		return domain.CourierOffer{}, fmt.Errorf("%w: offer %s was replaced by %s", domain.ErrNoLongerAvailable, offerID, s.CurrentOffer.ID)
	}
	return *s.CurrentOffer, nil
}
