package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"courier-dispatch/internal/core/docstore"
	"courier-dispatch/internal/features/dispatch/adapters"
	"courier-dispatch/internal/features/dispatch/domain"
	"courier-dispatch/internal/features/dispatch/ports"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/clockz"
)

var (
	pickupPoint  = domain.Location{Lat: -23.5614, Lng: -46.6558}
	dropoffPoint = domain.Location{Lat: -23.5505, Lng: -46.6333}

	client   = domain.Actor{ID: "client-1", Name: "Loja Azul", Role: domain.RoleClient, City: "Campinas"}
	intruder = domain.Actor{ID: "client-2", Role: domain.RoleClient}
)

func courier(id string) domain.Actor {
	return domain.Actor{ID: id, Name: "Courier " + id, Role: domain.RoleCourier, City: "Campinas"}
}

// metersNorth offsets a point along a meridian.
func metersNorth(l domain.Location, meters float64) domain.Location {
	return domain.Location{Lat: l.Lat + meters/111195.0, Lng: l.Lng}
}

func position(l domain.Location) ports.MilestoneInput {
	return ports.MilestoneInput{Position: l}
}

type stubRouter struct {
	distanceKm  float64
	durationMin float64
	addresses   map[string]domain.Location
}

func (r *stubRouter) Route(_ context.Context, from, to domain.Location) (*ports.Route, error) {
	return &ports.Route{
		Coordinates: []domain.Location{from, to},
		DistanceKm:  r.distanceKm,
		DurationMin: r.durationMin,
	}, nil
}

func (r *stubRouter) Geocode(_ context.Context, address string) (domain.Location, error) {
	loc, ok := r.addresses[address]
	if !ok {
		return domain.Location{}, errors.New("address not found")
	}
	return loc, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []ports.ShipmentEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev ports.ShipmentEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []domain.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.EventType, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

type sentNotification struct {
	courierID string
	msg       ports.Notification
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (n *recordingNotifier) Notify(_ context.Context, courierID string, msg ports.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{courierID: courierID, msg: msg})
	return nil
}

func (n *recordingNotifier) all() []sentNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentNotification(nil), n.sent...)
}

type harness struct {
	repo       *adapters.RedisShipmentRepository
	events     *recordingPublisher
	notifier   *recordingNotifier
	clock      *clockz.FakeClock
	machine    *StateMachine
	negotiator *Negotiator
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	mr := miniredis.RunT(t)

	store, err := docstore.NewRedisStore("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	h := &harness{
		repo:     adapters.NewRedisShipmentRepository(store),
		events:   &recordingPublisher{},
		notifier: &recordingNotifier{},
		clock:    clockz.NewFakeClock(),
	}

	router := &stubRouter{
		distanceKm:  2.5,
		durationMin: 12,
		addresses: map[string]domain.Location{
			"Av. Paulista, 1000": pickupPoint,
		},
	}

	h.machine = NewStateMachine(h.repo, router, h.events, Settings{
		Pricing:             domain.DefaultPricingRules(),
		GeofenceMeters:      100,
		EscalationThreshold: 3,
	}).WithClock(h.clock)
	h.negotiator = NewNegotiator(h.repo, h.events, 24*time.Hour).WithClock(h.clock)
	return h
}

func (h *harness) create(t *testing.T) *domain.Shipment {
	t.Helper()
	s, err := h.machine.CreateShipment(context.Background(), client, domain.NewShipmentInput{
		Pickup:  pickupPoint,
		Dropoff: dropoffPoint,
		Package: domain.Package{WeightKg: 1},
	})
	require.NoError(t, err)
	return s
}

// escalate rejects s with three different couriers.
func (h *harness) escalate(t *testing.T, id string) *domain.Shipment {
	t.Helper()
	var s *domain.Shipment
	for _, c := range []string{"r1", "r2", "r3"} {
		var err error
		s, err = h.machine.RejectDispatch(context.Background(), courier(c), id, domain.CauseExplicit)
		require.NoError(t, err)
	}
	require.Equal(t, domain.StateOffered, s.State)
	return s
}
