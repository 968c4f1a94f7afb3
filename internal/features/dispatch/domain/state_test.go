package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allStates = []State{
	StateCreated, StatePriced, StatePaymentPending, StatePaid, StateDispatching,
	StateAssigned, StateArrivedPickup, StatePickedUp, StateEnRoute, StateArrivedDropoff,
	StateDelivered, StateCancelled, StateOffered, StateCounterOffer, StateAcceptedOffer,
	StateCourierAbandoned,
}

func TestTransitionTable(t *testing.T) {
	t.Run("Every state is known", func(t *testing.T) {
		for _, s := range allStates {
			assert.True(t, s.IsValid(), s)
		}
		assert.False(t, State("SHIPPED").IsValid())
	})

	t.Run("Targets are known states", func(t *testing.T) {
		for _, from := range allStates {
			for _, to := range AllowedTransitions(from) {
				assert.True(t, to.IsValid(), "%s -> %s", from, to)
			}
		}
	})

	t.Run("Terminal states", func(t *testing.T) {
		assert.True(t, StateDelivered.IsTerminal())
		assert.True(t, StateCancelled.IsTerminal())
		assert.False(t, StateCourierAbandoned.IsTerminal())
		for _, to := range allStates {
			assert.False(t, CanTransition(StateDelivered, to))
			assert.False(t, CanTransition(StateCancelled, to))
		}
	})

	t.Run("Primary path", func(t *testing.T) {
		path := []State{StateCreated, StateEnRoute, StateArrivedPickup, StatePickedUp, StateEnRoute, StateArrivedDropoff, StateDelivered}
		for i := 1; i < len(path); i++ {
			assert.True(t, CanTransition(path[i-1], path[i]), "%s -> %s", path[i-1], path[i])
		}
	})

	t.Run("Negotiation path", func(t *testing.T) {
		assert.True(t, CanTransition(StateCreated, StateOffered))
		assert.True(t, CanTransition(StateOffered, StateCounterOffer))
		assert.True(t, CanTransition(StateCounterOffer, StateAcceptedOffer))
		assert.True(t, CanTransition(StateCounterOffer, StateCreated))
		assert.True(t, CanTransition(StateAcceptedOffer, StateEnRoute))
		assert.False(t, CanTransition(StateCreated, StateAcceptedOffer))
		assert.False(t, CanTransition(StateOffered, StateAcceptedOffer))
	})

	t.Run("Held states may be abandoned", func(t *testing.T) {
		for _, s := range allStates {
			if s.HoldsCourier() && s != StateDelivered {
				assert.True(t, CanTransition(s, StateCourierAbandoned), s)
			}
		}
		assert.False(t, CanTransition(StateCreated, StateCourierAbandoned))
	})

	t.Run("No cancel after pickup", func(t *testing.T) {
		assert.False(t, CanTransition(StatePickedUp, StateCancelled))
		assert.False(t, CanTransition(StateArrivedDropoff, StateCancelled))
	})
}

func TestShipment_Transition(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	s := &Shipment{ID: "s1", State: StateCreated}

	steps := []State{StateEnRoute, StateArrivedPickup, StatePickedUp, StateEnRoute}
	for i, to := range steps {
		at := t0.Add(time.Duration(i) * time.Minute)
		require.NoError(t, s.Transition(to, at, TimelineEvent{Type: EventType(to), Description: "step"}))
	}

	assert.Equal(t, StateEnRoute, s.State)
	require.Len(t, s.Timeline, len(steps))
	for i, ev := range s.Timeline {
		assert.Equal(t, t0.Add(time.Duration(i)*time.Minute), ev.Timestamp)
		assert.Equal(t, string(steps[i]), ev.Payload["to"])
	}
	assert.Equal(t, t0.Add(3*time.Minute), s.UpdatedAt)

	err := s.Transition(StateCreated, t0, TimelineEvent{Type: "BAD"})
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Len(t, s.Timeline, len(steps))
	assert.Equal(t, StateEnRoute, s.State)
}

func TestShipment_TransitionDoesNotAliasPayload(t *testing.T) {
	payload := map[string]any{"courierUid": "c1"}
	s := &Shipment{State: StateCreated}

	require.NoError(t, s.Transition(StateEnRoute, time.Now(), TimelineEvent{Payload: payload}))

	_, leaked := payload["from"]
	assert.False(t, leaked)
	assert.Equal(t, "CREATED", s.Timeline[0].Payload["from"])
}

func TestShipment_EffectivePrice(t *testing.T) {
	s := &Shipment{Quote: Quote{Total: 12}}
	assert.InDelta(t, 12.0, s.EffectivePrice(), 1e-9)

	s.AcceptedOffer = &CourierOffer{OfferedPrice: 18.5}
	assert.InDelta(t, 18.5, s.EffectivePrice(), 1e-9)
}

func TestNewShipmentInput_Validate(t *testing.T) {
	valid := NewShipmentInput{
		Pickup:  Location{Lat: -23.55, Lng: -46.63},
		Dropoff: Location{Address: "Av. Paulista, 1000"},
		Package: Package{WeightKg: 2},
	}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(*NewShipmentInput)
	}{
		{"Negative weight", func(in *NewShipmentInput) { in.Package.WeightKg = -1 }},
		{"Negative value", func(in *NewShipmentInput) { in.Package.DeclaredValue = -1 }},
		{"Negative dimension", func(in *NewShipmentInput) { in.Package.Dimensions.Height = -1 }},
		{"Empty pickup", func(in *NewShipmentInput) { in.Pickup = Location{} }},
		{"Empty dropoff", func(in *NewShipmentInput) { in.Dropoff = Location{} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			assert.ErrorIs(t, in.Validate(), ErrValidation)
		})
	}
}

func TestNewShipment(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	client := Actor{ID: "client-1", Role: RoleClient}

	s := NewShipment("s1", client, NewShipmentInput{City: "Campinas"}, Quote{Total: 9.5, DurationMin: 11.6}, at)

	assert.Equal(t, StateCreated, s.State)
	assert.Equal(t, "client-1", s.ClientID)
	assert.Empty(t, s.CourierID)
	assert.Equal(t, 12, s.EtaMin)
	assert.Equal(t, "Campinas", s.City)
	require.Len(t, s.Timeline, 1)
	assert.Equal(t, EventShipmentCreated, s.Timeline[0].Type)
	assert.NotNil(t, s.Offers)
}
