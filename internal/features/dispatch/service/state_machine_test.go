package service

import (
	"context"
	"errors"
	"testing"

	"courier-dispatch/internal/features/dispatch/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestStateMachine_CreateShipment(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		h := newHarness(t)

		s := h.create(t)

		assert.NotEmpty(t, s.ID)
		assert.Equal(t, domain.StateCreated, s.State)
		assert.Equal(t, "client-1", s.ClientID)
		assert.Equal(t, "Campinas", s.City)
		assert.InDelta(t, 12.0, s.Quote.Total, 1e-9)
		assert.InDelta(t, 7.0, s.Quote.VariablePrice, 1e-9)
		assert.Equal(t, 12, s.EtaMin)
		require.Len(t, s.Timeline, 1)
		assert.Equal(t, []domain.EventType{domain.EventShipmentCreated}, h.events.types())

		stored, err := h.repo.Get(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, s.ID, stored.ID)
	})

	t.Run("Geocodes address-only locations", func(t *testing.T) {
		h := newHarness(t)

		s, err := h.machine.CreateShipment(ctx, client, domain.NewShipmentInput{
			Pickup:  domain.Location{Address: "Av. Paulista, 1000"},
			Dropoff: dropoffPoint,
		})
		require.NoError(t, err)
		assert.Equal(t, pickupPoint.Lat, s.Pickup.Lat)
		assert.Equal(t, "Av. Paulista, 1000", s.Pickup.Address)
	})

	t.Run("Unknown address is a validation failure", func(t *testing.T) {
		h := newHarness(t)

		_, err := h.machine.CreateShipment(ctx, client, domain.NewShipmentInput{
			Pickup:  domain.Location{Address: "Rua Inexistente"},
			Dropoff: dropoffPoint,
		})
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Empty(t, h.events.types())
	})

	t.Run("Requires a client session", func(t *testing.T) {
		h := newHarness(t)
		in := domain.NewShipmentInput{Pickup: pickupPoint, Dropoff: dropoffPoint}

		_, err := h.machine.CreateShipment(ctx, domain.Actor{}, in)
		assert.ErrorIs(t, err, domain.ErrNoSession)

		_, err = h.machine.CreateShipment(ctx, courier("c1"), in)
		assert.ErrorIs(t, err, domain.ErrForbidden)
	})
}

func TestStateMachine_Quote(t *testing.T) {
	h := newHarness(t)

	q, err := h.machine.Quote(context.Background(), domain.NewShipmentInput{
		Pickup:  pickupPoint,
		Dropoff: dropoffPoint,
		Package: domain.Package{WeightKg: 6, Fragile: true},
	})
	require.NoError(t, err)
	assert.InDelta(t, 16.56, q.Total, 1e-9)
	assert.Empty(t, h.events.types())
}

func TestStateMachine_PrimaryPath(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	c1 := courier("c1")
	s := h.create(t)

	s, err := h.machine.AcceptDispatch(ctx, c1, s.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateEnRoute, s.State)
	assert.Equal(t, "c1", s.CourierID)

	s, err = h.machine.ConfirmArrivalAtPickup(ctx, c1, s.ID, position(metersNorth(pickupPoint, 80)))
	require.NoError(t, err)
	assert.Equal(t, domain.StateArrivedPickup, s.State)

	s, err = h.machine.ConfirmPickup(ctx, c1, s.ID, position(pickupPoint))
	require.NoError(t, err)
	assert.Equal(t, domain.StatePickedUp, s.State)
	assert.True(t, s.PickedUp)

	s, err = h.machine.DepartToDropoff(ctx, c1, s.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateEnRoute, s.State)

	s, err = h.machine.ConfirmArrivalAtDropoff(ctx, c1, s.ID, position(dropoffPoint))
	require.NoError(t, err)
	assert.Equal(t, domain.StateArrivedDropoff, s.State)

	s, err = h.machine.ConfirmDelivery(ctx, c1, s.ID, position(dropoffPoint))
	require.NoError(t, err)
	assert.Equal(t, domain.StateDelivered, s.State)
	assert.Equal(t, "c1", s.CourierID)

	// One creation event plus one per transition.
	require.Len(t, s.Timeline, 7)
	for i := 1; i < len(s.Timeline); i++ {
		assert.False(t, s.Timeline[i].Timestamp.Before(s.Timeline[i-1].Timestamp))
	}
	assert.Equal(t, []domain.EventType{
		domain.EventShipmentCreated,
		domain.EventDispatchAccepted,
		domain.EventArrivedPickup,
		domain.EventPickedUp,
		domain.EventDepartedToDropoff,
		domain.EventArrivedDropoff,
		domain.EventDelivered,
	}, h.events.types())

	_, err = h.machine.Abandon(ctx, c1, s.ID, "")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestStateMachine_DeliverWithoutArrivalStep(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	c1 := courier("c1")
	s := h.create(t)

	_, err := h.machine.AcceptDispatch(ctx, c1, s.ID)
	require.NoError(t, err)
	_, err = h.machine.ConfirmArrivalAtPickup(ctx, c1, s.ID, position(pickupPoint))
	require.NoError(t, err)
	_, err = h.machine.ConfirmPickup(ctx, c1, s.ID, position(pickupPoint))
	require.NoError(t, err)
	_, err = h.machine.DepartToDropoff(ctx, c1, s.ID)
	require.NoError(t, err)

	s, err = h.machine.ConfirmDelivery(ctx, c1, s.ID, position(dropoffPoint))
	require.NoError(t, err)
	assert.Equal(t, domain.StateDelivered, s.State)
}

func TestStateMachine_Geofence(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	c1 := courier("c1")
	s := h.create(t)

	_, err := h.machine.AcceptDispatch(ctx, c1, s.ID)
	require.NoError(t, err)

	_, err = h.machine.ConfirmArrivalAtPickup(ctx, c1, s.ID, position(metersNorth(pickupPoint, 150)))
	require.Error(t, err)
	assert.Equal(t, domain.ReasonOutsideGeofence, domain.ReasonOf(err))

	var gerr *domain.GeofenceError
	require.True(t, errors.As(err, &gerr))
	assert.InDelta(t, 150, gerr.DistanceMeters, 1)

	stored, err := h.repo.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateEnRoute, stored.State)
	assert.Len(t, stored.Timeline, 2)

	// Retrying once close enough succeeds.
	_, err = h.machine.ConfirmArrivalAtPickup(ctx, c1, s.ID, position(metersNorth(pickupPoint, 30)))
	assert.NoError(t, err)
}

func TestStateMachine_MilestoneGuards(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	c1 := courier("c1")
	s := h.create(t)

	_, err := h.machine.ConfirmPickup(ctx, c1, s.ID, position(pickupPoint))
	assert.ErrorIs(t, err, domain.ErrForbidden, "not held yet")

	_, err = h.machine.AcceptDispatch(ctx, c1, s.ID)
	require.NoError(t, err)

	_, err = h.machine.ConfirmArrivalAtPickup(ctx, courier("c2"), s.ID, position(pickupPoint))
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = h.machine.ConfirmPickup(ctx, c1, s.ID, position(pickupPoint))
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = h.machine.ConfirmArrivalAtDropoff(ctx, c1, s.ID, position(dropoffPoint))
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = h.machine.DepartToDropoff(ctx, c1, s.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	_, err = h.machine.ConfirmArrivalAtPickup(ctx, client, s.ID, position(pickupPoint))
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = h.machine.StartAcceptedOffer(ctx, c1, s.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

// TestStateMachine_ConcurrentAccept checks that no interleaving of accepts
// lets two couriers hold the same shipment.
func TestStateMachine_ConcurrentAccept(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	s := h.create(t)

	const couriers = 10
	results := make([]error, couriers)

	var g errgroup.Group
	for i := 0; i < couriers; i++ {
		g.Go(func() error {
			_, results[i] = h.machine.AcceptDispatch(ctx, courier(string(rune('a'+i))), s.ID)
			return nil
		})
	}
	require.NoError(t, g.Wait())

	winner := ""
	for i, err := range results {
		if err == nil {
			require.Empty(t, winner, "two couriers won")
			winner = string(rune('a' + i))
			continue
		}
		assert.Equal(t, domain.ReasonNoLongerAvailable, domain.ReasonOf(err))
	}
	require.NotEmpty(t, winner)

	stored, err := h.repo.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, winner, stored.CourierID)
	assert.Len(t, stored.Timeline, 2)
}

func TestStateMachine_RejectionEscalation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	s := h.create(t)

	s, err := h.machine.RejectDispatch(ctx, courier("c1"), s.ID, domain.CauseExplicit)
	require.NoError(t, err)
	assert.Equal(t, domain.StateCreated, s.State)
	assert.Equal(t, 1, s.RejectionCount)

	s, err = h.machine.RejectDispatch(ctx, courier("c2"), s.ID, domain.CauseTimeout)
	require.NoError(t, err)
	assert.Equal(t, domain.StateCreated, s.State)

	s, err = h.machine.RejectDispatch(ctx, courier("c3"), s.ID, domain.CauseExplicit)
	require.NoError(t, err)
	assert.Equal(t, domain.StateOffered, s.State)
	assert.NotNil(t, s.EscalatedAt)

	s, err = h.machine.RejectDispatch(ctx, courier("c4"), s.ID, domain.CauseExplicit)
	require.NoError(t, err)
	assert.Equal(t, domain.StateOffered, s.State)
	assert.Equal(t, 4, s.RejectionCount)

	escalations := 0
	for _, ev := range s.Timeline {
		if ev.Type == domain.EventRejectionEscalated {
			escalations++
		}
	}
	assert.Equal(t, 1, escalations)

	// A courier can still take it at the quoted price.
	s, err = h.machine.AcceptDispatch(ctx, courier("c5"), s.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateEnRoute, s.State)

	_, err = h.machine.RejectDispatch(ctx, courier("c6"), s.ID, domain.CauseExplicit)
	assert.ErrorIs(t, err, domain.ErrNoLongerAvailable)
}

// TestStateMachine_ConcurrentRejections checks that counts read from the
// store, so parallel rejections never lose an increment.
func TestStateMachine_ConcurrentRejections(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	s := h.create(t)

	var g errgroup.Group
	for i := 0; i < 2; i++ {
		g.Go(func() error {
			_, err := h.machine.RejectDispatch(ctx, courier(string(rune('a'+i))), s.ID, domain.CauseExplicit)
			return err
		})
	}
	require.NoError(t, g.Wait())

	stored, err := h.repo.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.RejectionCount)
	assert.Len(t, stored.Timeline, 3)
}

func TestStateMachine_Abandon(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	s := h.create(t)
	h.escalate(t, s.ID)

	s, err := h.machine.AcceptDispatch(ctx, courier("c1"), s.ID)
	require.NoError(t, err)

	_, err = h.machine.Abandon(ctx, courier("c2"), s.ID, "")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	s, err = h.machine.Abandon(ctx, courier("c1"), s.ID, "flat tyre")
	require.NoError(t, err)
	assert.Equal(t, domain.StateCourierAbandoned, s.State)
	assert.Empty(t, s.CourierID)
	assert.Zero(t, s.RejectionCount)
	assert.Nil(t, s.EscalatedAt)

	last, _ := s.LastEvent()
	assert.Equal(t, "flat tyre", last.Payload["reason"])

	s, err = h.machine.AcceptDispatch(ctx, courier("c2"), s.ID)
	require.NoError(t, err)
	assert.Equal(t, "c2", s.CourierID)
}

func TestStateMachine_Cancel(t *testing.T) {
	ctx := context.Background()

	t.Run("Owner cancels before pickup", func(t *testing.T) {
		h := newHarness(t)
		s := h.create(t)
		_, err := h.machine.AcceptDispatch(ctx, courier("c1"), s.ID)
		require.NoError(t, err)

		_, err = h.machine.Cancel(ctx, intruder, s.ID, "")
		assert.ErrorIs(t, err, domain.ErrForbidden)

		_, err = h.machine.Cancel(ctx, courier("c1"), s.ID, "")
		assert.ErrorIs(t, err, domain.ErrForbidden)

		s, err = h.machine.Cancel(ctx, client, s.ID, "changed my mind")
		require.NoError(t, err)
		assert.Equal(t, domain.StateCancelled, s.State)
		assert.Empty(t, s.CourierID)

		_, err = h.machine.AcceptDispatch(ctx, courier("c2"), s.ID)
		assert.ErrorIs(t, err, domain.ErrNoLongerAvailable)

		_, err = h.machine.Cancel(ctx, client, s.ID, "")
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("Not after pickup", func(t *testing.T) {
		h := newHarness(t)
		s := h.create(t)
		c1 := courier("c1")
		_, err := h.machine.AcceptDispatch(ctx, c1, s.ID)
		require.NoError(t, err)
		_, err = h.machine.ConfirmArrivalAtPickup(ctx, c1, s.ID, position(pickupPoint))
		require.NoError(t, err)
		_, err = h.machine.ConfirmPickup(ctx, c1, s.ID, position(pickupPoint))
		require.NoError(t, err)
		_, err = h.machine.DepartToDropoff(ctx, c1, s.ID)
		require.NoError(t, err)

		_, err = h.machine.Cancel(ctx, client, s.ID, "")
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})
}

func TestStateMachine_Get(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	s := h.create(t)

	_, err := h.machine.Get(ctx, client, s.ID)
	assert.NoError(t, err)

	_, err = h.machine.Get(ctx, intruder, s.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = h.machine.Get(ctx, courier("c9"), s.ID)
	assert.NoError(t, err, "open shipments are visible to couriers")

	_, err = h.machine.AcceptDispatch(ctx, courier("c1"), s.ID)
	require.NoError(t, err)

	_, err = h.machine.Get(ctx, courier("c9"), s.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = h.machine.Get(ctx, courier("c1"), s.ID)
	assert.NoError(t, err)

	_, err = h.machine.Get(ctx, domain.Actor{}, s.ID)
	assert.ErrorIs(t, err, domain.ErrNoSession)

	_, err = h.machine.Get(ctx, client, "missing")
	assert.Equal(t, domain.ReasonNotFound, domain.ReasonOf(err))
}

func TestStateMachine_PublishFailureDoesNotFailTransition(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	s := h.create(t)

	h.events.err = errors.New("broker down")

	s, err := h.machine.AcceptDispatch(ctx, courier("c1"), s.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StateEnRoute, s.State)
}
