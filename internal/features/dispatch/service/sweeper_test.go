package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"courier-dispatch/internal/features/dispatch/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSweeper(h *harness) *DispatchSweeper {
	throttler := domain.NewThrottler(3, time.Minute)
	ns := NewNotificationService(h.repo, h.repo, h.notifier, throttler).WithClock(h.clock)
	return NewDispatchSweeper(h.repo, h.repo, ns, throttler, 15*time.Second).WithClock(h.clock)
}

func TestDispatchSweeper_SweepRotatesCouriers(t *testing.T) {
	h := newHarness(t)
	sw := newSweeper(h)
	ctx := context.Background()

	require.NoError(t, h.repo.RegisterCourier(ctx, "Campinas", "c2"))
	require.NoError(t, h.repo.RegisterCourier(ctx, "Campinas", "c1"))
	s := h.createIn(t, "Campinas")

	n, err := sw.Sweep(ctx, "campinas")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = sw.Sweep(ctx, "campinas")
	require.NoError(t, err)
	assert.Zero(t, n, "throttled")

	h.clock.Advance(61 * time.Second)
	n, err = sw.Sweep(ctx, "campinas")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	sent := h.notifier.all()
	require.Len(t, sent, 2)
	assert.Equal(t, "c1", sent[0].courierID)
	assert.Equal(t, "c2", sent[1].courierID)
	assert.Equal(t, s.ID, sent[1].msg.ShipmentID)
}

func TestDispatchSweeper_SkipsCouriersWhoRejected(t *testing.T) {
	h := newHarness(t)
	sw := newSweeper(h)
	ctx := context.Background()

	require.NoError(t, h.repo.RegisterCourier(ctx, "Campinas", "c1"))
	require.NoError(t, h.repo.RegisterCourier(ctx, "Campinas", "c2"))
	s := h.createIn(t, "Campinas")

	_, err := h.machine.RejectDispatch(ctx, courier("c1"), s.ID, domain.CauseExplicit)
	require.NoError(t, err)

	n, err := sw.Sweep(ctx, "campinas")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	sent := h.notifier.all()
	require.Len(t, sent, 1)
	assert.Equal(t, "c2", sent[0].courierID)

	// Once every courier has rejected, nobody in the city is left to notify.
	_, err = h.machine.RejectDispatch(ctx, courier("c2"), s.ID, domain.CauseExplicit)
	require.NoError(t, err)
	h.clock.Advance(61 * time.Second)

	n, err = sw.Sweep(ctx, "campinas")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDispatchSweeper_SkipsCitiesWithoutCouriers(t *testing.T) {
	h := newHarness(t)
	sw := newSweeper(h)
	ctx := context.Background()

	h.createIn(t, "Santos")
	require.NoError(t, h.repo.RegisterCourier(ctx, "Campinas", "c1"))
	h.createIn(t, "Campinas")

	n, err := sw.SweepAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	sent := h.notifier.all()
	require.Len(t, sent, 1)
	assert.Equal(t, "Campinas", cityOf(t, h, sent[0].msg.ShipmentID))
}

func cityOf(t *testing.T, h *harness, id string) string {
	t.Helper()
	s, err := h.repo.Get(context.Background(), id)
	require.NoError(t, err)
	return s.City
}

func TestDispatchSweeper_Run(t *testing.T) {
	h := newHarness(t)
	sw := newSweeper(h)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, h.repo.RegisterCourier(ctx, "Campinas", "c1"))
	h.createIn(t, "Campinas")

	done := make(chan error, 1)
	go func() { done <- sw.Run(ctx) }()

	assert.Eventually(t, func() bool {
		h.clock.Advance(15 * time.Second)
		h.clock.BlockUntilReady()
		return len(h.notifier.all()) > 0
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.True(t, errors.Is(err, context.Canceled))
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop")
	}
}
