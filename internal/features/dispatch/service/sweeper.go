package service

import (
	"context"
	"errors"
	"time"

	"courier-dispatch/internal/core/logger"
	"courier-dispatch/internal/features/dispatch/domain"
	"courier-dispatch/internal/features/dispatch/ports"

	"github.com/zoobzio/clockz"
	"go.uber.org/zap"
)

const defaultSweepInterval = 15 * time.Second

// DispatchSweeper is the background matcher. Each sweep pushes every
// dispatchable shipment to one registered courier of its city, rotating
// through couriers as the shipment's notification count grows.
type DispatchSweeper struct {
	repo          ports.ShipmentRepository
	directory     ports.CourierDirectory
	notifications *NotificationService
	throttler     domain.Throttler
	interval      time.Duration
	clock         clockz.Clock
	logger        *zap.Logger
}

// NewDispatchSweeper creates a new DispatchSweeper; a non-positive interval means 15s.
func NewDispatchSweeper(repo ports.ShipmentRepository, directory ports.CourierDirectory, notifications *NotificationService, throttler domain.Throttler, interval time.Duration) *DispatchSweeper {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	return &DispatchSweeper{
		repo:          repo,
		directory:     directory,
		notifications: notifications,
		throttler:     throttler,
		interval:      interval,
		clock:         clockz.RealClock,
		logger:        logger.Named("sweeper"),
	}
}

// WithClock sets a custom clock for testing.
func (d *DispatchSweeper) WithClock(clock clockz.Clock) *DispatchSweeper {
	d.clock = clock
	return d
}

// Sweep notifies couriers of city and returns how many notifications went out.
func (d *DispatchSweeper) Sweep(ctx context.Context, city string) (int, error) {
	couriers, err := d.directory.CouriersIn(ctx, city)
	if err != nil {
		return 0, err
	}
	if len(couriers) == 0 {
		return 0, nil
	}

	shipments, err := d.repo.ListByCity(ctx, city)
	if err != nil {
		return 0, err
	}

	sent := 0
	now := d.clock.Now().UTC()
	for _, s := range shipments {
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		// The index already scopes the city, so the courier city is not rechecked.
		if !d.throttler.Decide(s, "", now).Notify {
			continue
		}

		courier, found := nextCourier(s, couriers)
		if !found {
			continue
		}
		_, ok, err := d.notifications.Notify(ctx, s.ID, courier, "")
		if err != nil {
			d.logger.Warn("Sweep notification failed", zap.String("shipment_id", s.ID), zap.Error(err))
			continue
		}
		if ok {
			sent++
		}
	}
	return sent, nil
}

// nextCourier rotates through couriers by notification count, skipping
// anyone who already rejected the shipment.
func nextCourier(s *domain.Shipment, couriers []string) (string, bool) {
	for i := range couriers {
		c := couriers[(s.NotificationCount+i)%len(couriers)]
		if !s.HasRejected(c) {
			return c, true
		}
	}
	return "", false
}

// SweepAll sweeps every known city.
func (d *DispatchSweeper) SweepAll(ctx context.Context) (int, error) {
	cities, err := d.directory.Cities(ctx)
	if err != nil {
		return 0, err
	}

	total := 0
	for _, city := range cities {
		n, err := d.Sweep(ctx, city)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Run sweeps every interval until ctx is cancelled.
func (d *DispatchSweeper) Run(ctx context.Context) error {
	d.logger.Info("Dispatch sweeper started", zap.Duration("interval", d.interval))
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Dispatch sweeper stopped")
			return ctx.Err()
		case <-d.clock.After(d.interval):
			n, err := d.SweepAll(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				d.logger.Warn("Sweep failed", zap.Error(err))
			}
			if n > 0 {
				d.logger.Debug("Sweep completed", zap.Int("notified", n))
			}
		}
	}
}
