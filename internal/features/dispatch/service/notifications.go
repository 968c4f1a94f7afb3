package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"courier-dispatch/internal/core/logger"
	"courier-dispatch/internal/features/dispatch/domain"
	"courier-dispatch/internal/features/dispatch/ports"

	"github.com/zoobzio/clockz"
	"go.uber.org/zap"
)

var errThrottled = errors.New("notification throttled")

// NotificationService applies the throttling policy with store-backed
// counters so it holds across restarts and dispatcher instances.
type NotificationService struct {
	repo      ports.ShipmentRepository
	directory ports.CourierDirectory
	notifier  ports.Notifier
	throttler domain.Throttler
	clock     clockz.Clock
	logger    *zap.Logger
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(repo ports.ShipmentRepository, directory ports.CourierDirectory, notifier ports.Notifier, throttler domain.Throttler) *NotificationService {
	return &NotificationService{
		repo:      repo,
		directory: directory,
		notifier:  notifier,
		throttler: throttler,
		clock:     clockz.RealClock,
		logger:    logger.Named("notifications"),
	}
}

// WithClock sets a custom clock for testing.
func (n *NotificationService) WithClock(clock clockz.Clock) *NotificationService {
	n.clock = clock
	return n
}

// Feed returns the shipments the courier may be shown right now and counts
// each as one notification. The courier is registered for background sweeps.
func (n *NotificationService) Feed(ctx context.Context, actor domain.Actor) ([]*domain.Shipment, error) {
	if err := actor.Require(domain.RoleCourier); err != nil {
		return nil, err
	}

	if err := n.directory.RegisterCourier(ctx, actor.City, actor.ID); err != nil {
		n.logger.Warn("Failed to register courier", zap.String("courier_id", actor.ID), zap.Error(err))
	}

	candidates, err := n.repo.ListByCity(ctx, actor.City)
	if err != nil {
		return nil, err
	}
	if actor.City != "" {
		cityless, err := n.repo.ListByCity(ctx, "")
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, cityless...)
	}

	now := n.now()
	out := make([]*domain.Shipment, 0, len(candidates))
	for _, s := range candidates {
		if s.HasRejected(actor.ID) || !n.throttler.Decide(s, actor.City, now).Notify {
			continue
		}
		claimed, ok, err := n.Notify(ctx, s.ID, actor.ID, actor.City)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, claimed)
		}
	}
	return out, nil
}

// Notify re-evaluates the throttler on the stored shipment, records the
// notification through a conditional write and pushes it to the courier.
// ok is false when the throttler or a concurrent writer said no.
func (n *NotificationService) Notify(ctx context.Context, shipmentID, courierID, courierCity string) (*domain.Shipment, bool, error) {
	s, err := n.repo.Update(ctx, shipmentID, func(s *domain.Shipment) error {
		if s.HasRejected(courierID) {
			return fmt.Errorf("%w: courier already rejected", errThrottled)
		}
		now := n.now()
		d := n.throttler.Decide(s, courierCity, now)
		if !d.Notify {
			return fmt.Errorf("%w: %s", errThrottled, d.Reason)
		}
		n.throttler.Record(s, now)
		return nil
	})
	if errors.Is(err, errThrottled) || errors.Is(err, domain.ErrNoLongerAvailable) || errors.Is(err, domain.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to record notification for %s: %w", shipmentID, err)
	}

	msg := ports.Notification{
		ShipmentID: s.ID,
		City:       s.City,
		Price:      s.EffectivePrice(),
		DistanceKm: s.Quote.DistanceKm,
		SentAt:     n.now(),
	}
	if err := n.notifier.Notify(ctx, courierID, msg); err != nil {
		n.logger.Warn("Failed to deliver notification",
			zap.String("shipment_id", s.ID),
			zap.String("courier_id", courierID),
			zap.Error(err),
		)
	}

	n.logger.Debug("Courier notified",
		zap.String("shipment_id", s.ID),
		zap.String("courier_id", courierID),
		zap.Int("notification_count", s.NotificationCount),
	)
	return s, true, nil
}

func (n *NotificationService) now() time.Time {
	return n.clock.Now().UTC()
}
