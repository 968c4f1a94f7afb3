package service

import (
	"context"
	"errors"
	"time"

	"courier-dispatch/internal/features/dispatch/domain"
	"courier-dispatch/internal/features/dispatch/ports"

	"github.com/zoobzio/clockz"
	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

// committer runs guarded mutations against the repository and publishes the
// resulting timeline event once the write has landed.
type committer struct {
	repo   ports.ShipmentRepository
	events ports.EventPublisher
	clock  clockz.Clock
	logger *zap.Logger
}

func (c *committer) now() time.Time {
	return c.clock.Now().UTC()
}

// commit applies fn through a conditional write. fn sees the authoritative
// copy and may run several times.
func (c *committer) commit(ctx context.Context, actor domain.Actor, id, op string, fn ports.ShipmentMutation) (*domain.Shipment, error) {
	var from domain.State

	s, err := c.repo.Update(ctx, id, func(s *domain.Shipment) error {
		from = s.State
		return fn(s)
	})
	if err != nil {
		fields := []zap.Field{
			zap.String("op", op),
			zap.String("shipment_id", id),
			zap.String("actor_id", actor.ID),
			zap.String("reason", string(domain.ReasonOf(err))),
			zap.Error(err),
		}
		if errors.Is(err, domain.ErrNoLongerAvailable) {
			c.logger.Warn("Transition lost to a concurrent writer", fields...)
		} else {
			c.logger.Debug("Transition refused", fields...)
		}
		return nil, err
	}

	c.logger.Info("Shipment transitioned",
		zap.String("op", op),
		zap.String("shipment_id", id),
		zap.String("from", string(from)),
		zap.String("to", string(s.State)),
		zap.String("actor_id", actor.ID),
	)

	c.publish(ctx, s)
	return s, nil
}

// publish streams the newest timeline event. Failures are logged, never returned.
func (c *committer) publish(ctx context.Context, s *domain.Shipment) {
	ev, ok := s.LastEvent()
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	err := c.events.Publish(ctx, ports.ShipmentEvent{
		ShipmentID: s.ID,
		Type:       ev.Type,
		State:      s.State,
		CourierID:  s.CourierID,
		Price:      s.EffectivePrice(),
		Event:      ev,
	})
	if err != nil {
		c.logger.Warn("Failed to publish shipment event",
			zap.String("shipment_id", s.ID),
			zap.String("type", string(ev.Type)),
			zap.Error(err),
		)
	}
}
