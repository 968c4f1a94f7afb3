package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"courier-dispatch/internal/core/logger"
	"courier-dispatch/internal/features/dispatch/domain"

	"github.com/zoobzio/clockz"
	"go.uber.org/zap"
)

const (
	defaultWindow     = 30 * time.Second
	autoRejectTimeout = 10 * time.Second
)

// Resolution is how a decision window ended.
type Resolution string

const (
	ResolutionAccepted Resolution = "accepted"
	ResolutionRejected Resolution = "rejected"
	ResolutionExpired  Resolution = "expired"
	ResolutionClosed   Resolution = "closed"
)

// Decider is the part of the state machine a window drives.
type Decider interface {
	Get(ctx context.Context, actor domain.Actor, id string) (*domain.Shipment, error)
	AcceptDispatch(ctx context.Context, actor domain.Actor, id string) (*domain.Shipment, error)
	RejectDispatch(ctx context.Context, actor domain.Actor, id string, cause domain.RejectionCause) (*domain.Shipment, error)
}

type windowKey struct {
	shipmentID string
	courierID  string
}

// Window is one courier's countdown on one shipment.
type Window struct {
	ShipmentID string
	CourierID  string
	Deadline   time.Time

	actor    domain.Actor
	resolved bool
	stop     chan struct{}
	done     chan Resolution
}

// Done delivers the resolution exactly once.
func (w *Window) Done() <-chan Resolution {
	return w.done
}

// WindowController owns the decision timers. Exactly one of accept, reject,
// expiry or close ends a window; expiry and close both auto-reject.
type WindowController struct {
	mu       sync.Mutex
	windows  map[windowKey]*Window
	decider  Decider
	duration time.Duration
	clock    clockz.Clock
	logger   *zap.Logger
}

// NewWindowController creates a new WindowController; a non-positive
// duration means 30s.
func NewWindowController(decider Decider, duration time.Duration) *WindowController {
	if duration <= 0 {
		duration = defaultWindow
	}
	return &WindowController{
		windows:  make(map[windowKey]*Window),
		decider:  decider,
		duration: duration,
		clock:    clockz.RealClock,
		logger:   logger.Named("window"),
	}
}

// WithClock sets a custom clock for testing.
func (c *WindowController) WithClock(clock clockz.Clock) *WindowController {
	c.clock = clock
	return c
}

// Open starts the countdown for actor on shipment id. Reopening an open
// window returns it unchanged.
func (c *WindowController) Open(ctx context.Context, actor domain.Actor, id string) (*Window, error) {
	if err := actor.Require(domain.RoleCourier); err != nil {
		return nil, err
	}

	s, err := c.decider.Get(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !s.State.IsPreAssignment() || s.CourierID != "" {
		return nil, fmt.Errorf("%w: shipment is %s", domain.ErrNoLongerAvailable, s.State)
	}
	if s.HasRejected(actor.ID) {
		return nil, fmt.Errorf("%w: already rejected by %s", domain.ErrNoLongerAvailable, actor.ID)
	}

	key := windowKey{shipmentID: id, courierID: actor.ID}

	c.mu.Lock()
	defer c.mu.Unlock()

	if w, ok := c.windows[key]; ok {
		return w, nil
	}

	w := &Window{
		ShipmentID: id,
		CourierID:  actor.ID,
		Deadline:   c.clock.Now().Add(c.duration),
		actor:      actor,
		stop:       make(chan struct{}),
		done:       make(chan Resolution, 1),
	}
	c.windows[key] = w

	expired := c.clock.After(c.duration)
	go func() {
		select {
		case <-expired:
			c.expire(key, w)
		case <-w.stop:
		}
	}()

	c.logger.Debug("Decision window opened",
		zap.String("shipment_id", id),
		zap.String("courier_id", actor.ID),
		zap.Time("deadline", w.Deadline),
	)
	return w, nil
}

// Accept ends the window and attempts the guarded assignment.
func (c *WindowController) Accept(ctx context.Context, actor domain.Actor, id string) (*domain.Shipment, error) {
	if err := c.end(actor, id, ResolutionAccepted); err != nil {
		return nil, err
	}
	return c.decider.AcceptDispatch(ctx, actor, id)
}

// Reject ends the window with an explicit rejection.
func (c *WindowController) Reject(ctx context.Context, actor domain.Actor, id string) (*domain.Shipment, error) {
	if err := c.end(actor, id, ResolutionRejected); err != nil {
		return nil, err
	}
	return c.decider.RejectDispatch(ctx, actor, id, domain.CauseExplicit)
}

// Close handles a courier leaving the window; it counts as a rejection.
func (c *WindowController) Close(ctx context.Context, actor domain.Actor, id string) error {
	if err := c.end(actor, id, ResolutionClosed); err != nil {
		return err
	}
	_, err := c.decider.RejectDispatch(ctx, actor, id, domain.CauseClosed)
	return err
}

// Pending returns how many windows are still open.
func (c *WindowController) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.windows)
}

// CloseAll auto-rejects every open window, used on shutdown.
func (c *WindowController) CloseAll(ctx context.Context) {
	c.mu.Lock()
	open := make([]*Window, 0, len(c.windows))
	for key, w := range c.windows {
		if c.resolveLocked(key, w, ResolutionClosed) {
			open = append(open, w)
		}
	}
	c.mu.Unlock()

	for _, w := range open {
		if _, err := c.decider.RejectDispatch(ctx, w.actor, w.ShipmentID, domain.CauseClosed); err != nil {
			c.logger.Warn("Failed to auto-reject window on shutdown",
				zap.String("shipment_id", w.ShipmentID),
				zap.String("courier_id", w.CourierID),
				zap.Error(err),
			)
		}
	}
}

func (c *WindowController) end(actor domain.Actor, id string, res Resolution) error {
	if err := actor.Require(domain.RoleCourier); err != nil {
		return err
	}

	key := windowKey{shipmentID: id, courierID: actor.ID}

	c.mu.Lock()
	defer c.mu.Unlock()

	w, ok := c.windows[key]
	if !ok {
		return domain.ErrNoOpenWindow
	}
	if !c.resolveLocked(key, w, res) {
		return domain.ErrWindowResolved
	}
	return nil
}

func (c *WindowController) expire(key windowKey, w *Window) {
	c.mu.Lock()
	won := c.resolveLocked(key, w, ResolutionExpired)
	c.mu.Unlock()
	if !won {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), autoRejectTimeout)
	defer cancel()

	if _, err := c.decider.RejectDispatch(ctx, w.actor, w.ShipmentID, domain.CauseTimeout); err != nil {
		c.logger.Warn("Auto-reject after timeout failed",
			zap.String("shipment_id", w.ShipmentID),
			zap.String("courier_id", w.CourierID),
			zap.String("reason", string(domain.ReasonOf(err))),
			zap.Error(err),
		)
		return
	}
	c.logger.Info("Decision window expired",
		zap.String("shipment_id", w.ShipmentID),
		zap.String("courier_id", w.CourierID),
	)
}

// resolveLocked marks w as resolved; it reports false if another outcome
// already won. c.mu must be held.
func (c *WindowController) resolveLocked(key windowKey, w *Window, res Resolution) bool {
	if w.resolved {
		return false
	}
	w.resolved = true
	if c.windows[key] == w {
		delete(c.windows, key)
	}
	close(w.stop)
	w.done <- res
	return true
}
