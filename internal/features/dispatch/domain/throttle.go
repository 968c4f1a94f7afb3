package domain

import (
	"strings"
	"time"
)

const (
	DefaultMaxNotifications = 3
	DefaultNotifyInterval   = time.Minute
)

// ThrottleReason explains a throttling decision.
type ThrottleReason string

const (
	ThrottleEligible        ThrottleReason = "eligible"
	ThrottleNotDispatchable ThrottleReason = "not_dispatchable"
	ThrottleCityMismatch    ThrottleReason = "city_mismatch"
	ThrottleLimitReached    ThrottleReason = "limit_reached"
	ThrottleTooSoon         ThrottleReason = "too_soon"
)

// Decision is the throttler verdict for one (shipment, courier city) pair.
type Decision struct {
	Notify bool
	Reason ThrottleReason
}

// Throttler decides whether a shipment should be shown to a courier. Its
// counters live on the shipment, so the verdict is global per shipment.
type Throttler struct {
	MaxNotifications int
	MinInterval      time.Duration
}

// NewThrottler returns a Throttler with defaults for non-positive values.
func NewThrottler(maxNotifications int, minInterval time.Duration) Throttler {
	if maxNotifications <= 0 {
		maxNotifications = DefaultMaxNotifications
	}
	if minInterval < 0 {
		minInterval = DefaultNotifyInterval
	}
	return Throttler{MaxNotifications: maxNotifications, MinInterval: minInterval}
}

// Decide evaluates s against the courier's city at now.
func (t Throttler) Decide(s *Shipment, courierCity string, now time.Time) Decision {
	if !s.State.IsPreAssignment() {
		return Decision{Reason: ThrottleNotDispatchable}
	}
	if s.City != "" && courierCity != "" && !strings.EqualFold(s.City, courierCity) {
		return Decision{Reason: ThrottleCityMismatch}
	}
	if s.NotificationCount >= t.MaxNotifications {
		return Decision{Reason: ThrottleLimitReached}
	}
	if s.LastNotificationAt != nil && now.Sub(*s.LastNotificationAt) < t.MinInterval {
		return Decision{Reason: ThrottleTooSoon}
	}
	return Decision{Notify: true, Reason: ThrottleEligible}
}

// Record marks one notification. It is not a state transition and does not
// touch the timeline.
func (t Throttler) Record(s *Shipment, now time.Time) {
	s.NotificationCount++
	s.LastNotificationAt = &now
	s.UpdatedAt = now
}
