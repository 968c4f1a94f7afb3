package domain

import (
	"fmt"
	"time"
)

// DefaultEscalationThreshold is the rejection count that opens negotiation.
const DefaultEscalationThreshold = 3

// RejectionCause tells an explicit reject apart from an auto-reject.
type RejectionCause string

const (
	CauseExplicit RejectionCause = "explicit"
	CauseTimeout  RejectionCause = "timeout"
	CauseClosed   RejectionCause = "closed"
)

// EscalationPolicy counts courier rejections and opens the counter-offer
// sub-protocol the first time the threshold is reached.
type EscalationPolicy struct {
	Threshold int
}

// NewEscalationPolicy returns a policy; a non-positive threshold falls back
// to DefaultEscalationThreshold.
func NewEscalationPolicy(threshold int) EscalationPolicy {
	if threshold <= 0 {
		threshold = DefaultEscalationThreshold
	}
	return EscalationPolicy{Threshold: threshold}
}

// OnRejection applies one rejection to s, which must be the freshly read
// authoritative copy. It appends exactly one timeline event and reports
// whether this rejection escalated the shipment. Each courier counts once per
// cycle; the shipment is requeued for someone else.
func (p EscalationPolicy) OnRejection(s *Shipment, courier Actor, cause RejectionCause, at time.Time) (bool, error) {
	if !s.State.IsPreAssignment() {
		return false, fmt.Errorf("%w: cannot reject in %s", ErrNoLongerAvailable, s.State)
	}
	if s.HasRejected(courier.ID) {
		return false, fmt.Errorf("%w: %s already rejected it", ErrNoLongerAvailable, courier.ID)
	}

	next := s.RejectionCount + 1
	payload := map[string]any{
		"courierUid":     courier.ID,
		"cause":          string(cause),
		"rejectionCount": next,
	}

	if p.shouldEscalate(s, next) {
		if err := s.Transition(StateOffered, at, TimelineEvent{
			Type:        EventRejectionEscalated,
			Description: fmt.Sprintf("rejected %d times, open for counter-offers", next),
			Payload:     payload,
		}); err != nil {
			return false, err
		}
		s.RejectionCount = next
		s.RejectedBy = append(s.RejectedBy, courier.ID)
		s.EscalatedAt = &at
		return true, nil
	}

	if err := s.Transition(s.State, at, TimelineEvent{
		Type:        EventCourierRejected,
		Description: fmt.Sprintf("rejected by courier, %s time", ordinal(next)),
		Payload:     payload,
	}); err != nil {
		return false, err
	}
	s.RejectionCount = next
	s.RejectedBy = append(s.RejectedBy, courier.ID)
	return false, nil
}

// shouldEscalate fires only on the write that first reaches the threshold.
func (p EscalationPolicy) shouldEscalate(s *Shipment, next int) bool {
	return next == p.Threshold &&
		s.EscalatedAt == nil &&
		s.State != StateOffered &&
		CanTransition(s.State, StateOffered)
}

func ordinal(n int) string {
	suffix := "th"
	switch n % 100 {
	case 11, 12, 13:
	default:
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
