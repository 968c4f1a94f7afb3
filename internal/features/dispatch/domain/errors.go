package domain

import (
	"errors"
	"fmt"

	"courier-dispatch/internal/core/docstore"
)

var (
	// ErrNoSession is returned when a mutating call carries no acting user.
	ErrNoSession = errors.New("no active session")
	// ErrForbidden is returned when the actor may not perform the operation.
	ErrForbidden = errors.New("operation not permitted for this user")
	// ErrValidation is returned before any store mutation when input is rejected.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned when the shipment does not exist.
	ErrNotFound = errors.New("shipment not found")
	// ErrNoLongerAvailable is returned when another actor won the shipment or
	// it left the expected state before the write landed.
	ErrNoLongerAvailable = errors.New("shipment no longer available")
	// ErrInvalidTransition is returned when the transition table forbids the change.
	ErrInvalidTransition = errors.New("invalid state transition")
	// ErrOutsideGeofence is returned when a milestone is confirmed too far from its target.
	ErrOutsideGeofence = errors.New("outside geofence")
	// ErrOfferExpired is returned when accepting an offer past its expiry.
	ErrOfferExpired = errors.New("offer expired")
	// ErrNoCurrentOffer is returned when the client decides on an offer that does not exist.
	ErrNoCurrentOffer = errors.New("no current offer")
	// ErrNoOpenWindow is returned when a decision is sent without an open window.
	ErrNoOpenWindow = errors.New("no open decision window")
	// ErrWindowResolved is returned when a window already ended.
	ErrWindowResolved = errors.New("decision window already resolved")
)

// GeofenceError reports how far the courier was from the milestone target so
// the caller can retry once closer.
type GeofenceError struct {
	Milestone      string
	DistanceMeters float64
	RadiusMeters   float64
}

func (e *GeofenceError) Error() string {
	return fmt.Sprintf("%s: %.0fm away, must be within %.0fm", e.Milestone, e.DistanceMeters, e.RadiusMeters)
}

// Unwrap lets errors.Is match ErrOutsideGeofence.
func (e *GeofenceError) Unwrap() error {
	return ErrOutsideGeofence
}

// Reason is the machine-readable cause attached to every failed operation.
type Reason string

const (
	ReasonNone              Reason = ""
	ReasonNoSession         Reason = "no_session"
	ReasonForbidden         Reason = "forbidden"
	ReasonValidation        Reason = "validation_failed"
	ReasonNotFound          Reason = "not_found"
	ReasonNoLongerAvailable Reason = "no_longer_available"
	ReasonInvalidTransition Reason = "invalid_transition"
	ReasonOutsideGeofence   Reason = "outside_geofence"
	ReasonOfferExpired      Reason = "offer_expired"
	ReasonNoCurrentOffer    Reason = "no_current_offer"
	ReasonNoOpenWindow      Reason = "no_open_window"
	ReasonInternal          Reason = "internal"
)

var reasons = []struct {
	err    error
	reason Reason
}{
	{ErrNoSession, ReasonNoSession},
	{ErrForbidden, ReasonForbidden},
	{ErrValidation, ReasonValidation},
	{ErrNotFound, ReasonNotFound},
	{docstore.ErrNotFound, ReasonNotFound},
	{ErrNoLongerAvailable, ReasonNoLongerAvailable},
	{docstore.ErrConflict, ReasonNoLongerAvailable},
	{ErrInvalidTransition, ReasonInvalidTransition},
	{ErrOutsideGeofence, ReasonOutsideGeofence},
	{ErrOfferExpired, ReasonOfferExpired},
	{ErrNoCurrentOffer, ReasonNoCurrentOffer},
	{ErrNoOpenWindow, ReasonNoOpenWindow},
	{ErrWindowResolved, ReasonNoOpenWindow},
}

// ReasonOf maps an error returned by the engine to its Reason.
func ReasonOf(err error) Reason {
	if err == nil {
		return ReasonNone
	}
	for _, r := range reasons {
		if errors.Is(err, r.err) {
			return r.reason
		}
	}
	return ReasonInternal
}

// Invalidf builds an error wrapping ErrValidation.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
