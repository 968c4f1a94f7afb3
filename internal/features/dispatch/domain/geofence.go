package domain

import "math"

const (
	earthRadiusKm = 6371.0

	// DefaultGeofenceMeters is the milestone confirmation radius.
	DefaultGeofenceMeters = 100.0
)

// GeofenceResult is the outcome of a proximity check.
type GeofenceResult struct {
	DistanceMeters float64
	WithinRadius   bool
}

// GeofenceValidator gates milestone confirmations on proximity.
type GeofenceValidator struct {
	radiusMeters float64
}

// NewGeofenceValidator creates a validator; a non-positive radius falls back
// to DefaultGeofenceMeters.
func NewGeofenceValidator(radiusMeters float64) *GeofenceValidator {
	if radiusMeters <= 0 {
		radiusMeters = DefaultGeofenceMeters
	}
	return &GeofenceValidator{radiusMeters: radiusMeters}
}

// Radius returns the radius in meters.
func (g *GeofenceValidator) Radius() float64 {
	return g.radiusMeters
}

// Check measures the distance between the courier and the target.
func (g *GeofenceValidator) Check(courier, target Location) GeofenceResult {
	d := DistanceKm(courier, target) * 1000
	return GeofenceResult{
		DistanceMeters: d,
		WithinRadius:   d <= g.radiusMeters,
	}
}

// Require returns a *GeofenceError when the courier is outside the radius.
func (g *GeofenceValidator) Require(milestone string, courier, target Location) error {
	res := g.Check(courier, target)
	if res.WithinRadius {
		return nil
	}
	return &GeofenceError{
		Milestone:      milestone,
		DistanceMeters: res.DistanceMeters,
		RadiusMeters:   g.radiusMeters,
	}
}

// DistanceKm is the haversine great-circle distance.
func DistanceKm(a, b Location) float64 {
	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := toRadians(b.Lat - a.Lat)
	dLng := toRadians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
