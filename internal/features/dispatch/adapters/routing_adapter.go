package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"courier-dispatch/internal/core/httpclient"
	"courier-dispatch/internal/core/logger"
	"courier-dispatch/internal/features/dispatch/domain"
	"courier-dispatch/internal/features/dispatch/ports"

	"go.uber.org/zap"
)

// ErrRoutingUnavailable is returned when no routing backend is configured.
var ErrRoutingUnavailable = errors.New("routing service unavailable")

// minutesPerKm is the time heuristic for straight-line estimates.
const minutesPerKm = 3.0

// HTTPRoutingAdapter talks to an OSRM-style routing backend.
type HTTPRoutingAdapter struct {
	baseURL string
	client  *http.Client
}

// NewHTTPRoutingAdapter creates a new HTTPRoutingAdapter with the given base URL.
func NewHTTPRoutingAdapter(baseURL string, timeout time.Duration) *HTTPRoutingAdapter {
	return &HTTPRoutingAdapter{
		baseURL: baseURL,
		client:  httpclient.NewNamedClient("routing", timeout),
	}
}

// routeResponse is the JSON returned by GET /route.
type routeResponse struct {
	Coordinates [][2]float64 `json:"coordinates"` // [lat, lng]
	DistanceKm  float64      `json:"distanceKm"`
	DurationMin float64      `json:"durationMin"`
}

// geocodeResponse is the JSON returned by GET /geocode.
type geocodeResponse struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address"`
}

// Route asks the backend for the path between two points.
func (a *HTTPRoutingAdapter) Route(ctx context.Context, from, to domain.Location) (*ports.Route, error) {
	q := url.Values{}
	q.Set("from", formatPoint(from))
	q.Set("to", formatPoint(to))

	var resp routeResponse
	if err := a.getJSON(ctx, "/route", q, &resp); err != nil {
		return nil, err
	}
	if resp.DistanceKm < 0 || resp.DurationMin < 0 {
		return nil, fmt.Errorf("routing returned negative values: %.2fkm %.2fmin", resp.DistanceKm, resp.DurationMin)
	}

	route := &ports.Route{
		Coordinates: make([]domain.Location, 0, len(resp.Coordinates)),
		DistanceKm:  resp.DistanceKm,
		DurationMin: resp.DurationMin,
	}
	for _, c := range resp.Coordinates {
		route.Coordinates = append(route.Coordinates, domain.Location{Lat: c[0], Lng: c[1]})
	}
	return route, nil
}

// Geocode resolves a free-text address.
func (a *HTTPRoutingAdapter) Geocode(ctx context.Context, address string) (domain.Location, error) {
	q := url.Values{}
	q.Set("q", address)

	var resp geocodeResponse
	if err := a.getJSON(ctx, "/geocode", q, &resp); err != nil {
		return domain.Location{}, err
	}

	loc := domain.Location{Address: address, Lat: resp.Lat, Lng: resp.Lng}
	if !loc.HasCoordinates() {
		return domain.Location{}, fmt.Errorf("address not found: %s", address)
	}
	return loc, nil
}

func (a *HTTPRoutingAdapter) getJSON(ctx context.Context, path string, q url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build routing request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("routing request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("routing returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to parse routing response: %w", err)
	}
	return nil
}

func formatPoint(l domain.Location) string {
	return strconv.FormatFloat(l.Lat, 'f', 6, 64) + "," + strconv.FormatFloat(l.Lng, 'f', 6, 64)
}

// FallbackRouter wraps a routing backend and degrades to straight-line
// estimates when it fails. Routing never aborts the caller's flow.
type FallbackRouter struct {
	primary ports.RoutingService
	logger  *zap.Logger
}

// NewFallbackRouter creates a FallbackRouter; primary may be nil.
func NewFallbackRouter(primary ports.RoutingService) *FallbackRouter {
	return &FallbackRouter{
		primary: primary,
		logger:  logger.Named("routing"),
	}
}

// Route returns the backend route or a haversine estimate at 3 min/km.
func (f *FallbackRouter) Route(ctx context.Context, from, to domain.Location) (*ports.Route, error) {
	if f.primary != nil {
		route, err := f.primary.Route(ctx, from, to)
		if err == nil {
			return route, nil
		}
		f.logger.Warn("Routing failed, using straight-line estimate", zap.Error(err))
	}
	return EstimateRoute(from, to), nil
}

// Geocode has no fallback: an address that cannot be resolved is an error.
func (f *FallbackRouter) Geocode(ctx context.Context, address string) (domain.Location, error) {
	if f.primary == nil {
		return domain.Location{}, ErrRoutingUnavailable
	}
	return f.primary.Geocode(ctx, address)
}

// EstimateRoute builds a two-point route from great-circle distance.
func EstimateRoute(from, to domain.Location) *ports.Route {
	d := domain.DistanceKm(from, to)
	return &ports.Route{
		Coordinates: []domain.Location{from, to},
		DistanceKm:  d,
		DurationMin: d * minutesPerKm,
		Estimated:   true,
	}
}
