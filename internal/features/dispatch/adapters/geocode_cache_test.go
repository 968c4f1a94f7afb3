package adapters

import (
	"context"
	"errors"
	"testing"
	"time"

	"courier-dispatch/internal/core/cache"
	"courier-dispatch/internal/features/dispatch/domain"
	"courier-dispatch/internal/features/dispatch/ports"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRouter struct {
	geocodes int
	routes   int
	err      error
}

func (c *countingRouter) Route(ctx context.Context, from, to domain.Location) (*ports.Route, error) {
	c.routes++
	return EstimateRoute(from, to), nil
}

func (c *countingRouter) Geocode(ctx context.Context, address string) (domain.Location, error) {
	c.geocodes++
	if c.err != nil {
		return domain.Location{}, c.err
	}
	return domain.Location{Address: address, Lat: pickup.Lat, Lng: pickup.Lng}, nil
}

func newGeocodeCache(t *testing.T) (*cache.RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := cache.NewRedisCache("redis://"+mr.Addr(), "geocode")
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestCachedGeocoder_Hit(t *testing.T) {
	c, _ := newGeocodeCache(t)
	inner := &countingRouter{}
	g := NewCachedGeocoder(inner, c, time.Hour)
	ctx := context.Background()

	first, err := g.Geocode(ctx, "Av. Paulista, 1000")
	require.NoError(t, err)

	// Case and spacing differences resolve to the same entry.
	second, err := g.Geocode(ctx, "  av.  PAULISTA, 1000 ")
	require.NoError(t, err)

	assert.Equal(t, 1, inner.geocodes)
	assert.Equal(t, first, second)
}

func TestCachedGeocoder_Expiry(t *testing.T) {
	c, mr := newGeocodeCache(t)
	inner := &countingRouter{}
	g := NewCachedGeocoder(inner, c, time.Minute)
	ctx := context.Background()

	_, err := g.Geocode(ctx, "Rua A, 1")
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)
	_, err = g.Geocode(ctx, "Rua A, 1")
	require.NoError(t, err)

	assert.Equal(t, 2, inner.geocodes)
}

func TestCachedGeocoder_ErrorsAreNotCached(t *testing.T) {
	c, _ := newGeocodeCache(t)
	inner := &countingRouter{err: errors.New("no match")}
	g := NewCachedGeocoder(inner, c, time.Hour)
	ctx := context.Background()

	_, err := g.Geocode(ctx, "nowhere")
	require.Error(t, err)
	_, err = g.Geocode(ctx, "nowhere")
	require.Error(t, err)

	assert.Equal(t, 2, inner.geocodes)
}

func TestCachedGeocoder_CacheDown(t *testing.T) {
	c, mr := newGeocodeCache(t)
	inner := &countingRouter{}
	g := NewCachedGeocoder(inner, c, time.Hour)
	mr.Close()

	loc, err := g.Geocode(context.Background(), "Rua A, 1")
	require.NoError(t, err)
	assert.Equal(t, pickup.Lat, loc.Lat)
}

func TestCachedGeocoder_RoutePassesThrough(t *testing.T) {
	c, _ := newGeocodeCache(t)
	inner := &countingRouter{}
	g := NewCachedGeocoder(inner, c, time.Hour)

	route, err := g.Route(context.Background(), pickup, dropoff)
	require.NoError(t, err)
	assert.True(t, route.Estimated)
	assert.Equal(t, 1, inner.routes)
}
