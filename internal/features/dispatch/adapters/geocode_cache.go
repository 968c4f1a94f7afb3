package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"courier-dispatch/internal/core/cache"
	"courier-dispatch/internal/core/logger"
	"courier-dispatch/internal/features/dispatch/domain"
	"courier-dispatch/internal/features/dispatch/ports"

	"go.uber.org/zap"
)

// CachedGeocoder remembers resolved addresses. Routes pass straight through
// because they depend on both ends and rarely repeat.
type CachedGeocoder struct {
	ports.RoutingService
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedGeocoder wraps next with a geocode cache.
func NewCachedGeocoder(next ports.RoutingService, c cache.Cache, ttl time.Duration) *CachedGeocoder {
	return &CachedGeocoder{
		RoutingService: next,
		cache:          c,
		ttl:            ttl,
		logger:         logger.Named("geocode_cache"),
	}
}

// Geocode serves from cache when possible. Cache failures never fail the lookup.
func (g *CachedGeocoder) Geocode(ctx context.Context, address string) (domain.Location, error) {
	key := normalizeAddress(address)

	if raw, err := g.cache.Get(ctx, key); err == nil {
		var loc domain.Location
		if err := json.Unmarshal(raw, &loc); err == nil {
			return loc, nil
		}
	} else if !errors.Is(err, cache.ErrMiss) {
		g.logger.Warn("Geocode cache read failed", zap.Error(err))
	}

	loc, err := g.RoutingService.Geocode(ctx, address)
	if err != nil {
		return domain.Location{}, err
	}

	raw, _ := json.Marshal(loc)
	if err := g.cache.Set(ctx, key, raw, g.ttl); err != nil {
		g.logger.Warn("Geocode cache write failed", zap.Error(err))
	}
	return loc, nil
}

func normalizeAddress(a string) string {
	return strings.Join(strings.Fields(strings.ToLower(a)), " ")
}
