package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"courier-dispatch/internal/core/docstore"
	"courier-dispatch/internal/features/dispatch/domain"
	"courier-dispatch/internal/features/dispatch/ports"
)

const (
	shipmentKeyPrefix  = "shipment:"
	cityIndexPrefix    = "shipments:city:"
	citiesIndex        = "shipments:cities"
	courierIndexPrefix = "couriers:city:"
	noCity             = "_"
)

// RedisShipmentRepository implements ports.ShipmentRepository on top of the document store.
type RedisShipmentRepository struct {
	store docstore.Store
}

// NewRedisShipmentRepository creates a new RedisShipmentRepository.
func NewRedisShipmentRepository(store docstore.Store) *RedisShipmentRepository {
	return &RedisShipmentRepository{
		store: store,
	}
}

func shipmentKey(id string) string {
	return shipmentKeyPrefix + id
}

// CityKey normalizes a city name into its index slot.
func CityKey(city string) string {
	city = strings.ToLower(strings.TrimSpace(city))
	if city == "" {
		return noCity
	}
	return city
}

// Create stores a new shipment and indexes it by city.
func (r *RedisShipmentRepository) Create(ctx context.Context, s *domain.Shipment) error {
	s.Version = 1
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal shipment: %w", err)
	}

	if err := r.store.Create(ctx, shipmentKey(s.ID), data); err != nil {
		return fmt.Errorf("failed to store shipment %s: %w", s.ID, err)
	}

	city := CityKey(s.City)
	if err := r.store.AddToIndex(ctx, cityIndexPrefix+city, s.ID); err != nil {
		return fmt.Errorf("failed to index shipment %s: %w", s.ID, err)
	}
	if err := r.store.AddToIndex(ctx, citiesIndex, city); err != nil {
		return fmt.Errorf("failed to index city %s: %w", city, err)
	}
	return nil
}

// Get retrieves a shipment by id.
func (r *RedisShipmentRepository) Get(ctx context.Context, id string) (*domain.Shipment, error) {
	data, err := r.store.Get(ctx, shipmentKey(id))
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
		}
		return nil, err
	}
	return decodeShipment(data)
}

// Update runs fn against the stored shipment inside an optimistic write.
func (r *RedisShipmentRepository) Update(ctx context.Context, id string, fn ports.ShipmentMutation) (*domain.Shipment, error) {
	data, err := r.store.Update(ctx, shipmentKey(id), func(current []byte) ([]byte, error) {
		s, err := decodeShipment(current)
		if err != nil {
			return nil, err
		}
		if err := fn(s); err != nil {
			return nil, err
		}
		s.Version++
		return json.Marshal(s)
	})
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
		}
		if errors.Is(err, docstore.ErrConflict) {
			return nil, fmt.Errorf("%w: %v", domain.ErrNoLongerAvailable, err)
		}
		return nil, err
	}
	return decodeShipment(data)
}

// ListByCity returns the shipments indexed under city, oldest first. Missing
// documents are skipped.
func (r *RedisShipmentRepository) ListByCity(ctx context.Context, city string) ([]*domain.Shipment, error) {
	ids, err := r.store.IndexMembers(ctx, cityIndexPrefix+CityKey(city))
	if err != nil {
		return nil, fmt.Errorf("failed to list city %s: %w", city, err)
	}

	out := make([]*domain.Shipment, 0, len(ids))
	for _, id := range ids {
		s, err := r.Get(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Cities returns every city slot that has ever held a shipment.
func (r *RedisShipmentRepository) Cities(ctx context.Context) ([]string, error) {
	cities, err := r.store.IndexMembers(ctx, citiesIndex)
	if err != nil {
		return nil, fmt.Errorf("failed to list cities: %w", err)
	}
	sort.Strings(cities)
	return cities, nil
}

// RegisterCourier records that a courier is active in city.
func (r *RedisShipmentRepository) RegisterCourier(ctx context.Context, city, courierID string) error {
	if err := r.store.AddToIndex(ctx, courierIndexPrefix+CityKey(city), courierID); err != nil {
		return fmt.Errorf("failed to register courier %s: %w", courierID, err)
	}
	return nil
}

// CouriersIn lists the couriers registered in city, sorted by id.
func (r *RedisShipmentRepository) CouriersIn(ctx context.Context, city string) ([]string, error) {
	ids, err := r.store.IndexMembers(ctx, courierIndexPrefix+CityKey(city))
	if err != nil {
		return nil, fmt.Errorf("failed to list couriers in %s: %w", city, err)
	}
	sort.Strings(ids)
	return ids, nil
}

func decodeShipment(data []byte) (*domain.Shipment, error) {
	var s domain.Shipment
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal shipment: %w", err)
	}
	return &s, nil
}
