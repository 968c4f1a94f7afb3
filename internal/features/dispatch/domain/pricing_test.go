package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPricingEngine_Price(t *testing.T) {
	engine := NewPricingEngine(DefaultPricingRules())

	tests := []struct {
		name         string
		input        PriceInput
		wantVariable float64
		wantTotal    float64
	}{
		{
			name:         "At threshold is minimum price",
			input:        PriceInput{DistanceKm: 0.5},
			wantVariable: 0,
			wantTotal:    5.0,
		},
		{
			name:         "Below threshold is minimum price",
			input:        PriceInput{DistanceKm: 0.1},
			wantVariable: 0,
			wantTotal:    5.0,
		},
		{
			name:         "Distance only",
			input:        PriceInput{DistanceKm: 2.5},
			wantVariable: 7.0,
			wantTotal:    12.0,
		},
		{
			name:         "Heavy and fragile compound",
			input:        PriceInput{DistanceKm: 2.5, WeightKg: 6, Fragile: true},
			wantVariable: 7.0,
			wantTotal:    16.56,
		},
		{
			name:         "Exactly heavy threshold has no surcharge",
			input:        PriceInput{DistanceKm: 2.5, WeightKg: 5},
			wantVariable: 7.0,
			wantTotal:    12.0,
		},
		{
			name:         "Fragile only",
			input:        PriceInput{DistanceKm: 0.5, Fragile: true},
			wantVariable: 0,
			wantTotal:    5.75,
		},
		{
			name:         "Variable part is rounded",
			input:        PriceInput{DistanceKm: 1.333},
			wantVariable: 2.92,
			wantTotal:    7.92,
		},
		{
			name:         "Negative distance degrades to minimum",
			input:        PriceInput{DistanceKm: -3},
			wantVariable: 0,
			wantTotal:    5.0,
		},
		{
			name:         "NaN distance degrades to minimum",
			input:        PriceInput{DistanceKm: math.NaN(), Fragile: true},
			wantVariable: 0,
			wantTotal:    5.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.Price(tt.input)

			assert.InDelta(t, 5.0, got.BasePrice, 1e-9)
			assert.InDelta(t, tt.wantVariable, got.VariablePrice, 1e-9)
			assert.InDelta(t, tt.wantTotal, got.Total, 1e-9)
			assert.Equal(t, "BRL", got.Currency)
		})
	}
}

func TestPricingEngine_Quote(t *testing.T) {
	engine := NewPricingEngine(DefaultPricingRules())

	q := engine.Quote(2.5, 12.4, Package{WeightKg: 6, Fragile: true})

	assert.InDelta(t, 16.56, q.Total, 1e-9)
	assert.InDelta(t, 7.0, q.VariablePrice, 1e-9)
	assert.InDelta(t, 2.5, q.DistanceKm, 1e-9)
	assert.InDelta(t, 12.0, q.DurationMin, 1e-9)
	assert.Equal(t, "BRL", q.Currency)
}
