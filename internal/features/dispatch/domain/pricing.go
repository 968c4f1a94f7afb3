package domain

import "math"

// PricingRules holds the constants of the linear pricing formula.
type PricingRules struct {
	MinPrice         float64
	MinDistanceKm    float64
	PerKm            float64
	HeavyKg          float64
	HeavySurcharge   float64
	FragileSurcharge float64
	Currency         string
}

// DefaultPricingRules returns the production constants.
func DefaultPricingRules() PricingRules {
	return PricingRules{
		MinPrice:         5.0,
		MinDistanceKm:    0.5,
		PerKm:            3.5,
		HeavyKg:          5,
		HeavySurcharge:   0.2,
		FragileSurcharge: 0.15,
		Currency:         "BRL",
	}
}

// PriceInput is what a quote depends on.
type PriceInput struct {
	DistanceKm float64
	WeightKg   float64
	Fragile    bool
}

// PriceBreakdown is the result of a quote.
type PriceBreakdown struct {
	BasePrice     float64 `json:"precoBase"`
	VariablePrice float64 `json:"precoVariavel"`
	Total         float64 `json:"preco"`
	Currency      string  `json:"moeda"`
}

// PricingEngine turns distance, weight and fragility into a price. It never fails.
type PricingEngine struct {
	rules PricingRules
}

// NewPricingEngine creates a PricingEngine with the given rules.
func NewPricingEngine(rules PricingRules) *PricingEngine {
	return &PricingEngine{rules: rules}
}

// Rules returns the constants the engine prices with.
func (p *PricingEngine) Rules() PricingRules {
	return p.rules
}

// Price computes the breakdown. Surcharges compound on the post-distance
// subtotal, weight first then fragility.
func (p *PricingEngine) Price(in PriceInput) PriceBreakdown {
	r := p.rules
	out := PriceBreakdown{
		BasePrice: r.MinPrice,
		Currency:  r.Currency,
	}

	d := in.DistanceKm
	if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		out.Total = r.MinPrice
		return out
	}

	if d > r.MinDistanceKm {
		out.VariablePrice = round2((d - r.MinDistanceKm) * r.PerKm)
	}

	subtotal := out.BasePrice + out.VariablePrice
	if in.WeightKg > r.HeavyKg {
		subtotal *= 1 + r.HeavySurcharge
	}
	if in.Fragile {
		subtotal *= 1 + r.FragileSurcharge
	}

	out.Total = math.Max(r.MinPrice, round2(subtotal))
	return out
}

// Quote prices a route into the immutable quote stored on a shipment.
func (p *PricingEngine) Quote(distanceKm, durationMin float64, pkg Package) Quote {
	b := p.Price(PriceInput{
		DistanceKm: distanceKm,
		WeightKg:   pkg.WeightKg,
		Fragile:    pkg.Fragile,
	})
	return Quote{
		BasePrice:     b.BasePrice,
		VariablePrice: b.VariablePrice,
		Total:         b.Total,
		DistanceKm:    round2(distanceKm),
		DurationMin:   math.Round(durationMin),
		Currency:      b.Currency,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
