package handler

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"courier-dispatch/internal/features/dispatch/domain"
	"courier-dispatch/internal/features/dispatch/ports"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// LocationRequest is a point given either by coordinates or by address.
type LocationRequest struct {
	Address string  `json:"endereco" validate:"max=300"`
	Lat     float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng     float64 `json:"lng" validate:"gte=-180,lte=180"`
}

func (l LocationRequest) toDomain() domain.Location {
	return domain.Location{Address: strings.TrimSpace(l.Address), Lat: l.Lat, Lng: l.Lng}
}

// DimensionsRequest is in centimetres.
type DimensionsRequest struct {
	Length float64 `json:"c" validate:"gte=0"`
	Width  float64 `json:"l" validate:"gte=0"`
	Height float64 `json:"a" validate:"gte=0"`
}

// PackageRequest describes the parcel.
type PackageRequest struct {
	WeightKg      float64           `json:"pesoKg" validate:"gte=0,lte=1000"`
	Dimensions    DimensionsRequest `json:"dim"`
	Fragile       bool              `json:"fragil"`
	DeclaredValue float64           `json:"valorDeclarado" validate:"gte=0"`
}

// ShipmentRequest is the body of POST /shipments and POST /quotes.
type ShipmentRequest struct {
	Pickup  LocationRequest `json:"pickup"`
	Dropoff LocationRequest `json:"dropoff"`
	Package PackageRequest  `json:"pacote"`
	City    string          `json:"city" validate:"max=80"`
}

func (r ShipmentRequest) toDomain() domain.NewShipmentInput {
	return domain.NewShipmentInput{
		Pickup:  r.Pickup.toDomain(),
		Dropoff: r.Dropoff.toDomain(),
		Package: domain.Package{
			WeightKg: r.Package.WeightKg,
			Dimensions: domain.Dimensions{
				Length: r.Package.Dimensions.Length,
				Width:  r.Package.Dimensions.Width,
				Height: r.Package.Dimensions.Height,
			},
			Fragile:       r.Package.Fragile,
			DeclaredValue: r.Package.DeclaredValue,
		},
		City: strings.TrimSpace(r.City),
	}
}

// PositionRequest is the courier position sent with a milestone.
type PositionRequest struct {
	Lat *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lng *float64 `json:"lng" validate:"required,gte=-180,lte=180"`
}

func (p PositionRequest) toDomain() ports.MilestoneInput {
	return ports.MilestoneInput{Position: domain.Location{Lat: *p.Lat, Lng: *p.Lng}}
}

// OfferRequest is a courier counter-offer.
type OfferRequest struct {
	Price   float64 `json:"price" validate:"gt=0"`
	Message string  `json:"message" validate:"max=280"`
}

// OfferDecisionRequest names the offer the client saw when deciding.
type OfferDecisionRequest struct {
	OfferID string `json:"offerId" validate:"required,max=64"`
}

// ReasonRequest carries the optional free-text reason of abandon and cancel.
type ReasonRequest struct {
	Reason string `json:"reason" validate:"max=280"`
}

// WindowResponse is returned when a decision window opens.
type WindowResponse struct {
	ShipmentID string    `json:"shipmentId"`
	Deadline   time.Time `json:"deadline"`
}

// validationMessage flattens validator errors into one line.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s must satisfy %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s is %s", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
