package services

import "context"

// placeholder catalogue used when no database is configured
var staticCatalogue = []Service{
	{ID: 1, Name: "Wash & Fold", Description: "Washed, dried and neatly folded.", PricePerUnit: 500, Unit: "kg"},
	{ID: 2, Name: "Wash & Iron", Description: "Washed, dried and pressed.", PricePerUnit: 800, Unit: "kg"},
	{ID: 3, Name: "Dry Cleaning", Description: "Solvent cleaning for delicate garments.", PricePerUnit: 1500, Unit: "item"},
	{ID: 4, Name: "Just Ironing", Description: "Pressing only, bring them clean.", PricePerUnit: 300, Unit: "item"},
}

// Static serves the fixed placeholder catalogue without any I/O.
type Static struct{}

// NewStatic returns the in-memory provider.
func NewStatic() *Static {
	return &Static{}
}

// ListServices returns a fresh copy of the catalogue in insertion order.
func (Static) ListServices(_ context.Context) ([]Service, error) {
	out := make([]Service, len(staticCatalogue))
	copy(out, staticCatalogue)
	return out, nil
}
