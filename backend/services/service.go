// Package services holds the service catalogue model and the providers that
// list it.
package services

import "context"

// Service is one laundry offering as returned by GET /api/services.
type Service struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	PricePerUnit float64 `json:"pricePerUnit"`
	Unit         string  `json:"unit"`
}

// Provider lists the service catalogue. Implementations must be safe for
// concurrent use.
type Provider interface {
	ListServices(ctx context.Context) ([]Service, error)
}

// Pinger is implemented by providers backed by a remote store.
type Pinger interface {
	Ping(ctx context.Context) error
}
