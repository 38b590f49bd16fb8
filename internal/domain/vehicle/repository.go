package vehicle

import (
	"context"

	"github.com/google/uuid"
)

// Filter narrows a catalog listing. Zero values mean "any".
type Filter struct {
	Transmission  Transmission
	FuelType      FuelType
	AvailableOnly bool
}

// Catalog is the read side of the vehicle store.
type Catalog interface {
	// FindByID retrieves a vehicle by its identifier.
	FindByID(ctx context.Context, id uuid.UUID) (Vehicle, error)

	// List retrieves vehicles matching filter with pagination.
	List(ctx context.Context, filter Filter, page, limit int) ([]Vehicle, int64, error)
}

// Repository adds the availability write used by catalog events.
type Repository interface {
	Catalog

	// UpdateAvailability records a new availability indicator for a vehicle.
	UpdateAvailability(ctx context.Context, id uuid.UUID, availability Availability) error
}
