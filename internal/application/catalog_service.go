package application

import (
	"context"
	"fmt"

	"github.com/Kilat-Rental/service-reservation/internal/domain/vehicle"
	"github.com/Kilat-Rental/service-reservation/internal/platform/apperr"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ListVehiclesQuery holds catalog listing filters.
type ListVehiclesQuery struct {
	Transmission  string
	FuelType      string
	AvailableOnly bool
	Page          int
	Limit         int
}

// CatalogService serves vehicle catalog use cases.
type CatalogService struct {
	repo   vehicle.Repository
	logger *zap.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(repo vehicle.Repository, logger *zap.Logger) *CatalogService {
	return &CatalogService{repo: repo, logger: logger}
}

// ListVehicles returns a page of vehicles.
func (s *CatalogService) ListVehicles(ctx context.Context, q ListVehiclesQuery) ([]vehicle.Vehicle, int64, error) {
	filter := vehicle.Filter{AvailableOnly: q.AvailableOnly}
	if q.Transmission != "" {
		t := vehicle.Transmission(q.Transmission)
		if !t.IsValid() {
			return nil, 0, apperr.NewValidationError(fmt.Sprintf("invalid transmission: %s", q.Transmission))
		}
		filter.Transmission = t
	}
	if q.FuelType != "" {
		f := vehicle.FuelType(q.FuelType)
		if !f.IsValid() {
			return nil, 0, apperr.NewValidationError(fmt.Sprintf("invalid fuel type: %s", q.FuelType))
		}
		filter.FuelType = f
	}

	vehicles, total, err := s.repo.List(ctx, filter, q.Page, q.Limit)
	if err != nil {
		return nil, 0, catalogError(err)
	}
	return vehicles, total, nil
}

// GetVehicle returns one vehicle.
func (s *CatalogService) GetVehicle(ctx context.Context, id uuid.UUID) (vehicle.Vehicle, error) {
	v, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return vehicle.Vehicle{}, catalogError(err)
	}
	return v, nil
}

// ApplyAvailabilityChange records an availability change reported by the catalog owner.
func (s *CatalogService) ApplyAvailabilityChange(ctx context.Context, id uuid.UUID, availability string) error {
	a, err := vehicle.ParseAvailability(availability)
	if err != nil {
		return apperr.NewValidationError(err.Error())
	}
	if err := s.repo.UpdateAvailability(ctx, id, a); err != nil {
		return err
	}

	s.logger.Info("vehicle availability updated",
		zap.String("vehicle_id", id.String()),
		zap.String("availability", string(a)),
	)
	return nil
}

// catalogError keeps classified errors and reports store failures as network errors.
func catalogError(err error) error {
	if apperr.KindOf(err) != apperr.KindInternal {
		return err
	}
	return apperr.NewNetworkError("vehicle catalog is unavailable", err)
}
