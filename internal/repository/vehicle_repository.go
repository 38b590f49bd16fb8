package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Kilat-Rental/service-reservation/internal/domain/vehicle"
	"github.com/Kilat-Rental/service-reservation/internal/platform/apperr"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VehicleModel is the GORM model for the vehicles table.
type VehicleModel struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name         string    `gorm:"type:varchar(120);not null"`
	DailyRate    int64     `gorm:"not null"`
	Transmission string    `gorm:"type:varchar(20);not null"`
	FuelType     string    `gorm:"type:varchar(20);not null"`
	Seats        int       `gorm:"not null"`
	Color        string    `gorm:"type:varchar(40)"`
	Availability string    `gorm:"type:varchar(20);not null;index"`
	ImageURL     string    `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"type:timestamptz;not null"`
	UpdatedAt    time.Time `gorm:"type:timestamptz;not null"`
}

func (VehicleModel) TableName() string { return "vehicles" }

// GormVehicleRepository implements vehicle.Repository using GORM.
type GormVehicleRepository struct {
	db *gorm.DB
}

func NewGormVehicleRepository(db *gorm.DB) *GormVehicleRepository {
	return &GormVehicleRepository{db: db}
}

func (r *GormVehicleRepository) FindByID(ctx context.Context, id uuid.UUID) (vehicle.Vehicle, error) {
	var model VehicleModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return vehicle.Vehicle{}, apperr.NewNotFoundError("Vehicle", id.String())
		}
		return vehicle.Vehicle{}, fmt.Errorf("failed to find vehicle by ID: %w", err)
	}
	return toVehicleDomain(&model), nil
}

func (r *GormVehicleRepository) List(ctx context.Context, filter vehicle.Filter, page, limit int) ([]vehicle.Vehicle, int64, error) {
	query := r.db.WithContext(ctx).Model(&VehicleModel{})
	if filter.Transmission != "" {
		query = query.Where("transmission = ?", string(filter.Transmission))
	}
	if filter.FuelType != "" {
		query = query.Where("fuel_type = ?", string(filter.FuelType))
	}
	if filter.AvailableOnly {
		query = query.Where("availability = ?", string(vehicle.AvailabilityAvailable))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count vehicles: %w", err)
	}

	var models []VehicleModel
	offset := (page - 1) * limit
	if err := query.
		Order("name ASC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list vehicles: %w", err)
	}

	vehicles := make([]vehicle.Vehicle, len(models))
	for i, m := range models {
		vehicles[i] = toVehicleDomain(&m)
	}
	return vehicles, total, nil
}

func (r *GormVehicleRepository) UpdateAvailability(ctx context.Context, id uuid.UUID, availability vehicle.Availability) error {
	result := r.db.WithContext(ctx).
		Model(&VehicleModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"availability": string(availability),
			"updated_at":   time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update vehicle availability: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NewNotFoundError("Vehicle", id.String())
	}
	return nil
}

func toVehicleDomain(m *VehicleModel) vehicle.Vehicle {
	availability, err := vehicle.ParseAvailability(m.Availability)
	if err != nil {
		availability = vehicle.AvailabilityUnknown
	}
	return vehicle.Vehicle{
		ID:           m.ID,
		Name:         m.Name,
		DailyRate:    m.DailyRate,
		Transmission: vehicle.Transmission(m.Transmission),
		FuelType:     vehicle.FuelType(m.FuelType),
		Seats:        m.Seats,
		Color:        m.Color,
		Availability: availability,
		ImageURL:     m.ImageURL,
	}
}
