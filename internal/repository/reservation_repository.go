package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Kilat-Rental/service-reservation/internal/domain/reservation"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReservationModel is the GORM model for the reservations table.
type ReservationModel struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey"`
	VehicleID         uuid.UUID  `gorm:"type:uuid;index;not null"`
	VehicleName       string     `gorm:"size:120;not null"`
	UserID            *uuid.UUID `gorm:"type:uuid;index"`
	RenterName        string     `gorm:"size:120;not null"`
	RenterPhone       string     `gorm:"size:40;not null"`
	DesiredPickupDate time.Time  `gorm:"type:timestamptz;not null"`
	DesiredReturnDate *time.Time `gorm:"type:timestamptz"`
	EstimatedTotal    int64      `gorm:"not null"`
	CreatedAt         time.Time  `gorm:"type:timestamptz;not null"`
}

func (ReservationModel) TableName() string { return "reservations" }

// GormReservationRepository implements reservation.ReservationRepository using GORM.
type GormReservationRepository struct {
	db *gorm.DB
}

func NewGormReservationRepository(db *gorm.DB) *GormReservationRepository {
	return &GormReservationRepository{db: db}
}

// CreateReservation stores a fallback reservation; resubmitting the same id is a no-op.
func (r *GormReservationRepository) CreateReservation(ctx context.Context, record reservation.ReservationRecord) error {
	model := toReservationModel(record)
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(model).Error; err != nil {
		return fmt.Errorf("failed to save reservation: %w", err)
	}
	return nil
}

// ListAll retrieves all reservations with pagination (admin).
func (r *GormReservationRepository) ListAll(ctx context.Context, page, limit int) ([]reservation.ReservationRecord, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&ReservationModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reservations: %w", err)
	}

	var models []ReservationModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("desired_pickup_date ASC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list reservations: %w", err)
	}

	records := make([]reservation.ReservationRecord, len(models))
	for i, m := range models {
		records[i] = toReservationRecord(&m)
	}
	return records, total, nil
}

func toReservationModel(rec reservation.ReservationRecord) *ReservationModel {
	m := &ReservationModel{
		ID:                rec.ID,
		VehicleID:         rec.VehicleID,
		VehicleName:       rec.VehicleName,
		RenterName:        rec.RenterName,
		RenterPhone:       rec.RenterPhone,
		DesiredPickupDate: rec.DesiredPickupDate,
		DesiredReturnDate: rec.DesiredReturnDate,
		EstimatedTotal:    rec.EstimatedTotal,
		CreatedAt:         rec.CreatedAt,
	}
	if rec.UserID != uuid.Nil {
		userID := rec.UserID
		m.UserID = &userID
	}
	return m
}

func toReservationRecord(m *ReservationModel) reservation.ReservationRecord {
	rec := reservation.ReservationRecord{
		ID:                m.ID,
		VehicleID:         m.VehicleID,
		VehicleName:       m.VehicleName,
		RenterName:        m.RenterName,
		RenterPhone:       m.RenterPhone,
		DesiredPickupDate: m.DesiredPickupDate,
		DesiredReturnDate: m.DesiredReturnDate,
		EstimatedTotal:    m.EstimatedTotal,
		CreatedAt:         m.CreatedAt,
	}
	if m.UserID != nil {
		rec.UserID = *m.UserID
	}
	return rec
}
