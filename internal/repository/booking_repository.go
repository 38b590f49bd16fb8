package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Kilat-Rental/service-reservation/internal/domain/reservation"
	"github.com/Kilat-Rental/service-reservation/internal/platform/apperr"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	BookingNumber  string    `gorm:"uniqueIndex;not null;size:20"`
	ReferenceCode  string    `gorm:"not null;size:20"`
	ConfirmationID string    `gorm:"not null;size:64"`
	VehicleID      uuid.UUID `gorm:"type:uuid;index;not null"`
	VehicleName    string    `gorm:"size:120;not null"`
	DailyRate      int64     `gorm:"not null"`
	UserID         uuid.UUID `gorm:"type:uuid;index;not null"`
	RenterName     string    `gorm:"size:120;not null"`
	RenterPhone    string    `gorm:"size:40;not null"`
	RenterEmail    string    `gorm:"size:255"`
	LicenseNumber  string    `gorm:"size:60;not null"`
	PickupDate     time.Time `gorm:"type:timestamptz;not null"`
	ReturnDate     time.Time `gorm:"type:timestamptz;not null"`
	Days           int       `gorm:"not null"`
	Total          int64     `gorm:"not null"`
	PaymentMethod  string    `gorm:"size:30;not null;index"`
	ConfirmedAt    time.Time `gorm:"type:timestamptz;not null"`
	CreatedAt      time.Time `gorm:"type:timestamptz;not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based booking gateway.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// CreateBooking stores a booking. A repeated request from the same draft
// returns the stored booking, which may differ from record if the draft was
// edited between attempts. The same booking id on another draft is a conflict.
func (r *GormBookingRepository) CreateBooking(ctx context.Context, record reservation.BookingRecord) (reservation.ConfirmedBooking, error) {
	now := time.Now().UTC()
	model := toBookingModel(record, "CNF-"+uuid.NewString(), now)

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "booking_number"}},
			DoNothing: true,
		}).
		Create(model)
	if result.Error != nil {
		return reservation.ConfirmedBooking{}, fmt.Errorf("failed to save booking: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		existing, err := r.FindByBookingID(ctx, record.BookingID)
		if err != nil {
			return reservation.ConfirmedBooking{}, err
		}
		if existing.DraftID != record.DraftID || existing.ReferenceCode != record.ReferenceCode {
			return reservation.ConfirmedBooking{}, apperr.NewConflictError(
				fmt.Sprintf("booking id %s is already in use", record.BookingID),
			)
		}
		return *existing, nil
	}

	return reservation.ConfirmedBooking{
		BookingRecord: record,
		Confirmation: reservation.BookingReceipt{
			ConfirmationID: model.ConfirmationID,
			ConfirmedAt:    model.ConfirmedAt,
		},
	}, nil
}

// FindByBookingID retrieves a booking by its booking id.
func (r *GormBookingRepository) FindByBookingID(ctx context.Context, bookingID string) (*reservation.ConfirmedBooking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("booking_number = ?", bookingID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFoundError("Booking", bookingID)
		}
		return nil, fmt.Errorf("failed to find booking by number: %w", err)
	}
	b := toConfirmedBooking(&model)
	return &b, nil
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]reservation.ConfirmedBooking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	bookings := make([]reservation.ConfirmedBooking, len(models))
	for i, m := range models {
		bookings[i] = toConfirmedBooking(&m)
	}
	return bookings, total, nil
}

// SummarizeByPaymentMethod returns booking counts and totals grouped by payment method (admin).
func (r *GormBookingRepository) SummarizeByPaymentMethod(ctx context.Context) ([]reservation.PaymentSummary, error) {
	type methodSummary struct {
		PaymentMethod string
		Count         int64
		Total         int64
	}
	var results []methodSummary
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("payment_method, count(*) as count, coalesce(sum(total), 0) as total").
		Group("payment_method").
		Order("payment_method").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to summarize bookings: %w", err)
	}

	summaries := make([]reservation.PaymentSummary, len(results))
	for i, s := range results {
		summaries[i] = reservation.PaymentSummary{
			PaymentMethod: reservation.PaymentMethod(s.PaymentMethod),
			Count:         s.Count,
			Total:         s.Total,
		}
	}
	return summaries, nil
}

// --- Conversion Helpers ---

func toBookingModel(rec reservation.BookingRecord, confirmationID string, now time.Time) *BookingModel {
	return &BookingModel{
		ID:             rec.DraftID,
		BookingNumber:  rec.BookingID,
		ReferenceCode:  rec.ReferenceCode,
		ConfirmationID: confirmationID,
		VehicleID:      rec.VehicleID,
		VehicleName:    rec.VehicleName,
		DailyRate:      rec.DailyRate,
		UserID:         rec.UserID,
		RenterName:     rec.RenterName,
		RenterPhone:    rec.RenterPhone,
		RenterEmail:    rec.RenterEmail,
		LicenseNumber:  rec.LicenseNumber,
		PickupDate:     rec.PickupDate,
		ReturnDate:     rec.ReturnDate,
		Days:           rec.Days,
		Total:          rec.Total,
		PaymentMethod:  string(rec.PaymentMethod),
		ConfirmedAt:    now,
		CreatedAt:      now,
	}
}

func toConfirmedBooking(m *BookingModel) reservation.ConfirmedBooking {
	return reservation.ConfirmedBooking{
		BookingRecord: reservation.BookingRecord{
			BookingID:     m.BookingNumber,
			ReferenceCode: m.ReferenceCode,
			DraftID:       m.ID,
			VehicleID:     m.VehicleID,
			VehicleName:   m.VehicleName,
			DailyRate:     m.DailyRate,
			UserID:        m.UserID,
			RenterName:    m.RenterName,
			RenterPhone:   m.RenterPhone,
			RenterEmail:   m.RenterEmail,
			LicenseNumber: m.LicenseNumber,
			PickupDate:    m.PickupDate,
			ReturnDate:    m.ReturnDate,
			Days:          m.Days,
			Total:         m.Total,
			PaymentMethod: reservation.PaymentMethod(m.PaymentMethod),
		},
		Confirmation: reservation.BookingReceipt{
			ConfirmationID: m.ConfirmationID,
			ConfirmedAt:    m.ConfirmedAt,
		},
	}
}
