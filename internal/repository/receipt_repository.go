package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	receiptDomain "github.com/Kilat-Rental/service-reservation/internal/domain/receipt"
	"github.com/Kilat-Rental/service-reservation/internal/platform/apperr"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ReceiptModel is the GORM model for the receipts table.
type ReceiptModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	BookingNumber string    `gorm:"uniqueIndex;not null;size:20"`
	ReferenceCode string    `gorm:"not null;size:20"`
	UserID        uuid.UUID `gorm:"type:uuid;index;not null"`
	ContentType   string    `gorm:"type:varchar(60);not null"`
	Content       []byte    `gorm:"type:bytea;not null"`
	CreatedAt     time.Time `gorm:"type:timestamptz;not null"`
}

// TableName sets the table name.
func (ReceiptModel) TableName() string { return "receipts" }

// GormReceiptRepository implements receipt.Repository using GORM.
type GormReceiptRepository struct {
	db *gorm.DB
}

// NewGormReceiptRepository creates a new GormReceiptRepository.
func NewGormReceiptRepository(db *gorm.DB) *GormReceiptRepository {
	return &GormReceiptRepository{db: db}
}

// Save persists a receipt. A receipt already stored for the booking is kept.
func (r *GormReceiptRepository) Save(ctx context.Context, rc *receiptDomain.Receipt) error {
	model := toReceiptModel(rc)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "booking_number"}},
			DoNothing: true,
		}).
		Create(&model).Error
}

// FindByBookingID returns the receipt of a booking.
func (r *GormReceiptRepository) FindByBookingID(ctx context.Context, bookingID string) (*receiptDomain.Receipt, error) {
	var model ReceiptModel
	if err := r.db.WithContext(ctx).Where("booking_number = ?", bookingID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NewNotFoundError("Receipt", bookingID)
		}
		return nil, fmt.Errorf("failed to find receipt: %w", err)
	}
	return toReceiptDomain(&model), nil
}

func toReceiptModel(rc *receiptDomain.Receipt) ReceiptModel {
	return ReceiptModel{
		ID:            rc.ID(),
		BookingNumber: rc.BookingID(),
		ReferenceCode: rc.ReferenceCode(),
		UserID:        rc.UserID(),
		ContentType:   rc.ContentType(),
		Content:       rc.Content(),
		CreatedAt:     rc.CreatedAt(),
	}
}

func toReceiptDomain(m *ReceiptModel) *receiptDomain.Receipt {
	return receiptDomain.Reconstruct(
		m.ID,
		m.BookingNumber,
		m.ReferenceCode,
		m.UserID,
		m.ContentType,
		m.Content,
		m.CreatedAt,
	)
}
