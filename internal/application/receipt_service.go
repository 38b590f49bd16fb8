package application

import (
	"bytes"
	"context"
	"fmt"

	receiptDomain "github.com/Kilat-Rental/service-reservation/internal/domain/receipt"
	"github.com/Kilat-Rental/service-reservation/internal/domain/reservation"
	"github.com/Kilat-Rental/service-reservation/internal/platform/apperr"
	"github.com/google/uuid"
	"github.com/phpdave11/gofpdf"
	"go.uber.org/zap"
)

// ReceiptService renders and serves booking receipts.
type ReceiptService struct {
	repo   receiptDomain.Repository
	logger *zap.Logger
}

// NewReceiptService creates a new ReceiptService.
func NewReceiptService(repo receiptDomain.Repository, logger *zap.Logger) *ReceiptService {
	return &ReceiptService{repo: repo, logger: logger}
}

// Emit renders the confirmed booking to PDF and stores it.
func (s *ReceiptService) Emit(ctx context.Context, booking reservation.ConfirmedBooking) error {
	content, err := renderReceiptPDF(booking)
	if err != nil {
		return err
	}

	rc, err := receiptDomain.NewReceipt(booking.BookingID, booking.ReferenceCode, booking.UserID, content)
	if err != nil {
		return err
	}
	if err := s.repo.Save(ctx, rc); err != nil {
		return fmt.Errorf("failed to save receipt: %w", err)
	}

	s.logger.Info("receipt stored",
		zap.String("booking_id", booking.BookingID),
		zap.Int("bytes", len(content)),
	)
	return nil
}

// GetReceipt returns a receipt to its renter or to an admin.
func (s *ReceiptService) GetReceipt(ctx context.Context, bookingID string, requesterID uuid.UUID, isAdmin bool) (*receiptDomain.Receipt, error) {
	rc, err := s.repo.FindByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && rc.UserID() != requesterID {
		return nil, apperr.NewForbiddenError("you do not have access to this receipt")
	}
	return rc, nil
}

func renderReceiptPDF(b reservation.ConfirmedBooking) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Rental Receipt "+b.BookingID, false)
	pdf.AddPage()
	// Core fonts are cp1252; tr maps UTF-8 input onto them.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "RENTAL RECEIPT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		"Booking ID     : " + b.BookingID,
		"Reference      : " + b.ReferenceCode,
		"Confirmation   : " + b.Confirmation.ConfirmationID,
		"Confirmed at   : " + b.Confirmation.ConfirmedAt.Format("2006-01-02 15:04 MST"),
	}
	for _, line := range lines {
		pdf.Cell(0, 7, tr(line))
		pdf.Ln(7)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Renter")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, tr("Name    : "+b.RenterName))
	pdf.Ln(7)
	pdf.Cell(0, 7, tr("Phone   : "+b.RenterPhone))
	pdf.Ln(7)
	pdf.Cell(0, 7, tr("License : "+b.LicenseNumber))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Rental")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, tr("Vehicle : "+b.VehicleName))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Period  : %s to %s (%d days)",
		b.PickupDate.Format("2006-01-02"), b.ReturnDate.Format("2006-01-02"), b.Days))
	pdf.Ln(7)
	pdf.Cell(0, 7, fmt.Sprintf("Rate    : %d per day", b.DailyRate))
	pdf.Ln(7)
	pdf.Cell(0, 7, "Payment : "+paymentLabel(b.PaymentMethod))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 8, fmt.Sprintf("Total: %d", b.Total))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 6, "Show this receipt and your driving license at pickup.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render receipt: %w", err)
	}
	return buf.Bytes(), nil
}

func paymentLabel(m reservation.PaymentMethod) string {
	switch m {
	case reservation.PaymentCard:
		return "Card"
	case reservation.PaymentBankTransfer:
		return "Bank transfer"
	case reservation.PaymentCashOnPickup:
		return "Cash on pickup"
	default:
		return string(m)
	}
}
