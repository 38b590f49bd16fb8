package receipt

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ContentTypePDF is the media type of rendered receipts.
const ContentTypePDF = "application/pdf"

// Receipt is a rendered confirmation document for one booking.
type Receipt struct {
	id            uuid.UUID
	bookingID     string
	referenceCode string
	userID        uuid.UUID
	contentType   string
	content       []byte
	createdAt     time.Time
}

// NewReceipt creates a new PDF receipt.
func NewReceipt(bookingID, referenceCode string, userID uuid.UUID, content []byte) (*Receipt, error) {
	if bookingID == "" {
		return nil, fmt.Errorf("booking ID is required")
	}
	if len(content) == 0 {
		return nil, fmt.Errorf("receipt content is empty")
	}

	return &Receipt{
		id:            uuid.New(),
		bookingID:     bookingID,
		referenceCode: referenceCode,
		userID:        userID,
		contentType:   ContentTypePDF,
		content:       content,
		createdAt:     time.Now().UTC(),
	}, nil
}

// Reconstruct rebuilds a Receipt from persistence.
func Reconstruct(id uuid.UUID, bookingID, referenceCode string, userID uuid.UUID, contentType string, content []byte, createdAt time.Time) *Receipt {
	return &Receipt{
		id:            id,
		bookingID:     bookingID,
		referenceCode: referenceCode,
		userID:        userID,
		contentType:   contentType,
		content:       content,
		createdAt:     createdAt,
	}
}

func (r *Receipt) ID() uuid.UUID         { return r.id }
func (r *Receipt) BookingID() string     { return r.bookingID }
func (r *Receipt) ReferenceCode() string { return r.referenceCode }
func (r *Receipt) UserID() uuid.UUID     { return r.userID }
func (r *Receipt) ContentType() string   { return r.contentType }
func (r *Receipt) Content() []byte       { return r.content }
func (r *Receipt) CreatedAt() time.Time  { return r.createdAt }

// FileName is the download name of the document.
func (r *Receipt) FileName() string {
	return fmt.Sprintf("receipt-%s.pdf", r.bookingID)
}
