package reservation

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"io"
	"sync"

	"github.com/Kilat-Rental/service-reservation/internal/platform/clock"
)

const referenceChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Identifiers is the booking id and reference code pair of one submission chain.
type Identifiers struct {
	BookingID     string `json:"booking_id"`
	ReferenceCode string `json:"reference_code"`
}

// IsZero reports whether no identifiers have been assigned yet.
func (i Identifiers) IsZero() bool {
	return i.BookingID == "" && i.ReferenceCode == ""
}

// IdentifierGenerator issues "BK-" + 6 digits and "REF-" + 4 [A-Z0-9] pairs.
type IdentifierGenerator struct {
	mu     sync.Mutex
	clock  clock.Clock
	random io.Reader
}

// NewIdentifierGenerator creates a generator. A nil random source means crypto/rand.
func NewIdentifierGenerator(clk clock.Clock, random io.Reader) *IdentifierGenerator {
	if clk == nil {
		clk = clock.NewSystem()
	}
	if random == nil {
		random = rand.Reader
	}
	return &IdentifierGenerator{clock: clk, random: random}
}

// Generate returns a fresh identifier pair.
func (g *IdentifierGenerator) Generate() (Identifiers, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	buf := make([]byte, 8)
	if _, err := io.ReadFull(g.random, buf); err != nil {
		return Identifiers{}, fmt.Errorf("failed to generate booking id: %w", err)
	}

	millis := uint64(g.clock.Now().UnixMilli())
	digits := (uint64(binary.BigEndian.Uint32(buf[:4])) + millis) % 1_000_000

	ref := make([]byte, 4)
	for i, b := range buf[4:] {
		ref[i] = referenceChars[int(b)%len(referenceChars)]
	}

	return Identifiers{
		BookingID:     fmt.Sprintf("BK-%06d", digits),
		ReferenceCode: "REF-" + string(ref),
	}, nil
}
