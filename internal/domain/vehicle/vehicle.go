package vehicle

import (
	"fmt"

	"github.com/google/uuid"
)

// Availability is the catalog-reported booking state of a vehicle.
type Availability string

const (
	AvailabilityAvailable   Availability = "available"
	AvailabilityUnavailable Availability = "unavailable"
	AvailabilityUnknown     Availability = "unknown"
)

// IsValid returns true if the availability is recognized.
func (a Availability) IsValid() bool {
	switch a {
	case AvailabilityAvailable, AvailabilityUnavailable, AvailabilityUnknown:
		return true
	}
	return false
}

// ParseAvailability converts a stored or reported value. An empty value is unreported.
func ParseAvailability(s string) (Availability, error) {
	if s == "" {
		return AvailabilityUnknown, nil
	}
	a := Availability(s)
	if !a.IsValid() {
		return "", fmt.Errorf("invalid availability: %s", s)
	}
	return a, nil
}

// Transmission is the gearbox type.
type Transmission string

const (
	TransmissionAutomatic Transmission = "automatic"
	TransmissionManual    Transmission = "manual"
)

// IsValid returns true if the transmission is recognized.
func (t Transmission) IsValid() bool {
	return t == TransmissionAutomatic || t == TransmissionManual
}

// FuelType is the energy source of the vehicle.
type FuelType string

const (
	FuelPetrol   FuelType = "petrol"
	FuelDiesel   FuelType = "diesel"
	FuelHybrid   FuelType = "hybrid"
	FuelElectric FuelType = "electric"
)

// IsValid returns true if the fuel type is recognized.
func (f FuelType) IsValid() bool {
	switch f {
	case FuelPetrol, FuelDiesel, FuelHybrid, FuelElectric:
		return true
	}
	return false
}

// Vehicle is an immutable catalog entry. DailyRate is in minor currency units.
type Vehicle struct {
	ID           uuid.UUID    `json:"id"`
	Name         string       `json:"name"`
	DailyRate    int64        `json:"daily_rate"`
	Transmission Transmission `json:"transmission"`
	FuelType     FuelType     `json:"fuel_type"`
	Seats        int          `json:"seats"`
	Color        string       `json:"color"`
	Availability Availability `json:"availability"`
	ImageURL     string       `json:"image_url"`
}

// IsZero reports whether no vehicle is set.
func (v Vehicle) IsZero() bool { return v.ID == uuid.Nil }

// WithAvailability returns a copy carrying a new availability indicator.
func (v Vehicle) WithAvailability(a Availability) Vehicle {
	v.Availability = a
	return v
}
