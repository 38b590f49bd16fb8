package reservation

import (
	"fmt"

	"github.com/Kilat-Rental/service-reservation/internal/domain/vehicle"
)

// Outcome is the tag of a Resolution.
type Outcome string

const (
	OutcomeProceed Outcome = "proceed"
	OutcomeBranch  Outcome = "branch"
)

// BranchChoice is one of the two ways out of an availability branch.
type BranchChoice string

const (
	ChoiceEnterReservation  BranchChoice = "enter_reservation"
	ChoiceReturnToSelection BranchChoice = "return_to_selection"
)

// ParseBranchChoice converts a string to a BranchChoice, returning an error if invalid.
func ParseBranchChoice(s string) (BranchChoice, error) {
	c := BranchChoice(s)
	if c != ChoiceEnterReservation && c != ChoiceReturnToSelection {
		return "", fmt.Errorf("invalid branch choice: %s", s)
	}
	return c, nil
}

// Resolution is Proceed, or Branch carrying the vehicle and the offered choices.
type Resolution struct {
	Outcome Outcome         `json:"outcome"`
	Vehicle vehicle.Vehicle `json:"vehicle"`
	Choices []BranchChoice  `json:"choices,omitempty"`
}

// IsBranch reports whether the normal flow is blocked.
func (r Resolution) IsBranch() bool { return r.Outcome == OutcomeBranch }

// Resolver decides between the normal flow and the reservation fallback.
type Resolver struct {
	treatUnknownAsAvailable bool
}

// NewResolver creates a Resolver. treatUnknownAsAvailable sets the policy for
// vehicles whose availability was never reported.
func NewResolver(treatUnknownAsAvailable bool) Resolver {
	return Resolver{treatUnknownAsAvailable: treatUnknownAsAvailable}
}

// Resolve never returns Proceed for an unavailable vehicle.
func (r Resolver) Resolve(v vehicle.Vehicle) Resolution {
	switch v.Availability {
	case vehicle.AvailabilityAvailable:
		return Resolution{Outcome: OutcomeProceed, Vehicle: v}
	case vehicle.AvailabilityUnknown, "":
		if r.treatUnknownAsAvailable {
			return Resolution{Outcome: OutcomeProceed, Vehicle: v}
		}
	}
	return Resolution{
		Outcome: OutcomeBranch,
		Vehicle: v,
		Choices: []BranchChoice{ChoiceEnterReservation, ChoiceReturnToSelection},
	}
}
