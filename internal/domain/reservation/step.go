package reservation

import "fmt"

// Step is a state of the reservation workflow.
type Step int

const (
	StepSelectVehicle Step = iota + 1
	StepReviewSpecs
	StepEnterDetails
	StepPayment
	StepConfirmation
	StepReservationFallback
	StepReservationConfirmed
)

var stepNames = map[Step]string{
	StepSelectVehicle:        "select_vehicle",
	StepReviewSpecs:          "review_specs",
	StepEnterDetails:         "enter_details",
	StepPayment:              "payment",
	StepConfirmation:         "confirmation",
	StepReservationFallback:  "reservation_fallback",
	StepReservationConfirmed: "reservation_confirmed",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// MarshalText encodes the step by name.
func (s Step) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Number is the 1-5 position in the main chain, or 0 on the fallback branch.
func (s Step) Number() int {
	if s >= StepSelectVehicle && s <= StepConfirmation {
		return int(s)
	}
	return 0
}

// IsTerminal returns true for the two end states.
func (s Step) IsTerminal() bool {
	return s == StepConfirmation || s == StepReservationConfirmed
}

// Action is a user intent applied to the workflow.
type Action string

const (
	ActionNext               Action = "next"
	ActionBack               Action = "back"
	ActionEnterReservation   Action = "enter_reservation"
	ActionReturnToSelection  Action = "return_to_selection"
	ActionConfirm            Action = "confirm"
	ActionConfirmReservation Action = "confirm_reservation"
)

// stepTransitions lists the legal moves. Guards are evaluated by Session.
var stepTransitions = map[Step]map[Action]Step{
	StepSelectVehicle: {
		ActionNext:              StepReviewSpecs,
		ActionEnterReservation:  StepReservationFallback,
		ActionReturnToSelection: StepSelectVehicle,
	},
	StepReviewSpecs: {
		ActionNext:              StepEnterDetails,
		ActionBack:              StepSelectVehicle,
		ActionReturnToSelection: StepSelectVehicle,
	},
	StepEnterDetails: {
		ActionNext:              StepPayment,
		ActionBack:              StepReviewSpecs,
		ActionReturnToSelection: StepSelectVehicle,
	},
	StepPayment: {
		ActionConfirm:           StepConfirmation,
		ActionBack:              StepEnterDetails,
		ActionReturnToSelection: StepSelectVehicle,
	},
	StepReservationFallback: {
		ActionConfirmReservation: StepReservationConfirmed,
		ActionBack:               StepSelectVehicle,
		ActionReturnToSelection:  StepSelectVehicle,
	},
	StepConfirmation:         {},
	StepReservationConfirmed: {},
}

// nextStep is the pure transition function of the workflow.
func nextStep(from Step, action Action) (Step, bool) {
	to, ok := stepTransitions[from][action]
	return to, ok
}
