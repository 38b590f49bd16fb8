package reservation

import "fmt"

// DraftStatus represents the submission state of a booking draft.
type DraftStatus string

const (
	StatusDraft      DraftStatus = "draft"
	StatusSubmitting DraftStatus = "submitting"
	StatusConfirmed  DraftStatus = "confirmed"
	StatusFailed     DraftStatus = "failed"
)

// validTransitions defines the state machine for draft status transitions.
var validTransitions = map[DraftStatus][]DraftStatus{
	StatusDraft:      {StatusSubmitting},
	StatusSubmitting: {StatusConfirmed, StatusFailed},
	StatusFailed:     {StatusSubmitting},
	StatusConfirmed:  {},
}

// IsValid returns true if the status is a recognized draft status.
func (s DraftStatus) IsValid() bool {
	_, exists := validTransitions[s]
	return exists
}

// CanTransitionTo returns true if a transition from this status to the target is allowed.
func (s DraftStatus) CanTransitionTo(target DraftStatus) bool {
	for _, t := range validTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

// IsTerminal returns true if no further transitions are possible from this status.
func (s DraftStatus) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// String returns the string representation of the status.
func (s DraftStatus) String() string {
	return string(s)
}

// ParseDraftStatus converts a string to a DraftStatus, returning an error if invalid.
func ParseDraftStatus(s string) (DraftStatus, error) {
	status := DraftStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid draft status: %s", s)
	}
	return status, nil
}
