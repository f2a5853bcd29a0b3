package workorder

import (
	"fmt"
	"strings"

	"github.com/garage/backend/internal/domain/shared"
)

// Status represents the lifecycle status of a work order
type Status string

const (
	StatusScheduled    Status = "SCHEDULED"
	StatusQuote        Status = "QUOTE"
	StatusOpen         Status = "OPEN"
	StatusReadyToClose Status = "READY_TO_CLOSE"
	StatusClosed       Status = "CLOSED"    // Terminal, financially consolidated
	StatusCancelled    Status = "CANCELLED" // Terminal
)

// AllStatuses lists every status in lifecycle order
var AllStatuses = []Status{
	StatusScheduled,
	StatusQuote,
	StatusOpen,
	StatusReadyToClose,
	StatusClosed,
	StatusCancelled,
}

var transitions = map[Status][]Status{
	StatusScheduled:    {StatusOpen, StatusCancelled},
	StatusQuote:        {StatusOpen, StatusCancelled},
	StatusOpen:         {StatusReadyToClose, StatusCancelled},
	StatusReadyToClose: {StatusClosed, StatusOpen, StatusCancelled},
	StatusClosed:       {},
	StatusCancelled:    {},
}

// IsValid checks if the status is a member of the enum
func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsTerminal returns true for CLOSED and CANCELLED
func (s Status) IsTerminal() bool {
	return s == StatusClosed || s == StatusCancelled
}

// InClosedSet reports whether stock for the work order is considered consumed
func (s Status) InClosedSet() bool {
	return s == StatusReadyToClose || s == StatusClosed
}

// CanTransitionTo reports whether next is in the transition table for s
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the statuses reachable from s
func (s Status) AllowedTransitions() []Status {
	out := make([]Status, len(transitions[s]))
	copy(out, transitions[s])
	return out
}

// ParseStatus converts external input into a Status. Only exact enum members are accepted;
// legacy spellings were normalized once by the database migration and are rejected here.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.TrimSpace(raw))
	if !s.IsValid() {
		return "", shared.NewValidationError(fmt.Sprintf("unknown work order status %q", raw))
	}
	return s, nil
}

// ValidateInitialStatus accepts only the statuses a work order may be created with
func ValidateInitialStatus(status Status) error {
	switch status {
	case StatusScheduled, StatusQuote, StatusOpen:
		return nil
	}
	return shared.NewValidationError(fmt.Sprintf("invalid initial status %q", status))
}

// ValidateTransition checks a requested status change. A nil next, or one equal to current,
// is a field-only edit and always succeeds.
func ValidateTransition(current Status, next *Status) error {
	if next == nil || *next == current {
		return nil
	}
	if current == StatusClosed {
		return shared.NewImmutabilityError("closed work order cannot change status")
	}
	if !current.CanTransitionTo(*next) {
		return shared.NewValidationError(fmt.Sprintf("transition from %s to %s is not allowed", current, *next))
	}
	return nil
}

// StockAdjustment is the direction of an inventory movement
type StockAdjustment string

const (
	StockDeduct StockAdjustment = "DEDUCT"
	StockReturn StockAdjustment = "RETURN"
)

// StockAdjustmentFor returns the inventory movement implied by moving from prev to next.
// Only an edge into or out of the closed set produces a movement.
func StockAdjustmentFor(prev, next Status) (StockAdjustment, bool) {
	switch {
	case !prev.InClosedSet() && next.InClosedSet():
		return StockDeduct, true
	case prev.InClosedSet() && !next.InClosedSet():
		return StockReturn, true
	}
	return "", false
}
