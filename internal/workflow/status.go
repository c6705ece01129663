// Package workflow holds the batch status state machine.
package workflow

import (
	"errors"
	"fmt"

	"github.com/nurpe/linen-admin/internal/model"
)

var ErrInvalidTransition = errors.New("invalid status transition")

var transitions = map[model.BatchStatus][]model.BatchStatus{
	model.BatchStatusPickup:    {model.BatchStatusWashing},
	model.BatchStatusWashing:   {model.BatchStatusCompleted, model.BatchStatusDelivered},
	model.BatchStatusCompleted: {model.BatchStatusDelivered},
	model.BatchStatusDelivered: nil,
}

// Initial is the status every new batch starts in.
const Initial = model.BatchStatusPickup

// Known reports whether s is one of the four batch statuses.
func Known(s model.BatchStatus) bool {
	_, ok := transitions[s]
	return ok
}

func Terminal(s model.BatchStatus) bool {
	return Known(s) && len(transitions[s]) == 0
}

// NextStates lists the statuses an operator may move a batch to.
func NextStates(s model.BatchStatus) []model.BatchStatus {
	next := transitions[s]
	out := make([]model.BatchStatus, len(next))
	copy(out, next)
	return out
}

// CanTransition reports whether from -> to is a forward edge of the workflow.
func CanTransition(from, to model.BatchStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Validate returns ErrInvalidTransition unless from -> to is allowed.
func Validate(from, to model.BatchStatus) error {
	if !Known(to) {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, to)
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}
