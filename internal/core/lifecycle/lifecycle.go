// Package lifecycle validates deduplication-process status transitions.
package lifecycle

import (
	"fmt"

	"github.com/fares1919-ltrch/Backend-stage-sub000/internal/core/model"
)

// transitions is the full legal-transition table. Error and Cleaned are
// terminal: an operator reset is outside this validator's authority.
var transitions = map[model.ProcessStatus][]model.ProcessStatus{
	model.ProcessReadyToStart:     {model.ProcessInProcessing, model.ProcessError},
	model.ProcessInProcessing:     {model.ProcessCompleted, model.ProcessPaused, model.ProcessError, model.ProcessConflictDetected},
	model.ProcessCompleted:        {model.ProcessCleaning, model.ProcessError},
	model.ProcessPaused:           {model.ProcessInProcessing, model.ProcessError},
	model.ProcessConflictDetected: {model.ProcessInProcessing, model.ProcessError},
	model.ProcessCleaning:         {model.ProcessCleaned, model.ProcessError},
	model.ProcessError:            {},
	model.ProcessCleaned:          {},
}

// IsValidTransition reports whether moving from current to next is legal.
// Pure function over the two values; no side effects.
func IsValidTransition(current, next model.ProcessStatus) bool {
	for _, allowed := range transitions[current] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TransitionError rejects an illegal status transition. It carries the
// current status so callers can report why the action was refused.
type TransitionError struct {
	Current model.ProcessStatus
	Next    model.ProcessStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot transition process from %s to %s", e.Current, e.Next)
}

// ValidateTransition returns a *TransitionError when the move is illegal.
func ValidateTransition(current, next model.ProcessStatus) error {
	if !IsValidTransition(current, next) {
		return &TransitionError{Current: current, Next: next}
	}
	return nil
}
