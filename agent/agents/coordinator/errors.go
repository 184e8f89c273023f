package coordinator

import (
	"fmt"

	contractx "github.com/tanpawarit/trip-planner-agent/agent/contract"
)

// BudgetUnsatisfiableError is returned when every iteration was spent without
// a plan that satisfied the success predicate.
type BudgetUnsatisfiableError struct {
	Destination   string
	Budget        float64
	MaxIterations int
	// Incomplete is true when the final attempt had no activities or no
	// booking options.
	Incomplete bool
	// LastTotal is the total of the last analyzed plan, zero if none was.
	LastTotal float64
}

func (e *BudgetUnsatisfiableError) Error() string {
	msg := fmt.Sprintf("%s: no plan for %s within $%.2f after %d iterations",
		contractx.ErrBudgetUnsatisfiable, e.Destination, e.Budget, e.MaxIterations)
	if e.LastTotal > 0 {
		msg += fmt.Sprintf(" (last total $%.2f)", e.LastTotal)
	}
	if e.Incomplete {
		msg += " (last attempt incomplete)"
	}
	return msg
}

func (e *BudgetUnsatisfiableError) Unwrap() []error {
	if e.Incomplete {
		return []error{contractx.ErrBudgetUnsatisfiable, contractx.ErrIncompleteSpecialistResult}
	}
	return []error{contractx.ErrBudgetUnsatisfiable}
}
