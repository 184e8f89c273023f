package contract

import "errors"

var (
	ErrModelInvoke     = errors.New("model invoke failed")
	ErrSchemaViolation = errors.New("model response violates schema")
	ErrPromptMissing   = errors.New("required prompt is missing")
	ErrValidation      = errors.New("validation failed")

	// ErrIncompleteSpecialistResult marks an iteration where the planner or the
	// booking specialist produced zero items. It is retried inside the loop and
	// only surfaces when every attempt has been spent.
	ErrIncompleteSpecialistResult = errors.New("specialist returned an incomplete result")
	// ErrBudgetUnsatisfiable is terminal: no attempt produced a within-budget plan.
	ErrBudgetUnsatisfiable = errors.New("budget unsatisfiable")
	ErrToolFailure         = errors.New("tool call failed")
)
