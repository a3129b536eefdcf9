package loans

import "fmt"

// InvalidLoanError indicates structurally invalid loan terms. It is returned
// before any schedule computation starts; a schedule is never partially
// computed.
type InvalidLoanError struct {
	Field  string
	Reason string
}

func (e *InvalidLoanError) Error() string {
	return fmt.Sprintf("invalid loan terms: %s %s", e.Field, e.Reason)
}

// InvalidPlanError indicates a malformed payment plan (negative amounts or an
// out-of-range one-time payment month).
type InvalidPlanError struct {
	Field  string
	Reason string
}

func (e *InvalidPlanError) Error() string {
	return fmt.Sprintf("invalid payment plan: %s %s", e.Field, e.Reason)
}

// InvariantViolationError signals an internal defect such as negative savings
// or a schedule that fails to terminate. These are programming-error signals,
// not user-facing recoverable conditions.
type InvariantViolationError struct {
	Reason string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("invariant violation: %s", e.Reason)
}
