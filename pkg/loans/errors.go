package loans

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTerms is returned when loan terms cannot produce a schedule.
	ErrInvalidTerms = errors.New("invalid loan terms")
	// ErrInvalidVariation is returned for malformed or inconsistent term variations.
	ErrInvalidVariation = errors.New("invalid term variation")
	// ErrNegativeBalance is returned when principal variations would drive the
	// outstanding balance below zero.
	ErrNegativeBalance = errors.New("outstanding balance would become negative")
	// ErrBrokenInvariant is returned when generation produces a value that can only
	// come from a defect upstream, such as a negative principal component.
	ErrBrokenInvariant = errors.New("amortization invariant violated")
)

// ValidationError describes rejected input before any period is generated.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%v: %s: %s", e.Err, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// InvariantError aborts a schedule run at the period where an invariant broke.
type InvariantError struct {
	Period int
	Detail string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%v in period %d: %s", ErrBrokenInvariant, e.Period, e.Detail)
}

func (e *InvariantError) Unwrap() error {
	return ErrBrokenInvariant
}

func invalidTerms(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...), Err: ErrInvalidTerms}
}

func invalidVariation(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...), Err: ErrInvalidVariation}
}
