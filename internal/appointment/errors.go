package appointment

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrClosed is returned for any action on a wizard that is not open.
	ErrClosed = errors.New("appointment: wizard is not open")

	// ErrStepIncomplete is returned when Next is attempted with required fields missing.
	ErrStepIncomplete = errors.New("appointment: required fields are missing")

	// ErrPaymentUnset is returned when Confirm is attempted without a payment method.
	ErrPaymentUnset = errors.New("appointment: payment method is required")

	// ErrNotFinalStep is returned when Confirm is attempted before the payment step.
	ErrNotFinalStep = errors.New("appointment: confirm is only available on the payment step")

	// ErrFieldNotOnStep is returned when a field is written while a different step is shown.
	ErrFieldNotOnStep = errors.New("appointment: field does not belong to the current step")

	// ErrUnknownField is returned for field names the draft does not have.
	ErrUnknownField = errors.New("appointment: unknown field")

	// ErrUnknownService is returned when the service is not in the catalog.
	ErrUnknownService = errors.New("appointment: unknown service")

	// ErrUnknownDoctor is returned when the doctor is not on the roster.
	ErrUnknownDoctor = errors.New("appointment: unknown doctor")

	// ErrInvalidDate is returned for dates that are malformed or in the past.
	ErrInvalidDate = errors.New("appointment: invalid date")

	// ErrUnknownTimeSlot is returned when the time is not one of the listed slots.
	ErrUnknownTimeSlot = errors.New("appointment: time is not an offered slot")

	// ErrInvalidPayment is returned for payment methods other than clinic or online.
	ErrInvalidPayment = errors.New("appointment: payment must be clinic or online")
)

// GateError reports a rejected transition together with the fields that
// blocked it.
type GateError struct {
	Step    Step
	Missing []Field
	Err     error
}

func (e *GateError) Error() string {
	names := make([]string, 0, len(e.Missing))
	for _, f := range e.Missing {
		names = append(names, string(f))
	}
	return fmt.Sprintf("%v (step %d: %s)", e.Err, e.Step, strings.Join(names, ", "))
}

func (e *GateError) Unwrap() error { return e.Err }
