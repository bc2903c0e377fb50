// Package booking hands a confirmed appointment draft to whoever books it
// for real. The engine's job ends at Confirm; adapters in this package
// notify the clinic and produce the patient-facing confirmation.
package booking

import (
	"context"
	"time"

	"github.com/wolfman30/smilecare-booking/internal/appointment"
	"github.com/wolfman30/smilecare-booking/internal/triage"
)

// BookingRequest is the confirmed draft plus the context it was collected in.
type BookingRequest struct {
	SessionID  string
	ClinicName string
	Draft      appointment.BookingDraft
	// Recommendation is set when the booking was seeded from the
	// consultation questionnaire.
	Recommendation *triage.Recommendation
	SubmittedAt    time.Time
}

// BookingResult is returned by CreateBooking and contains the outcome.
type BookingResult struct {
	// Booked indicates whether the adapter reserved the slot itself.
	Booked bool `json:"booked"`
	// ConfirmationNumber identifies the request when talking to the clinic.
	ConfirmationNumber string `json:"confirmation_number"`
	// PatientMessage is shown to the patient after submission.
	PatientMessage string `json:"patient_message"`
}

// Adapter is implemented by every booking hand-off target.
type Adapter interface {
	// Name returns the adapter identifier (e.g. "manual").
	Name() string

	// CreateBooking hands the request off. Errors describe hand-off
	// failures only; the wizard has already reset by the time it is called.
	CreateBooking(ctx context.Context, req BookingRequest) (*BookingResult, error)

	// GetPatientMessage returns the patient-facing confirmation text.
	GetPatientMessage(clinicName string) string
}
