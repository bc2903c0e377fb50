package appointment

import (
	"fmt"
	"strings"
)

// Step is a one-based wizard page.
type Step int

const (
	StepService  Step = 1
	StepSchedule Step = 2
	StepDetails  Step = 3
	StepPayment  Step = 4
)

// Valid reports whether s is one of the four wizard steps.
func (s Step) Valid() bool { return s >= StepService && s <= StepPayment }

func mustValid(s Step) Step {
	if !s.Valid() {
		panic(fmt.Sprintf("appointment: step %d outside [%d,%d]", s, StepService, StepPayment))
	}
	return s
}

var stepLabels = [4]string{"Service", "Date & Time", "Details", "Payment"}

// StepLabel is the progress-indicator caption for s.
func StepLabel(s Step) string {
	return stepLabels[mustValid(s)-1]
}

// Field names a Booking Draft entry.
type Field string

const (
	FieldService   Field = "service"
	FieldDoctor    Field = "doctor"
	FieldDate      Field = "date"
	FieldTime      Field = "time"
	FieldFirstName Field = "first_name"
	FieldLastName  Field = "last_name"
	FieldEmail     Field = "email"
	FieldPhone     Field = "phone"
	FieldNotes     Field = "notes"
	FieldPayment   Field = "payment"
)

// fieldSteps binds each field to the step that edits it.
var fieldSteps = map[Field]Step{
	FieldService:   StepService,
	FieldDoctor:    StepService,
	FieldDate:      StepSchedule,
	FieldTime:      StepSchedule,
	FieldFirstName: StepDetails,
	FieldLastName:  StepDetails,
	FieldEmail:     StepDetails,
	FieldPhone:     StepDetails,
	FieldNotes:     StepDetails,
	FieldPayment:   StepPayment,
}

// requiredFields gates Next on each step. The payment step has no Next;
// its gate is applied by Confirm.
var requiredFields = map[Step][]Field{
	StepService:  {FieldService, FieldDoctor},
	StepSchedule: {FieldDate, FieldTime},
	StepDetails:  {FieldFirstName, FieldLastName, FieldEmail, FieldPhone},
	StepPayment:  {FieldPayment},
}

// ParseField validates a field name.
func ParseField(s string) (Field, error) {
	f := Field(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := fieldSteps[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, s)
	}
	return f, nil
}

// StepOf returns the step on which f is edited.
func StepOf(f Field) (Step, bool) {
	s, ok := fieldSteps[f]
	return s, ok
}

// Payment is the patient's payment preference.
type Payment string

const (
	PaymentUnset  Payment = ""
	PaymentClinic Payment = "Clinic"
	PaymentOnline Payment = "Online"
)

// Label is the button caption for the method.
func (p Payment) Label() string {
	switch p {
	case PaymentClinic:
		return "Pay at Clinic"
	case PaymentOnline:
		return "Online Payment"
	default:
		return ""
	}
}

// ParsePayment accepts clinic or online in any case.
func ParsePayment(s string) (Payment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "clinic":
		return PaymentClinic, nil
	case "online":
		return PaymentOnline, nil
	}
	return PaymentUnset, fmt.Errorf("%w: %q", ErrInvalidPayment, s)
}

// BookingDraft is everything the wizard has collected.
type BookingDraft struct {
	Step      Step    `json:"step"`
	Service   string  `json:"service"`
	Doctor    string  `json:"doctor"`
	Date      string  `json:"date"`
	Time      string  `json:"time"`
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	Phone     string  `json:"phone"`
	Notes     string  `json:"notes"`
	Payment   Payment `json:"payment"`
}

// FullName joins first and last name.
func (d BookingDraft) FullName() string {
	return strings.TrimSpace(d.FirstName + " " + d.LastName)
}

// Value returns the draft's value for f.
func (d BookingDraft) Value(f Field) string {
	switch f {
	case FieldService:
		return d.Service
	case FieldDoctor:
		return d.Doctor
	case FieldDate:
		return d.Date
	case FieldTime:
		return d.Time
	case FieldFirstName:
		return d.FirstName
	case FieldLastName:
		return d.LastName
	case FieldEmail:
		return d.Email
	case FieldPhone:
		return d.Phone
	case FieldNotes:
		return d.Notes
	case FieldPayment:
		return string(d.Payment)
	}
	return ""
}

// missing lists the required fields of s that are still empty.
func (d BookingDraft) missing(s Step) []Field {
	var out []Field
	for _, f := range requiredFields[mustValid(s)] {
		if d.Value(f) == "" {
			out = append(out, f)
		}
	}
	return out
}

// Prefill seeds the wizard when it opens.
type Prefill struct {
	Service      string `json:"service,omitempty"`
	Doctor       string `json:"doctor,omitempty"`
	StartAtStep2 bool   `json:"start_at_step2,omitempty"`
}

// initialStep applies the seeding rule for the entry mode.
func (p Prefill) initialStep() Step {
	if p.StartAtStep2 {
		return StepSchedule
	}
	return StepService
}

// Validation is the gate status of the current step.
type Validation struct {
	Step     Step    `json:"step"`
	Complete bool    `json:"complete"`
	Missing  []Field `json:"missing,omitempty"`
}
