// Package appointment implements the four-step booking wizard:
// service and doctor, date and time, contact details, payment.
package appointment

import (
	"fmt"
	"strings"
	"time"

	"github.com/wolfman30/smilecare-booking/internal/catalog"
)

const dateLayout = "2006-01-02"

// Option configures a Wizard.
type Option func(*Wizard)

// WithClock overrides the clock used to reject past dates.
func WithClock(now func() time.Time) Option {
	return func(w *Wizard) {
		if now != nil {
			w.now = now
		}
	}
}

// Wizard is the appointment step machine. It owns its draft exclusively
// and is not safe for concurrent use.
type Wizard struct {
	open    bool
	prefill Prefill
	draft   BookingDraft
	slots   []string
	now     func() time.Time
}

// New returns a closed wizard seeded with an empty prefill.
func New(opts ...Option) *Wizard {
	w := &Wizard{now: time.Now}
	for _, opt := range opts {
		opt(w)
	}
	w.seed()
	return w
}

// Open re-runs the seeding rule with p and shows the wizard. The prefill is
// remembered only until the next Open.
func (w *Wizard) Open(p Prefill) {
	p.Service = strings.TrimSpace(p.Service)
	p.Doctor = strings.TrimSpace(p.Doctor)
	w.prefill = p
	w.seed()
	w.open = true
}

// IsOpen reports whether the wizard is accepting input.
func (w *Wizard) IsOpen() bool { return w.open }

// Step returns the current step.
func (w *Wizard) Step() Step { return mustValid(w.draft.Step) }

// Draft returns a copy of the booking draft.
func (w *Wizard) Draft() BookingDraft { return w.draft }

// Prefill returns the seed applied by the last Open.
func (w *Wizard) Prefill() Prefill { return w.prefill }

// TimeSlots returns a copy of the slots offered for the selected date.
func (w *Wizard) TimeSlots() []string {
	out := make([]string, len(w.slots))
	copy(out, w.slots)
	return out
}

// SetField writes one draft field and returns the current step's gate
// status. Only fields of the current step are writable. Setting the date
// goes through SelectDate.
func (w *Wizard) SetField(f Field, value string) (Validation, error) {
	if err := w.checkWritable(f); err != nil {
		return w.Validate(), err
	}
	value = strings.TrimSpace(value)

	switch f {
	case FieldService:
		if value != "" && !catalog.IsService(value) {
			return w.Validate(), fmt.Errorf("%w: %q", ErrUnknownService, value)
		}
		w.draft.Service = value
	case FieldDoctor:
		if value != "" && !catalog.IsBookableDoctor(value) {
			return w.Validate(), fmt.Errorf("%w: %q", ErrUnknownDoctor, value)
		}
		w.draft.Doctor = value
	case FieldDate:
		return w.SelectDate(value)
	case FieldTime:
		if value != "" && !w.offers(value) {
			return w.Validate(), fmt.Errorf("%w: %q", ErrUnknownTimeSlot, value)
		}
		w.draft.Time = value
	case FieldFirstName:
		w.draft.FirstName = value
	case FieldLastName:
		w.draft.LastName = value
	case FieldEmail:
		w.draft.Email = value
	case FieldPhone:
		w.draft.Phone = value
	case FieldNotes:
		w.draft.Notes = value
	case FieldPayment:
		payment := PaymentUnset
		if value != "" {
			p, err := ParsePayment(value)
			if err != nil {
				return w.Validate(), err
			}
			payment = p
		}
		w.draft.Payment = payment
	}
	return w.Validate(), nil
}

// SelectDate sets the date, clears any chosen time and reloads the slot
// list. Slots come from the static fixture and are the same for every
// date. Dates use YYYY-MM-DD and may not precede today.
func (w *Wizard) SelectDate(date string) (Validation, error) {
	if err := w.checkWritable(FieldDate); err != nil {
		return w.Validate(), err
	}
	date = strings.TrimSpace(date)
	if date == "" {
		w.draft.Date = ""
		w.draft.Time = ""
		w.slots = nil
		return w.Validate(), nil
	}

	day, err := time.Parse(dateLayout, date)
	if err != nil {
		return w.Validate(), fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	today := w.now().Format(dateLayout)
	if day.Format(dateLayout) < today {
		return w.Validate(), fmt.Errorf("%w: %s is before %s", ErrInvalidDate, date, today)
	}

	w.draft.Date = date
	w.draft.Time = ""
	w.slots = catalog.TimeSlots(date)
	return w.Validate(), nil
}

// Validate reports the current step's gate. On the payment step the gate
// is the one Confirm applies.
func (w *Wizard) Validate() Validation {
	step := w.Step()
	missing := w.draft.missing(step)
	return Validation{Step: step, Complete: len(missing) == 0, Missing: missing}
}

// CanNext reports whether Next would advance.
func (w *Wizard) CanNext() bool {
	return w.open && w.Step() < StepPayment && w.Validate().Complete
}

// Next advances when the current step's required fields are filled. On the
// payment step there is nothing to advance to and the step is returned
// unchanged.
func (w *Wizard) Next() (Step, error) {
	if !w.open {
		return w.Step(), ErrClosed
	}
	step := w.Step()
	if step == StepPayment {
		return step, nil
	}
	if v := w.Validate(); !v.Complete {
		return step, &GateError{Step: step, Missing: v.Missing, Err: ErrStepIncomplete}
	}
	w.draft.Step = step + 1
	return w.draft.Step, nil
}

// Back returns to the previous step, never below the first.
func (w *Wizard) Back() (Step, error) {
	if !w.open {
		return w.Step(), ErrClosed
	}
	if step := w.Step(); step > StepService {
		w.draft.Step = step - 1
	}
	return w.draft.Step, nil
}

// CanConfirm reports whether Confirm would succeed.
func (w *Wizard) CanConfirm() bool {
	return w.open && w.Step() == StepPayment && w.gateAll() == nil
}

// Confirm returns the completed draft, then re-seeds from the last prefill
// and closes the wizard.
func (w *Wizard) Confirm() (BookingDraft, error) {
	if !w.open {
		return BookingDraft{}, ErrClosed
	}
	if step := w.Step(); step != StepPayment {
		return BookingDraft{}, fmt.Errorf("%w: step %d", ErrNotFinalStep, step)
	}
	if err := w.gateAll(); err != nil {
		return BookingDraft{}, err
	}
	out := w.draft
	w.Close()
	return out, nil
}

// Close discards the draft without emitting it. Closing an already closed
// wizard leaves it unchanged.
func (w *Wizard) Close() {
	w.seed()
	w.open = false
}

// StepProgress drives the step indicator.
type StepProgress struct {
	Step      Step   `json:"step"`
	Label     string `json:"label"`
	Active    bool   `json:"active"`
	Completed bool   `json:"completed"`
}

// State is a read-only snapshot of the wizard.
type State struct {
	Open       bool           `json:"open"`
	Step       Step           `json:"step"`
	StepLabel  string         `json:"step_label"`
	Progress   []StepProgress `json:"progress"`
	Draft      BookingDraft   `json:"draft"`
	TimeSlots  []string       `json:"time_slots"`
	Validation Validation     `json:"validation"`
	CanBack    bool           `json:"can_back"`
	CanNext    bool           `json:"can_next"`
	CanConfirm bool           `json:"can_confirm"`
}

// State returns a snapshot for rendering.
func (w *Wizard) State() State {
	step := w.Step()
	progress := make([]StepProgress, 0, int(StepPayment))
	for s := StepService; s <= StepPayment; s++ {
		progress = append(progress, StepProgress{
			Step:      s,
			Label:     StepLabel(s),
			Active:    s == step,
			Completed: s < step,
		})
	}
	return State{
		Open:       w.open,
		Step:       step,
		StepLabel:  StepLabel(step),
		Progress:   progress,
		Draft:      w.draft,
		TimeSlots:  w.TimeSlots(),
		Validation: w.Validate(),
		CanBack:    w.open && step > StepService,
		CanNext:    w.CanNext(),
		CanConfirm: w.CanConfirm(),
	}
}

func (w *Wizard) seed() {
	w.draft = BookingDraft{
		Step:    w.prefill.initialStep(),
		Service: w.prefill.Service,
		Doctor:  w.prefill.Doctor,
	}
	w.slots = nil
}

func (w *Wizard) checkWritable(f Field) error {
	if !w.open {
		return ErrClosed
	}
	step, ok := StepOf(f)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownField, f)
	}
	if current := w.Step(); step != current {
		return fmt.Errorf("%w: %s is edited on step %d, current step %d", ErrFieldNotOnStep, f, step, current)
	}
	return nil
}

// gateAll checks every step in order. A start-at-step-2 entry skips the
// service step, so its fields are re-checked here before anything is
// emitted.
func (w *Wizard) gateAll() error {
	for s := StepService; s <= StepPayment; s++ {
		missing := w.draft.missing(s)
		if len(missing) == 0 {
			continue
		}
		sentinel := ErrStepIncomplete
		if s == StepPayment {
			sentinel = ErrPaymentUnset
		}
		return &GateError{Step: s, Missing: missing, Err: sentinel}
	}
	return nil
}

func (w *Wizard) offers(slot string) bool {
	for _, s := range w.slots {
		if s == slot {
			return true
		}
	}
	return false
}
