package appointment

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/smilecare-booking/internal/catalog"
)

var fixedNow = time.Date(2025, 5, 20, 9, 0, 0, 0, time.UTC)

func newWizard() *Wizard {
	return New(WithClock(func() time.Time { return fixedNow }))
}

func set(t *testing.T, w *Wizard, f Field, v string) Validation {
	t.Helper()
	val, err := w.SetField(f, v)
	require.NoError(t, err)
	return val
}

func next(t *testing.T, w *Wizard) Step {
	t.Helper()
	step, err := w.Next()
	require.NoError(t, err)
	return step
}

// fillToPayment walks an open step-1 wizard to the payment step.
func fillToPayment(t *testing.T, w *Wizard) {
	t.Helper()
	set(t, w, FieldService, string(catalog.TeethCleaning))
	set(t, w, FieldDoctor, catalog.DrAngelaCruz)
	next(t, w)
	set(t, w, FieldDate, "2025-06-01")
	set(t, w, FieldTime, "10:00 AM")
	next(t, w)
	set(t, w, FieldFirstName, "Maria")
	set(t, w, FieldLastName, "Lopez")
	set(t, w, FieldEmail, "maria@example.com")
	set(t, w, FieldPhone, "+63 912 345 6789")
	require.Equal(t, StepPayment, next(t, w))
}

func TestOpenSeeding(t *testing.T) {
	tests := []struct {
		name    string
		prefill Prefill
		step    Step
	}{
		{"no prefill", Prefill{}, StepService},
		{"doctor picked", Prefill{Doctor: catalog.DrMiguelSantos}, StepService},
		{"from consultation", Prefill{Service: "Tooth Extraction", Doctor: catalog.DrAngelaCruz, StartAtStep2: true}, StepSchedule},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWizard()
			w.Open(tt.prefill)
			d := w.Draft()
			assert.True(t, w.IsOpen())
			assert.Equal(t, tt.step, d.Step)
			assert.Equal(t, tt.prefill.Service, d.Service)
			assert.Equal(t, tt.prefill.Doctor, d.Doctor)
			assert.Empty(t, d.Date)
			assert.Empty(t, d.Time)
			assert.Empty(t, d.FirstName)
			assert.Equal(t, PaymentUnset, d.Payment)
			assert.Empty(t, w.TimeSlots())
		})
	}
}

func TestStepOneGate(t *testing.T) {
	w := newWizard()
	w.Open(Prefill{})

	val := set(t, w, FieldDoctor, catalog.DrAngelaCruz)
	assert.False(t, val.Complete)
	assert.Equal(t, []Field{FieldService}, val.Missing)

	_, err := w.Next()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStepIncomplete)
	var gate *GateError
	require.True(t, errors.As(err, &gate))
	assert.Equal(t, StepService, gate.Step)
	assert.Equal(t, []Field{FieldService}, gate.Missing)
	assert.Equal(t, StepService, w.Step())

	val = set(t, w, FieldService, "Teeth Cleaning")
	assert.True(t, val.Complete)
	assert.Equal(t, StepSchedule, next(t, w))
}

func TestSetFieldGuards(t *testing.T) {
	w := newWizard()
	_, err := w.SetField(FieldService, "Teeth Cleaning")
	assert.ErrorIs(t, err, ErrClosed)

	w.Open(Prefill{})
	_, err = w.SetField(FieldDate, "2025-06-01")
	assert.ErrorIs(t, err, ErrFieldNotOnStep)
	_, err = w.SetField(Field("favourite_colour"), "blue")
	assert.ErrorIs(t, err, ErrUnknownField)
	_, err = w.SetField(FieldService, "Root Canal")
	assert.ErrorIs(t, err, ErrUnknownService)
	_, err = w.SetField(FieldDoctor, "Dr. Nobody")
	assert.ErrorIs(t, err, ErrUnknownDoctor)

	val := set(t, w, FieldDoctor, catalog.AnyAvailableDoctor)
	assert.Equal(t, []Field{FieldService}, val.Missing)

	val = set(t, w, FieldService, "   ")
	assert.Contains(t, val.Missing, FieldService, "whitespace does not satisfy the gate")
}

func TestSelectDateResetsTime(t *testing.T) {
	w := newWizard()
	w.Open(Prefill{Service: "Teeth Cleaning", Doctor: catalog.DrAngelaCruz, StartAtStep2: true})

	_, err := w.SetField(FieldTime, "10:00 AM")
	assert.ErrorIs(t, err, ErrUnknownTimeSlot, "no slots before a date is chosen")

	set(t, w, FieldDate, "2025-06-01")
	assert.Equal(t, catalog.TimeSlots("2025-06-01"), w.TimeSlots())
	assert.Len(t, w.TimeSlots(), 6)
	set(t, w, FieldTime, "10:00 AM")
	assert.True(t, w.Validate().Complete)

	val := set(t, w, FieldDate, "2025-06-02")
	assert.Empty(t, w.Draft().Time)
	assert.Equal(t, []Field{FieldTime}, val.Missing)
	assert.Len(t, w.TimeSlots(), 6)

	set(t, w, FieldTime, "02:00 PM")
	_, err = w.SelectDate("2025-06-02")
	require.NoError(t, err)
	assert.Empty(t, w.Draft().Time, "re-selecting the same date still clears time")

	_, err = w.SetField(FieldTime, "04:30 PM")
	assert.ErrorIs(t, err, ErrUnknownTimeSlot)

	set(t, w, FieldDate, "")
	assert.Empty(t, w.TimeSlots())
}

func TestSelectDateValidation(t *testing.T) {
	w := newWizard()
	w.Open(Prefill{StartAtStep2: true})

	_, err := w.SelectDate("06/01/2025")
	assert.ErrorIs(t, err, ErrInvalidDate)
	_, err = w.SelectDate("2025-05-19")
	assert.ErrorIs(t, err, ErrInvalidDate, "yesterday is rejected")
	_, err = w.SelectDate("2025-05-20")
	assert.NoError(t, err, "today is bookable")
	assert.Equal(t, "2025-05-20", w.Draft().Date)
}

func TestDetailsGateChecksPresenceOnly(t *testing.T) {
	w := newWizard()
	w.Open(Prefill{Service: "Teeth Cleaning", Doctor: catalog.DrAngelaCruz, StartAtStep2: true})
	set(t, w, FieldDate, "2025-06-01")
	set(t, w, FieldTime, "09:00 AM")
	next(t, w)

	set(t, w, FieldFirstName, "Maria")
	set(t, w, FieldNotes, "Sensitive on the left side")
	_, err := w.Next()
	var gate *GateError
	require.True(t, errors.As(err, &gate))
	assert.Equal(t, []Field{FieldLastName, FieldEmail, FieldPhone}, gate.Missing)

	set(t, w, FieldLastName, "Lopez")
	set(t, w, FieldEmail, "not-an-email")
	set(t, w, FieldPhone, "123")
	assert.Equal(t, StepPayment, next(t, w))
}

func TestBack(t *testing.T) {
	w := newWizard()
	_, err := w.Back()
	assert.ErrorIs(t, err, ErrClosed)

	w.Open(Prefill{})
	step, err := w.Back()
	require.NoError(t, err)
	assert.Equal(t, StepService, step)

	w.Open(Prefill{Service: "Teeth Cleaning", Doctor: catalog.DrAngelaCruz, StartAtStep2: true})
	step, err = w.Back()
	require.NoError(t, err)
	assert.Equal(t, StepService, step, "back from an auto-advanced wizard reaches step 1")
	assert.Equal(t, "Teeth Cleaning", w.Draft().Service)
}

func TestNextOnPaymentStepStays(t *testing.T) {
	w := newWizard()
	w.Open(Prefill{})
	fillToPayment(t, w)
	assert.False(t, w.CanNext())
	assert.Equal(t, StepPayment, next(t, w))
}

func TestConfirm(t *testing.T) {
	w := newWizard()
	w.Open(Prefill{})
	_, err := w.Confirm()
	assert.ErrorIs(t, err, ErrNotFinalStep)

	fillToPayment(t, w)
	assert.False(t, w.CanConfirm())
	_, err = w.Confirm()
	assert.ErrorIs(t, err, ErrPaymentUnset)
	assert.True(t, w.IsOpen())

	_, err = w.SetField(FieldPayment, "cash")
	assert.ErrorIs(t, err, ErrInvalidPayment)

	set(t, w, FieldPayment, "clinic")
	assert.True(t, w.CanConfirm())
	draft, err := w.Confirm()
	require.NoError(t, err)
	assert.Equal(t, PaymentClinic, draft.Payment)
	assert.Equal(t, "Clinic", string(draft.Payment))
	assert.Equal(t, StepPayment, draft.Step)
	assert.Equal(t, "Maria Lopez", draft.FullName())

	assert.False(t, w.IsOpen())
	assert.Equal(t, BookingDraft{Step: StepService}, w.Draft())

	_, err = w.Confirm()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestConfirmReappliesPrefill(t *testing.T) {
	w := newWizard()
	prefill := Prefill{Service: "Tooth Extraction", Doctor: catalog.DrAngelaCruz, StartAtStep2: true}
	w.Open(prefill)
	set(t, w, FieldDate, "2025-06-01")
	set(t, w, FieldTime, "11:00 AM")
	next(t, w)
	set(t, w, FieldFirstName, "Jose")
	set(t, w, FieldLastName, "Rizal")
	set(t, w, FieldEmail, "jose@example.com")
	set(t, w, FieldPhone, "555-0100")
	next(t, w)
	set(t, w, FieldPayment, "Online")

	_, err := w.Confirm()
	require.NoError(t, err)
	assert.Equal(t, BookingDraft{Step: StepSchedule, Service: "Tooth Extraction", Doctor: catalog.DrAngelaCruz}, w.Draft())
}

func TestConfirmRechecksSkippedStep(t *testing.T) {
	w := newWizard()
	w.Open(Prefill{StartAtStep2: true})
	set(t, w, FieldDate, "2025-06-01")
	set(t, w, FieldTime, "11:00 AM")
	next(t, w)
	set(t, w, FieldFirstName, "Ana")
	set(t, w, FieldLastName, "Cruz")
	set(t, w, FieldEmail, "ana@example.com")
	set(t, w, FieldPhone, "555-0101")
	next(t, w)
	set(t, w, FieldPayment, "online")

	_, err := w.Confirm()
	var gate *GateError
	require.True(t, errors.As(err, &gate))
	assert.Equal(t, StepService, gate.Step)
	assert.ErrorIs(t, err, ErrStepIncomplete)
	assert.True(t, w.IsOpen())
}

func TestCloseIsIdempotent(t *testing.T) {
	w := newWizard()
	w.Open(Prefill{Doctor: catalog.DrPatriciaReyes})
	set(t, w, FieldService, "Cosmetic Dentistry")
	next(t, w)
	set(t, w, FieldDate, "2025-06-01")

	w.Close()
	once := w.State()
	w.Close()
	assert.Equal(t, once, w.State())
	assert.False(t, once.Open)
	assert.Equal(t, catalog.DrPatriciaReyes, once.Draft.Doctor)
	assert.Empty(t, once.Draft.Service)
	assert.Empty(t, once.TimeSlots)
}

func TestReopenUsesCurrentPrefill(t *testing.T) {
	w := newWizard()
	w.Open(Prefill{Service: "Braces & Alignment", Doctor: catalog.DrMiguelSantos, StartAtStep2: true})
	w.Close()

	w.Open(Prefill{})
	d := w.Draft()
	assert.Equal(t, StepService, d.Step)
	assert.Empty(t, d.Service)
	assert.Empty(t, d.Doctor)
}

func TestStateProgress(t *testing.T) {
	w := newWizard()
	w.Open(Prefill{Service: "Teeth Cleaning", Doctor: catalog.DrAngelaCruz, StartAtStep2: true})
	st := w.State()
	assert.Equal(t, "Date & Time", st.StepLabel)
	require.Len(t, st.Progress, 4)
	assert.True(t, st.Progress[0].Completed)
	assert.True(t, st.Progress[1].Active)
	assert.False(t, st.Progress[2].Completed)
	assert.True(t, st.CanBack)
	assert.False(t, st.CanNext)
	assert.Equal(t, []Field{FieldDate, FieldTime}, st.Validation.Missing)
}

func TestInvalidStepPanics(t *testing.T) {
	assert.Panics(t, func() { StepLabel(0) })
	assert.Panics(t, func() { StepLabel(5) })
	w := newWizard()
	w.draft.Step = 7
	assert.Panics(t, func() { w.Step() })
}

func TestParseHelpers(t *testing.T) {
	f, err := ParseField(" First_Name ")
	require.NoError(t, err)
	assert.Equal(t, FieldFirstName, f)
	_, err = ParseField("ssn")
	assert.ErrorIs(t, err, ErrUnknownField)

	p, err := ParsePayment("ONLINE")
	require.NoError(t, err)
	assert.Equal(t, PaymentOnline, p)
	assert.Equal(t, "Online Payment", p.Label())
	assert.Equal(t, "Pay at Clinic", PaymentClinic.Label())
}
