// Package orchestrator is the page-level controller for one visitor. It
// decides which overlay is on screen and carries the consultation result
// into the appointment wizard as an explicit prefill.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wolfman30/smilecare-booking/internal/appointment"
	"github.com/wolfman30/smilecare-booking/internal/booking"
	"github.com/wolfman30/smilecare-booking/internal/catalog"
	"github.com/wolfman30/smilecare-booking/internal/consultation"
	"github.com/wolfman30/smilecare-booking/internal/observability/metrics"
	"github.com/wolfman30/smilecare-booking/internal/resolver"
	"github.com/wolfman30/smilecare-booking/internal/triage"
	"github.com/wolfman30/smilecare-booking/pkg/logging"
)

var tracer = otel.Tracer("smilecare.internal.orchestrator")

// Overlay is the modal currently on screen.
type Overlay int

const (
	OverlayNone Overlay = iota
	OverlayConsultation
	OverlayAppointment
	OverlayDoctorProfile
)

func (o Overlay) String() string {
	switch o {
	case OverlayConsultation:
		return "consultation"
	case OverlayAppointment:
		return "appointment"
	case OverlayDoctorProfile:
		return "doctor_profile"
	default:
		return "none"
	}
}

func (o Overlay) MarshalJSON() ([]byte, error) {
	return []byte(`"` + o.String() + `"`), nil
}

// Entry modes recorded when the appointment wizard opens.
const (
	EntryDirect       = "direct"
	EntryPrefill      = "prefill"
	EntryConsultation = "consultation"
	EntryDoctor       = "doctor"
)

// Config wires an Orchestrator to its collaborators. Every field is optional.
type Config struct {
	SessionID  string
	ClinicName string
	Adapter    booking.Adapter
	Metrics    *metrics.BookingMetrics
	Logger     *logging.Logger
	Clock      func() time.Time
}

// Orchestrator owns both wizards for a single visitor. It is not safe for
// concurrent use; the session store serialises access.
type Orchestrator struct {
	overlay        Overlay
	pending        appointment.Prefill
	profile        *catalog.DoctorProfile
	recommendation *triage.Recommendation

	consultation *consultation.Wizard
	appointment  *appointment.Wizard

	sessionID  string
	clinicName string
	adapter    booking.Adapter
	metrics    *metrics.BookingMetrics
	logger     *logging.Logger
	now        func() time.Time
}

// New returns an orchestrator with no overlay open.
func New(cfg Config) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	return &Orchestrator{
		consultation: consultation.New(),
		appointment:  appointment.New(appointment.WithClock(now)),
		sessionID:    cfg.SessionID,
		clinicName:   cfg.ClinicName,
		adapter:      cfg.Adapter,
		metrics:      cfg.Metrics,
		logger:       logger.With("session_id", cfg.SessionID),
		now:          now,
	}
}

// Overlay returns the overlay on screen.
func (o *Orchestrator) Overlay() Overlay { return o.overlay }

// Pending returns the prefill handed to the appointment wizard last.
func (o *Orchestrator) Pending() appointment.Prefill { return o.pending }

// OpenConsultation shows the consultation wizard at step 1, discarding any
// other overlay.
func (o *Orchestrator) OpenConsultation() consultation.State {
	o.dismiss()
	o.consultation.Open()
	o.overlay = OverlayConsultation
	o.metrics.ObserveWizardOpen(metrics.WizardConsultation, EntryDirect)
	o.logger.Info("overlay opened", "overlay", o.overlay.String())
	return o.consultation.State()
}

// AnswerConsultation records an answer on the current consultation step.
func (o *Orchestrator) AnswerConsultation(step consultation.Step, value triage.Answer) (consultation.State, error) {
	if err := o.require(OverlayConsultation); err != nil {
		return o.consultation.State(), err
	}
	if err := o.consultation.Answer(step, value); err != nil {
		return o.consultation.State(), err
	}
	return o.consultation.State(), nil
}

// NextConsultation advances the consultation wizard.
func (o *Orchestrator) NextConsultation() (consultation.State, error) {
	if err := o.require(OverlayConsultation); err != nil {
		return o.consultation.State(), err
	}
	if _, err := o.consultation.Next(); err != nil {
		o.observeConsultationReject(err)
		return o.consultation.State(), err
	}
	return o.consultation.State(), nil
}

// BackConsultation steps the consultation wizard back.
func (o *Orchestrator) BackConsultation() (consultation.State, error) {
	if err := o.require(OverlayConsultation); err != nil {
		return o.consultation.State(), err
	}
	if _, err := o.consultation.Back(); err != nil {
		return o.consultation.State(), err
	}
	return o.consultation.State(), nil
}

// CompleteConsultation finishes the consultation and hands the result to
// OnConsultationComplete.
func (o *Orchestrator) CompleteConsultation() (triage.Recommendation, error) {
	if err := o.require(OverlayConsultation); err != nil {
		return triage.Recommendation{}, err
	}
	rec, err := o.consultation.Complete()
	if err != nil {
		o.observeConsultationReject(err)
		return triage.Recommendation{}, err
	}
	o.overlay = OverlayNone
	o.metrics.ObserveRecommendation(rec.Urgency.String())
	o.logger.Info("consultation completed",
		"service_title", rec.ServiceTitle,
		"urgency", rec.Urgency.String(),
	)
	o.OnConsultationComplete(rec)
	return rec, nil
}

// CancelConsultation closes the consultation wizard without a result.
func (o *Orchestrator) CancelConsultation() error {
	if err := o.require(OverlayConsultation); err != nil {
		return err
	}
	o.Close()
	return nil
}

// OnConsultationComplete resolves the recommendation to a service and
// doctor and opens the appointment wizard on the date step.
func (o *Orchestrator) OnConsultationComplete(rec triage.Recommendation) appointment.State {
	res := resolver.Resolve(rec)
	o.openAppointment(appointment.Prefill{
		Service:      string(res.Service),
		Doctor:       res.Doctor,
		StartAtStep2: true,
	}, EntryConsultation)
	o.recommendation = &rec
	return o.appointment.State()
}

// OnDoctorPicked opens the appointment wizard at step 1 with the doctor
// already chosen.
func (o *Orchestrator) OnDoctorPicked(name string) appointment.State {
	o.openAppointment(appointment.Prefill{Doctor: name}, EntryDoctor)
	return o.appointment.State()
}

// OpenDoctorProfile shows a doctor's profile card.
func (o *Orchestrator) OpenDoctorProfile(name string) (catalog.DoctorProfile, error) {
	profile, ok := catalog.Profile(name)
	if !ok {
		return catalog.DoctorProfile{}, fmt.Errorf("%w: %q", ErrUnknownDoctor, name)
	}
	o.dismiss()
	o.profile = &profile
	o.overlay = OverlayDoctorProfile
	o.logger.Info("overlay opened", "overlay", o.overlay.String(), "doctor", profile.Name)
	return profile, nil
}

// BookWithDoctor closes the profile card and starts a booking with that
// doctor.
func (o *Orchestrator) BookWithDoctor(name string) (appointment.State, error) {
	profile, ok := catalog.Profile(name)
	if !ok {
		return o.appointment.State(), fmt.Errorf("%w: %q", ErrUnknownDoctor, name)
	}
	return o.OnDoctorPicked(profile.Name), nil
}

// OpenBooking opens the appointment wizard at step 1 with nothing chosen.
func (o *Orchestrator) OpenBooking() appointment.State {
	return o.OpenAppointment(appointment.Prefill{})
}

// OpenAppointment opens the appointment wizard with a caller-supplied seed.
func (o *Orchestrator) OpenAppointment(p appointment.Prefill) appointment.State {
	entry := EntryPrefill
	if p == (appointment.Prefill{}) {
		entry = EntryDirect
	}
	o.openAppointment(p, entry)
	return o.appointment.State()
}

// SetAppointmentField writes one field of the booking draft.
func (o *Orchestrator) SetAppointmentField(f appointment.Field, value string) (appointment.State, error) {
	if err := o.require(OverlayAppointment); err != nil {
		return o.appointment.State(), err
	}
	if _, err := o.appointment.SetField(f, value); err != nil {
		return o.appointment.State(), err
	}
	return o.appointment.State(), nil
}

// NextAppointment advances the appointment wizard.
func (o *Orchestrator) NextAppointment() (appointment.State, error) {
	if err := o.require(OverlayAppointment); err != nil {
		return o.appointment.State(), err
	}
	if _, err := o.appointment.Next(); err != nil {
		o.observeAppointmentReject(err)
		return o.appointment.State(), err
	}
	return o.appointment.State(), nil
}

// BackAppointment steps the appointment wizard back.
func (o *Orchestrator) BackAppointment() (appointment.State, error) {
	if err := o.require(OverlayAppointment); err != nil {
		return o.appointment.State(), err
	}
	if _, err := o.appointment.Back(); err != nil {
		return o.appointment.State(), err
	}
	return o.appointment.State(), nil
}

// CloseAppointment discards the booking draft.
func (o *Orchestrator) CloseAppointment() error {
	if err := o.require(OverlayAppointment); err != nil {
		return err
	}
	o.Close()
	return nil
}

// Submission is the outcome of a confirmed booking.
type Submission struct {
	Draft          appointment.BookingDraft `json:"draft"`
	Recommendation *triage.Recommendation   `json:"recommendation,omitempty"`
	Result         *booking.BookingResult   `json:"result,omitempty"`
	HandoffError   string                   `json:"handoff_error,omitempty"`
}

// SubmitBooking confirms the appointment wizard and passes the draft to the
// hand-off adapter. Once Confirm succeeds the wizard stays reset whatever
// the adapter does; adapter failures are reported in HandoffError.
func (o *Orchestrator) SubmitBooking(ctx context.Context) (*Submission, error) {
	if err := o.require(OverlayAppointment); err != nil {
		return nil, err
	}
	ctx, span := tracer.Start(ctx, "orchestrator.submit_booking")
	defer span.End()

	draft, err := o.appointment.Confirm()
	if err != nil {
		o.observeAppointmentReject(err)
		span.SetAttributes(attribute.String("smilecare.rejected", err.Error()))
		return nil, err
	}
	o.overlay = OverlayNone

	sub := &Submission{Draft: draft, Recommendation: o.recommendation}
	o.recommendation = nil
	span.SetAttributes(
		attribute.String("smilecare.session_id", o.sessionID),
		attribute.String("smilecare.service", draft.Service),
		attribute.String("smilecare.payment", string(draft.Payment)),
	)

	status := "confirmed"
	if o.adapter != nil {
		start := time.Now()
		result, herr := o.adapter.CreateBooking(ctx, booking.BookingRequest{
			SessionID:      o.sessionID,
			ClinicName:     o.clinicName,
			Draft:          draft,
			Recommendation: sub.Recommendation,
			SubmittedAt:    o.now().UTC(),
		})
		o.metrics.ObserveHandoffLatency(o.adapter.Name(), time.Since(start).Seconds())
		sub.Result = result
		if herr != nil {
			status = "handoff_failed"
			sub.HandoffError = herr.Error()
			span.RecordError(herr)
			span.SetStatus(codes.Error, "handoff failed")
			o.logger.Error("booking hand-off failed", "error", herr, "adapter", o.adapter.Name())
		}
	}
	o.metrics.ObserveSubmission(string(draft.Payment), status)

	attrs := []any{
		"service", draft.Service,
		"doctor", draft.Doctor,
		"date", draft.Date,
		"time", draft.Time,
		"payment", string(draft.Payment),
		"status", status,
	}
	if sub.Result != nil {
		attrs = append(attrs, "confirmation_number", sub.Result.ConfirmationNumber)
	}
	o.logger.Info("booking submitted", attrs...)
	return sub, nil
}

// Close dismisses whatever overlay is open. Closing with nothing open is a
// no-op.
func (o *Orchestrator) Close() {
	if o.overlay == OverlayNone {
		return
	}
	prev := o.overlay
	o.dismiss()
	o.logger.Info("overlay closed", "overlay", prev.String())
}

// State is the page-level snapshot rendered by the presentation layer.
type State struct {
	SessionID      string                 `json:"session_id"`
	Overlay        Overlay                `json:"overlay"`
	Pending        appointment.Prefill    `json:"pending"`
	Profile        *catalog.DoctorProfile `json:"profile,omitempty"`
	Recommendation *triage.Recommendation `json:"recommendation,omitempty"`
	Consultation   consultation.State     `json:"consultation"`
	Appointment    appointment.State      `json:"appointment"`
}

// State returns a snapshot of both wizards and the overlay.
func (o *Orchestrator) State() State {
	return State{
		SessionID:      o.sessionID,
		Overlay:        o.overlay,
		Pending:        o.pending,
		Profile:        o.profile,
		Recommendation: o.recommendation,
		Consultation:   o.consultation.State(),
		Appointment:    o.appointment.State(),
	}
}

func (o *Orchestrator) openAppointment(p appointment.Prefill, entry string) {
	o.dismiss()
	o.pending = p
	o.appointment.Open(p)
	o.overlay = OverlayAppointment
	o.metrics.ObserveWizardOpen(metrics.WizardAppointment, entry)
	o.logger.Info("overlay opened",
		"overlay", o.overlay.String(),
		"entry", entry,
		"service", p.Service,
		"doctor", p.Doctor,
		"step", int(o.appointment.Step()),
	)
}

// dismiss closes every overlay without logging.
func (o *Orchestrator) dismiss() {
	o.consultation.Cancel()
	o.appointment.Close()
	o.profile = nil
	o.recommendation = nil
	o.overlay = OverlayNone
}

func (o *Orchestrator) require(want Overlay) error {
	if o.overlay != want {
		return fmt.Errorf("%w: want %s, open %s", ErrWrongOverlay, want, o.overlay)
	}
	return nil
}

func (o *Orchestrator) observeConsultationReject(err error) {
	if errors.Is(err, consultation.ErrStepIncomplete) || errors.Is(err, consultation.ErrNotFinalStep) {
		o.metrics.ObserveGateRejection(metrics.WizardConsultation, int(o.consultation.Step()))
	}
}

func (o *Orchestrator) observeAppointmentReject(err error) {
	var gate *appointment.GateError
	switch {
	case errors.As(err, &gate):
		o.metrics.ObserveGateRejection(metrics.WizardAppointment, int(gate.Step))
	case errors.Is(err, appointment.ErrNotFinalStep):
		o.metrics.ObserveGateRejection(metrics.WizardAppointment, int(o.appointment.Step()))
	}
}
