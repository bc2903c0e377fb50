package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wolfman30/smilecare-booking/internal/appointment"
	"github.com/wolfman30/smilecare-booking/internal/catalog"
	"github.com/wolfman30/smilecare-booking/internal/consultation"
	"github.com/wolfman30/smilecare-booking/internal/orchestrator"
	"github.com/wolfman30/smilecare-booking/internal/session"
	"github.com/wolfman30/smilecare-booking/internal/triage"
	"github.com/wolfman30/smilecare-booking/pkg/logging"
)

// BookingHandler exposes a visitor's booking session over JSON.
type BookingHandler struct {
	store  *session.Store
	logger *logging.Logger
}

// NewBookingHandler creates the booking session handler.
func NewBookingHandler(store *session.Store, logger *logging.Logger) *BookingHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &BookingHandler{store: store, logger: logger}
}

// Routes mounts the session endpoints.
func (h *BookingHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.CreateSession)
	r.Route("/{sessionID}", func(s chi.Router) {
		s.Get("/", h.GetSession)
		s.Post("/close", h.CloseOverlay)

		s.Post("/consultation", h.OpenConsultation)
		s.Post("/consultation/answers", h.AnswerConsultation)
		s.Post("/consultation/next", h.NextConsultation)
		s.Post("/consultation/back", h.BackConsultation)
		s.Post("/consultation/complete", h.CompleteConsultation)
		s.Post("/consultation/cancel", h.CancelConsultation)

		s.Post("/appointment", h.OpenAppointment)
		s.Post("/appointment/fields", h.SetAppointmentField)
		s.Post("/appointment/next", h.NextAppointment)
		s.Post("/appointment/back", h.BackAppointment)
		s.Post("/appointment/confirm", h.ConfirmAppointment)
		s.Post("/appointment/close", h.CloseAppointment)

		s.Post("/doctors/{name}/profile", h.OpenDoctorProfile)
		s.Post("/doctors/{name}/book", h.BookWithDoctor)
	})
	return r
}

// CreateSession starts a new visitor session.
// POST /api/v1/sessions
func (h *BookingHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	sess := h.store.Create()
	var state orchestrator.State
	_ = sess.Do(func(o *orchestrator.Orchestrator) error {
		state = o.State()
		return nil
	})
	writeJSON(w, http.StatusCreated, state)
}

// GetSession returns the full page snapshot.
// GET /api/v1/sessions/{sessionID}
func (h *BookingHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(o *orchestrator.Orchestrator) (any, error) {
		return o.State(), nil
	})
}

// CloseOverlay dismisses whatever overlay is on screen.
// POST /api/v1/sessions/{sessionID}/close
func (h *BookingHandler) CloseOverlay(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(o *orchestrator.Orchestrator) (any, error) {
		o.Close()
		return o.State(), nil
	})
}

func (h *BookingHandler) OpenConsultation(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(o *orchestrator.Orchestrator) (any, error) {
		o.OpenConsultation()
		return o.State(), nil
	})
}

// AnswerRequest answers the current consultation question.
type AnswerRequest struct {
	Step  int    `json:"step"`
	Value string `json:"value"`
}

// AnswerConsultation records a yes/no answer.
// POST /api/v1/sessions/{sessionID}/consultation/answers
func (h *BookingHandler) AnswerConsultation(w http.ResponseWriter, r *http.Request) {
	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	step := consultation.Step(req.Step)
	if !step.Valid() {
		jsonError(w, fmt.Sprintf("step must be between %d and %d", consultation.FirstStep, consultation.LastStep), http.StatusBadRequest)
		return
	}
	value, err := triage.ParseAnswer(req.Value)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.withSession(w, r, func(o *orchestrator.Orchestrator) (any, error) {
		if _, err := o.AnswerConsultation(step, value); err != nil {
			return nil, err
		}
		return o.State(), nil
	})
}

func (h *BookingHandler) NextConsultation(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(o *orchestrator.Orchestrator) (any, error) {
		if _, err := o.NextConsultation(); err != nil {
			return nil, err
		}
		return o.State(), nil
	})
}

func (h *BookingHandler) BackConsultation(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(o *orchestrator.Orchestrator) (any, error) {
		if _, err := o.BackConsultation(); err != nil {
			return nil, err
		}
		return o.State(), nil
	})
}

// CompleteConsultation returns the recommendation; the appointment wizard
// is already open on the date step in the returned state.
// POST /api/v1/sessions/{sessionID}/consultation/complete
func (h *BookingHandler) CompleteConsultation(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(o *orchestrator.Orchestrator) (any, error) {
		rec, err := o.CompleteConsultation()
		if err != nil {
			return nil, err
		}
		return map[string]any{"recommendation": rec, "state": o.State()}, nil
	})
}

func (h *BookingHandler) CancelConsultation(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(o *orchestrator.Orchestrator) (any, error) {
		if err := o.CancelConsultation(); err != nil {
			return nil, err
		}
		return o.State(), nil
	})
}

// OpenAppointment opens the booking wizard. An empty body is the plain
// "Book Appointment" entry.
// POST /api/v1/sessions/{sessionID}/appointment
func (h *BookingHandler) OpenAppointment(w http.ResponseWriter, r *http.Request) {
	var prefill appointment.Prefill
	if err := json.NewDecoder(r.Body).Decode(&prefill); err != nil && !errors.Is(err, io.EOF) {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	h.withSession(w, r, func(o *orchestrator.Orchestrator) (any, error) {
		o.OpenAppointment(prefill)
		return o.State(), nil
	})
}

// FieldRequest writes one booking draft field.
type FieldRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// SetAppointmentField writes a field on the current step.
// POST /api/v1/sessions/{sessionID}/appointment/fields
func (h *BookingHandler) SetAppointmentField(w http.ResponseWriter, r *http.Request) {
	var req FieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	field, err := appointment.ParseField(req.Field)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.withSession(w, r, func(o *orchestrator.Orchestrator) (any, error) {
		if _, err := o.SetAppointmentField(field, req.Value); err != nil {
			return nil, err
		}
		return o.State(), nil
	})
}

func (h *BookingHandler) NextAppointment(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(o *orchestrator.Orchestrator) (any, error) {
		if _, err := o.NextAppointment(); err != nil {
			return nil, err
		}
		return o.State(), nil
	})
}

func (h *BookingHandler) BackAppointment(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(o *orchestrator.Orchestrator) (any, error) {
		if _, err := o.BackAppointment(); err != nil {
			return nil, err
		}
		return o.State(), nil
	})
}

// ConfirmAppointment submits the booking.
// POST /api/v1/sessions/{sessionID}/appointment/confirm
func (h *BookingHandler) ConfirmAppointment(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(o *orchestrator.Orchestrator) (any, error) {
		sub, err := o.SubmitBooking(r.Context())
		if err != nil {
			return nil, err
		}
		return map[string]any{"submission": sub, "state": o.State()}, nil
	})
}

func (h *BookingHandler) CloseAppointment(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(o *orchestrator.Orchestrator) (any, error) {
		if err := o.CloseAppointment(); err != nil {
			return nil, err
		}
		return o.State(), nil
	})
}

// OpenDoctorProfile shows a doctor's profile card.
// POST /api/v1/sessions/{sessionID}/doctors/{name}/profile
func (h *BookingHandler) OpenDoctorProfile(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	h.withSession(w, r, func(o *orchestrator.Orchestrator) (any, error) {
		if _, err := o.OpenDoctorProfile(name); err != nil {
			return nil, err
		}
		return o.State(), nil
	})
}

// BookWithDoctor starts a booking with the named doctor preselected.
// POST /api/v1/sessions/{sessionID}/doctors/{name}/book
func (h *BookingHandler) BookWithDoctor(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	h.withSession(w, r, func(o *orchestrator.Orchestrator) (any, error) {
		if _, err := o.BookWithDoctor(name); err != nil {
			return nil, err
		}
		return o.State(), nil
	})
}

// Catalog returns the static booking data the client renders.
// GET /api/v1/catalog
func (h *BookingHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"services":   catalog.Services(),
		"doctors":    catalog.Doctors(),
		"profiles":   catalog.Profiles(),
		"time_slots": catalog.TimeSlots(""),
		"questions":  consultation.Questions(),
	})
}

func (h *BookingHandler) withSession(w http.ResponseWriter, r *http.Request, fn func(o *orchestrator.Orchestrator) (any, error)) {
	id := chi.URLParam(r, "sessionID")
	sess, err := h.store.Get(id)
	if err != nil {
		jsonError(w, "session not found", http.StatusNotFound)
		return
	}

	var payload any
	err = sess.Do(func(o *orchestrator.Orchestrator) error {
		var ferr error
		payload, ferr = fn(o)
		return ferr
	})
	if err != nil {
		h.writeError(w, id, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *BookingHandler) writeError(w http.ResponseWriter, sessionID string, err error) {
	var gate *appointment.GateError
	if errors.As(err, &gate) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"error":   err.Error(),
			"step":    gate.Step,
			"missing": gate.Missing,
		})
		return
	}

	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("booking request failed", "session_id", sessionID, "error", err)
	}
	jsonError(w, err.Error(), status)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNotFound),
		errors.Is(err, orchestrator.ErrUnknownDoctor):
		return http.StatusNotFound
	case errors.Is(err, orchestrator.ErrWrongOverlay),
		errors.Is(err, consultation.ErrClosed),
		errors.Is(err, consultation.ErrStaleStep),
		errors.Is(err, appointment.ErrClosed),
		errors.Is(err, appointment.ErrFieldNotOnStep):
		return http.StatusConflict
	case errors.Is(err, consultation.ErrStepIncomplete),
		errors.Is(err, consultation.ErrNotFinalStep),
		errors.Is(err, appointment.ErrStepIncomplete),
		errors.Is(err, appointment.ErrPaymentUnset),
		errors.Is(err, appointment.ErrNotFinalStep):
		return http.StatusUnprocessableEntity
	case errors.Is(err, consultation.ErrInvalidAnswer),
		errors.Is(err, appointment.ErrUnknownField),
		errors.Is(err, appointment.ErrUnknownService),
		errors.Is(err, appointment.ErrUnknownDoctor),
		errors.Is(err, appointment.ErrInvalidDate),
		errors.Is(err, appointment.ErrUnknownTimeSlot),
		errors.Is(err, appointment.ErrInvalidPayment):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
