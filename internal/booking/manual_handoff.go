package booking

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/wolfman30/smilecare-booking/pkg/logging"
)

var handoffTracer = otel.Tracer("smilecare.internal.booking")

// NotificationSender abstracts the channel used to tell the clinic about a
// new booking request.
type NotificationSender interface {
	SendSMS(ctx context.Context, to, body string) error
	SendEmail(ctx context.Context, to, subject, htmlBody string) error
}

// ManualHandoffConfig holds the clinic's notification targets.
type ManualHandoffConfig struct {
	HandoffNotificationPhone string
	HandoffNotificationEmail string
}

// ManualHandoffAdapter formats the confirmed draft as a booking summary and
// sends it to the front desk, who schedule the visit themselves.
type ManualHandoffAdapter struct {
	sender NotificationSender
	config ManualHandoffConfig
	logger *logging.Logger
	newRef func() string
}

// NewManualHandoffAdapter creates a new manual handoff adapter.
func NewManualHandoffAdapter(sender NotificationSender, cfg ManualHandoffConfig, logger *logging.Logger) *ManualHandoffAdapter {
	if logger == nil {
		logger = logging.Default()
	}
	return &ManualHandoffAdapter{
		sender: sender,
		config: cfg,
		logger: logger,
		newRef: NewConfirmationNumber,
	}
}

// NewConfirmationNumber returns a short reference such as "SC-1A2B3C4D".
func NewConfirmationNumber() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "SC-" + strings.ToUpper(id[:8])
}

// Name returns "manual".
func (a *ManualHandoffAdapter) Name() string { return "manual" }

// CreateBooking notifies the clinic over every configured channel. A
// failed channel is logged and reported in the returned error, but the
// result is still populated so the patient sees their confirmation.
func (a *ManualHandoffAdapter) CreateBooking(ctx context.Context, req BookingRequest) (*BookingResult, error) {
	ctx, span := handoffTracer.Start(ctx, "booking.manual_handoff", trace.WithSpanKind(trace.SpanKindProducer))
	defer span.End()

	ref := a.newRef()
	span.SetAttributes(
		attribute.String("smilecare.session_id", req.SessionID),
		attribute.String("smilecare.confirmation_number", ref),
		attribute.String("smilecare.service", req.Draft.Service),
		attribute.String("smilecare.payment", string(req.Draft.Payment)),
	)

	var errs []string

	if a.config.HandoffNotificationPhone != "" && a.sender != nil {
		body := fmt.Sprintf("New appointment request %s for %s\n\n%s", ref, clinicOrDefault(req.ClinicName), FormatBookingSummary(req))
		if err := a.sender.SendSMS(ctx, a.config.HandoffNotificationPhone, body); err != nil {
			a.logger.Error("manual handoff: failed to send SMS notification",
				"error", err,
				"session_id", req.SessionID,
				"confirmation_number", ref,
			)
			errs = append(errs, fmt.Sprintf("sms: %v", err))
		} else {
			a.logger.Info("manual handoff: SMS notification sent",
				"session_id", req.SessionID,
				"confirmation_number", ref,
			)
		}
	}

	if a.config.HandoffNotificationEmail != "" && a.sender != nil {
		subject := fmt.Sprintf("Appointment request %s: %s (%s)", ref, valueOrNA(req.Draft.FullName()), valueOrNA(req.Draft.Service))
		if err := a.sender.SendEmail(ctx, a.config.HandoffNotificationEmail, subject, FormatBookingSummaryHTML(req)); err != nil {
			a.logger.Error("manual handoff: failed to send email notification",
				"error", err,
				"session_id", req.SessionID,
				"confirmation_number", ref,
			)
			errs = append(errs, fmt.Sprintf("email: %v", err))
		} else {
			a.logger.Info("manual handoff: email notification sent",
				"session_id", req.SessionID,
				"confirmation_number", ref,
			)
		}
	}

	if a.config.HandoffNotificationPhone == "" && a.config.HandoffNotificationEmail == "" {
		a.logger.Warn("manual handoff: no notification channels configured",
			"session_id", req.SessionID,
			"confirmation_number", ref,
		)
	}

	result := &BookingResult{
		Booked:             false,
		ConfirmationNumber: ref,
		PatientMessage:     a.GetPatientMessage(req.ClinicName),
	}

	if len(errs) > 0 {
		err := fmt.Errorf("manual handoff notification errors: %s", strings.Join(errs, "; "))
		span.RecordError(err)
		span.SetStatus(codes.Error, "notification failed")
		return result, err
	}
	return result, nil
}

// GetPatientMessage returns the patient-facing confirmation message.
func (a *ManualHandoffAdapter) GetPatientMessage(clinicName string) string {
	return fmt.Sprintf(
		"Appointment booked successfully! %s will contact you to confirm your visit.",
		clinicOrDefault(clinicName),
	)
}

// FormatBookingSummary generates the plain-text summary sent to the clinic.
func FormatBookingSummary(req BookingRequest) string {
	d := req.Draft
	var b strings.Builder

	fmt.Fprintf(&b, "Patient: %s\n", valueOrNA(d.FullName()))
	fmt.Fprintf(&b, "Phone: %s\n", valueOrNA(d.Phone))
	fmt.Fprintf(&b, "Email: %s\n", valueOrNA(d.Email))
	fmt.Fprintf(&b, "Service: %s\n", valueOrNA(d.Service))
	fmt.Fprintf(&b, "Doctor: %s\n", valueOrNA(d.Doctor))
	fmt.Fprintf(&b, "When: %s\n", valueOrNA(scheduleString(d.Date, d.Time)))
	fmt.Fprintf(&b, "Payment: %s\n", valueOrNA(d.Payment.Label()))
	if req.Recommendation != nil {
		fmt.Fprintf(&b, "Triage: %s (%s)\n", req.Recommendation.ServiceTitle, req.Recommendation.Urgency)
	}
	if d.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", d.Notes)
	}
	fmt.Fprintf(&b, "Submitted: %s\n", req.SubmittedAt.Format(time.RFC1123))

	return b.String()
}

// FormatBookingSummaryHTML generates the HTML summary for email.
func FormatBookingSummaryHTML(req BookingRequest) string {
	d := req.Draft
	rows := [][2]string{
		{"Patient", valueOrNA(d.FullName())},
		{"Phone", valueOrNA(d.Phone)},
		{"Email", valueOrNA(d.Email)},
		{"Service", valueOrNA(d.Service)},
		{"Doctor", valueOrNA(d.Doctor)},
		{"When", valueOrNA(scheduleString(d.Date, d.Time))},
		{"Payment", valueOrNA(d.Payment.Label())},
	}
	if req.Recommendation != nil {
		rows = append(rows, [2]string{"Triage", fmt.Sprintf("%s (%s)", req.Recommendation.ServiceTitle, req.Recommendation.Urgency)})
	}
	if d.Notes != "" {
		rows = append(rows, [2]string{"Notes", d.Notes})
	}
	rows = append(rows, [2]string{"Submitted", req.SubmittedAt.Format(time.RFC1123)})

	var b strings.Builder
	b.WriteString(`<div style="font-family:sans-serif;max-width:600px;">` + "\n")
	b.WriteString(`<h2 style="color:#333;">New Appointment Request</h2>` + "\n")
	b.WriteString(`<table style="border-collapse:collapse;width:100%;">` + "\n")
	for _, row := range rows {
		fmt.Fprintf(&b, `<tr><td style="padding:6px 12px;font-weight:bold;">%s</td><td style="padding:6px 12px;">%s</td></tr>`+"\n",
			html.EscapeString(row[0]), html.EscapeString(row[1]))
	}
	b.WriteString("</table>\n")
	b.WriteString(`<p style="color:#666;font-size:12px;">Submitted through the website booking wizard. Please call the patient to confirm the slot.</p>` + "\n")
	b.WriteString("</div>")
	return b.String()
}

func scheduleString(date, slot string) string {
	var parts []string
	if date != "" {
		parts = append(parts, date)
	}
	if slot != "" {
		parts = append(parts, slot)
	}
	return strings.Join(parts, " at ")
}

func clinicOrDefault(name string) string {
	if strings.TrimSpace(name) == "" {
		return "the clinic"
	}
	return name
}

func valueOrNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
