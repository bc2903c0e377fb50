package booking

import (
	"context"

	"github.com/wolfman30/smilecare-booking/pkg/logging"
)

// LogSender delivers clinic notifications to the structured log instead of
// an SMS or email provider. Bookings never leave the process.
type LogSender struct {
	logger *logging.Logger
}

// NewLogSender creates a log-backed sender.
func NewLogSender(logger *logging.Logger) *LogSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &LogSender{logger: logger.Component("booking.notify")}
}

func (s *LogSender) SendSMS(ctx context.Context, to, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.logger.Info("clinic notification", "channel", "sms", "to", to, "body", body)
	return nil
}

func (s *LogSender) SendEmail(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.logger.Info("clinic notification", "channel", "email", "to", to, "subject", subject, "bytes", len(htmlBody))
	return nil
}
