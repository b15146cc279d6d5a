package mailer

import (
	"context"

	"loopr-backend/internal/logging"
)

// LogMailer writes messages to the log instead of sending them. Used
// when no email provider is configured.
type LogMailer struct{}

func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	logging.FromContext(ctx).Info("email not sent, no provider configured",
		"to", msg.To,
		"subject", msg.Subject,
	)
	return nil
}
