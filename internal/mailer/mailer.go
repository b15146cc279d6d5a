package mailer

import "context"

type Message struct {
	To      string
	Subject string
	HTML    string
}

// Mailer delivers transactional email. Implementations must be safe for
// concurrent use.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New returns a Resend-backed mailer when apiKey is set and a logging
// mailer otherwise.
func New(apiKey, from string) Mailer {
	if apiKey == "" {
		return NewLogMailer()
	}
	return NewResendMailer(apiKey, from)
}
