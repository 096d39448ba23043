package mail

import (
	"context"
	"errors"
)

// Message is a plain-text e-mail.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer abstracts the outgoing mail transport.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Disabled is the transport used when SMTP is not configured. Every send
// fails, which keeps the document workflow from advancing without an e-mail
// actually going out.
type Disabled struct{}

func (Disabled) Send(context.Context, Message) error {
	return errors.New("mail transport not configured")
}
