package handlers

import "context"

// EmailSender delivers one HTML message. Implemented by the SMTP sender and
// the HTTP mailer client; tests inject spies.
type EmailSender interface {
	SendMail(ctx context.Context, to, subject, htmlBody string) error
}
