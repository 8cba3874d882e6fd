package domain

import (
	"context"
	"time"
)

// EmailMessage is a rendered email ready for delivery
type EmailMessage struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// MailTransport delivers or queues an email
type MailTransport interface {
	Send(ctx context.Context, msg *EmailMessage) error
}

// VerificationEmailComposer renders the verification email for a user
type VerificationEmailComposer interface {
	ComposeVerification(user *User, link string, expiresIn time.Duration) (*EmailMessage, error)
}
