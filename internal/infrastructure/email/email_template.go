package email

import (
	"bytes"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/ipede/email-verification-service/internal/domain"
)

const verificationSubject = "Welcome! Please verify your email"

const verificationText = `Hi {{.FirstName}},

Welcome to {{.AppName}}! We're excited to have you on board.

To get started, please verify your email address by opening this link:
{{.Link}}

This link will expire in {{.ExpiresIn}}.

If you didn't request this verification, you can safely ignore this email.

Best regards,
{{.Signature}}
`

const verificationHTML = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <p>Hi {{.FirstName}},</p>
  <p>Welcome to {{.AppName}}! We're excited to have you on board.</p>
  <p>To get started, please verify your email address:</p>
  <p><a href="{{.Link}}" style="display: inline-block; padding: 10px 20px; background: #2563eb; color: #fff; text-decoration: none; border-radius: 4px;">Verify email</a></p>
  <p>This link will expire in {{.ExpiresIn}}.</p>
  <p style="font-size: 12px; color: #888;">If you didn't request this verification, you can safely ignore this email.</p>
</body>
</html>
`

type verificationData struct {
	FirstName string
	AppName   string
	Link      string
	ExpiresIn string
	Signature string
}

// EmailTemplate renders the verification email in plain text and HTML
type EmailTemplate struct {
	appName   string
	signature string
	text    *texttemplate.Template
	html    *htmltemplate.Template
}

var _ domain.VerificationEmailComposer = (*EmailTemplate)(nil)

func NewEmailTemplate(appName string) (*EmailTemplate, error) {
	text, err := texttemplate.New("verification.txt").Parse(verificationText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse text template: %w", err)
	}
	html, err := htmltemplate.New("verification.html").Parse(verificationHTML)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html template: %w", err)
	}
	signature := "The " + appName + " team"
	if appName == "" {
		appName = "our platform"
		signature = "The team"
	}
	return &EmailTemplate{appName: appName, signature: signature, text: text, html: html}, nil
}

func (t *EmailTemplate) ComposeVerification(user *domain.User, link string, expiresIn time.Duration) (*domain.EmailMessage, error) {
	data := verificationData{
		FirstName: user.FirstName,
		AppName:   t.appName,
		Link:      link,
		ExpiresIn: humanizeDuration(expiresIn),
		Signature: t.signature,
	}
	if data.FirstName == "" {
		data.FirstName = "there"
	}

	var text, html bytes.Buffer
	if err := t.text.Execute(&text, data); err != nil {
		return nil, fmt.Errorf("failed to render text template: %w", err)
	}
	if err := t.html.Execute(&html, data); err != nil {
		return nil, fmt.Errorf("failed to render html template: %w", err)
	}

	return &domain.EmailMessage{
		To:       user.Email,
		Subject:  verificationSubject,
		TextBody: text.String(),
		HTMLBody: html.String(),
	}, nil
}

func humanizeDuration(d time.Duration) string {
	switch {
	case d >= time.Hour && d%time.Hour == 0:
		return plural(int(d/time.Hour), "hour")
	case d >= time.Minute && d%time.Minute == 0:
		return plural(int(d/time.Minute), "minute")
	default:
		return strings.TrimSpace(d.String())
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
