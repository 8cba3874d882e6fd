package email

import (
	"context"
	"fmt"

	"github.com/ipede/email-verification-service/internal/domain"
	"github.com/ipede/email-verification-service/internal/infrastructure/config"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// sender is the part of *mail.Client the transport uses
type sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// SMTPTransport delivers messages through an authenticated SMTP relay.
// With Mailgun the API key is the SMTP password.
type SMTPTransport struct {
	client   sender
	from     string
	fromName string
	logger   *zap.Logger
}

var _ domain.MailTransport = (*SMTPTransport)(nil)

func NewSMTPTransport(cfg config.MailConfig, logger *zap.Logger) (*SMTPTransport, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client, err := mail.NewClient(cfg.Host, clientOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("error creating mail client: %w", err)
	}

	return newSMTPTransport(client, cfg, logger), nil
}

// clientOptions maps MailConfig onto go-mail. An explicit port always wins;
// UseSSL alone falls back to the implicit TLS port 465.
func clientOptions(cfg config.MailConfig) []mail.Option {
	options := []mail.Option{
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.APIKey),
	}
	switch {
	case cfg.UseSSL && cfg.Port == 0:
		options = append(options, mail.WithSSLPort(false))
	case cfg.UseSSL:
		options = append(options, mail.WithSSL(), mail.WithPort(cfg.Port))
	case cfg.Port != 0:
		options = append(options, mail.WithPort(cfg.Port))
	}
	return options
}

func newSMTPTransport(client sender, cfg config.MailConfig, logger *zap.Logger) *SMTPTransport {
	return &SMTPTransport{
		client:   client,
		from:     cfg.From,
		fromName: cfg.FromName,
		logger:   logger,
	}
}

func (t *SMTPTransport) Send(ctx context.Context, message *domain.EmailMessage) error {
	msg, err := t.buildMessage(message)
	if err != nil {
		return err
	}

	if err := t.client.DialAndSendWithContext(ctx, msg); err != nil {
		t.logger.Error("Failed to send email",
			zap.String("to", message.To),
			zap.String("subject", message.Subject),
			zap.Error(err))
		return fmt.Errorf("send email: %w", err)
	}

	t.logger.Info("Email sent successfully",
		zap.String("to", message.To),
		zap.String("subject", message.Subject))
	return nil
}

func (t *SMTPTransport) buildMessage(message *domain.EmailMessage) (*mail.Msg, error) {
	msg := mail.NewMsg()

	var err error
	if t.fromName != "" {
		err = msg.FromFormat(t.fromName, t.from)
	} else {
		err = msg.From(t.from)
	}
	if err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}

	if err := msg.To(message.To); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}

	msg.Subject(message.Subject)
	msg.SetBodyString(mail.TypeTextPlain, message.TextBody)
	if message.HTMLBody != "" {
		msg.AddAlternativeString(mail.TypeTextHTML, message.HTMLBody)
	}
	return msg, nil
}
