package email

import (
	"context"

	"github.com/ipede/email-verification-service/internal/domain"
	"go.uber.org/zap"
)

// LogTransport records message envelopes in the log instead of sending them.
// It is used when no mail relay is configured. Bodies carry live verification
// links and are never logged.
type LogTransport struct {
	logger *zap.Logger
}

var _ domain.MailTransport = (*LogTransport)(nil)

func NewLogTransport(logger *zap.Logger) *LogTransport {
	return &LogTransport{logger: logger}
}

func (t *LogTransport) Send(_ context.Context, message *domain.EmailMessage) error {
	t.logger.Info("Email delivery disabled, logging message",
		zap.String("to", message.To),
		zap.String("subject", message.Subject),
		zap.Int("body_bytes", len(message.TextBody)))
	return nil
}
