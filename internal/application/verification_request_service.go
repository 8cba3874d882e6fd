package application

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/ipede/email-verification-service/internal/domain"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// VerificationRequestService issues verification tokens and mails the link to the user
type VerificationRequestService struct {
	users    domain.UserRepository
	tokens   domain.VerificationTokenRepository
	composer domain.VerificationEmailComposer
	mailer   domain.MailTransport
	baseURL  string
	tokenTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

func NewVerificationRequestService(
	users domain.UserRepository,
	tokens domain.VerificationTokenRepository,
	composer domain.VerificationEmailComposer,
	mailer domain.MailTransport,
	baseURL string,
	tokenTTL time.Duration,
	logger *zap.Logger,
) *VerificationRequestService {
	if tokenTTL <= 0 {
		tokenTTL = domain.DefaultTokenTTL
	}
	return &VerificationRequestService{
		users:    users,
		tokens:   tokens,
		composer: composer,
		mailer:   mailer,
		baseURL:  baseURL,
		tokenTTL: tokenTTL,
		logger:   logger,
		now:      time.Now,
	}
}

// RequestVerification replaces any outstanding token for the user and sends a fresh link
func (s *VerificationRequestService) RequestVerification(ctx context.Context, userID ulid.ULID) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.ErrUserNotFound
		}
		s.logger.Error("failed to find user", zap.String("user_id", userID.String()), zap.Error(err))
		return persistenceError(err)
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	if user.EmailVerified {
		return domain.ErrAlreadyVerified
	}

	if err := s.tokens.DeleteByUserID(ctx, user.ID); err != nil {
		s.logger.Error("failed to delete previous tokens", zap.String("user_id", userID.String()), zap.Error(err))
		return persistenceError(err)
	}

	token, err := domain.NewVerificationToken(user.ID, s.tokenTTL, s.now())
	if err != nil {
		return domain.NewUnexpectedError(err)
	}
	if err := s.tokens.Create(ctx, token); err != nil {
		s.logger.Error("failed to store verification token", zap.String("user_id", userID.String()), zap.Error(err))
		return persistenceError(err)
	}

	msg, err := s.composer.ComposeVerification(user, s.verificationLink(token.Token), s.tokenTTL)
	if err != nil {
		return domain.NewUnexpectedError(err)
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		s.logger.Error("failed to send verification email", zap.String("user_id", userID.String()), zap.Error(err))
		return domain.NewMailDeliveryError(err)
	}

	s.logger.Info("verification email sent", zap.String("user_id", userID.String()))
	return nil
}

func (s *VerificationRequestService) verificationLink(token string) string {
	return s.baseURL + "?token=" + url.QueryEscape(token)
}
