package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ipede/email-verification-service/internal/domain"
	"go.uber.org/zap"
)

// VerifyEmailService resolves a verification token and marks its user verified
type VerifyEmailService struct {
	tokens   domain.VerificationTokenRepository
	users    domain.UserRepository
	locker   domain.TokenLocker
	recorder domain.VerificationRecorder
	logger   *zap.Logger
	now      func() time.Time
}

// VerifyEmailOption configures a VerifyEmailService
type VerifyEmailOption func(*VerifyEmailService)

// WithTokenLocker serializes concurrent submissions of the same token
func WithTokenLocker(locker domain.TokenLocker) VerifyEmailOption {
	return func(s *VerifyEmailService) {
		s.locker = locker
	}
}

// WithRecorder counts every verification outcome
func WithRecorder(recorder domain.VerificationRecorder) VerifyEmailOption {
	return func(s *VerifyEmailService) {
		s.recorder = recorder
	}
}

// WithClock overrides the time source used for expiry checks
func WithClock(now func() time.Time) VerifyEmailOption {
	return func(s *VerifyEmailService) {
		s.now = now
	}
}

func NewVerifyEmailService(tokens domain.VerificationTokenRepository, users domain.UserRepository, logger *zap.Logger, opts ...VerifyEmailOption) *VerifyEmailService {
	s := &VerifyEmailService{
		tokens: tokens,
		users:  users,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// VerifyEmail verifies the email of the user owning token.
// Every failure is returned as a domain.Error; panics from collaborators are
// recovered and reported as domain.ErrUnexpected.
func (s *VerifyEmailService) VerifyEmail(ctx context.Context, token string) (summary *domain.VerifiedUserSummary, err error) {
	defer func() {
		if s.recorder != nil {
			s.recorder.RecordVerificationAttempt(domain.OutcomeOf(err))
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic during email verification", zap.Any("panic", r), zap.Stack("stack"))
			summary = nil
			err = domain.NewUnexpectedError(fmt.Errorf("panic: %v", r))
		}
	}()

	token = strings.TrimSpace(token)
	if token == "" {
		return nil, domain.ErrTokenRequired
	}

	if s.locker != nil {
		unlock, err := s.locker.Lock(ctx, token)
		if err != nil {
			return nil, normalizeError(err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				s.logger.Warn("failed to release verification lock", zap.Error(err))
			}
		}()
	}

	summary, err = s.verify(ctx, token)
	if err != nil {
		err = normalizeError(err)
		s.logger.Info("email verification rejected",
			zap.String("kind", string(domain.KindOf(err))),
			zap.Error(err))
		return nil, err
	}
	return summary, nil
}

func (s *VerifyEmailService) verify(ctx context.Context, value string) (*domain.VerifiedUserSummary, error) {
	token, err := s.tokens.FindByToken(ctx, value)
	if err != nil {
		if errors.Is(err, domain.ErrTokenNotFound) {
			return nil, domain.ErrTokenNotFound
		}
		s.logger.Error("failed to find verification token", zap.Error(err))
		return nil, persistenceError(err)
	}
	if token == nil {
		return nil, domain.ErrTokenNotFound
	}

	now := s.now()
	if token.IsExpired(now) {
		return nil, domain.ErrTokenExpired
	}

	user, err := s.users.FindByID(ctx, token.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		s.logger.Error("failed to find user", zap.String("user_id", token.UserID.String()), zap.Error(err))
		return nil, persistenceError(err)
	}
	if user == nil {
		return nil, domain.ErrUserNotFound
	}

	user.Verify(now)

	if err := s.users.Save(ctx, user); err != nil {
		s.logger.Error("failed to save verified user", zap.String("user_id", user.ID.String()), zap.Error(err))
		return nil, persistenceError(err)
	}

	if !token.IsConsumed() {
		if err := s.tokens.MarkConsumed(ctx, token.ID, now); err != nil {
			s.logger.Warn("failed to mark verification token consumed",
				zap.String("token_id", token.ID.String()),
				zap.Error(err))
		}
	}

	s.logger.Info("email verified", zap.String("user_id", user.ID.String()))
	return domain.NewVerifiedUserSummary(user), nil
}

// persistenceError wraps err as a persistence failure unless it already is one.
func persistenceError(err error) error {
	if errors.Is(err, domain.ErrPersistence) {
		return err
	}
	return domain.NewPersistenceError(err)
}

// normalizeError keeps domain errors and folds everything else into ErrUnexpected.
func normalizeError(err error) error {
	if _, ok := domain.AsError(err); ok {
		return err
	}
	return domain.NewUnexpectedError(err)
}
