package application

import (
	"context"
	"time"

	"github.com/ipede/email-verification-service/internal/domain"
	"go.uber.org/zap"
)

// TokenCleanupService removes verification tokens that can no longer be used
type TokenCleanupService struct {
	tokens domain.VerificationTokenRepository
	logger *zap.Logger
	now    func() time.Time
}

func NewTokenCleanupService(tokens domain.VerificationTokenRepository, logger *zap.Logger) *TokenCleanupService {
	return &TokenCleanupService{
		tokens: tokens,
		logger: logger,
		now:    time.Now,
	}
}

// PurgeExpired deletes expired and consumed tokens and returns how many were removed
func (s *TokenCleanupService) PurgeExpired(ctx context.Context) (int64, error) {
	deleted, err := s.tokens.DeleteExpired(ctx, s.now())
	if err != nil {
		s.logger.Error("failed to purge verification tokens", zap.Error(err))
		return 0, persistenceError(err)
	}
	if deleted > 0 {
		s.logger.Info("purged verification tokens", zap.Int64("deleted", deleted))
	}
	return deleted, nil
}
