package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/ipede/email-verification-service/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// VerificationTokenRepository stores tokens by the SHA-256 of their value,
// so a database leak does not expose usable links.
type VerificationTokenRepository struct {
	logger *zap.Logger
	db     querier
}

func NewVerificationTokenRepository(db querier, logger *zap.Logger) *VerificationTokenRepository {
	return &VerificationTokenRepository{
		db:     db,
		logger: logger,
	}
}

var _ domain.VerificationTokenRepository = (*VerificationTokenRepository)(nil)

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (r *VerificationTokenRepository) Create(ctx context.Context, token *domain.VerificationToken) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO verification_tokens (id, token_hash, user_id, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, token.ID.String(), hashToken(token.Token), token.UserID.String(), token.ExpiresAt, token.CreatedAt)
	if err != nil {
		r.logger.Error("failed to create verification token", zap.Error(err))
		return domain.NewPersistenceError(err)
	}
	return nil
}

func (r *VerificationTokenRepository) FindByToken(ctx context.Context, token string) (*domain.VerificationToken, error) {
	verificationToken := &domain.VerificationToken{Token: token}
	err := r.db.QueryRow(ctx, `
		SELECT id, user_id, expires_at, consumed_at, created_at
		FROM verification_tokens
		WHERE token_hash = $1
	`, hashToken(token)).Scan(
		&verificationToken.ID,
		&verificationToken.UserID,
		&verificationToken.ExpiresAt,
		&verificationToken.ConsumedAt,
		&verificationToken.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTokenNotFound
		}
		r.logger.Error("failed to find verification token", zap.Error(err))
		return nil, domain.NewPersistenceError(err)
	}
	return verificationToken, nil
}

func (r *VerificationTokenRepository) MarkConsumed(ctx context.Context, id ulid.ULID, at time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE verification_tokens
		SET consumed_at = $2
		WHERE id = $1 AND consumed_at IS NULL
	`, id.String(), at)
	if err != nil {
		return domain.NewPersistenceError(err)
	}
	return nil
}

func (r *VerificationTokenRepository) DeleteByUserID(ctx context.Context, userID ulid.ULID) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM verification_tokens
		WHERE user_id = $1
	`, userID.String())
	if err != nil {
		return domain.NewPersistenceError(err)
	}
	return nil
}

func (r *VerificationTokenRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	deleted, err := r.db.Exec(ctx, `
		DELETE FROM verification_tokens
		WHERE expires_at < $1 OR consumed_at IS NOT NULL
	`, before)
	if err != nil {
		return 0, domain.NewPersistenceError(err)
	}
	return deleted, nil
}
