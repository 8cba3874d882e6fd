package repository

import (
	"context"
	"errors"

	"github.com/ipede/email-verification-service/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

type UserRepository struct {
	logger *zap.Logger
	db     querier
}

func NewUserRepository(db querier, logger *zap.Logger) *UserRepository {
	return &UserRepository{db: db, logger: logger}
}

var _ domain.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO users (id, email, first_name, last_name, email_verified, verified_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, user.ID.String(), user.Email, user.FirstName, user.LastName, user.EmailVerified, user.VerifiedAt, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		r.logger.Error("failed to create user", zap.Error(err))
		return domain.NewPersistenceError(err)
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id ulid.ULID) (*domain.User, error) {
	user := &domain.User{}
	err := r.db.QueryRow(ctx, `
		SELECT id, email, first_name, last_name, email_verified, verified_at, created_at, updated_at
		FROM users WHERE id = $1
	`, id.String()).Scan(
		&user.ID,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.EmailVerified,
		&user.VerifiedAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		r.logger.Error("failed to find user by id", zap.Error(err))
		return nil, domain.NewPersistenceError(err)
	}
	return user, nil
}

// Save writes the user's mutable fields. The verified flag is only ever
// OR-ed in, so a stale copy cannot clear a verification made concurrently.
func (r *UserRepository) Save(ctx context.Context, user *domain.User) error {
	affected, err := r.db.Exec(ctx, `
		UPDATE users
		SET email = $2,
			first_name = $3,
			last_name = $4,
			email_verified = users.email_verified OR $5,
			verified_at = COALESCE(users.verified_at, $6),
			updated_at = $7
		WHERE id = $1
	`, user.ID.String(), user.Email, user.FirstName, user.LastName, user.EmailVerified, user.VerifiedAt, user.UpdatedAt)
	if err != nil {
		r.logger.Error("failed to save user", zap.Error(err))
		return domain.NewPersistenceError(err)
	}
	if affected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
