package domain

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// DefaultTokenTTL is how long a verification token stays valid unless configured otherwise
const DefaultTokenTTL = 24 * time.Hour

const tokenBytes = 32

// VerificationToken is a single-purpose credential proving control of a user's email
type VerificationToken struct {
	ID         ulid.ULID  `json:"id"`
	Token      string     `json:"-"`
	UserID     ulid.ULID  `json:"user_id"`
	ExpiresAt  time.Time  `json:"expires_at"`
	ConsumedAt *time.Time `json:"consumed_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// NewVerificationToken creates a token for userID with a random opaque value
func NewVerificationToken(userID ulid.ULID, ttl time.Duration, now time.Time) (*VerificationToken, error) {
	value, err := GenerateTokenValue()
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &VerificationToken{
		ID:        ulid.Make(),
		Token:     value,
		UserID:    userID,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}, nil
}

// GenerateTokenValue returns a hex encoded random token value
func GenerateTokenValue() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// IsExpired checks if the token is past its expiry at now
func (t *VerificationToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// IsConsumed reports whether the token was already used
func (t *VerificationToken) IsConsumed() bool {
	return t.ConsumedAt != nil
}

// VerificationTokenRepository defines the interface for verification token storage
type VerificationTokenRepository interface {
	// Create stores a new token
	Create(ctx context.Context, token *VerificationToken) error

	// FindByToken finds a token by its opaque value, returning ErrTokenNotFound when absent
	FindByToken(ctx context.Context, token string) (*VerificationToken, error)

	// MarkConsumed records that the token was used
	MarkConsumed(ctx context.Context, id ulid.ULID, at time.Time) error

	// DeleteByUserID removes every token issued to a user
	DeleteByUserID(ctx context.Context, userID ulid.ULID) error

	// DeleteExpired removes tokens expired before the given time and consumed tokens
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}
