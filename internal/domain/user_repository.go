package domain

import (
	"context"

	"github.com/oklog/ulid/v2"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// Create stores a new user
	Create(ctx context.Context, user *User) error

	// FindByID finds a user by ID, returning ErrUserNotFound when absent
	FindByID(ctx context.Context, id ulid.ULID) (*User, error)

	// Save persists changes to an existing user
	Save(ctx context.Context, user *User) error
}
