package domain

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// ULID represents a Universally Unique Lexicographically Sortable Identifier
// @Description A string representation of ULID
// @type string
// @format ulid
type ULID = ulid.ULID

// User represents a user account whose email can be verified
type User struct {
	ID            ulid.ULID  `json:"id"`
	Email         string     `json:"email"`
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	EmailVerified bool       `json:"email_verified"`
	VerifiedAt    *time.Time `json:"verified_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// NewUser creates a new unverified user instance
func NewUser(email, firstName, lastName string) *User {
	now := time.Now()
	return &User{
		ID:        ulid.Make(),
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Verify marks the user's email as verified. Calling it on a verified
// user leaves the record untouched.
func (u *User) Verify(now time.Time) {
	if u.EmailVerified {
		return
	}
	u.EmailVerified = true
	u.VerifiedAt = &now
	u.UpdatedAt = now
}

// VerifiedUserSummary is the projection returned after a successful verification
type VerifiedUserSummary struct {
	Email     string
	FirstName string
	LastName  string
	Verified  bool
}

// NewVerifiedUserSummary projects the identity fields of user
func NewVerifiedUserSummary(user *User) *VerifiedUserSummary {
	return &VerifiedUserSummary{
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Verified:  user.EmailVerified,
	}
}
