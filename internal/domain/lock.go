package domain

import "context"

// UnlockFunc releases a lock obtained from a TokenLocker
type UnlockFunc func(ctx context.Context) error

// TokenLocker serializes work on a single verification token.
// Lock returns ErrVerificationInProgress when another holder keeps the lock
// past the locker's wait budget.
type TokenLocker interface {
	Lock(ctx context.Context, token string) (UnlockFunc, error)
}
