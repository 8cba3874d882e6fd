package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ipede/email-verification-service/internal/domain"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newVerifyEmailFixture(opts ...VerifyEmailOption) (*VerifyEmailService, *MockVerificationTokenRepository, *MockUserRepository) {
	tokens := new(MockVerificationTokenRepository)
	users := new(MockUserRepository)
	opts = append([]VerifyEmailOption{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewVerifyEmailService(tokens, users, zap.NewNop(), opts...), tokens, users
}

func validToken(userID ulid.ULID, value string) *domain.VerificationToken {
	return &domain.VerificationToken{
		ID:        ulid.Make(),
		Token:     value,
		UserID:    userID,
		ExpiresAt: fixedNow.Add(time.Hour),
		CreatedAt: fixedNow.Add(-time.Hour),
	}
}

func TestVerifyEmailService_VerifyEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("verifies an unverified user", func(t *testing.T) {
		service, tokens, users := newVerifyEmailFixture()

		userID := ulid.Make()
		token := validToken(userID, "abc123")
		user := &domain.User{ID: userID, Email: "a@b.com", FirstName: "A", LastName: "B"}

		tokens.On("FindByToken", mock.Anything, "abc123").Return(token, nil)
		users.On("FindByID", mock.Anything, userID).Return(user, nil)
		users.On("Save", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return u.ID == userID && u.EmailVerified
		})).Return(nil)
		tokens.On("MarkConsumed", mock.Anything, token.ID, fixedNow).Return(nil)

		summary, err := service.VerifyEmail(ctx, "abc123")
		require.NoError(t, err)
		assert.Equal(t, &domain.VerifiedUserSummary{
			Email:     "a@b.com",
			FirstName: "A",
			LastName:  "B",
			Verified:  true,
		}, summary)
		require.NotNil(t, user.VerifiedAt)
		assert.Equal(t, fixedNow, *user.VerifiedAt)
		tokens.AssertExpectations(t)
		users.AssertExpectations(t)
	})

	t.Run("already verified user stays verified", func(t *testing.T) {
		service, tokens, users := newVerifyEmailFixture()

		userID := ulid.Make()
		verifiedAt := fixedNow.Add(-24 * time.Hour)
		token := validToken(userID, "again")
		user := &domain.User{ID: userID, Email: "a@b.com", EmailVerified: true, VerifiedAt: &verifiedAt}

		tokens.On("FindByToken", mock.Anything, "again").Return(token, nil)
		users.On("FindByID", mock.Anything, userID).Return(user, nil)
		users.On("Save", mock.Anything, user).Return(nil)
		tokens.On("MarkConsumed", mock.Anything, token.ID, fixedNow).Return(nil)

		summary, err := service.VerifyEmail(ctx, "again")
		require.NoError(t, err)
		assert.True(t, summary.Verified)
		assert.Equal(t, verifiedAt, *user.VerifiedAt)
	})

	t.Run("consumed token is not marked again", func(t *testing.T) {
		service, tokens, users := newVerifyEmailFixture()

		userID := ulid.Make()
		token := validToken(userID, "used")
		consumedAt := fixedNow.Add(-time.Minute)
		token.ConsumedAt = &consumedAt
		user := &domain.User{ID: userID, Email: "a@b.com", EmailVerified: true}

		tokens.On("FindByToken", mock.Anything, "used").Return(token, nil)
		users.On("FindByID", mock.Anything, userID).Return(user, nil)
		users.On("Save", mock.Anything, user).Return(nil)

		summary, err := service.VerifyEmail(ctx, "used")
		require.NoError(t, err)
		assert.True(t, summary.Verified)
		tokens.AssertNotCalled(t, "MarkConsumed", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("token not found", func(t *testing.T) {
		service, tokens, users := newVerifyEmailFixture()

		tokens.On("FindByToken", mock.Anything, "missing").Return(nil, domain.ErrTokenNotFound)

		summary, err := service.VerifyEmail(ctx, "missing")
		assert.Nil(t, summary)
		assert.Equal(t, domain.ErrTokenNotFound, err)
		users.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
		users.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("nil token record is treated as not found", func(t *testing.T) {
		service, tokens, users := newVerifyEmailFixture()

		tokens.On("FindByToken", mock.Anything, "ghost").Return(nil, nil)

		_, err := service.VerifyEmail(ctx, "ghost")
		assert.ErrorIs(t, err, domain.ErrTokenNotFound)
		users.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("expired token", func(t *testing.T) {
		service, tokens, users := newVerifyEmailFixture()

		token := validToken(ulid.Make(), "stale")
		token.ExpiresAt = fixedNow.Add(-time.Second)
		tokens.On("FindByToken", mock.Anything, "stale").Return(token, nil)

		summary, err := service.VerifyEmail(ctx, "stale")
		assert.Nil(t, summary)
		assert.Equal(t, domain.ErrTokenExpired, err)
		users.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
		users.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("user not found", func(t *testing.T) {
		service, tokens, users := newVerifyEmailFixture()

		userID := ulid.Make()
		tokens.On("FindByToken", mock.Anything, "orphan").Return(validToken(userID, "orphan"), nil)
		users.On("FindByID", mock.Anything, userID).Return(nil, domain.ErrUserNotFound)

		summary, err := service.VerifyEmail(ctx, "orphan")
		assert.Nil(t, summary)
		assert.Equal(t, domain.ErrUserNotFound, err)
		users.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("save failure is a persistence error", func(t *testing.T) {
		service, tokens, users := newVerifyEmailFixture()

		userID := ulid.Make()
		storageErr := errors.New("connection reset")
		tokens.On("FindByToken", mock.Anything, "abc123").Return(validToken(userID, "abc123"), nil)
		users.On("FindByID", mock.Anything, userID).Return(&domain.User{ID: userID}, nil)
		users.On("Save", mock.Anything, mock.Anything).Return(storageErr)

		summary, err := service.VerifyEmail(ctx, "abc123")
		assert.Nil(t, summary)
		assert.ErrorIs(t, err, domain.ErrPersistence)
		assert.ErrorIs(t, err, storageErr)
		assert.NotErrorIs(t, err, domain.ErrUserNotFound)
		assert.Equal(t, domain.KindPersistence, domain.KindOf(err))
		tokens.AssertNotCalled(t, "MarkConsumed", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("token store failure is a persistence error", func(t *testing.T) {
		service, tokens, _ := newVerifyEmailFixture()

		tokens.On("FindByToken", mock.Anything, "abc123").Return(nil, assert.AnError)

		_, err := service.VerifyEmail(ctx, "abc123")
		assert.ErrorIs(t, err, domain.ErrPersistence)
		assert.ErrorIs(t, err, assert.AnError)
	})

	t.Run("marking the token consumed is best effort", func(t *testing.T) {
		service, tokens, users := newVerifyEmailFixture()

		userID := ulid.Make()
		token := validToken(userID, "abc123")
		tokens.On("FindByToken", mock.Anything, "abc123").Return(token, nil)
		users.On("FindByID", mock.Anything, userID).Return(&domain.User{ID: userID}, nil)
		users.On("Save", mock.Anything, mock.Anything).Return(nil)
		tokens.On("MarkConsumed", mock.Anything, token.ID, fixedNow).Return(assert.AnError)

		summary, err := service.VerifyEmail(ctx, "abc123")
		require.NoError(t, err)
		assert.True(t, summary.Verified)
	})

	t.Run("blank token", func(t *testing.T) {
		service, tokens, _ := newVerifyEmailFixture()

		_, err := service.VerifyEmail(ctx, "   ")
		assert.Equal(t, domain.ErrTokenRequired, err)
		tokens.AssertNotCalled(t, "FindByToken", mock.Anything, mock.Anything)
	})

	t.Run("panicking collaborator becomes unexpected error", func(t *testing.T) {
		service, tokens, _ := newVerifyEmailFixture()

		tokens.On("FindByToken", mock.Anything, "abc123").Run(func(mock.Arguments) {
			panic("nil pointer dereference")
		}).Return(nil, nil)

		summary, err := service.VerifyEmail(ctx, "abc123")
		assert.Nil(t, summary)
		assert.ErrorIs(t, err, domain.ErrUnexpected)
		assert.Contains(t, err.Error(), "nil pointer dereference")
	})
}

func TestVerifyEmailService_TokenLocker(t *testing.T) {
	ctx := context.Background()

	t.Run("lock is released after verification", func(t *testing.T) {
		locker := new(MockTokenLocker)
		service, tokens, users := newVerifyEmailFixture(WithTokenLocker(locker))

		released := false
		unlock := domain.UnlockFunc(func(context.Context) error {
			released = true
			return nil
		})
		userID := ulid.Make()
		token := validToken(userID, "abc123")

		locker.On("Lock", mock.Anything, "abc123").Return(unlock, nil)
		tokens.On("FindByToken", mock.Anything, "abc123").Return(token, nil)
		users.On("FindByID", mock.Anything, userID).Return(&domain.User{ID: userID}, nil)
		users.On("Save", mock.Anything, mock.Anything).Return(nil)
		tokens.On("MarkConsumed", mock.Anything, token.ID, fixedNow).Return(nil)

		_, err := service.VerifyEmail(ctx, "abc123")
		require.NoError(t, err)
		assert.True(t, released)
	})

	t.Run("lock held elsewhere", func(t *testing.T) {
		locker := new(MockTokenLocker)
		service, tokens, _ := newVerifyEmailFixture(WithTokenLocker(locker))

		locker.On("Lock", mock.Anything, "abc123").Return(nil, domain.ErrVerificationInProgress)

		_, err := service.VerifyEmail(ctx, "abc123")
		assert.Equal(t, domain.ErrVerificationInProgress, err)
		tokens.AssertNotCalled(t, "FindByToken", mock.Anything, mock.Anything)
	})

	t.Run("locker backend failure", func(t *testing.T) {
		locker := new(MockTokenLocker)
		service, _, _ := newVerifyEmailFixture(WithTokenLocker(locker))

		locker.On("Lock", mock.Anything, "abc123").Return(nil, assert.AnError)

		_, err := service.VerifyEmail(ctx, "abc123")
		assert.ErrorIs(t, err, domain.ErrUnexpected)
		assert.ErrorIs(t, err, assert.AnError)
	})
}

func TestVerifyEmailService_RecordsOutcome(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		token   string
		setup   func(tokens *MockVerificationTokenRepository, users *MockUserRepository)
		outcome string
	}{
		{
			name:  "verified",
			token: "abc123",
			setup: func(tokens *MockVerificationTokenRepository, users *MockUserRepository) {
				userID := ulid.Make()
				token := validToken(userID, "abc123")
				tokens.On("FindByToken", mock.Anything, "abc123").Return(token, nil)
				users.On("FindByID", mock.Anything, userID).Return(&domain.User{ID: userID}, nil)
				users.On("Save", mock.Anything, mock.Anything).Return(nil)
				tokens.On("MarkConsumed", mock.Anything, token.ID, fixedNow).Return(nil)
			},
			outcome: domain.OutcomeVerified,
		},
		{
			name:  "unknown token",
			token: "missing",
			setup: func(tokens *MockVerificationTokenRepository, _ *MockUserRepository) {
				tokens.On("FindByToken", mock.Anything, "missing").Return(nil, domain.ErrTokenNotFound)
			},
			outcome: string(domain.KindTokenNotFound),
		},
		{
			name:    "blank token",
			token:   "  ",
			setup:   func(*MockVerificationTokenRepository, *MockUserRepository) {},
			outcome: string(domain.KindInvalidField),
		},
		{
			name:  "panic",
			token: "boom",
			setup: func(tokens *MockVerificationTokenRepository, _ *MockUserRepository) {
				tokens.On("FindByToken", mock.Anything, "boom").Run(func(mock.Arguments) {
					panic("boom")
				}).Return(nil, nil)
			},
			outcome: string(domain.KindUnexpected),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := new(MockVerificationRecorder)
			recorder.On("RecordVerificationAttempt", tt.outcome).Once()
			service, tokens, users := newVerifyEmailFixture(WithRecorder(recorder))
			tt.setup(tokens, users)

			_, _ = service.VerifyEmail(ctx, tt.token)

			recorder.AssertExpectations(t)
			recorder.AssertNumberOfCalls(t, "RecordVerificationAttempt", 1)
		})
	}
}
