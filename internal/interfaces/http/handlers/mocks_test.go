package handlers

import (
	"context"

	"github.com/ipede/email-verification-service/internal/domain"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/mock"
)

type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) VerifyEmail(ctx context.Context, token string) (*domain.VerifiedUserSummary, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.VerifiedUserSummary), args.Error(1)
}

type mockRequester struct {
	mock.Mock
}

func (m *mockRequester) RequestVerification(ctx context.Context, userID ulid.ULID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
