package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/ipede/email-verification-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondWithError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedBody   ErrorResponse
		expectedStatus int
	}{
		{
			name:           "token not found",
			err:            domain.ErrTokenNotFound,
			expectedBody:   ErrorResponse{Code: "V0001", Message: "Verification token not found"},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "token expired",
			err:            domain.ErrTokenExpired,
			expectedBody:   ErrorResponse{Code: "V0002", Message: "Verification token expired"},
			expectedStatus: http.StatusGone,
		},
		{
			name:           "user not found",
			err:            domain.ErrUserNotFound,
			expectedBody:   ErrorResponse{Code: "V0003", Message: "User not found"},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "persistence error hides cause",
			err:            domain.NewPersistenceError(errors.New("pq: connection refused")),
			expectedBody:   ErrorResponse{Code: "V0004", Message: "Failed to persist data"},
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "unknown error becomes unexpected",
			err:            errors.New("boom"),
			expectedBody:   ErrorResponse{Code: "V0005", Message: "Unexpected error"},
			expectedStatus: http.StatusInternalServerError,
		},
		{
			name:           "invalid field",
			err:            domain.ErrTokenRequired,
			expectedBody:   ErrorResponse{Code: "V0006", Message: "Verification token is required"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unauthorized",
			err:            domain.ErrUnauthorized,
			expectedBody:   ErrorResponse{Code: "V0007", Message: "Unauthorized"},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "already verified",
			err:            domain.ErrAlreadyVerified,
			expectedBody:   ErrorResponse{Code: "V0008", Message: "Email already verified"},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "mail delivery",
			err:            domain.NewMailDeliveryError(errors.New("535")),
			expectedBody:   ErrorResponse{Code: "V0009", Message: "Failed to deliver email"},
			expectedStatus: http.StatusBadGateway,
		},
		{
			name:           "in progress",
			err:            domain.ErrVerificationInProgress,
			expectedBody:   ErrorResponse{Code: "V0010", Message: "Verification already in progress"},
			expectedStatus: http.StatusConflict,
		},
		{
			name:           "rate limited",
			err:            domain.ErrRateLimited,
			expectedBody:   ErrorResponse{Code: "V0011", Message: "Rate limit exceeded"},
			expectedStatus: http.StatusTooManyRequests,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			RespondWithError(w, tt.err)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var response ErrorResponse
			require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
			assert.Equal(t, tt.expectedBody, response)
		})
	}
}

func TestRespondErrorWithDetails(t *testing.T) {
	type request struct {
		Token string `validate:"required"`
	}
	err := validator.New().Struct(request{})
	require.Error(t, err)

	w := httptest.NewRecorder()
	RespondErrorWithDetails(w, domain.ErrInvalidField, ValidationDetails(err))

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "V0006", response.Code)
	assert.Equal(t, []ErrorDetail{{Field: "Token", Message: "Token is required"}}, response.Details)
}

func TestValidationDetails_NonValidationError(t *testing.T) {
	assert.Nil(t, ValidationDetails(errors.New("other")))
}
