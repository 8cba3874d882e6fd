package errors

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/ipede/email-verification-service/internal/domain"
)

// ErrorResponse represents the standard error response structure
type ErrorResponse struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

// ErrorDetail represents a validation error detail
type ErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func getStatus(err domain.Error) int {
	switch err.Kind() {
	case domain.KindTokenNotFound, domain.KindUserNotFound:
		return http.StatusNotFound
	case domain.KindTokenExpired:
		return http.StatusGone
	case domain.KindInvalidField:
		return http.StatusBadRequest
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindAlreadyVerified, domain.KindVerificationInProgress:
		return http.StatusConflict
	case domain.KindMailDelivery:
		return http.StatusBadGateway
	case domain.KindRateLimited:
		return http.StatusTooManyRequests
	}

	return http.StatusInternalServerError
}

// RespondWithError sends a standardized error response.
// Errors outside the domain are reported as unexpected.
func RespondWithError(w http.ResponseWriter, err error) {
	RespondErrorWithDetails(w, err, nil)
}

// RespondErrorWithDetails sends a standardized error response with details
func RespondErrorWithDetails(w http.ResponseWriter, err error, details []ErrorDetail) {
	domainErr, ok := domain.AsError(err)
	if !ok {
		domainErr = domain.ErrUnexpected
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(getStatus(domainErr))
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Code:    domainErr.GetCode(),
		Message: domainErr.GetMessage(),
		Details: details,
	})
}

// ValidationDetails converts validator failures into response details
func ValidationDetails(err error) []ErrorDetail {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return nil
	}

	details := make([]ErrorDetail, len(validationErrs))
	for i, fe := range validationErrs {
		details[i] = ErrorDetail{
			Field:   fe.Field(),
			Message: validationMessage(fe),
		}
	}
	return details
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters"
	}
	return fe.Field() + " is invalid"
}
