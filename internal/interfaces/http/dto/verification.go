package dto

import "github.com/ipede/email-verification-service/internal/domain"

// VerifyEmailRequest is the body of POST /api/auth/verify-email
type VerifyEmailRequest struct {
	Token string `json:"token" validate:"required,max=512"`
}

// VerifyEmailResponse is returned after a successful verification
// @Description Identity of the verified user
type VerifyEmailResponse struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Verified  bool   `json:"verified"`
}

func NewVerifyEmailResponse(summary *domain.VerifiedUserSummary) *VerifyEmailResponse {
	return &VerifyEmailResponse{
		Email:     summary.Email,
		FirstName: summary.FirstName,
		LastName:  summary.LastName,
		Verified:  summary.Verified,
	}
}

// ResendVerificationResponse acknowledges a queued verification email
type ResendVerificationResponse struct {
	Message string `json:"message"`
}
