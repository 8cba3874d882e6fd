package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ipede/email-verification-service/internal/domain"
	"github.com/ipede/email-verification-service/internal/interfaces/http/dto"
	httperrors "github.com/ipede/email-verification-service/internal/interfaces/http/errors"
	"github.com/ipede/email-verification-service/internal/interfaces/http/middleware/metrics"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

const maxBodyBytes = 4 << 10

type EmailVerifier interface {
	VerifyEmail(ctx context.Context, token string) (*domain.VerifiedUserSummary, error)
}

type VerificationRequester interface {
	RequestVerification(ctx context.Context, userID ulid.ULID) error
}

type VerificationHandler struct {
	verifier  EmailVerifier
	requester VerificationRequester
	validate  *validator.Validate
	logger    *zap.Logger
}

func NewVerificationHandler(verifier EmailVerifier, requester VerificationRequester, logger *zap.Logger) *VerificationHandler {
	validate := validator.New()
	validate.RegisterTagNameFunc(jsonFieldName)

	return &VerificationHandler{
		verifier:  verifier,
		requester: requester,
		validate:  validate,
		logger:    logger,
	}
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" || name == "" {
		return fld.Name
	}
	return name
}

// VerifyEmailHandler godoc
// @Summary Verify an email address
// @Description Consume a verification token and mark its user's email as verified
// @Tags verification
// @Accept json
// @Produce json
// @Param request body dto.VerifyEmailRequest true "Verification token"
// @Success 200 {object} dto.VerifyEmailResponse
// @Failure 400 {object} httperrors.ErrorResponse
// @Failure 404 {object} httperrors.ErrorResponse
// @Failure 409 {object} httperrors.ErrorResponse
// @Failure 410 {object} httperrors.ErrorResponse
// @Failure 500 {object} httperrors.ErrorResponse
// @Router /auth/verify-email [post]
func (h *VerificationHandler) VerifyEmailHandler(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyEmailRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		httperrors.RespondWithError(w, domain.ErrInvalidField.WithMessage("Invalid request body").WithCause(err))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		httperrors.RespondErrorWithDetails(w, domain.ErrInvalidField, httperrors.ValidationDetails(err))
		return
	}

	h.verify(w, r, req.Token)
}

// VerifyEmailLinkHandler godoc
// @Summary Verify an email address from a link
// @Description Same as the POST form, with the token taken from the query string
// @Tags verification
// @Produce json
// @Param token query string true "Verification token"
// @Success 200 {object} dto.VerifyEmailResponse
// @Failure 400 {object} httperrors.ErrorResponse
// @Failure 404 {object} httperrors.ErrorResponse
// @Failure 410 {object} httperrors.ErrorResponse
// @Failure 500 {object} httperrors.ErrorResponse
// @Router /auth/verify-email [get]
func (h *VerificationHandler) VerifyEmailLinkHandler(w http.ResponseWriter, r *http.Request) {
	h.verify(w, r, r.URL.Query().Get("token"))
}

func (h *VerificationHandler) verify(w http.ResponseWriter, r *http.Request, token string) {
	summary, err := h.verifier.VerifyEmail(r.Context(), token)
	if err != nil {
		if domain.KindOf(err) == domain.KindPersistence || domain.KindOf(err) == domain.KindUnexpected {
			h.logger.Error("failed to verify email", zap.Error(err))
		}
		httperrors.RespondWithError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewVerifyEmailResponse(summary), h.logger)
}

// ResendVerificationHandler godoc
// @Summary Resend the verification email
// @Description Issue a new verification token for the authenticated user and email the link
// @Tags verification
// @Produce json
// @Security BearerAuth
// @Success 202 {object} dto.ResendVerificationResponse
// @Failure 401 {object} httperrors.ErrorResponse
// @Failure 404 {object} httperrors.ErrorResponse
// @Failure 409 {object} httperrors.ErrorResponse
// @Failure 502 {object} httperrors.ErrorResponse
// @Router /auth/verify-email/resend [post]
func (h *VerificationHandler) ResendVerificationHandler(w http.ResponseWriter, r *http.Request) {
	subject, ok := domain.GetSubject(r.Context())
	if !ok {
		httperrors.RespondWithError(w, domain.ErrUnauthorized)
		return
	}

	userID, err := domain.ParseULID(subject)
	if err != nil {
		httperrors.RespondWithError(w, domain.ErrUnauthorized.WithCause(err))
		return
	}

	if err := h.requester.RequestVerification(r.Context(), userID); err != nil {
		metrics.RecordVerificationRequest(string(domain.KindOf(err)))
		h.logger.Warn("failed to resend verification email",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		httperrors.RespondWithError(w, err)
		return
	}

	metrics.RecordVerificationRequest("sent")
	writeJSON(w, http.StatusAccepted, dto.ResendVerificationResponse{Message: "Verification email sent"}, h.logger)
}

func writeJSON(w http.ResponseWriter, status int, body any, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to encode response", zap.Error(err))
	}
}
