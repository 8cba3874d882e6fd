package auth

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/ipede/email-verification-service/internal/domain"
	httperrors "github.com/ipede/email-verification-service/internal/interfaces/http/errors"
	"go.uber.org/zap"
)

// AuthMiddleware guards routes with HS256 bearer tokens
type AuthMiddleware struct {
	tokenAuth *jwtauth.JWTAuth
	logger    *zap.Logger
}

func NewAuthMiddleware(secret string, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		tokenAuth: jwtauth.New("HS256", []byte(secret), nil),
		logger:    logger,
	}
}

// TokenAuth exposes the signer, used by tests and tooling to mint tokens
func (m *AuthMiddleware) TokenAuth() *jwtauth.JWTAuth {
	return m.tokenAuth
}

// Verifier finds and verifies the bearer token; Authenticator must follow it
func (m *AuthMiddleware) Verifier(next http.Handler) http.Handler {
	return jwtauth.Verifier(m.tokenAuth)(next)
}

// Authenticator rejects requests without a valid token and stores its subject
// in the request context.
func (m *AuthMiddleware) Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, _, err := jwtauth.FromContext(r.Context())
		if err != nil || token == nil {
			m.logger.Debug("rejected bearer token", zap.Error(err))
			httperrors.RespondWithError(w, domain.ErrUnauthorized)
			return
		}

		subject := token.Subject()
		if subject == "" {
			httperrors.RespondWithError(w, domain.ErrUnauthorized)
			return
		}

		ctx := domain.WithSubject(r.Context(), subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
