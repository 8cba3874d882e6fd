package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/ipede/email-verification-service/internal/interfaces/http/handlers"
	"github.com/ipede/email-verification-service/internal/interfaces/http/middleware/auth"
	"github.com/ipede/email-verification-service/internal/interfaces/http/middleware/metrics"
	"github.com/ipede/email-verification-service/internal/interfaces/http/middleware/ratelimit"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// Dependencies are the collaborators the router exposes over HTTP
type Dependencies struct {
	Verifier     handlers.EmailVerifier
	Requester    handlers.VerificationRequester
	HealthChecks map[string]handlers.Pinger
	Auth         *auth.AuthMiddleware
	RateLimiter  *ratelimit.RateLimiter
	SwaggerFile  string
	Logger       *zap.Logger
}

type Router struct {
	router *chi.Mux
}

func NewRouter(deps Dependencies) *Router {
	verificationHandler := handlers.NewVerificationHandler(deps.Verifier, deps.Requester, deps.Logger)
	healthHandler := handlers.NewHealthHandler(deps.HealthChecks, deps.Logger)

	router := createRouter()

	// Health check endpoints
	router.Group(func(r chi.Router) {
		r.Get("/health", healthHandler.Live)
		r.Get("/health/live", healthHandler.Live)
		r.Get("/health/ready", healthHandler.Ready)
	})

	router.Handle("/metrics", promhttp.Handler())

	// Swagger UI configuration
	router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.DocExpansion("list"),
		httpSwagger.DomID("swagger-ui"),
		httpSwagger.DeepLinking(true),
		httpSwagger.PersistAuthorization(true),
	))

	swaggerFile := deps.SwaggerFile
	if swaggerFile == "" {
		swaggerFile = "docs/swagger.json"
	}
	router.Get("/swagger/doc.json", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		w.Header().Set("Content-Type", "application/json")
		http.ServeFile(w, r, swaggerFile)
	})

	router.Route("/api", func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.Middleware)
		}

		// Public routes
		r.Group(func(r chi.Router) {
			r.Post("/auth/verify-email", verificationHandler.VerifyEmailHandler)
			r.Get("/auth/verify-email", verificationHandler.VerifyEmailLinkHandler)
		})

		// Protected routes
		if deps.Auth != nil {
			r.Group(func(r chi.Router) {
				r.Use(deps.Auth.Verifier, deps.Auth.Authenticator)
				r.Post("/auth/verify-email/resend", verificationHandler.ResendVerificationHandler)
			})
		}
	})

	return &Router{router: router}
}

func createRouter() *chi.Mux {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(metrics.PrometheusMiddleware)
	router.Use(middleware.Timeout(60 * time.Second))

	return router
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}
