package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ipede/email-verification-service/internal/application"
	"github.com/ipede/email-verification-service/internal/domain"
	"github.com/ipede/email-verification-service/internal/infrastructure/config"
	"github.com/ipede/email-verification-service/internal/infrastructure/database"
	"github.com/ipede/email-verification-service/internal/infrastructure/email"
	"github.com/ipede/email-verification-service/internal/infrastructure/lock"
	"github.com/ipede/email-verification-service/internal/infrastructure/repository"
	"github.com/ipede/email-verification-service/internal/infrastructure/scheduler"
	httprouter "github.com/ipede/email-verification-service/internal/interfaces/http"
	"github.com/ipede/email-verification-service/internal/interfaces/http/handlers"
	"github.com/ipede/email-verification-service/internal/interfaces/http/middleware/auth"
	"github.com/ipede/email-verification-service/internal/interfaces/http/middleware/metrics"
	"github.com/ipede/email-verification-service/internal/interfaces/http/middleware/ratelimit"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// @title Email Verification Service API
// @version 1.0
// @description Verifies user email addresses with single-use tokens
// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()
	db, err := database.NewPostgres(ctx, cfg.Database, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(db, logger)
	tokenRepo := repository.NewVerificationTokenRepository(db, logger)

	healthChecks := map[string]handlers.Pinger{"database": db}

	verifyOpts := []application.VerifyEmailOption{application.WithRecorder(metrics.Recorder{})}
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient, err = lock.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			logger.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()

		locker := lock.NewRedisTokenLocker(redisClient, cfg.Verification.LockTTL, cfg.Verification.LockWait, logger)
		verifyOpts = append(verifyOpts, application.WithTokenLocker(locker))
		healthChecks["redis"] = handlers.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	} else {
		logger.Info("REDIS_ADDR not set, token lock disabled")
	}

	mailer, err := newMailTransport(cfg.Mail, logger)
	if err != nil {
		logger.Fatal("Failed to initialize mail transport", zap.Error(err))
	}
	composer, err := email.NewEmailTemplate(cfg.AppName)
	if err != nil {
		logger.Fatal("Failed to parse email templates", zap.Error(err))
	}

	verifyService := application.NewVerifyEmailService(tokenRepo, userRepo, logger, verifyOpts...)
	requestService := application.NewVerificationRequestService(
		userRepo,
		tokenRepo,
		composer,
		mailer,
		cfg.Verification.BaseURL,
		cfg.Verification.TokenTTL,
		logger,
	)
	cleanupService := application.NewTokenCleanupService(tokenRepo, logger)

	jobs, err := scheduler.New(cleanupService, logger)
	if err != nil {
		logger.Fatal("Failed to create scheduler", zap.Error(err))
	}
	if err := jobs.SchedulePurge(cfg.Verification.PurgeInterval); err != nil {
		logger.Fatal("Failed to schedule token purge", zap.Error(err))
	}
	jobs.Start()

	var authMiddleware *auth.AuthMiddleware
	if cfg.JWTSecret != "" {
		authMiddleware = auth.NewAuthMiddleware(cfg.JWTSecret, logger)
	} else {
		logger.Warn("JWT_SECRET not set, resend endpoint disabled")
	}

	rateLimiter := ratelimit.NewRateLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst, cfg.RateLimit.TTL)
	defer rateLimiter.Stop()

	router := httprouter.NewRouter(httprouter.Dependencies{
		Verifier:     verifyService,
		Requester:    requestService,
		HealthChecks: healthChecks,
		Auth:         authMiddleware,
		RateLimiter:  rateLimiter,
		Logger:       logger,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting server", zap.Int("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := jobs.Shutdown(); err != nil {
		logger.Error("Scheduler shutdown failed", zap.Error(err))
	}

	logger.Info("Server exited properly")
}

func newMailTransport(cfg config.MailConfig, logger *zap.Logger) (domain.MailTransport, error) {
	if !cfg.Enabled() {
		logger.Warn("MAIL_HOST not set, verification emails will only be logged")
		return email.NewLogTransport(logger), nil
	}
	return email.NewSMTPTransport(cfg, logger)
}
