package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sentinelauth/sentinel/internal/auth"
	"github.com/sentinelauth/sentinel/internal/background"
	"github.com/sentinelauth/sentinel/internal/config"
	"github.com/sentinelauth/sentinel/internal/handlers"
	middlewareCustom "github.com/sentinelauth/sentinel/internal/middleware"
	"github.com/sentinelauth/sentinel/internal/models"
	"github.com/sentinelauth/sentinel/internal/routes"
	"github.com/sentinelauth/sentinel/internal/services"
	"github.com/sentinelauth/sentinel/internal/store"
	pkgauth "github.com/sentinelauth/sentinel/pkg/auth"
	pkghttp "github.com/sentinelauth/sentinel/pkg/http"
	pkglogger "github.com/sentinelauth/sentinel/pkg/logger"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("configuration loaded", slog.String("env", cfg.Server.Env))

	// In-memory ledgers: per-user session history and the global attempt feed
	st := store.New(cfg.Security)

	// Decision engine over the configured thresholds
	engine := services.NewDecisionEngine(cfg.Security)

	// Token manager and in-memory revocation list
	tokenManager := auth.NewTokenManager(
		cfg.Auth.JWTSecret,
		cfg.Auth.AccessTokenExpiry,
		cfg.Auth.RefreshTokenExpiry,
	)
	revocations := auth.NewRevocationList()

	auditLogger := pkglogger.NewAuditLogger(logger, cfg.Server.Env)

	// Notification channel: AWS SES when configured, log-only otherwise
	var notifier services.NotificationService
	if cfg.Email.Enabled {
		sesNotifier, err := services.NewAWSSESNotificationService(
			cfg.Email.AWSRegion,
			cfg.Email.FromAddress,
			cfg.Email.AdminEmails,
			logger,
		)
		if err != nil {
			logger.Error("failed to initialize notification service", slog.Any("error", err))
			os.Exit(1)
		}

		verifyCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := sesNotifier.VerifyConfiguration(verifyCtx); err != nil {
			logger.Warn("email notifications configured but not operational", slog.Any("error", err))
		}
		cancel()

		notifier = sesNotifier
	} else {
		logger.Info("email notifications disabled, alerts will be logged only")
		notifier = services.NewLogNotificationService(logger)
	}

	// Initialize services
	reportService := services.NewReportService(st, engine, cfg.Security.ActiveSessionWindow)
	authService := services.NewAuthService(st, engine, tokenManager, revocations, notifier, logger, auditLogger)

	// Initialize handlers
	ipConfig := &pkghttp.IPConfig{TrustedProxies: cfg.Server.TrustedProxies}
	authHandler := handlers.NewAuthHandler(authService, ipConfig)
	sessionHandler := handlers.NewSessionHandler(reportService)
	userHandler := handlers.NewUserHandler(authService)
	adminHandler := handlers.NewAdminHandler(reportService, notifier, cfg.Email)

	// Bootstrap first admin user if configured
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := ensureAdminUser(ctx, st, logger); err != nil {
		logger.Error("failed to ensure admin user", slog.Any("error", err))
	}
	cancel()

	// Daily summary scheduler
	summaryScheduler := background.NewSummaryScheduler(reportService, notifier, logger, cfg.Email.SummaryHour)

	// Setup router
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: cfg.Server.Env}))
	router.Use(middlewareCustom.CORS(cfg.Server.AllowedOrigins))
	router.Use(middlewareCustom.SecureLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	// Register routes
	routes.RegisterRoutes(router, authHandler, sessionHandler, userHandler, adminHandler, tokenManager, revocations, st)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// Create server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start background summary task
	summaryCtx, summaryCancel := context.WithCancel(context.Background())
	defer summaryCancel()

	go summaryScheduler.Start(summaryCtx)

	// Start server
	go func() {
		logger.Info("starting server", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received")

	summaryCancel()
	summaryScheduler.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}

// ensureAdminUser creates the first admin user if ADMIN_EMAIL and ADMIN_PASSWORD are set
func ensureAdminUser(ctx context.Context, st *store.Store, logger *slog.Logger) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" || adminPassword == "" {
		logger.Info("no ADMIN_EMAIL or ADMIN_PASSWORD set, skipping admin user creation")
		return nil
	}

	// Check if admin already exists
	_, err := st.GetUserByUsername(adminEmail)
	if err == nil {
		logger.Info("admin user already exists")
		return nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("failed to check if admin exists: %w", err)
	}

	hashedPassword, err := pkgauth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	_, err = st.CreateUser(&models.User{
		Username:     adminEmail,
		PasswordHash: hashedPassword,
		Role:         "admin",
	})
	if err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}

	logger.Info("admin user created successfully")
	return nil
}
