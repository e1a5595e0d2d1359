package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/sentinelauth/sentinel/internal/auth"
	"github.com/sentinelauth/sentinel/internal/handlers"
	"github.com/sentinelauth/sentinel/internal/middleware"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	sessionHandler *handlers.SessionHandler,
	userHandler *handlers.UserHandler,
	adminHandler *handlers.AdminHandler,
	tokenManager *auth.TokenManager,
	revocations *auth.RevocationList,
	users auth.UserFetcher,
) {
	// Rate limiting config for auth endpoints
	rateLimitConfig := middleware.DefaultAuthRateLimit()

	// Public routes - no authentication required
	router.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/auth/login", authHandler.Login)
	router.With(middleware.RateLimitByIP(rateLimitConfig)).Post("/auth/refresh", authHandler.RefreshToken)

	// Protected routes - authentication required
	router.Group(func(r chi.Router) {
		r.Use(auth.Middleware(tokenManager, revocations))

		// Any authenticated user
		r.Post("/auth/logout", authHandler.Logout)
		r.Get("/sessions", sessionHandler.GetOwnSessions)

		// Admin-only routes
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireRole(users, "admin"))

			r.Post("/users", userHandler.CreateUser)

			r.Route("/admin", func(r chi.Router) {
				r.Get("/login-attempts", adminHandler.GetLoginAttempts)
				r.Get("/users", adminHandler.GetUsers)
				r.Get("/users/{id}", adminHandler.GetUserDetail)
				r.Get("/summary", adminHandler.GetDailySummary)
				r.Get("/email-settings", adminHandler.GetEmailSettings)
				r.Post("/test-email", adminHandler.TestEmail)
			})
		})
	})
}
