package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sentinelauth/sentinel/internal/auth"
	"github.com/sentinelauth/sentinel/internal/models"
	"github.com/sentinelauth/sentinel/internal/store"
	pkgauth "github.com/sentinelauth/sentinel/pkg/auth"
	pkglogger "github.com/sentinelauth/sentinel/pkg/logger"
)

// recentTravelWindow is how far back the impossible-travel signal looks.
const recentTravelWindow = 24 * time.Hour

// AuthService orchestrates the login decision: credential verification,
// the suspicion verdict over session history, ledger recording, session
// creation and the post-success multi-location check. Each login is one
// atomic unit of work against the user's session state.
type AuthService struct {
	store       *store.Store
	engine      *DecisionEngine
	tm          *auth.TokenManager
	revocations *auth.RevocationList
	notifier    NotificationService
	logger      *slog.Logger
	auditLogger *pkglogger.AuditLogger
	now         func() time.Time
}

// AuthOption configures an AuthService.
type AuthOption func(*AuthService)

// WithAuthClock overrides the time source used for login timestamps.
func WithAuthClock(now func() time.Time) AuthOption {
	return func(s *AuthService) {
		s.now = now
	}
}

// NewAuthService creates a new AuthService
func NewAuthService(
	st *store.Store,
	engine *DecisionEngine,
	tm *auth.TokenManager,
	revocations *auth.RevocationList,
	notifier NotificationService,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
	opts ...AuthOption,
) *AuthService {
	s := &AuthService{
		store:       st,
		engine:      engine,
		tm:          tm,
		revocations: revocations,
		notifier:    notifier,
		logger:      logger,
		auditLogger: auditLogger,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UserResponse represents a user in the HTTP response
type UserResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	CreatedAt string `json:"created_at"`
}

// AuthResponse represents the response from auth operations
type AuthResponse struct {
	AccessToken  string        `json:"access_token"`
	RefreshToken string        `json:"refresh_token"`
	User         *UserResponse `json:"user"`
}

// Login authenticates a user and judges the login's location plausibility.
// Credential failures and suspicious verdicts are both recorded in the
// attempt ledger; only an accepted login creates a session and tokens.
func (s *AuthService) Login(ctx context.Context, username, password string, location models.GeoPoint, ipAddress string) (*AuthResponse, error) {
	if username = strings.ToLower(strings.TrimSpace(username)); username == "" {
		return nil, models.ErrUnauthorized
	}

	// Malformed input is rejected before any evaluation and is not recorded:
	// there is no meaningful speed computation to audit.
	if !location.Valid() {
		return nil, models.ErrInvalidLocation
	}

	now := s.now()

	user, err := s.store.GetUserByUsername(username)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, s.rejectBadCredential(username, location, now, ipAddress)
		}
		s.logger.Error("failed to look up user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	if err := pkgauth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, s.rejectBadCredential(username, location, now, ipAddress)
	}

	candidate := models.LoginSample{Location: location, Timestamp: now, IPAddress: ipAddress}

	// Read history, decide, and (when accepted) append the new session under
	// the user's lock. The post-success active set is captured inside the
	// same critical section so the clustering check observes exactly the
	// state this login produced.
	var (
		verdict    Verdict
		prior      *models.Session
		postActive []models.Session
	)
	err = s.store.WithUserSessions(user.ID, func(ledger *store.SessionLedger) error {
		recent := ledger.RecentSince(recentTravelWindow)
		if len(recent) > 0 {
			last := recent[len(recent)-1]
			prior = &last
		}

		verdict = s.engine.Decide(candidate, recent, ledger.Active())
		if verdict.Suspicious {
			return nil
		}

		ledger.Append(models.Session{
			ID:        uuid.New().String(),
			Location:  location,
			Timestamp: now,
			IPAddress: ipAddress,
		})
		postActive = ledger.Active()
		return nil
	})
	if err != nil {
		s.logger.Error("failed to evaluate login", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.store.AppendAttempt(models.LoginAttempt{
		Username:   username,
		Success:    true,
		Suspicious: verdict.Suspicious,
		Reason:     verdict.Reason,
		Location:   &location,
		Timestamp:  now,
		IPAddress:  ipAddress,
	})

	if verdict.Suspicious {
		s.logger.Info("login blocked as suspicious",
			slog.String("user_id", user.ID),
			slog.String("reason", verdict.Reason))
		s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
			EventType:     "login_suspicious",
			UserID:        user.ID,
			IPAddress:     ipAddress,
			FailureReason: verdict.Reason,
			Success:       false,
		})

		// Fire-and-forget: delivery failure never changes the verdict.
		if err := s.notifier.NotifySuspiciousLogin(ctx, SuspiciousLoginAlert{
			Username:         username,
			Timestamp:        now,
			Reason:           verdict.Reason,
			IPAddress:        ipAddress,
			CurrentLocation:  location,
			PreviousLocation: prior,
		}); err != nil {
			s.logger.Error("suspicious-login notification failed", slog.Any("error", err))
		}

		return nil, fmt.Errorf("%w: %s", models.ErrSuspiciousLogin, verdict.Reason)
	}

	s.logger.Info("user logged in", slog.String("user_id", user.ID))
	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType: "login_success",
		UserID:    user.ID,
		IPAddress: ipAddress,
		Success:   true,
	})

	// An accepted login can still reveal an account that is live from
	// several places at once; that raises a side-channel alert without
	// affecting the session just created.
	s.checkMultipleActiveLocations(ctx, username, postActive)

	accessToken, err := s.tm.GenerateAccessToken(user)
	if err != nil {
		s.logger.Error("failed to generate access token", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	refreshToken, err := s.tm.GenerateRefreshToken(user)
	if err != nil {
		s.logger.Error("failed to generate refresh token", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	return &AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         userModelToResponse(user),
	}, nil
}

func (s *AuthService) rejectBadCredential(username string, location models.GeoPoint, now time.Time, ipAddress string) error {
	s.logger.Info("login failed: invalid credentials",
		slog.String("username", pkglogger.SanitizedEmail(username)))
	s.auditLogger.LogAuthAttempt(pkglogger.AuditEvent{
		EventType:     "login_failed",
		IPAddress:     ipAddress,
		FailureReason: "invalid_credentials",
		Success:       false,
	})

	s.store.AppendAttempt(models.LoginAttempt{
		Username:  username,
		Success:   false,
		Reason:    "invalid credentials",
		Location:  &location,
		Timestamp: now,
		IPAddress: ipAddress,
	})

	return models.ErrUnauthorized
}

func (s *AuthService) checkMultipleActiveLocations(ctx context.Context, username string, active []models.Session) {
	clusters := s.engine.ClusterLocations(active)
	if len(clusters) < 2 {
		return
	}

	alert := MultiLocationAlert{
		Username:           username,
		ActiveSessionCount: len(active),
		LocationCount:      len(clusters),
	}
	for _, cluster := range clusters {
		newest := cluster.Sessions[len(cluster.Sessions)-1]
		alert.Locations = append(alert.Locations, ActiveLocation{
			Latitude:  cluster.Representative.Latitude,
			Longitude: cluster.Representative.Longitude,
			Timestamp: newest.Timestamp,
		})
	}

	s.logger.Warn("multiple active locations detected",
		slog.String("username", username),
		slog.Int("location_count", len(clusters)))

	if err := s.notifier.NotifyMultipleActiveLocations(ctx, alert); err != nil {
		s.logger.Error("multi-location notification failed", slog.Any("error", err))
	}
}

// RefreshToken generates a new token pair from a refresh token
func (s *AuthService) RefreshToken(ctx context.Context, refreshTokenString string) (*AuthResponse, error) {
	if refreshTokenString = strings.TrimSpace(refreshTokenString); refreshTokenString == "" {
		return nil, models.ErrUnauthorized
	}

	claims, err := s.tm.ValidateToken(refreshTokenString)
	if err != nil {
		s.logger.Info("refresh token validation failed", slog.Any("error", err))
		return nil, models.ErrUnauthorized
	}

	if claims.Type != "refresh" {
		s.logger.Warn("refresh attempt with non-refresh token", slog.String("user_id", claims.UserID))
		return nil, models.ErrUnauthorized
	}

	if s.revocations.IsRevoked(claims.ID) {
		return nil, models.ErrUnauthorized
	}

	user, err := s.store.GetUser(claims.UserID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrUnauthorized
		}
		s.logger.Error("failed to get user for token refresh", slog.String("user_id", claims.UserID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	accessToken, err := s.tm.GenerateAccessToken(user)
	if err != nil {
		s.logger.Error("failed to generate access token", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}
	newRefreshToken, err := s.tm.GenerateRefreshToken(user)
	if err != nil {
		s.logger.Error("failed to generate refresh token", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("token refreshed", slog.String("user_id", user.ID))

	return &AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: newRefreshToken,
		User:         userModelToResponse(user),
	}, nil
}

// Logout revokes the current access token
func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	claims, err := s.tm.ValidateToken(accessToken)
	if err != nil {
		return models.ErrUnauthorized
	}

	s.revocations.Revoke(claims.ID, claims.ExpiresAt.Time)
	s.logger.Info("user logged out", slog.String("user_id", claims.UserID))
	return nil
}

// CreateUser provisions a new account (admin operation).
func (s *AuthService) CreateUser(ctx context.Context, username, password, role string) (*UserResponse, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, fmt.Errorf("username is required")
	}
	if role == "" {
		role = "user"
	}

	if err := pkgauth.ValidatePassword(password); err != nil {
		return nil, err
	}

	hashedPassword, err := pkgauth.HashPassword(password)
	if err != nil {
		s.logger.Error("failed to hash password", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	created, err := s.store.CreateUser(&models.User{
		Username:     username,
		PasswordHash: hashedPassword,
		Role:         role,
	})
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			return nil, models.ErrConflict
		}
		s.logger.Error("failed to create user", slog.Any("error", err))
		return nil, models.ErrInternalServer
	}

	s.logger.Info("user created", slog.String("user_id", created.ID))
	s.auditLogger.LogAccountAction("user_created", created.ID, "", nil)

	return userModelToResponse(created), nil
}

// userModelToResponse converts a user model to a response DTO
func userModelToResponse(user *models.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Role:      user.Role,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}
