package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sentinelauth/sentinel/internal/config"
	"github.com/sentinelauth/sentinel/internal/models"
	"github.com/sentinelauth/sentinel/internal/services"
	pkghttp "github.com/sentinelauth/sentinel/pkg/http"
)

// ReportServiceInterface defines the admin reporting contract.
type ReportServiceInterface interface {
	LoginAttempts() []services.LoginAttemptEntry
	UserOverviews() []services.UserOverview
	UserDetail(userID string) (*services.UserDetail, error)
	GenerateDailySummary() services.DailySummary
}

// NotifierInterface is the slice of the notification service the admin
// surface needs for diagnostics.
type NotifierInterface interface {
	VerifyConfiguration(ctx context.Context) error
	SendDailySummary(ctx context.Context, summary services.DailySummary) error
}

// AdminHandler handles the admin monitoring endpoints.
type AdminHandler struct {
	reports  ReportServiceInterface
	notifier NotifierInterface
	emailCfg config.EmailConfig
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(reports ReportServiceInterface, notifier NotifierInterface, emailCfg config.EmailConfig) *AdminHandler {
	return &AdminHandler{
		reports:  reports,
		notifier: notifier,
		emailCfg: emailCfg,
	}
}

// EmailSettingsResponse is the non-secret view of the notification config.
type EmailSettingsResponse struct {
	Enabled     bool     `json:"enabled"`
	FromAddress string   `json:"from_address,omitempty"`
	AdminEmails []string `json:"admin_emails,omitempty"`
	SummaryHour int      `json:"summary_hour"`
}

// GetLoginAttempts handles GET /admin/login-attempts
// Returns the attempt ledger, most recent first.
func (h *AdminHandler) GetLoginAttempts(w http.ResponseWriter, r *http.Request) {
	attempts := h.reports.LoginAttempts()

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"attempts": attempts,
		"total":    len(attempts),
	})
}

// GetUsers handles GET /admin/users
// Returns one row per user with session counts and active location clusters.
func (h *AdminHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	overviews := h.reports.UserOverviews()

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"users": overviews,
		"total": len(overviews),
	})
}

// GetUserDetail handles GET /admin/users/{id}
// Returns a user's full session history with per-session active status.
func (h *AdminHandler) GetUserDetail(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if userID == "" {
		pkghttp.WriteBadRequest(w, "User ID is required")
		return
	}

	detail, err := h.reports.UserDetail(userID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteNotFound(w, "User not found")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, detail)
}

// GetDailySummary handles GET /admin/summary
// Computes the last-24h summary on demand, without sending any email.
func (h *AdminHandler) GetDailySummary(w http.ResponseWriter, r *http.Request) {
	summary := h.reports.GenerateDailySummary()

	pkghttp.WriteJSON(w, http.StatusOK, summary)
}

// GetEmailSettings handles GET /admin/email-settings
// Returns the active notification configuration, credentials excluded.
func (h *AdminHandler) GetEmailSettings(w http.ResponseWriter, r *http.Request) {
	pkghttp.WriteJSON(w, http.StatusOK, EmailSettingsResponse{
		Enabled:     h.emailCfg.Enabled,
		FromAddress: h.emailCfg.FromAddress,
		AdminEmails: h.emailCfg.AdminEmails,
		SummaryHour: h.emailCfg.SummaryHour,
	})
}

// TestEmail handles POST /admin/test-email
// Verifies the notification channel and pushes the current summary through it.
func (h *AdminHandler) TestEmail(w http.ResponseWriter, r *http.Request) {
	if err := h.notifier.VerifyConfiguration(r.Context()); err != nil {
		pkghttp.WriteErrorWithDetails(w, http.StatusBadGateway, "email_unavailable",
			"Email notifications are not operational", err.Error())
		return
	}

	summary := h.reports.GenerateDailySummary()
	if err := h.notifier.SendDailySummary(r.Context(), summary); err != nil {
		pkghttp.WriteErrorWithDetails(w, http.StatusBadGateway, "email_send_failed",
			"Failed to send test email", err.Error())
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "Test summary email sent to configured admin addresses",
	})
}
