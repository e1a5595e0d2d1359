package handlers

import (
	"errors"
	"net/http"

	"github.com/sentinelauth/sentinel/internal/auth"
	"github.com/sentinelauth/sentinel/internal/models"
	pkghttp "github.com/sentinelauth/sentinel/pkg/http"
)

// SessionHandler exposes the caller's own session history.
type SessionHandler struct {
	reports ReportServiceInterface
}

// NewSessionHandler creates a new SessionHandler
func NewSessionHandler(reports ReportServiceInterface) *SessionHandler {
	return &SessionHandler{reports: reports}
}

// GetOwnSessions handles GET /sessions
// Returns the authenticated user's session history, most recent first.
func (h *SessionHandler) GetOwnSessions(w http.ResponseWriter, r *http.Request) {
	claims := auth.GetUserFromContext(r)
	if claims == nil {
		pkghttp.WriteUnauthorized(w, "unauthorized")
		return
	}

	detail, err := h.reports.UserDetail(claims.UserID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			pkghttp.WriteUnauthorized(w, "unauthorized")
			return
		}
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"sessions": detail.Sessions,
		"total":    len(detail.Sessions),
	})
}
