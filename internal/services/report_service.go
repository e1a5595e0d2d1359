package services

import (
	"sort"
	"time"

	"github.com/sentinelauth/sentinel/internal/models"
	"github.com/sentinelauth/sentinel/internal/store"
)

// LoginAttemptEntry is one row of the admin audit feed.
type LoginAttemptEntry struct {
	Username   string           `json:"username"`
	Status     string           `json:"status"`
	Suspicious bool             `json:"suspicious"`
	Reason     string           `json:"reason,omitempty"`
	Location   *models.GeoPoint `json:"location,omitempty"`
	Timestamp  time.Time        `json:"timestamp"`
	IPAddress  string           `json:"ip_address"`
}

// UserOverview is the per-user row of the admin user table.
type UserOverview struct {
	UserID          string           `json:"user_id"`
	Username        string           `json:"username"`
	TotalSessions   int              `json:"total_sessions"`
	ActiveSessions  int              `json:"active_sessions"`
	ActiveLocations []ActiveLocation `json:"active_locations"`
	LastLogin       *time.Time       `json:"last_login,omitempty"`
}

// SessionEntry is one session row in the user detail view.
type SessionEntry struct {
	SessionID string          `json:"session_id"`
	Location  models.GeoPoint `json:"location"`
	Timestamp time.Time       `json:"timestamp"`
	IPAddress string          `json:"ip_address"`
	Active    bool            `json:"active"`
}

// UserDetail is the drill-down view for a single user.
type UserDetail struct {
	UserID   string         `json:"user_id"`
	Username string         `json:"username"`
	Sessions []SessionEntry `json:"sessions"`
}

// SuspiciousUserCount pairs a username with its suspicious-attempt count.
type SuspiciousUserCount struct {
	Username        string `json:"username"`
	SuspiciousCount int    `json:"suspicious_count"`
}

// DailySummary aggregates the last 24 hours of login activity.
type DailySummary struct {
	Date               time.Time             `json:"date"`
	TotalLogins        int                   `json:"total_logins"`
	SuspiciousLogins   int                   `json:"suspicious_logins"`
	FailedLogins       int                   `json:"failed_logins"`
	TopSuspiciousUsers []SuspiciousUserCount `json:"top_suspicious_users"`
}

// topSuspiciousUserLimit caps the daily summary leaderboard.
const topSuspiciousUserLimit = 5

// ReportService derives read-only snapshots from the ledgers for the admin
// surface. Everything here is a pure derivation over ledger state; no new
// state is created.
type ReportService struct {
	store  *store.Store
	engine *DecisionEngine
	window time.Duration // active-session window, for session status labels
	now    func() time.Time
}

// ReportOption configures a ReportService.
type ReportOption func(*ReportService)

// WithReportClock overrides the time source. Tests use this to pin "now".
func WithReportClock(now func() time.Time) ReportOption {
	return func(s *ReportService) {
		s.now = now
	}
}

// NewReportService creates a new ReportService
func NewReportService(st *store.Store, engine *DecisionEngine, activeWindow time.Duration, opts ...ReportOption) *ReportService {
	s := &ReportService{
		store:  st,
		engine: engine,
		window: activeWindow,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// LoginAttempts returns the attempt ledger, most recent first.
func (s *ReportService) LoginAttempts() []LoginAttemptEntry {
	attempts := s.store.Attempts()

	out := make([]LoginAttemptEntry, 0, len(attempts))
	for i := len(attempts) - 1; i >= 0; i-- {
		a := attempts[i]
		out = append(out, LoginAttemptEntry{
			Username:   a.Username,
			Status:     a.Status(),
			Suspicious: a.Suspicious,
			Reason:     a.Reason,
			Location:   a.Location,
			Timestamp:  a.Timestamp,
			IPAddress:  a.IPAddress,
		})
	}
	return out
}

// UserOverviews returns one row per registered user with session counts and
// the representatives of their active location clusters.
func (s *ReportService) UserOverviews() []UserOverview {
	var out []UserOverview

	for _, id := range s.store.UserIDs() {
		user, err := s.store.GetUser(id)
		if err != nil {
			continue
		}

		sessions, err := s.store.Sessions(id)
		if err != nil {
			continue
		}
		active, err := s.store.ActiveSessions(id)
		if err != nil {
			continue
		}

		overview := UserOverview{
			UserID:         user.ID,
			Username:       user.Username,
			TotalSessions:  len(sessions),
			ActiveSessions: len(active),
		}

		if len(sessions) > 0 {
			last := sessions[len(sessions)-1].Timestamp
			overview.LastLogin = &last
		}

		for _, cluster := range s.engine.ClusterLocations(active) {
			newest := cluster.Sessions[len(cluster.Sessions)-1]
			overview.ActiveLocations = append(overview.ActiveLocations, ActiveLocation{
				Latitude:  cluster.Representative.Latitude,
				Longitude: cluster.Representative.Longitude,
				Timestamp: newest.Timestamp,
			})
		}

		out = append(out, overview)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}

// UserDetail returns a user's session history, most recent first, with an
// active/expired status per session.
func (s *ReportService) UserDetail(userID string) (*UserDetail, error) {
	user, err := s.store.GetUser(userID)
	if err != nil {
		return nil, err
	}

	sessions, err := s.store.Sessions(userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	detail := &UserDetail{
		UserID:   user.ID,
		Username: user.Username,
		Sessions: make([]SessionEntry, 0, len(sessions)),
	}
	for i := len(sessions) - 1; i >= 0; i-- {
		sess := sessions[i]
		detail.Sessions = append(detail.Sessions, SessionEntry{
			SessionID: sess.ID,
			Location:  sess.Location,
			Timestamp: sess.Timestamp,
			IPAddress: sess.IPAddress,
			Active:    sess.ActiveAt(now, s.window),
		})
	}

	return detail, nil
}

// GenerateDailySummary aggregates the last 24 hours of attempts.
func (s *ReportService) GenerateDailySummary() DailySummary {
	now := s.now()
	cutoff := now.Add(-24 * time.Hour)

	summary := DailySummary{Date: now}
	suspiciousByUser := make(map[string]int)

	// Suspicious attempts carry Success=true (the credentials were valid),
	// so they count toward both totals, as the audit feed does.
	for _, a := range s.store.Attempts() {
		if !a.Timestamp.After(cutoff) {
			continue
		}
		if a.Success {
			summary.TotalLogins++
		} else {
			summary.FailedLogins++
		}
		if a.Suspicious {
			summary.SuspiciousLogins++
			suspiciousByUser[a.Username]++
		}
	}

	for username, count := range suspiciousByUser {
		summary.TopSuspiciousUsers = append(summary.TopSuspiciousUsers, SuspiciousUserCount{
			Username:        username,
			SuspiciousCount: count,
		})
	}
	sort.Slice(summary.TopSuspiciousUsers, func(i, j int) bool {
		a, b := summary.TopSuspiciousUsers[i], summary.TopSuspiciousUsers[j]
		if a.SuspiciousCount != b.SuspiciousCount {
			return a.SuspiciousCount > b.SuspiciousCount
		}
		return a.Username < b.Username
	})
	if len(summary.TopSuspiciousUsers) > topSuspiciousUserLimit {
		summary.TopSuspiciousUsers = summary.TopSuspiciousUsers[:topSuspiciousUserLimit]
	}

	return summary
}
