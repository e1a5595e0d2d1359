package store

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sentinelauth/sentinel/internal/config"
	"github.com/sentinelauth/sentinel/internal/models"
)

// Store is the in-memory state of the service: the user accounts, each
// user's bounded session ledger, and the global bounded login-attempt
// ledger. One Store is constructed per process (or per test); there are no
// package-level singletons.
//
// Locking model: the user map is guarded by mu; each user record carries its
// own mutex so a login decision (read history, compute verdict, append) is
// serialized per user while different users proceed in parallel. The attempt
// ledger has a separate lock. Retention trimming happens inline with append
// under the same lock, so size bounds hold between any two observations.
type Store struct {
	cfg config.SecurityConfig
	now func() time.Time

	mu         sync.RWMutex
	users      map[string]*userRecord
	byUsername map[string]string

	attemptMu sync.Mutex
	attempts  []models.LoginAttempt
}

type userRecord struct {
	mu       sync.Mutex
	user     models.User
	sessions []models.Session
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used by windowed queries. Tests use
// this to pin "now".
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates an empty Store with the given retention and windowing config.
func New(cfg config.SecurityConfig, opts ...Option) *Store {
	s := &Store{
		cfg:        cfg,
		now:        time.Now,
		users:      make(map[string]*userRecord),
		byUsername: make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateUser registers a new user. The ID is assigned here if empty.
func (s *Store) CreateUser(user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byUsername[user.Username]; exists {
		return nil, models.ErrConflict
	}

	u := *user
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now()
	}

	s.users[u.ID] = &userRecord{user: u}
	s.byUsername[u.Username] = u.ID

	out := u
	return &out, nil
}

// GetUser returns the user with the given ID.
func (s *Store) GetUser(id string) (*models.User, error) {
	s.mu.RLock()
	rec, ok := s.users[id]
	s.mu.RUnlock()
	if !ok {
		return nil, models.ErrNotFound
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	u := rec.user
	return &u, nil
}

// GetUserByUsername returns the user with the given login name.
func (s *Store) GetUserByUsername(username string) (*models.User, error) {
	s.mu.RLock()
	id, ok := s.byUsername[username]
	s.mu.RUnlock()
	if !ok {
		return nil, models.ErrNotFound
	}
	return s.GetUser(id)
}

// UserIDs returns the IDs of all registered users.
func (s *Store) UserIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	return ids
}

// SessionLedger is a view over one user's session history, valid only inside
// a WithUserSessions callback. All reads and the append observe a consistent
// state because the user's lock is held for the whole callback.
type SessionLedger struct {
	store *Store
	rec   *userRecord
}

// WithUserSessions runs fn while holding the user's lock. A login decision
// uses this to read recent history, compute its verdict and append the new
// session as one atomic unit.
func (s *Store) WithUserSessions(userID string, fn func(ledger *SessionLedger) error) error {
	s.mu.RLock()
	rec, ok := s.users[userID]
	s.mu.RUnlock()
	if !ok {
		return models.ErrNotFound
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	return fn(&SessionLedger{store: s, rec: rec})
}

// Append adds a session to the tail and trims the head until the ledger is
// within MaxSessionsPerUser. Insertion order is preserved among survivors.
func (l *SessionLedger) Append(session models.Session) {
	l.rec.sessions = append(l.rec.sessions, session)
	if max := l.store.cfg.MaxSessionsPerUser; len(l.rec.sessions) > max {
		l.rec.sessions = l.rec.sessions[len(l.rec.sessions)-max:]
	}
}

// All returns the full retained history in insertion order.
func (l *SessionLedger) All() []models.Session {
	return copySessions(l.rec.sessions)
}

// RecentSince returns sessions newer than now-window, insertion order
// preserved.
func (l *SessionLedger) RecentSince(window time.Duration) []models.Session {
	cutoff := l.store.now().Add(-window)
	var out []models.Session
	for _, sess := range l.rec.sessions {
		if sess.Timestamp.After(cutoff) {
			out = append(out, sess)
		}
	}
	return out
}

// Active returns sessions still inside the configured active-session window.
func (l *SessionLedger) Active() []models.Session {
	return l.RecentSince(l.store.cfg.ActiveSessionWindow)
}

// AppendSession records a session outside of a decision callback.
func (s *Store) AppendSession(userID string, session models.Session) error {
	return s.WithUserSessions(userID, func(ledger *SessionLedger) error {
		ledger.Append(session)
		return nil
	})
}

// Sessions returns a user's full retained session history.
func (s *Store) Sessions(userID string) ([]models.Session, error) {
	var out []models.Session
	err := s.WithUserSessions(userID, func(ledger *SessionLedger) error {
		out = ledger.All()
		return nil
	})
	return out, err
}

// RecentSessions returns a user's sessions newer than now-window.
func (s *Store) RecentSessions(userID string, window time.Duration) ([]models.Session, error) {
	var out []models.Session
	err := s.WithUserSessions(userID, func(ledger *SessionLedger) error {
		out = ledger.RecentSince(window)
		return nil
	})
	return out, err
}

// ActiveSessions returns a user's sessions inside the active window.
func (s *Store) ActiveSessions(userID string) ([]models.Session, error) {
	var out []models.Session
	err := s.WithUserSessions(userID, func(ledger *SessionLedger) error {
		out = ledger.Active()
		return nil
	})
	return out, err
}

// AppendAttempt records a login attempt in the global ledger, evicting the
// oldest entries once the configured capacity is exceeded.
func (s *Store) AppendAttempt(attempt models.LoginAttempt) {
	s.attemptMu.Lock()
	defer s.attemptMu.Unlock()

	s.attempts = append(s.attempts, attempt)
	if max := s.cfg.MaxLoginAttempts; len(s.attempts) > max {
		s.attempts = s.attempts[len(s.attempts)-max:]
	}
}

// Attempts returns a snapshot of the attempt ledger in insertion order.
// Most-recent-first ordering is a presentation concern of reporting.
func (s *Store) Attempts() []models.LoginAttempt {
	s.attemptMu.Lock()
	defer s.attemptMu.Unlock()

	out := make([]models.LoginAttempt, len(s.attempts))
	copy(out, s.attempts)
	return out
}

func copySessions(sessions []models.Session) []models.Session {
	if sessions == nil {
		return nil
	}
	out := make([]models.Session, len(sessions))
	copy(out, sessions)
	return out
}
