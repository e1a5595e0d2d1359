package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sentinelauth/sentinel/internal/models"
)

func newTestManager() *TokenManager {
	return NewTokenManager("test-secret-at-least-16-chars", 15*time.Minute, 7*24*time.Hour)
}

func testUser() *models.User {
	return &models.User{
		ID:       "user-123",
		Username: "user@example.com",
		Role:     "user",
	}
}

func protectedHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware_ValidToken(t *testing.T) {
	tm := newTestManager()
	token, err := tm.GenerateAccessToken(testUser())
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	called := false
	var gotClaims *models.TokenClaims
	var gotToken string
	handler := Middleware(tm, NewRevocationList())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		gotClaims = GetUserFromContext(r)
		gotToken = GetTokenFromContext(r)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/sessions", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if !called {
		t.Fatal("expected next handler to be called")
	}
	if gotClaims == nil || gotClaims.UserID != "user-123" {
		t.Errorf("expected claims for user-123 in context, got %+v", gotClaims)
	}
	if gotToken != token {
		t.Error("expected raw token in context")
	}
}

func TestMiddleware_MissingHeader(t *testing.T) {
	called := false
	handler := Middleware(newTestManager(), NewRevocationList())(protectedHandler(&called))

	req := httptest.NewRequest("GET", "/sessions", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
	if called {
		t.Error("next handler should not run without a token")
	}
}

func TestMiddleware_RefreshTokenRejected(t *testing.T) {
	tm := newTestManager()
	refresh, err := tm.GenerateRefreshToken(testUser())
	if err != nil {
		t.Fatalf("failed to generate refresh token: %v", err)
	}

	called := false
	handler := Middleware(tm, NewRevocationList())(protectedHandler(&called))

	req := httptest.NewRequest("GET", "/sessions", nil)
	req.Header.Set("Authorization", "Bearer "+refresh)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for refresh token, got %d", w.Code)
	}
	if called {
		t.Error("refresh tokens must not grant API access")
	}
}

func TestMiddleware_RevokedTokenRejected(t *testing.T) {
	tm := newTestManager()
	token, err := tm.GenerateAccessToken(testUser())
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	claims, err := tm.ValidateToken(token)
	if err != nil {
		t.Fatalf("failed to validate token: %v", err)
	}

	revocations := NewRevocationList()
	revocations.Revoke(claims.ID, claims.ExpiresAt.Time)

	called := false
	handler := Middleware(tm, revocations)(protectedHandler(&called))

	req := httptest.NewRequest("GET", "/sessions", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for revoked token, got %d", w.Code)
	}
	if called {
		t.Error("revoked tokens must not grant API access")
	}
}

type stubUserFetcher struct {
	users map[string]*models.User
}

func (s *stubUserFetcher) GetUser(id string) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, models.ErrNotFound
}

func requestWithClaims(tm *TokenManager, user *models.User) *http.Request {
	token, _ := tm.GenerateAccessToken(user)
	req := httptest.NewRequest("GET", "/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestRequireRole_AllowsMatchingRole(t *testing.T) {
	tm := newTestManager()
	admin := &models.User{ID: "admin-1", Username: "admin@example.com", Role: "admin"}
	fetcher := &stubUserFetcher{users: map[string]*models.User{"admin-1": admin}}

	called := false
	handler := Middleware(tm, NewRevocationList())(
		RequireRole(fetcher, "admin")(protectedHandler(&called)))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestWithClaims(tm, admin))

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if !called {
		t.Error("expected admin to reach the handler")
	}
}

func TestRequireRole_BlocksOtherRoles(t *testing.T) {
	tm := newTestManager()
	user := testUser()
	fetcher := &stubUserFetcher{users: map[string]*models.User{user.ID: user}}

	called := false
	handler := Middleware(tm, NewRevocationList())(
		RequireRole(fetcher, "admin")(protectedHandler(&called)))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestWithClaims(tm, user))

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", w.Code)
	}
	if called {
		t.Error("non-admin must not reach the handler")
	}
}

func TestRequireRole_ChecksStoreNotToken(t *testing.T) {
	tm := newTestManager()
	// Token was minted while the user was an admin, but the store now says
	// they are a regular user. The store wins.
	demoted := &models.User{ID: "u-demoted", Username: "former@example.com", Role: "admin"}
	fetcher := &stubUserFetcher{users: map[string]*models.User{
		"u-demoted": {ID: "u-demoted", Username: "former@example.com", Role: "user"},
	}}

	called := false
	handler := Middleware(tm, NewRevocationList())(
		RequireRole(fetcher, "admin")(protectedHandler(&called)))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, requestWithClaims(tm, demoted))

	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 after demotion, got %d", w.Code)
	}
	if called {
		t.Error("demoted user must not reach the handler")
	}
}
