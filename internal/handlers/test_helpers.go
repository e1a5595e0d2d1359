package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/sentinelauth/sentinel/internal/auth"
	"github.com/sentinelauth/sentinel/internal/models"
	"github.com/sentinelauth/sentinel/internal/services"
	pkghttp "github.com/sentinelauth/sentinel/pkg/http"
	"github.com/stretchr/testify/assert"
)

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// WithAuthContext adds user claims and a raw token to the request context for
// testing authenticated endpoints
func WithAuthContext(req *http.Request, userID, username string) *http.Request {
	claims := &models.TokenClaims{
		UserID:   userID,
		Username: username,
		Type:     "access",
	}
	ctx := context.WithValue(req.Context(), auth.UserContextKey, claims)
	ctx = context.WithValue(ctx, auth.TokenContextKey, "test-token")
	return req.WithContext(ctx)
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	contentType := w.Header().Get("Content-Type")
	assert.Equal(t, "application/json", contentType, "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response is a valid error response
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.Equal(t, expectedError, resp.Error, "Error code mismatch")
	assert.NotEmpty(t, resp.Message, "Error message should not be empty")
}

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	LoginFunc        func(ctx context.Context, username, password string, location models.GeoPoint, ipAddress string) (*services.AuthResponse, error)
	RefreshTokenFunc func(ctx context.Context, refreshToken string) (*services.AuthResponse, error)
	LogoutFunc       func(ctx context.Context, accessToken string) error
}

func (m *MockAuthService) Login(ctx context.Context, username, password string, location models.GeoPoint, ipAddress string) (*services.AuthResponse, error) {
	if m.LoginFunc == nil {
		return nil, models.ErrUnauthorized
	}
	return m.LoginFunc(ctx, username, password, location, ipAddress)
}

func (m *MockAuthService) RefreshToken(ctx context.Context, refreshToken string) (*services.AuthResponse, error) {
	if m.RefreshTokenFunc == nil {
		return nil, models.ErrUnauthorized
	}
	return m.RefreshTokenFunc(ctx, refreshToken)
}

func (m *MockAuthService) Logout(ctx context.Context, accessToken string) error {
	if m.LogoutFunc == nil {
		return nil
	}
	return m.LogoutFunc(ctx, accessToken)
}

// MockReportService implements ReportServiceInterface for testing
type MockReportService struct {
	LoginAttemptsFunc        func() []services.LoginAttemptEntry
	UserOverviewsFunc        func() []services.UserOverview
	UserDetailFunc           func(userID string) (*services.UserDetail, error)
	GenerateDailySummaryFunc func() services.DailySummary
}

func (m *MockReportService) LoginAttempts() []services.LoginAttemptEntry {
	if m.LoginAttemptsFunc == nil {
		return nil
	}
	return m.LoginAttemptsFunc()
}

func (m *MockReportService) UserOverviews() []services.UserOverview {
	if m.UserOverviewsFunc == nil {
		return nil
	}
	return m.UserOverviewsFunc()
}

func (m *MockReportService) UserDetail(userID string) (*services.UserDetail, error) {
	if m.UserDetailFunc == nil {
		return nil, models.ErrNotFound
	}
	return m.UserDetailFunc(userID)
}

func (m *MockReportService) GenerateDailySummary() services.DailySummary {
	if m.GenerateDailySummaryFunc == nil {
		return services.DailySummary{}
	}
	return m.GenerateDailySummaryFunc()
}

// MockNotifier implements NotifierInterface for testing
type MockNotifier struct {
	VerifyConfigurationFunc func(ctx context.Context) error
	SendDailySummaryFunc    func(ctx context.Context, summary services.DailySummary) error
}

func (m *MockNotifier) VerifyConfiguration(ctx context.Context) error {
	if m.VerifyConfigurationFunc == nil {
		return nil
	}
	return m.VerifyConfigurationFunc(ctx)
}

func (m *MockNotifier) SendDailySummary(ctx context.Context, summary services.DailySummary) error {
	if m.SendDailySummaryFunc == nil {
		return nil
	}
	return m.SendDailySummaryFunc(ctx, summary)
}

// MockUserProvisioner implements UserProvisioner for testing
type MockUserProvisioner struct {
	CreateUserFunc func(ctx context.Context, username, password, role string) (*services.UserResponse, error)
}

func (m *MockUserProvisioner) CreateUser(ctx context.Context, username, password, role string) (*services.UserResponse, error) {
	if m.CreateUserFunc == nil {
		return nil, models.ErrConflict
	}
	return m.CreateUserFunc(ctx, username, password, role)
}

// WithChiRouteContext adds chi URL parameters to request context for testing
func WithChiRouteContext(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
