package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func applySecurityHeaders(env string) *httptest.ResponseRecorder {
	handler := SecurityHeaders(SecurityHeadersConfig{Env: env})

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	handler(next).ServeHTTP(w, req)
	return w
}

func TestSecurityHeaders_Production(t *testing.T) {
	w := applySecurityHeaders("production")

	tests := []struct {
		header   string
		expected string
	}{
		{"X-Frame-Options", "DENY"},
		{"X-Content-Type-Options", "nosniff"},
		{"X-XSS-Protection", "1; mode=block"},
		{"Referrer-Policy", "strict-origin-when-cross-origin"},
	}

	for _, tt := range tests {
		if got := w.Header().Get(tt.header); got != tt.expected {
			t.Errorf("Header %s: got %q, want %q", tt.header, got, tt.expected)
		}
	}

	csp := w.Header().Get("Content-Security-Policy")
	if csp == "" {
		t.Error("Content-Security-Policy header missing")
	} else if !strings.Contains(csp, "default-src 'self'") {
		t.Errorf("CSP should be strict in production: %s", csp)
	}
}

func TestSecurityHeaders_GeolocationAllowedForSameOrigin(t *testing.T) {
	w := applySecurityHeaders("production")

	pp := w.Header().Get("Permissions-Policy")
	if !strings.Contains(pp, "geolocation=(self)") {
		t.Errorf("Permissions-Policy should allow same-origin geolocation: %s", pp)
	}
	if !strings.Contains(pp, "camera=()") {
		t.Errorf("Permissions-Policy should deny other capabilities: %s", pp)
	}
}

func TestSecurityHeaders_Development(t *testing.T) {
	w := applySecurityHeaders("development")

	if got := w.Header().Get("X-Frame-Options"); got != "DENY" {
		t.Errorf("X-Frame-Options: got %q, want DENY", got)
	}

	csp := w.Header().Get("Content-Security-Policy")
	if csp == "" {
		t.Error("Content-Security-Policy header missing")
	} else if !strings.Contains(csp, "unsafe-inline") {
		t.Errorf("CSP should allow unsafe-inline in development: %s", csp)
	}
}
