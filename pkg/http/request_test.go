package http_test

import (
	"net/http/httptest"
	"testing"

	pkghttp "github.com/sentinelauth/sentinel/pkg/http"
	"github.com/stretchr/testify/assert"
)

// The extracted IP is what the attempt ledger and the per-IP rate limiter
// key on, so forwarding headers must never be trusted from arbitrary peers.
func TestExtractClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		trusted    []string
		want       string
	}{
		{
			name:       "direct connection ignores forwarding headers",
			remoteAddr: "203.0.113.10:54321",
			headers: map[string]string{
				"X-Forwarded-For": "1.2.3.4, 5.6.7.8",
				"X-Real-IP":       "192.168.1.1",
			},
			trusted: []string{"10.0.0.0/8", "172.16.0.0/12"},
			want:    "203.0.113.10",
		},
		{
			name:       "trusted proxy uses X-Forwarded-For",
			remoteAddr: "10.0.0.5:54321",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.42, 10.0.0.5"},
			trusted:    []string{"10.0.0.0/8"},
			want:       "203.0.113.42",
		},
		{
			name:       "trusted proxy falls back to X-Real-IP",
			remoteAddr: "10.0.0.5:54321",
			headers:    map[string]string{"X-Real-IP": "203.0.113.42"},
			trusted:    []string{"10.0.0.0/8"},
			want:       "203.0.113.42",
		},
		{
			name:       "first chain entry wins over intermediate proxies",
			remoteAddr: "10.0.0.5:54321",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.42, 203.0.113.43, 10.0.0.5"},
			trusted:    []string{"10.0.0.0/8"},
			want:       "203.0.113.42",
		},
		{
			name:       "unparseable chain entries are skipped",
			remoteAddr: "10.0.0.5:54321",
			headers:    map[string]string{"X-Forwarded-For": "not-an-ip, 203.0.113.42"},
			trusted:    []string{"10.0.0.0/8"},
			want:       "203.0.113.42",
		},
		{
			name:       "IPv6 proxy and client",
			remoteAddr: "[::1]:54321",
			headers:    map[string]string{"X-Forwarded-For": "2001:db8::1"},
			trusted:    []string{"::1/128"},
			want:       "2001:db8::1",
		},
		{
			name:       "empty trusted list never honors headers",
			remoteAddr: "203.0.113.10:54321",
			headers:    map[string]string{"X-Forwarded-For": "1.2.3.4"},
			trusted:    []string{},
			want:       "203.0.113.10",
		},
		{
			name:       "invalid CIDR ranges are not trusted",
			remoteAddr: "203.0.113.10:54321",
			headers:    map[string]string{"X-Forwarded-For": "1.2.3.4"},
			trusted:    []string{"not-a-cidr", "also/bad"},
			want:       "203.0.113.10",
		},
		{
			name:       "claimed localhost does not bypass the check",
			remoteAddr: "203.0.113.10:54321",
			headers:    map[string]string{"X-Forwarded-For": "127.0.0.1, 203.0.113.10"},
			trusted:    []string{"10.0.0.0/8"},
			want:       "203.0.113.10",
		},
		{
			name:       "port is stripped from the peer address",
			remoteAddr: "203.0.113.10:54321",
			trusted:    []string{},
			want:       "203.0.113.10",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/auth/login", nil)
			req.RemoteAddr = tt.remoteAddr
			for key, value := range tt.headers {
				req.Header.Set(key, value)
			}

			ip := pkghttp.ExtractClientIP(req, &pkghttp.IPConfig{TrustedProxies: tt.trusted})
			assert.Equal(t, tt.want, ip)
		})
	}
}

func TestExtractClientIP_NilConfigUsesPeerAddress(t *testing.T) {
	req := httptest.NewRequest("POST", "/auth/login", nil)
	req.RemoteAddr = "203.0.113.10:54321"
	req.Header.Set("X-Forwarded-For", "1.2.3.4")

	assert.Equal(t, "203.0.113.10", pkghttp.ExtractClientIP(req, nil))
}
