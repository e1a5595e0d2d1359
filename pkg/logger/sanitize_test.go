package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizedEmail(t *testing.T) {
	tests := []struct {
		name  string
		email string
		want  string
	}{
		{"typical address", "analyst@example.com", "a******@*******.com"},
		{"single-char local part keeps its char", "a@example.com", "a@*******.com"},
		{"subdomain is masked with the domain", "ops@mail.example.com", "o**@************.com"},
		{"no at sign", "not-an-email", "[invalid-email]"},
		{"missing local part", "@example.com", "[invalid-email]"},
		{"missing domain", "analyst@", "[invalid-email]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizedEmail(tt.email))
		})
	}
}

func TestSanitizedEmail_NeverEchoesLocalPart(t *testing.T) {
	got := SanitizedEmail("sensitive.account@corp.example.com")
	assert.NotContains(t, got, "sensitive.account")
	assert.NotContains(t, got, "corp")
}

func TestRedactedAttr(t *testing.T) {
	prod := RedactedAttr("ip_address", "203.0.113.10", "production")
	assert.Equal(t, "[REDACTED]", prod.Value.String())

	dev := RedactedAttr("ip_address", "203.0.113.10", "development")
	assert.Equal(t, "203.0.113.10", dev.Value.String())
}

func TestSanitizeQueryString(t *testing.T) {
	tests := []struct {
		name     string
		rawQuery string
		want     bool
	}{
		{"empty query", "", false},
		{"plain paging params", "page=2&limit=50", false},
		{"password leaks", "password=hunter2", true},
		{"token leaks", "token=abc123", true},
		{"email leaks", "email=analyst@example.com", true},
		{"latitude leaks", "lat=40.71&lon=-74.00", true},
		{"location leaks", "location=paris", true},
		{"accuracy leaks", "accuracy=25", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeQueryString(tt.rawQuery))
		})
	}
}
