package logger

import (
	"log/slog"
	"strings"
)

// SanitizedEmail masks an email address so log lines can reference an account
// without writing the address itself, e.g. "a***@*******.com".
func SanitizedEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 || at == len(email)-1 {
		return "[invalid-email]"
	}

	local, domain := email[:at], email[at+1:]
	masked := local[:1] + strings.Repeat("*", len(local)-1)

	// Keep the TLD, mask the rest of the domain.
	if dot := strings.LastIndex(domain, "."); dot > 0 {
		domain = strings.Repeat("*", dot) + domain[dot:]
	}

	return masked + "@" + domain
}

// RedactedAttr returns a slog attribute whose value is hidden in production.
// Development keeps the real value for debugging.
func RedactedAttr(key, value, env string) slog.Attr {
	if env == "production" {
		return slog.String(key, "[REDACTED]")
	}
	return slog.String(key, value)
}

// Query parameters that mark a query string as sensitive. Besides the usual
// credential material, coordinates count: a user's location belongs in the
// session ledger, not in plaintext request logs.
var sensitiveQueryParams = []string{
	"password",
	"token",
	"secret",
	"auth",
	"email",
	"username",
	"lat",
	"lon",
	"location",
	"accuracy",
}

// SanitizeQueryString reports whether the query string carries a sensitive
// parameter and should be redacted wholesale.
func SanitizeQueryString(rawQuery string) bool {
	query := strings.ToLower(rawQuery)
	for _, param := range sensitiveQueryParams {
		if strings.Contains(query, param) {
			return true
		}
	}
	return false
}
