package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCapturedAuditLogger(env string) (*AuditLogger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	return NewAuditLogger(logger, env), &buf
}

func decodeLogLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	return line
}

func TestLogAuthAttempt_Success(t *testing.T) {
	al, buf := newCapturedAuditLogger("development")

	al.LogAuthAttempt(AuditEvent{
		EventType: "login_success",
		UserID:    "u1",
		IPAddress: "203.0.113.10",
		Success:   true,
	})

	line := decodeLogLine(t, buf)
	assert.Equal(t, "INFO", line["level"])
	assert.Equal(t, "auth", line["audit_type"])
	assert.Equal(t, "login_success", line["event_type"])
	assert.Equal(t, "u1", line["user_id"])
	assert.Equal(t, "203.0.113.10", line["ip_address"])
	assert.Equal(t, true, line["success"])
}

func TestLogAuthAttempt_FailureLogsAtWarnWithReason(t *testing.T) {
	al, buf := newCapturedAuditLogger("development")

	al.LogAuthAttempt(AuditEvent{
		EventType:     "login_suspicious",
		UserID:        "u1",
		FailureReason: "impossible travel",
		Success:       false,
	})

	line := decodeLogLine(t, buf)
	assert.Equal(t, "WARN", line["level"])
	assert.Equal(t, "impossible travel", line["failure_reason"])
}

func TestLogAuthAttempt_RedactsIPInProduction(t *testing.T) {
	al, buf := newCapturedAuditLogger("production")

	al.LogAuthAttempt(AuditEvent{
		EventType: "login_failed",
		IPAddress: "203.0.113.10",
		Success:   false,
	})

	line := decodeLogLine(t, buf)
	assert.Equal(t, "[REDACTED]", line["ip_address"])
	assert.NotContains(t, buf.String(), "203.0.113.10")
}

func TestLogAccountAction(t *testing.T) {
	al, buf := newCapturedAuditLogger("development")

	al.LogAccountAction("user_created", "u2", "10.0.0.1", map[string]string{"role": "admin"})

	line := decodeLogLine(t, buf)
	assert.Equal(t, "account", line["audit_type"])
	assert.Equal(t, "user_created", line["event_type"])
	assert.Equal(t, "u2", line["user_id"])
	assert.Equal(t, "10.0.0.1", line["ip_address"])
	assert.Equal(t, "admin", line["role"])
}
