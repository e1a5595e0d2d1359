package background

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/sentinelauth/sentinel/internal/services"
	"github.com/stretchr/testify/assert"
)

type stubReporter struct {
	summary services.DailySummary
}

func (s *stubReporter) GenerateDailySummary() services.DailySummary { return s.summary }

type stubSender struct {
	sent []services.DailySummary
}

func (s *stubSender) SendDailySummary(_ context.Context, summary services.DailySummary) error {
	s.sent = append(s.sent, summary)
	return nil
}

func newTestScheduler(summary services.DailySummary, sender *stubSender) *SummaryScheduler {
	return NewSummaryScheduler(&stubReporter{summary: summary}, sender, slog.Default(), 9)
}

func TestUntilNextRun_BeforeSendHour(t *testing.T) {
	sm := newTestScheduler(services.DailySummary{}, &stubSender{})
	sm.now = func() time.Time {
		return time.Date(2026, 8, 1, 7, 0, 0, 0, time.UTC)
	}

	assert.Equal(t, 2*time.Hour, sm.untilNextRun())
}

func TestUntilNextRun_AfterSendHourRollsToTomorrow(t *testing.T) {
	sm := newTestScheduler(services.DailySummary{}, &stubSender{})
	sm.now = func() time.Time {
		return time.Date(2026, 8, 1, 10, 30, 0, 0, time.UTC)
	}

	assert.Equal(t, 22*time.Hour+30*time.Minute, sm.untilNextRun())
}

func TestRunSummary_SkipsEmptyDay(t *testing.T) {
	sender := &stubSender{}
	sm := newTestScheduler(services.DailySummary{}, sender)

	sm.runSummary(context.Background())

	assert.Empty(t, sender.sent)
}

func TestRunSummary_SkipsDayWithOnlyFailedLogins(t *testing.T) {
	sender := &stubSender{}
	sm := newTestScheduler(services.DailySummary{FailedLogins: 4}, sender)

	sm.runSummary(context.Background())

	assert.Empty(t, sender.sent)
}

func TestRunSummary_SendsWhenOnlySuspiciousActivity(t *testing.T) {
	sender := &stubSender{}
	sm := newTestScheduler(services.DailySummary{TotalLogins: 2, SuspiciousLogins: 2}, sender)

	sm.runSummary(context.Background())

	assert.Len(t, sender.sent, 1)
}

func TestRunSummary_SendsWhenActivityPresent(t *testing.T) {
	sender := &stubSender{}
	sm := newTestScheduler(services.DailySummary{TotalLogins: 3, FailedLogins: 1}, sender)

	sm.runSummary(context.Background())

	assert.Len(t, sender.sent, 1)
	assert.Equal(t, 3, sender.sent[0].TotalLogins)
}
