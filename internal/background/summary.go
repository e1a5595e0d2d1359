package background

import (
	"context"
	"log/slog"
	"time"

	"github.com/sentinelauth/sentinel/internal/services"
)

// SummaryReporter produces the daily activity summary.
type SummaryReporter interface {
	GenerateDailySummary() services.DailySummary
}

// SummarySender delivers the summary to the admin channel.
type SummarySender interface {
	SendDailySummary(ctx context.Context, summary services.DailySummary) error
}

// SummaryScheduler emails the daily login summary at a fixed local hour.
// Days with no login activity at all are skipped.
type SummaryScheduler struct {
	reports SummaryReporter
	sender  SummarySender
	logger  *slog.Logger
	hour    int // hour of day (0-23) to send at
	now     func() time.Time
	stopCh  chan struct{}
}

// NewSummaryScheduler creates a new summary scheduler
func NewSummaryScheduler(
	reports SummaryReporter,
	sender SummarySender,
	logger *slog.Logger,
	hour int,
) *SummaryScheduler {
	return &SummaryScheduler{
		reports: reports,
		sender:  sender,
		logger:  logger,
		hour:    hour,
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}
}

// Start waits until the next send hour, then fires every 24 hours.
func (sm *SummaryScheduler) Start(ctx context.Context) {
	delay := sm.untilNextRun()
	sm.logger.Info("daily summary scheduled",
		slog.Int("hour", sm.hour),
		slog.String("first_run_in", delay.String()))

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-sm.stopCh:
		sm.logger.Info("summary scheduler stopped")
		return
	case <-ctx.Done():
		sm.logger.Info("summary scheduler context cancelled")
		return
	}

	sm.runSummary(ctx)

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sm.runSummary(ctx)
		case <-sm.stopCh:
			sm.logger.Info("summary scheduler stopped")
			return
		case <-ctx.Done():
			sm.logger.Info("summary scheduler context cancelled")
			return
		}
	}
}

// untilNextRun computes the delay to the next occurrence of the send hour.
func (sm *SummaryScheduler) untilNextRun() time.Duration {
	now := sm.now()
	next := time.Date(now.Year(), now.Month(), now.Day(), sm.hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.Add(24 * time.Hour)
	}
	return next.Sub(now)
}

// runSummary generates and sends the summary, skipping empty days.
func (sm *SummaryScheduler) runSummary(ctx context.Context) {
	summary := sm.reports.GenerateDailySummary()

	// Only successful or blocked-as-suspicious activity warrants the email.
	// A day of nothing but bad credentials stays in the attempt feed.
	if summary.TotalLogins == 0 && summary.SuspiciousLogins == 0 {
		sm.logger.Info("no login activity in the last 24 hours, skipping daily summary")
		return
	}

	sendCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := sm.sender.SendDailySummary(sendCtx, summary); err != nil {
		sm.logger.Error("failed to send daily summary", slog.Any("error", err))
		return
	}

	sm.logger.Info("daily summary sent",
		slog.Int("total_logins", summary.TotalLogins),
		slog.Int("suspicious_logins", summary.SuspiciousLogins))
}

// Stop signals the scheduler to stop
func (sm *SummaryScheduler) Stop() {
	close(sm.stopCh)
}
