package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/sentinelauth/sentinel/internal/models"
)

// SuspiciousLoginAlert carries the details of a blocked login for the admin
// notification.
type SuspiciousLoginAlert struct {
	Username         string
	Timestamp        time.Time
	Reason           string
	IPAddress        string
	CurrentLocation  models.GeoPoint
	PreviousLocation *models.Session // most recent prior session, if any
}

// ActiveLocation is one live location cluster in a multi-location alert.
type ActiveLocation struct {
	Latitude  float64
	Longitude float64
	Timestamp time.Time
}

// MultiLocationAlert reports an account that is simultaneously active from
// two or more distinct locations. It can fire even when the triggering
// login itself was judged plausible.
type MultiLocationAlert struct {
	Username           string
	ActiveSessionCount int
	LocationCount      int
	Locations          []ActiveLocation
}

// NotificationService is the outbound alerting boundary. Delivery is
// fire-and-forget: a failure is logged by the caller and never changes a
// login decision that has already been made.
type NotificationService interface {
	NotifySuspiciousLogin(ctx context.Context, alert SuspiciousLoginAlert) error
	NotifyMultipleActiveLocations(ctx context.Context, alert MultiLocationAlert) error
	SendDailySummary(ctx context.Context, summary DailySummary) error
	VerifyConfiguration(ctx context.Context) error
}

// AWSSESNotificationService sends admin alerts using AWS SES
type AWSSESNotificationService struct {
	sesClient   *ses.Client
	fromAddress string
	adminEmails []string
	logger      *slog.Logger
}

// NewAWSSESNotificationService creates a new AWS SES notification service
func NewAWSSESNotificationService(region, fromAddress string, adminEmails []string, logger *slog.Logger) (*AWSSESNotificationService, error) {
	cfg, err := config.LoadDefaultConfig(context.Background(), config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &AWSSESNotificationService{
		sesClient:   ses.NewFromConfig(cfg),
		fromAddress: fromAddress,
		adminEmails: adminEmails,
		logger:      logger,
	}, nil
}

// NotifySuspiciousLogin alerts admins about a blocked login attempt
func (s *AWSSESNotificationService) NotifySuspiciousLogin(ctx context.Context, alert SuspiciousLoginAlert) error {
	subject := fmt.Sprintf("Suspicious login blocked for %s", alert.Username)

	previousHTML := "<p>No previous session on record.</p>"
	previousText := "No previous session on record."
	if prev := alert.PreviousLocation; prev != nil {
		previousHTML = fmt.Sprintf(
			`<p><strong>Previous location:</strong> <a href="%s">%.6f, %.6f</a> at %s</p>`,
			mapsLink(prev.Location), prev.Location.Latitude, prev.Location.Longitude,
			prev.Timestamp.Format(time.RFC1123))
		previousText = fmt.Sprintf("Previous location: %.6f, %.6f at %s",
			prev.Location.Latitude, prev.Location.Longitude, prev.Timestamp.Format(time.RFC1123))
	}

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
    <h2>Suspicious Login Blocked</h2>
    <p><strong>User:</strong> %s</p>
    <p><strong>Time:</strong> %s</p>
    <p><strong>Reason:</strong> %s</p>
    <p><strong>IP address:</strong> %s</p>
    <p><strong>Attempted location:</strong> <a href="%s">%.6f, %.6f</a> (accuracy %.0f m)</p>
    %s
    <p style="color: #666; font-size: 12px;">This is an automated security alert.</p>
</body>
</html>
`, alert.Username, alert.Timestamp.Format(time.RFC1123), alert.Reason, alert.IPAddress,
		mapsLink(alert.CurrentLocation), alert.CurrentLocation.Latitude, alert.CurrentLocation.Longitude,
		alert.CurrentLocation.AccuracyMeters, previousHTML)

	textBody := fmt.Sprintf(`Suspicious Login Blocked

User: %s
Time: %s
Reason: %s
IP address: %s
Attempted location: %.6f, %.6f (accuracy %.0f m)
%s

This is an automated security alert.
`, alert.Username, alert.Timestamp.Format(time.RFC1123), alert.Reason, alert.IPAddress,
		alert.CurrentLocation.Latitude, alert.CurrentLocation.Longitude,
		alert.CurrentLocation.AccuracyMeters, previousText)

	return s.send(ctx, subject, htmlBody, textBody)
}

// NotifyMultipleActiveLocations alerts admins that an account is live from
// several distinct locations at once
func (s *AWSSESNotificationService) NotifyMultipleActiveLocations(ctx context.Context, alert MultiLocationAlert) error {
	subject := fmt.Sprintf("Multiple active locations for %s", alert.Username)

	var locationsHTML, locationsText strings.Builder
	for _, loc := range alert.Locations {
		point := models.GeoPoint{Latitude: loc.Latitude, Longitude: loc.Longitude}
		fmt.Fprintf(&locationsHTML, `<li><a href="%s">%.4f, %.4f</a> (login at %s)</li>`,
			mapsLink(point), loc.Latitude, loc.Longitude, loc.Timestamp.Format(time.RFC1123))
		fmt.Fprintf(&locationsText, "  - %.4f, %.4f (login at %s)\n",
			loc.Latitude, loc.Longitude, loc.Timestamp.Format(time.RFC1123))
	}

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
    <h2>Multiple Active Locations</h2>
    <p>User <strong>%s</strong> has %d active sessions across %d distinct locations:</p>
    <ul>%s</ul>
    <p style="color: #666; font-size: 12px;">This is an automated security alert.</p>
</body>
</html>
`, alert.Username, alert.ActiveSessionCount, alert.LocationCount, locationsHTML.String())

	textBody := fmt.Sprintf(`Multiple Active Locations

User %s has %d active sessions across %d distinct locations:
%s
This is an automated security alert.
`, alert.Username, alert.ActiveSessionCount, alert.LocationCount, locationsText.String())

	return s.send(ctx, subject, htmlBody, textBody)
}

// SendDailySummary mails the daily activity report to admins
func (s *AWSSESNotificationService) SendDailySummary(ctx context.Context, summary DailySummary) error {
	subject := fmt.Sprintf("Daily login summary for %s", summary.Date.Format("Jan 2, 2006"))

	var topUsersHTML, topUsersText strings.Builder
	for _, u := range summary.TopSuspiciousUsers {
		fmt.Fprintf(&topUsersHTML, "<li>%s: %d suspicious attempts</li>", u.Username, u.SuspiciousCount)
		fmt.Fprintf(&topUsersText, "  - %s: %d suspicious attempts\n", u.Username, u.SuspiciousCount)
	}
	if len(summary.TopSuspiciousUsers) == 0 {
		topUsersHTML.WriteString("<li>None</li>")
		topUsersText.WriteString("  None\n")
	}

	htmlBody := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
    <h2>Daily Login Summary</h2>
    <p><strong>Successful logins:</strong> %d</p>
    <p><strong>Suspicious (blocked):</strong> %d</p>
    <p><strong>Failed:</strong> %d</p>
    <h3>Top users by suspicious attempts</h3>
    <ul>%s</ul>
</body>
</html>
`, summary.TotalLogins, summary.SuspiciousLogins, summary.FailedLogins, topUsersHTML.String())

	textBody := fmt.Sprintf(`Daily Login Summary

Successful logins: %d
Suspicious (blocked): %d
Failed: %d

Top users by suspicious attempts:
%s`, summary.TotalLogins, summary.SuspiciousLogins, summary.FailedLogins, topUsersText.String())

	return s.send(ctx, subject, htmlBody, textBody)
}

// VerifyConfiguration checks that SES is reachable with the current
// credentials
func (s *AWSSESNotificationService) VerifyConfiguration(ctx context.Context) error {
	if s.fromAddress == "" {
		return fmt.Errorf("no from address configured")
	}
	if len(s.adminEmails) == 0 {
		return fmt.Errorf("no admin emails configured")
	}

	if _, err := s.sesClient.GetSendQuota(ctx, &ses.GetSendQuotaInput{}); err != nil {
		return fmt.Errorf("SES not reachable: %w", err)
	}
	return nil
}

func (s *AWSSESNotificationService) send(ctx context.Context, subject, htmlBody, textBody string) error {
	input := &ses.SendEmailInput{
		Source: aws.String(s.fromAddress),
		Destination: &types.Destination{
			ToAddresses: s.adminEmails,
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String(subject),
			},
			Body: &types.Body{
				Html: &types.Content{
					Data: aws.String(htmlBody),
				},
				Text: &types.Content{
					Data: aws.String(textBody),
				},
			},
		},
	}

	result, err := s.sesClient.SendEmail(ctx, input)
	if err != nil {
		s.logger.Error("failed to send notification via SES",
			slog.String("subject", subject),
			slog.Any("error", err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info("notification email sent",
		slog.String("subject", subject),
		slog.String("message_id", *result.MessageId))

	return nil
}

func mapsLink(p models.GeoPoint) string {
	return fmt.Sprintf("https://www.google.com/maps?q=%f,%f", p.Latitude, p.Longitude)
}

// LogNotificationService is used when email is not configured: alerts are
// written to the log and otherwise dropped.
type LogNotificationService struct {
	logger *slog.Logger
}

// NewLogNotificationService creates a log-only notification service
func NewLogNotificationService(logger *slog.Logger) *LogNotificationService {
	return &LogNotificationService{logger: logger}
}

func (s *LogNotificationService) NotifySuspiciousLogin(_ context.Context, alert SuspiciousLoginAlert) error {
	s.logger.Warn("suspicious login (email notifications disabled)",
		slog.String("username", alert.Username),
		slog.String("reason", alert.Reason),
		slog.String("ip_address", alert.IPAddress))
	return nil
}

func (s *LogNotificationService) NotifyMultipleActiveLocations(_ context.Context, alert MultiLocationAlert) error {
	s.logger.Warn("multiple active locations (email notifications disabled)",
		slog.String("username", alert.Username),
		slog.Int("location_count", alert.LocationCount))
	return nil
}

func (s *LogNotificationService) SendDailySummary(_ context.Context, summary DailySummary) error {
	s.logger.Info("daily summary (email notifications disabled)",
		slog.Int("total_logins", summary.TotalLogins),
		slog.Int("suspicious_logins", summary.SuspiciousLogins),
		slog.Int("failed_logins", summary.FailedLogins))
	return nil
}

func (s *LogNotificationService) VerifyConfiguration(_ context.Context) error {
	return fmt.Errorf("email notifications are not configured")
}
