package models

import "time"

// LoginAttempt is one entry in the global append-only attempt ledger.
// Every attempt is recorded exactly once and never re-evaluated.
type LoginAttempt struct {
	Username   string
	Success    bool
	Suspicious bool
	Reason     string
	Location   *GeoPoint
	Timestamp  time.Time
	IPAddress  string
}

// Status collapses the (success, suspicious) pair into the label shown on
// the audit feed.
func (a LoginAttempt) Status() string {
	switch {
	case a.Suspicious:
		return "BLOCKED"
	case a.Success:
		return "SUCCESS"
	default:
		return "FAILED"
	}
}
