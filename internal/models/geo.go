package models

import "time"

// GeoPoint is a coordinate fix as reported by the client.
// AccuracyMeters is the radius of the measurement error circle; 0 means
// the fix is treated as exact.
type GeoPoint struct {
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	AccuracyMeters float64 `json:"accuracy"`
}

// Valid reports whether the point is within WGS84 coordinate ranges with a
// non-negative accuracy. Out-of-range points are rejected before any
// plausibility evaluation runs.
func (p GeoPoint) Valid() bool {
	return p.Latitude >= -90 && p.Latitude <= 90 &&
		p.Longitude >= -180 && p.Longitude <= 180 &&
		p.AccuracyMeters >= 0
}

// LoginSample is the location+timing signal attached to a single login.
// Immutable once recorded.
type LoginSample struct {
	Location  GeoPoint
	Timestamp time.Time
	IPAddress string
}

// Session is a successful, non-suspicious login. Sessions are owned by the
// per-user session ledger and are never mutated; they leave the ledger only
// through retention trimming.
type Session struct {
	ID        string
	Location  GeoPoint
	Timestamp time.Time
	IPAddress string
}

// Sample returns the session's login sample for pairwise evaluation against
// an incoming candidate.
func (s Session) Sample() LoginSample {
	return LoginSample{Location: s.Location, Timestamp: s.Timestamp, IPAddress: s.IPAddress}
}

// ActiveAt reports whether the session counts as active at the given time,
// i.e. it started less than window ago. Activity is derived, never stored.
func (s Session) ActiveAt(now time.Time, window time.Duration) bool {
	return now.Sub(s.Timestamp) < window
}
