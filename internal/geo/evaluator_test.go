package geo_test

import (
	"math"
	"testing"
	"time"

	"github.com/sentinelauth/sentinel/internal/geo"
	"github.com/sentinelauth/sentinel/internal/models"
	"github.com/stretchr/testify/assert"
)

func sample(lat, lon, accuracyMeters float64, ts time.Time) models.LoginSample {
	return models.LoginSample{
		Location:  models.GeoPoint{Latitude: lat, Longitude: lon, AccuracyMeters: accuracyMeters},
		Timestamp: ts,
	}
}

func TestEvaluate_AccuracyRadiusNeverSuspicious(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	// Two fixes ~0.5 km apart with accuracies summing to 500m must never be
	// flagged, even at zero elapsed time.
	a := sample(0, 0, 250, base)
	b := sample(0, 0.004, 250, base)

	eval := geo.Evaluate(a, b, 900)

	assert.False(t, eval.Suspicious)
	assert.Equal(t, "within accuracy radius", eval.Reason)

	// Same pair with a large elapsed time stays clean
	eval = geo.Evaluate(a, sample(0, 0.004, 250, base.Add(48*time.Hour)), 900)
	assert.False(t, eval.Suspicious)
	assert.Equal(t, "within accuracy radius", eval.Reason)
}

func TestEvaluate_SpeedThreshold(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name           string
		elapsed        time.Duration
		wantSuspicious bool
		wantReason     string
	}{
		// ~1000 km in 1 hour requires ~1000 km/h, above the 900 ceiling
		{"one hour is implausible", time.Hour, true, ""},
		// Same distance over 2 hours is ~500 km/h, well under the ceiling
		{"two hours is plausible", 2 * time.Hour, false, "travel plausible"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := sample(0, 0, 0, base)
			b := sample(0, 8.99, 0, base.Add(tt.elapsed))

			eval := geo.Evaluate(a, b, 900)

			assert.Equal(t, tt.wantSuspicious, eval.Suspicious)
			if tt.wantReason != "" {
				assert.Equal(t, tt.wantReason, eval.Reason)
			} else {
				assert.Contains(t, eval.Reason, "exceeds max allowed")
			}
			assert.InDelta(t, 1000, eval.DistanceKm, 5)
		})
	}
}

func TestEvaluate_ZeroElapsedTimeIsInfiniteSpeed(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	a := sample(40.7128, -74.0060, 10, base)
	b := sample(34.0522, -118.2437, 10, base)

	eval := geo.Evaluate(a, b, 900)

	assert.True(t, eval.Suspicious)
	assert.True(t, math.IsInf(eval.RequiredSpeedKmh, 1))
}

func TestEvaluate_ConfigurableCeiling(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	a := sample(0, 0, 0, base)
	b := sample(0, 8.99, 0, base.Add(time.Hour))

	// The same pair flips verdict with a higher ceiling
	assert.True(t, geo.Evaluate(a, b, 900).Suspicious)
	assert.False(t, geo.Evaluate(a, b, 1100).Suspicious)
}

func TestEvaluate_ReasonIncludesSpeedAndThreshold(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	a := sample(0, 0, 0, base)
	b := sample(0, 8.99, 0, base.Add(time.Hour))

	eval := geo.Evaluate(a, b, 900)

	assert.Contains(t, eval.Reason, "1000")
	assert.Contains(t, eval.Reason, "900")
}
