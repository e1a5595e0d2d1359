package geo

import (
	"fmt"
	"math"

	"github.com/sentinelauth/sentinel/internal/models"
)

// Evaluation is the outcome of a travel-plausibility check between two
// login samples.
type Evaluation struct {
	DistanceKm       float64
	ElapsedHours     float64
	RequiredSpeedKmh float64
	Suspicious       bool
	Reason           string
}

// Evaluate decides whether the travel implied by two login samples is
// physically plausible at maxSpeedKmh.
//
// Two noisy fixes of the same true location must never be flagged: when the
// distance is within the combined accuracy radii the result is not
// suspicious regardless of elapsed time. Zero elapsed time with a distance
// beyond the accuracy radii implies infinite speed and is always suspicious.
//
// Pure function; maxSpeedKmh is a configuration input, not a constant.
func Evaluate(a, b models.LoginSample, maxSpeedKmh float64) Evaluation {
	distanceKm := DistanceKm(a.Location, b.Location)
	elapsedHours := math.Abs(b.Timestamp.Sub(a.Timestamp).Hours())

	requiredSpeedKmh := math.Inf(1)
	if elapsedHours != 0 {
		requiredSpeedKmh = distanceKm / elapsedHours
	}

	eval := Evaluation{
		DistanceKm:       distanceKm,
		ElapsedHours:     elapsedHours,
		RequiredSpeedKmh: requiredSpeedKmh,
	}

	accSumKm := (a.Location.AccuracyMeters + b.Location.AccuracyMeters) / 1000
	if distanceKm <= accSumKm {
		eval.Reason = "within accuracy radius"
		return eval
	}

	if requiredSpeedKmh > maxSpeedKmh {
		eval.Suspicious = true
		eval.Reason = fmt.Sprintf("required speed %.0f km/h exceeds max allowed %.0f km/h",
			requiredSpeedKmh, maxSpeedKmh)
		return eval
	}

	eval.Reason = "travel plausible"
	return eval
}
