package services

import (
	"fmt"

	"github.com/sentinelauth/sentinel/internal/config"
	"github.com/sentinelauth/sentinel/internal/geo"
	"github.com/sentinelauth/sentinel/internal/models"
)

// Verdict is the outcome of the pre-login suspicion check.
type Verdict struct {
	Suspicious bool
	Reason     string
}

// LocationCluster groups active sessions that are within the location
// tolerance of an established representative.
type LocationCluster struct {
	Representative models.GeoPoint
	Sessions       []models.Session
}

// DecisionEngine combines the travel-plausibility evaluator with
// active-location analysis to judge incoming logins. It is a pure decision
// layer: all methods operate on history the caller has already fetched, and
// none of them touch shared state.
type DecisionEngine struct {
	cfg config.SecurityConfig
}

// NewDecisionEngine creates a DecisionEngine with the given thresholds.
func NewDecisionEngine(cfg config.SecurityConfig) *DecisionEngine {
	return &DecisionEngine{cfg: cfg}
}

// Decide evaluates a login candidate against the user's pre-login session
// history. recent is the 24h history window; active is the subset still
// inside the active-session window.
//
// Two independent signals feed the verdict:
//
// Impossible travel: the candidate is evaluated pairwise against every
// recent session. Among the evaluations that flag, the one with the highest
// required speed wins the reason text; the most physically implausible pair
// is the strongest evidence, not the first one encountered.
//
// Concurrent multi-location sessions: active sessions farther than the
// location tolerance from the candidate are counted; two or more mean the
// account is live in multiple places at once. This signal is checked
// unconditionally and its reason takes precedence, since simultaneous
// activity is harder evidence than a single speed estimate.
func (e *DecisionEngine) Decide(candidate models.LoginSample, recent, active []models.Session) Verdict {
	var verdict Verdict

	maxRequiredSpeed := 0.0
	for _, session := range recent {
		eval := geo.Evaluate(session.Sample(), candidate, e.cfg.MaxTravelSpeedKmh)
		if eval.Suspicious && eval.RequiredSpeedKmh > maxRequiredSpeed {
			maxRequiredSpeed = eval.RequiredSpeedKmh
			verdict = Verdict{Suspicious: true, Reason: eval.Reason}
		}
	}

	distant := 0
	for _, session := range active {
		if geo.DistanceKm(session.Location, candidate.Location) > e.cfg.LocationToleranceKm {
			distant++
		}
	}
	if distant >= 2 {
		verdict = Verdict{
			Suspicious: true,
			Reason:     fmt.Sprintf("multiple active sessions detected from %d different locations", distant+1),
		}
	}

	return verdict
}

// ClusterLocations groups sessions into location clusters by a linear scan:
// each session joins the first established cluster whose representative is
// within the tolerance, otherwise it founds a new cluster. First-match-wins
// is a deliberate approximation, not full connected-components clustering;
// the reported cluster count depends on it.
func (e *DecisionEngine) ClusterLocations(sessions []models.Session) []LocationCluster {
	var clusters []LocationCluster

	for _, session := range sessions {
		joined := false
		for i := range clusters {
			if geo.DistanceKm(clusters[i].Representative, session.Location) < e.cfg.LocationToleranceKm {
				clusters[i].Sessions = append(clusters[i].Sessions, session)
				joined = true
				break
			}
		}
		if !joined {
			clusters = append(clusters, LocationCluster{
				Representative: session.Location,
				Sessions:       []models.Session{session},
			})
		}
	}

	return clusters
}
