package auth

import (
	"sync"
	"time"
)

// RevocationList is an in-memory set of revoked token IDs. Entries expire
// with their tokens, so the set is pruned lazily on each check.
type RevocationList struct {
	mu      sync.Mutex
	revoked map[string]time.Time // jti -> token expiry
}

// NewRevocationList creates an empty revocation list.
func NewRevocationList() *RevocationList {
	return &RevocationList{revoked: make(map[string]time.Time)}
}

// Revoke marks a token ID as revoked until its natural expiry.
func (rl *RevocationList) Revoke(jti string, expiresAt time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.revoked[jti] = expiresAt
}

// IsRevoked reports whether the token ID has been revoked. Expired entries
// are dropped as a side effect.
func (rl *RevocationList) IsRevoked(jti string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for id, expiry := range rl.revoked {
		if expiry.Before(now) {
			delete(rl.revoked, id)
		}
	}

	_, revoked := rl.revoked[jti]
	return revoked
}
