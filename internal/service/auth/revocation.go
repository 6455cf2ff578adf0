package auth

import (
	"context"
	"sync"
	"time"
)

// RevocationList tracks token IDs (jti claims) that have been invalidated
// before their natural expiry, typically by logout. Entries are kept only
// until the token would have expired anyway, so the set stays small.
type RevocationList struct {
	mu      sync.RWMutex
	revoked map[string]time.Time // jti -> token expiry

	timeFunc func() time.Time
}

// NewRevocationList creates an empty revocation list.
func NewRevocationList() *RevocationList {
	return &RevocationList{
		revoked:  make(map[string]time.Time),
		timeFunc: time.Now,
	}
}

// Revoke marks the token ID as invalid until expiresAt. Revoking an already
// revoked ID extends its entry if the new expiry is later.
func (r *RevocationList) Revoke(tokenID string, expiresAt time.Time) {
	if tokenID == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.revoked[tokenID]; !ok || expiresAt.After(current) {
		r.revoked[tokenID] = expiresAt
	}
}

// IsRevoked reports whether the token ID has been revoked and has not yet
// passed its natural expiry.
func (r *RevocationList) IsRevoked(tokenID string) bool {
	r.mu.RLock()
	expiresAt, ok := r.revoked[tokenID]
	r.mu.RUnlock()

	return ok && r.timeFunc().Before(expiresAt)
}

// evictExpired removes entries whose tokens have expired on their own.
func (r *RevocationList) evictExpired() {
	now := r.timeFunc()

	r.mu.Lock()
	defer r.mu.Unlock()
	for id, expiresAt := range r.revoked {
		if !now.Before(expiresAt) {
			delete(r.revoked, id)
		}
	}
}

// Len returns the number of live entries.
func (r *RevocationList) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.revoked)
}

// StartJanitor evicts expired entries every interval until ctx is cancelled.
func (r *RevocationList) StartJanitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.evictExpired()
			}
		}
	}()
}
