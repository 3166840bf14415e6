package revocation

import (
	"context"
	"sync"
	"time"
)

// MemoryDenylist is an in-process Denylist for tests and single-node
// deployments without redis.
type MemoryDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Time // subject -> revoked-until
}

func NewMemoryDenylist() *MemoryDenylist {
	return &MemoryDenylist{revoked: make(map[string]time.Time)}
}

func (d *MemoryDenylist) Revoke(_ context.Context, subject string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.revoked[subject] = time.Now().Add(ttl)
	return nil
}

func (d *MemoryDenylist) IsRevoked(_ context.Context, subject string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	until, ok := d.revoked[subject]
	if !ok {
		return false, nil
	}
	if time.Now().After(until) {
		delete(d.revoked, subject)
		return false, nil
	}
	return true, nil
}
