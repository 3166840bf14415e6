// Package revocation tracks subjects whose access tokens must stop
// authenticating before their natural expiry. Access tokens are not
// individually revocable, so withdrawal would otherwise leave a window
// equal to the access TTL; denylisting the subject for that window closes
// it.
package revocation

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Denylist answers "has this subject been revoked recently?".
type Denylist interface {
	// Revoke blocks the subject for ttl (sized to the access-token TTL).
	Revoke(ctx context.Context, subject string, ttl time.Duration) error
	// IsRevoked reports whether the subject is currently blocked. Errors
	// degrade to "not revoked" at the caller; the list is best-effort.
	IsRevoked(ctx context.Context, subject string) (bool, error)
}

type RedisDenylist struct {
	client *redis.Client
	prefix string
}

func NewRedisDenylist(client *redis.Client) *RedisDenylist {
	return &RedisDenylist{
		client: client,
		prefix: "revoked:",
	}
}

func (d *RedisDenylist) key(subject string) string {
	return d.prefix + subject
}

func (d *RedisDenylist) Revoke(ctx context.Context, subject string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return d.client.Set(ctx, d.key(subject), time.Now().Unix(), ttl).Err()
}

func (d *RedisDenylist) IsRevoked(ctx context.Context, subject string) (bool, error) {
	_, err := d.client.Get(ctx, d.key(subject)).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
