package auth

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist is the revocation set consulted on every protected
// request.  Entries are keyed by the token's jti and expire together with
// the token itself, so the set stays small.  Behind an interface so a
// shared cache swap is an implementation change, not a redesign.
type TokenBlacklist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) bool
}

// NewBlacklist picks the Redis-backed set when a client is available and
// falls back to the in-process map otherwise.
func NewBlacklist(rdb *redis.Client) TokenBlacklist {
	if rdb != nil {
		return &RedisBlacklist{rdb: rdb}
	}
	return NewMemoryBlacklist()
}

// RedisBlacklist stores revoked jtis as keys with a TTL matching the
// token's remaining lifetime.
type RedisBlacklist struct{ rdb *redis.Client }

func (b *RedisBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = time.Minute // already expired token; keep a short tombstone anyway
	}
	return b.rdb.Set(ctx, "revoked:"+jti, 1, ttl).Err()
}

func (b *RedisBlacklist) IsRevoked(ctx context.Context, jti string) bool {
	n, err := b.rdb.Exists(ctx, "revoked:"+jti).Result()
	// Redis errors fail open here: tokens are short-lived and the
	// alternative is rejecting every request while Redis is down.
	return err == nil && n > 0
}

// MemoryBlacklist is the in-process fallback.  Lost on restart, which is
// acceptable because tokens are also time-bounded.
type MemoryBlacklist struct {
	mu      sync.Mutex
	entries map[string]time.Time // jti -> expiry of the tombstone
}

func NewMemoryBlacklist() *MemoryBlacklist {
	return &MemoryBlacklist{entries: make(map[string]time.Time)}
}

func (b *MemoryBlacklist) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = time.Minute
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[jti] = time.Now().Add(ttl)
	return nil
}

func (b *MemoryBlacklist) IsRevoked(_ context.Context, jti string) bool {
	now := time.Now()
	b.mu.Lock()
	defer b.mu.Unlock()
	// Opportunistic sweep of expired tombstones.
	for k, exp := range b.entries {
		if now.After(exp) {
			delete(b.entries, k)
		}
	}
	_, ok := b.entries[jti]
	return ok
}
