package session

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

// Store is the registry of live session identifiers, an opaque key-value
// store keyed by SID.  A nil Redis client is tolerated: the store then
// reports every session as live and registration/revocation become no-ops,
// degrading to signature-only cookie validation.
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewStore(rdb *redis.Client, ttl time.Duration) *Store {
	if rdb == nil {
		log.Printf("session store: no redis client, server-side revocation disabled")
	}
	return &Store{rdb: rdb, ttl: ttl}
}

// Register marks a session identifier as live for the configured TTL.
func (s *Store) Register(ctx context.Context, sid string, userID uint64) error {
	if s.rdb == nil {
		return nil
	}
	return s.rdb.Set(ctx, keyPrefix+sid, userID, s.ttl).Err()
}

// Alive reports whether a session identifier is still registered.  Lookup
// errors count as alive so a Redis hiccup does not log everyone out; the
// cookie signature has already been verified at this point.
func (s *Store) Alive(ctx context.Context, sid string) bool {
	if s.rdb == nil {
		return true
	}
	n, err := s.rdb.Exists(ctx, keyPrefix+sid).Result()
	if err != nil {
		log.Printf("session store: exists check failed: %v", err)
		return true
	}
	return n > 0
}

// Destroy removes a session identifier.  Destroying an unknown or already
// destroyed session is not an error.
func (s *Store) Destroy(ctx context.Context, sid string) error {
	if s.rdb == nil {
		return nil
	}
	return s.rdb.Del(ctx, keyPrefix+sid).Err()
}
