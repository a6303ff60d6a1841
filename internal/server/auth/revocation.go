package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationList is a denylist of revoked token correlation ids, backed by
// a shared Redis instance. An entry at key "jti:sub" means every token of
// that issuance event is revoked. Entries carry a TTL equal to the
// remaining lifetime of the refresh token being revoked, so the store
// cleans itself up exactly when the tokens become unverifiable anyway.
//
// No other component writes into this key namespace. The client is
// injected by the caller and safe for concurrent use.
type RevocationList struct {
	client *redis.Client
}

// NewRevocationList wraps an already-connected Redis client.
func NewRevocationList(client *redis.Client) *RevocationList {
	return &RevocationList{client: client}
}

func revocationKey(jti, sub string) string {
	return jti + ":" + sub
}

// IsRevoked reports whether the issuance identified by jti:sub has been
// revoked. Redis gives read-after-write consistency for a single key, so a
// logout is visible to the very next check.
func (l *RevocationList) IsRevoked(ctx context.Context, jti, sub string) (bool, error) {
	err := l.client.Get(ctx, revocationKey(jti, sub)).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("revocation store: %w", err)
	}
	return true, nil
}

// Revoke denylists the issuance identified by jti:sub for ttl. The stored
// value is the revocation time in unix seconds; only key presence matters.
// A non-positive ttl means the tokens are already past expiry and there is
// nothing left to revoke, so the call is a no-op.
func (l *RevocationList) Revoke(ctx context.Context, jti, sub string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := l.client.Set(ctx, revocationKey(jti, sub), time.Now().Unix(), ttl).Err(); err != nil {
		return fmt.Errorf("revocation store: %w", err)
	}
	return nil
}
