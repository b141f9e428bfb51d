package redis

// Package redis provides Redis-based adapters for the uthbus edge service.

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	domainauth "github.com/sankulkush/UTHBUS-sub001/internal/domain/auth"
	"github.com/sankulkush/UTHBUS-sub001/internal/ports"
)

// TokenCache caches verified principals keyed by session token so repeated
// relay verifications avoid round-trips to the identity platform. Keys are
// token digests; raw tokens never reach Redis.
type TokenCache struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// NewTokenCache creates a Redis-based verified-token cache. Entries live for
// ttl, or until the underlying token expires, whichever comes first.
func NewTokenCache(client redis.UniversalClient, ttl time.Duration) *TokenCache {
	return &TokenCache{
		client: client,
		prefix: "verified:",
		ttl:    ttl,
	}
}

func (c *TokenCache) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return c.prefix + hex.EncodeToString(sum[:])
}

// Get returns the cached principal for token, reporting a miss without error.
func (c *TokenCache) Get(ctx context.Context, token string) (domainauth.Principal, bool, error) {
	if token == "" {
		return domainauth.Principal{}, false, nil
	}

	data, err := c.client.Get(ctx, c.key(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domainauth.Principal{}, false, nil
		}
		return domainauth.Principal{}, false, fmt.Errorf("redis get: %w", err)
	}

	var principal domainauth.Principal
	if unmarshalErr := json.Unmarshal([]byte(data), &principal); unmarshalErr != nil {
		return domainauth.Principal{}, false, fmt.Errorf("unmarshal principal: %w", unmarshalErr)
	}

	return principal, true, nil
}

// Save stores the principal under the token digest. Entries whose token is
// already expired are not saved.
func (c *TokenCache) Save(ctx context.Context, entry ports.CacheEntry) error {
	if entry.Token == "" {
		return errors.New("token cannot be empty")
	}

	ttl := c.ttl
	if !entry.ExpiresAt.IsZero() {
		if remaining := time.Until(entry.ExpiresAt); remaining < ttl {
			ttl = remaining
		}
	}
	if ttl <= 0 {
		return nil
	}

	data, err := json.Marshal(entry.Principal)
	if err != nil {
		return fmt.Errorf("marshal principal: %w", err)
	}

	return c.client.Set(ctx, c.key(entry.Token), data, ttl).Err()
}

// Delete drops the cached entry for token. Deleting a missing entry is a no-op.
func (c *TokenCache) Delete(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return c.client.Del(ctx, c.key(token)).Err()
}
