// Package rediscache caches each user's bookmark listing in Redis.
//
// The cache is an accelerator, never an authority: every entry carries a
// TTL as a backstop, but correctness relies on the service layer calling
// Invalidate synchronously after each write to the store. Flushing the
// whole cache at any time only costs extra store reads.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/marks/internal/domain"
)

// DefaultListingTTL is used when no TTL is configured.
const DefaultListingTTL = 10 * time.Minute

// ListingCache stores serialized bookmark listings keyed by owner.
type ListingCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a listing cache with the given entry TTL.
func New(client *redis.Client, ttl time.Duration) *ListingCache {
	if ttl <= 0 {
		ttl = DefaultListingTTL
	}
	return &ListingCache{client: client, ttl: ttl}
}

// Get returns the cached listing for a user. ok is false on a miss.
func (c *ListingCache) Get(ctx context.Context, ownerID uint) ([]domain.Bookmark, bool, error) {
	data, err := c.client.Get(ctx, ListingKey(ownerID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil // cache miss
		}
		return nil, false, fmt.Errorf("failed to get cached listing: %w", err)
	}

	var listing []domain.Bookmark
	if err := json.Unmarshal(data, &listing); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached listing: %w", err)
	}
	return listing, true, nil
}

// Set stores a user's listing with the configured TTL.
func (c *ListingCache) Set(ctx context.Context, ownerID uint, listing []domain.Bookmark) error {
	data, err := json.Marshal(listing)
	if err != nil {
		return fmt.Errorf("failed to marshal listing: %w", err)
	}
	if err := c.client.Set(ctx, ListingKey(ownerID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache listing: %w", err)
	}
	return nil
}

// Invalidate drops the cached listing for a user. Must be called after
// every create, update or delete touching one of the user's bookmarks.
func (c *ListingCache) Invalidate(ctx context.Context, ownerID uint) error {
	if err := c.client.Del(ctx, ListingKey(ownerID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate listing: %w", err)
	}
	return nil
}
