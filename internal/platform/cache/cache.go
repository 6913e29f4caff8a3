// Package cache provides a thin Redis-backed TTL guard used to stop an
// enricher from being re-invoked for the same (candidate, source) pair
// multiple times within a short window across concurrent matching runs.
// It is purely an anti-thundering-herd measure; staleness itself remains
// tracked in Postgres on the profile row.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/andreypavlenko/talentpipe/internal/platform/redis"
)

type RecentCallGuard struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRecentCallGuard(client *redis.Client, ttl time.Duration) *RecentCallGuard {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &RecentCallGuard{client: client, ttl: ttl}
}

// MarkIfAbsent returns true if (candidateID, source) was NOT recently
// marked, and atomically marks it for the guard's TTL. A false return
// means a caller already enriched this pair within the window and the
// caller should skip invoking the enricher again.
func (g *RecentCallGuard) MarkIfAbsent(ctx context.Context, candidateID, source string) (bool, error) {
	if g.client == nil {
		return true, nil
	}
	key := recentCallKey(candidateID, source)
	ok, err := g.client.SetNX(ctx, key, "1", g.ttl).Result()
	if err != nil {
		return true, fmt.Errorf("recent call guard: %w", err)
	}
	return ok, nil
}

func recentCallKey(candidateID, source string) string {
	return fmt.Sprintf("enrichment:recent:%s:%s", candidateID, source)
}
