package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/user/webcrawler/pkg/utils"
)

const (
	visitedURLPrefix = "crawler:visited:"
	visitedCountKey  = "crawler:visited:count"
)

// VisitedRepoImpl backs the visited set with Redis so a long-lived crawler
// daemon keeps deduplication across engine restarts. SETNX makes the
// check-and-insert atomic across processes.
type VisitedRepoImpl struct {
	client *redis.Client
	expiry time.Duration
}

// NewVisitedRepo creates a Redis-backed visited set. A zero expiry keeps
// entries until Redis evicts them.
func NewVisitedRepo(client *redis.Client, expiry time.Duration) *VisitedRepoImpl {
	return &VisitedRepoImpl{client: client, expiry: expiry}
}

// generateKey creates a consistent Redis key for a given URL by hashing it.
func (r *VisitedRepoImpl) generateKey(url string) string {
	return fmt.Sprintf("%s%s", visitedURLPrefix, utils.HashURL(url))
}

// MarkIfNew records the URL and reports whether it was unseen.
func (r *VisitedRepoImpl) MarkIfNew(ctx context.Context, url string) (bool, error) {
	key := r.generateKey(url)
	fresh, err := r.client.SetNX(ctx, key, "1", r.expiry).Result()
	if err != nil {
		return false, fmt.Errorf("setnx visited key: %w", err)
	}
	if fresh {
		if err := r.client.Incr(ctx, visitedCountKey).Err(); err != nil {
			return true, fmt.Errorf("incr visited count: %w", err)
		}
	}
	return fresh, nil
}

// Size returns the number of distinct URLs recorded so far.
func (r *VisitedRepoImpl) Size(ctx context.Context) (int64, error) {
	n, err := r.client.Get(ctx, visitedCountKey).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return n, err
}
