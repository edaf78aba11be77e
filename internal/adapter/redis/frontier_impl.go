package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/user/webcrawler/internal/entity"
	"github.com/user/webcrawler/internal/repository"
)

const frontierKey = "crawler:frontier"

// FrontierRepoImpl stores the frontier in a Redis list. Entries are JSON
// encoded so depth travels with the URL.
type FrontierRepoImpl struct {
	client *redis.Client
}

// NewFrontierRepo creates a Redis-backed frontier.
func NewFrontierRepo(client *redis.Client) *FrontierRepoImpl {
	return &FrontierRepoImpl{client: client}
}

// Push adds an entry to the left side of the list; Pop takes from the
// right, so the list acts as a FIFO queue.
func (r *FrontierRepoImpl) Push(ctx context.Context, entry entity.FrontierEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal frontier entry: %w", err)
	}
	return r.client.LPush(ctx, frontierKey, payload).Err()
}

// Pop removes and returns the entry at the front of the queue.
func (r *FrontierRepoImpl) Pop(ctx context.Context) (entity.FrontierEntry, error) {
	raw, err := r.client.RPop(ctx, frontierKey).Bytes()
	if err == redis.Nil {
		return entity.FrontierEntry{}, repository.ErrFrontierEmpty
	}
	if err != nil {
		return entity.FrontierEntry{}, fmt.Errorf("rpop frontier: %w", err)
	}
	var entry entity.FrontierEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return entity.FrontierEntry{}, fmt.Errorf("unmarshal frontier entry: %w", err)
	}
	return entry, nil
}

// Size returns the current number of queued entries.
func (r *FrontierRepoImpl) Size(ctx context.Context) (int64, error) {
	return r.client.LLen(ctx, frontierKey).Result()
}
