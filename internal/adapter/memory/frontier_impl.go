package memory

import (
	"context"
	"sync"

	"github.com/user/webcrawler/internal/entity"
	"github.com/user/webcrawler/internal/repository"
)

// FrontierRepoImpl is an in-process FIFO frontier safe for concurrent
// producers and consumers. It is the default backend for a single run.
type FrontierRepoImpl struct {
	mu      sync.Mutex
	entries []entity.FrontierEntry
}

// NewFrontierRepo creates an empty in-memory frontier.
func NewFrontierRepo() *FrontierRepoImpl {
	return &FrontierRepoImpl{}
}

// Push appends an entry to the end of the queue.
func (r *FrontierRepoImpl) Push(ctx context.Context, entry entity.FrontierEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

// Pop removes and returns the entry at the front of the queue.
func (r *FrontierRepoImpl) Pop(ctx context.Context) (entity.FrontierEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.entries) == 0 {
		return entity.FrontierEntry{}, repository.ErrFrontierEmpty
	}
	entry := r.entries[0]
	r.entries = r.entries[1:]
	return entry, nil
}

// Size returns the current number of queued entries.
func (r *FrontierRepoImpl) Size(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.entries)), nil
}
