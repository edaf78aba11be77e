package repository

import (
	"context"
	"errors"

	"github.com/user/webcrawler/internal/entity"
)

// ErrFrontierEmpty is returned by Pop when no entry is queued.
var ErrFrontierEmpty = errors.New("frontier is empty")

// FrontierRepository defines the contract for the FIFO queue of pending
// crawl work, traversed breadth-first.
type FrontierRepository interface {
	// Push appends an entry to the end of the queue.
	Push(ctx context.Context, entry entity.FrontierEntry) error
	// Pop removes and returns the entry at the front of the queue.
	// It returns ErrFrontierEmpty when the queue holds no entries.
	Pop(ctx context.Context) (entity.FrontierEntry, error)
	// Size returns the current number of queued entries.
	Size(ctx context.Context) (int64, error)
}
