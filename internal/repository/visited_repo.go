package repository

import "context"

// VisitedRepository defines the interface for enqueue-time deduplication of
// discovered URLs. The set grows monotonically for the lifetime of a run.
type VisitedRepository interface {
	// MarkIfNew atomically records the normalized URL and reports whether it
	// was unseen. A URL enters the frontier at most once per run, so callers
	// enqueue only when MarkIfNew returns true.
	MarkIfNew(ctx context.Context, url string) (bool, error)
	// Size returns the number of distinct URLs recorded so far.
	Size(ctx context.Context) (int64, error)
}
