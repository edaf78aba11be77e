package memory

import (
	"context"
	"sync"
)

// VisitedRepoImpl is an in-process visited set. The check-and-insert in
// MarkIfNew is atomic so concurrent workers cannot double-enqueue a URL.
type VisitedRepoImpl struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewVisitedRepo creates an empty in-memory visited set.
func NewVisitedRepo() *VisitedRepoImpl {
	return &VisitedRepoImpl{seen: make(map[string]struct{})}
}

// MarkIfNew records the URL and reports whether it was unseen.
func (r *VisitedRepoImpl) MarkIfNew(ctx context.Context, url string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.seen[url]; ok {
		return false, nil
	}
	r.seen[url] = struct{}{}
	return true, nil
}

// Size returns the number of distinct URLs recorded so far.
func (r *VisitedRepoImpl) Size(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.seen)), nil
}
