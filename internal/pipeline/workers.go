package pipeline

import (
	"context"
	"sync"
)

// pool is a small semaphore-based worker pool bounding concurrency for
// the per-material extraction phase (C6-C8 run per material); the other
// phases and the C2 encode run sequentially. No external queue library exists in
// the pack for this, so it is a direct sync.WaitGroup + buffered-channel
// semaphore, the idiom used throughout gogpu-gg's concurrent caches.
type pool struct {
	sem chan struct{}
}

func newPool(workers int) *pool {
	if workers < 1 {
		workers = 1
	}
	return &pool{sem: make(chan struct{}, workers)}
}

// runIndexed runs fn(i) for i in [0,n) across the pool, stopping early
// (without starting new work) if ctx is cancelled. Returns the first
// error encountered, if any; all started goroutines still run to
// completion before returning, per the "no suspension points" contract.
func (p *pool) runIndexed(ctx context.Context, n int, fn func(i int) error) error {
	var wg sync.WaitGroup
	errs := make([]error, n)

	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			errs[i] = ctx.Err()
			continue
		default:
		}

		p.sem <- struct{}{}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-p.sem }()
			errs[i] = fn(i)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
