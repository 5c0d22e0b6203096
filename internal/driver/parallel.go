package driver

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// forEach runs fn for every file on at most jobs goroutines (GOMAXPROCS when
// jobs <= 0). fn writes only to its own index, so results need no lock.
// Only cancellation stops the run early.
func forEach(ctx context.Context, files []string, jobs int, fn func(ctx context.Context, i int, path string)) error {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(files))))

	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			fn(gctx, i, path)
			return nil
		})
	}
	return g.Wait()
}
