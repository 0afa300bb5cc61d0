package alignment

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
)

// parallelFor runs fn(i) over i in [0, n) using up to workers goroutines
// (GOMAXPROCS when workers <= 0). It stops early and returns ctx.Err() once ctx is done.
func parallelFor(ctx context.Context, n, workers int, fn func(i int)) error {
	stopped := parallelForStop(n, workers, func(i int) bool {
		if ctx.Err() != nil {
			return true
		}
		fn(i)
		return false
	})
	if stopped {
		return ctx.Err()
	}
	return nil
}

// parallelForStop runs fn(i) over i in [0, n) with striding workers.
// If any fn invocation returns true, all workers stop early and the function returns true.
func parallelForStop(n, workers int, fn func(i int) bool) bool {
	if n <= 0 {
		return false
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > n {
		workers = n
	}

	var stop atomic.Bool
	var wg sync.WaitGroup
	wg.Add(workers)

	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := w; i < n && !stop.Load(); i += workers {
				if fn(i) {
					stop.Store(true)
					return
				}
			}
		}()
	}

	wg.Wait()
	return stop.Load()
}
