package dl

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Worker counts observed to keep the upstream happy: 4 for artwork
// units, 8 for the lighter avatar fan-out.
const (
	ArtworkWorkers = 4
	AvatarWorkers  = 8
)

// Pool runs download units over a fixed number of workers. Units run
// concurrently with no ordering between them; each unit is fully
// sequential inside run. One pool instance is shared by all jobs rather
// than constructed ad hoc per call site.
type Pool struct {
	workers int
}

func NewPool(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{workers: workers}
}

// Run dispatches every unit to run and blocks until all have finished.
// A failed unit is logged and counted, not fatal: the job continues and
// the unit is retried naturally on the next invocation because no
// completion marker was written. Returns the number of failed units.
func (p *Pool) Run(ctx context.Context, units []Unit, run func(ctx context.Context, u Unit) error) int {
	if len(units) == 0 {
		return 0
	}

	queue := make(chan Unit)
	var wg sync.WaitGroup
	var failed atomic.Int64

	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for unit := range queue {
				if err := run(ctx, unit); err != nil {
					slog.Error("Download unit failed", "artwork", unit.ArtworkID, "error", err)
					failed.Add(1)
				}
			}
		}()
	}

feed:
	for _, unit := range units {
		select {
		case queue <- unit:
		case <-ctx.Done():
			break feed
		}
	}
	close(queue)
	wg.Wait()

	return int(failed.Load())
}
