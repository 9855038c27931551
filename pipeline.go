package heli

// Parallel pipeline X (§4.6): batches input lines and dispatches
// scoring across a worker pool while preserving input order on
// output. No library in the example pack supplies a fitting
// batched-worker-pool abstraction, so this is built directly on
// stdlib sync/context/channels (see DESIGN.md).

import (
	"context"
	"sync"
)

// Job is one line to identify, carrying enough to reconstruct its
// Result at the sink (§4.6 "results carry their original index").
type Job struct {
	Index int
	Text  string
}

// Pipeline runs a batch of Jobs through a pool of Scorers, honoring
// Options and returning results in input order.
type Pipeline struct {
	opts Options
}

// Options configures a Pipeline (§4.6, §6 "--threads", "--batch-size").
type Options struct {
	Threads    int // 0: synchronous; 1: single worker; >1: worker pool
	BatchSize  int // lines per dispatch; <= 0 defaults to 1
	TopK       int
	Thresholds *Thresholds
	Macro      *Macrotable
}

// NewPipeline constructs a Pipeline with opts.
func NewPipeline(opts Options) *Pipeline {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 1
	}
	return &Pipeline{opts: opts}
}

// newScorer lets callers share a single *Model across pipelines; kept
// as a plain field access rather than a method on Model to keep
// pipeline.go independent of how the Model was obtained.
type newScorer = func() *Scorer

// Run identifies every line in lines, in order, using newScorer to
// create one Scorer per worker (§5 "allocated once per worker and
// reused across lines"). It returns one Result per input line, and
// stops early with ctx's error if ctx is canceled.
func (p *Pipeline) Run(ctx context.Context, lines []string, newScorer newScorer) ([]Result, error) {
	results := make([]Result, len(lines))

	if p.opts.Threads <= 0 {
		return p.runSync(ctx, lines, newScorer(), results)
	}
	return p.runPool(ctx, lines, newScorer, results)
}

func (p *Pipeline) runSync(ctx context.Context, lines []string, sc *Scorer, results []Result) ([]Result, error) {
	for i, line := range lines {
		if err := ctx.Err(); err != nil {
			return results[:i], err
		}
		results[i] = sc.Identify(line, p.opts.TopK, p.opts.Thresholds, p.opts.Macro)
	}
	return results, nil
}

// runPool feeds lines in ordered batches to a pool of workers
// (threads == 1 degenerates to a pool of size one: the caller thread
// still only handles I/O/batching, a single worker goroutine scores).
// Each worker owns its own Scorer and writes directly into results'
// preallocated slots, indexed by position, giving ordered output
// without a reorder buffer (§4.6 option (b)).
func (p *Pipeline) runPool(ctx context.Context, lines []string, newScorer newScorer, results []Result) ([]Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type batch struct {
		start int
		lines []string
	}

	// Bounded so the feeder blocks once in-flight work fills the queue
	// (§4.6 "Backpressure: the feeder blocks once the in-flight queue is
	// full").
	batches := make(chan batch, p.opts.Threads)

	var wg sync.WaitGroup
	var errOnce sync.Once
	var firstErr error

	for w := 0; w < p.opts.Threads; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sc := newScorer()
			for b := range batches {
				if err := ctx.Err(); err != nil {
					errOnce.Do(func() { firstErr = err })
					continue
				}
				for i, line := range b.lines {
					results[b.start+i] = sc.Identify(line, p.opts.TopK, p.opts.Thresholds, p.opts.Macro)
				}
			}
		}()
	}

	for start := 0; start < len(lines); start += p.opts.BatchSize {
		end := start + p.opts.BatchSize
		if end > len(lines) {
			end = len(lines)
		}
		select {
		case batches <- batch{start, lines[start:end]}:
		case <-ctx.Done():
			errOnce.Do(func() { firstErr = ctx.Err() })
			close(batches)
			wg.Wait()
			return results[:start], firstErr
		}
	}
	close(batches)
	wg.Wait()

	if firstErr != nil {
		return results, firstErr
	}
	return results, nil
}
