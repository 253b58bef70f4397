package sim

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// AggregateResult is the outcome of a batch: counts per classification
// and the derived success probability. Counts always sum to Completed;
// Completed equals Requested unless the batch was cancelled.
type AggregateResult struct {
	RunID       string  `json:"run_id"`
	Seed        int64   `json:"seed"`
	Requested   int     `json:"requested"`
	Completed   int     `json:"completed"`
	Success     int     `json:"success"`
	Failure     int     `json:"failure"`
	Abandoned   int     `json:"abandoned"`
	Probability float64 `json:"probability"`
	// Sessions holds every per-session outcome in session order, only
	// in verbose mode. Non-verbose batches stay bounded in memory no
	// matter how many sessions run.
	Sessions []SessionOutcome `json:"sessions,omitempty"`
}

// SessionObserver sees each finished session. Observers run on worker
// goroutines and must be safe for concurrent use.
type SessionObserver interface {
	ObserveSession(index int, out SessionOutcome)
}

// Batch runs many independent sessions of one validated configuration.
type Batch struct {
	runner   *Runner
	seed     int64
	workers  int
	verbose  bool
	observer SessionObserver
}

type BatchOption func(*Batch)

// WithWorkers sets the worker pool size. Defaults to 8.
func WithWorkers(n int) BatchOption {
	return func(b *Batch) {
		if n > 0 {
			b.workers = n
		}
	}
}

// WithVerbose retains every per-session outcome, traces included.
func WithVerbose(v bool) BatchOption {
	return func(b *Batch) { b.verbose = v }
}

// WithObserver installs a per-session observer.
func WithObserver(obs SessionObserver) BatchOption {
	return func(b *Batch) { b.observer = obs }
}

// NewBatch validates the runner up front; an invalid configuration is
// rejected here, before any session runs.
func NewBatch(runner *Runner, seed int64, opts ...BatchOption) (*Batch, error) {
	if runner == nil {
		return nil, fmt.Errorf("sim: runner is required")
	}
	if err := runner.Validate(); err != nil {
		return nil, err
	}
	b := &Batch{runner: runner, seed: seed, workers: 8}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// sessionRNG derives the private random stream for one session from the
// base seed and the session index, so batch results do not depend on
// worker scheduling.
func sessionRNG(seed int64, index int) *rand.Rand {
	return rand.New(rand.NewSource(seed + int64(index)*7919))
}

// Run executes count independent sessions. Cancellation is honored at
// session boundaries only: the returned aggregate covers every session
// completed before ctx fired, alongside the context's error.
func (b *Batch) Run(ctx context.Context, count int) (*AggregateResult, error) {
	if count <= 0 {
		return nil, fmt.Errorf("sim: session count must be positive, got %d", count)
	}

	res := &AggregateResult{
		RunID:     uuid.NewString(),
		Seed:      b.seed,
		Requested: count,
	}

	var (
		mu       sync.Mutex
		sessions []SessionOutcome
		done     []bool
	)
	if b.verbose {
		sessions = make([]SessionOutcome, count)
		done = make([]bool, count)
	}

	jobs := make(chan int)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		for i := 0; i < count; i++ {
			select {
			case jobs <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < b.workers; w++ {
		g.Go(func() error {
			for idx := range jobs {
				out := b.runner.Run(sessionRNG(b.seed, idx), b.verbose)

				mu.Lock()
				res.Completed++
				switch out.Outcome {
				case Success:
					res.Success++
				case Abandoned:
					res.Abandoned++
				default:
					res.Failure++
				}
				if b.verbose {
					sessions[idx] = out
					done[idx] = true
				}
				mu.Unlock()

				if b.observer != nil {
					b.observer.ObserveSession(idx, out)
				}

				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
			}
			return nil
		})
	}

	err := g.Wait()

	if res.Completed > 0 {
		res.Probability = float64(res.Success) / float64(res.Completed)
	}
	if b.verbose {
		res.Sessions = make([]SessionOutcome, 0, res.Completed)
		for i, ok := range done {
			if ok {
				res.Sessions = append(res.Sessions, sessions[i])
			}
		}
	}

	if err != nil {
		return res, fmt.Errorf("batch interrupted after %d of %d sessions: %w", res.Completed, count, err)
	}
	return res, nil
}
