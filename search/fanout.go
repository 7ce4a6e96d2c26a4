package search

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/ontosearch/core"
	"github.com/poiesic/ontosearch/routing"
)

const (
	// DefaultTopK is the per-partition result cap for each search task.
	DefaultTopK = 10

	// DefaultMinSimilarity filters out weak matches before fusion.
	DefaultMinSimilarity = 0.60

	// DefaultTimeout bounds the whole fan-out.
	DefaultTimeout = 2 * time.Second
)

// VectorIndex searches one partition for chunks semantically similar to the
// query text. Implementations own the embedding step so the fan-out stays
// agnostic of the embedding provider.
type VectorIndex interface {
	Search(ctx context.Context, partition core.DocumentType, text string, limit int) ([]core.DocumentHit, error)
}

// FanoutResult carries the raw hits from a fan-out plus enough bookkeeping
// for fusion and for the degraded-results flag on the response.
type FanoutResult struct {
	Hits []core.DocumentHit
	// Weights maps each searched partition to its routing weight.
	Weights map[core.DocumentType]float64
	// Tasks is the number of (variant, partition) searches dispatched.
	Tasks int
	// Failures is the number of tasks that returned an error.
	Failures int
	// Degraded is true when at least one task failed but others produced hits.
	Degraded bool
}

// Fanout dispatches partition searches concurrently over a shared worker pool.
type Fanout struct {
	index         VectorIndex
	pool          *ants.Pool
	topK          int
	minSimilarity float64
	timeout       time.Duration
	logger        *slog.Logger
	metrics       *Metrics
}

// FanoutOption configures a Fanout.
type FanoutOption func(*Fanout) error

// WithPoolSize sets the worker pool size for concurrent partition searches.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) FanoutOption {
	return func(f *Fanout) error {
		if size < 1 {
			size = 1
		}
		if f.pool != nil {
			f.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		f.pool = pool
		return nil
	}
}

// WithTopK sets the per-partition result cap.
func WithTopK(k int) FanoutOption {
	return func(f *Fanout) error {
		if k > 0 {
			f.topK = k
		}
		return nil
	}
}

// WithMinSimilarity sets the similarity floor applied to every hit.
func WithMinSimilarity(min float64) FanoutOption {
	return func(f *Fanout) error {
		f.minSimilarity = min
		return nil
	}
}

// WithTimeout sets the shared deadline for the whole fan-out.
func WithTimeout(d time.Duration) FanoutOption {
	return func(f *Fanout) error {
		if d > 0 {
			f.timeout = d
		}
		return nil
	}
}

// WithFanoutLogger sets a custom logger.
// Default is slog.Default().
func WithFanoutLogger(logger *slog.Logger) FanoutOption {
	return func(f *Fanout) error {
		if logger == nil {
			logger = slog.Default()
		}
		f.logger = logger
		return nil
	}
}

// WithMetrics attaches Prometheus instruments to the fan-out.
func WithMetrics(metrics *Metrics) FanoutOption {
	return func(f *Fanout) error {
		f.metrics = metrics
		return nil
	}
}

// NewFanout creates a fan-out over a vector index.
func NewFanout(index VectorIndex, opts ...FanoutOption) (*Fanout, error) {
	if index == nil {
		return nil, ErrIndexRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	f := &Fanout{
		index:         index,
		pool:          pool,
		topK:          DefaultTopK,
		minSimilarity: DefaultMinSimilarity,
		timeout:       DefaultTimeout,
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(f); err != nil {
			f.Release()
			return nil, err
		}
	}

	return f, nil
}

// Release releases the worker pool. The fan-out must not be used afterwards.
func (f *Fanout) Release() {
	if f.pool != nil {
		f.pool.Release()
	}
}

// Search runs every (variant, partition) pair against the index under one
// shared deadline and returns the merged raw hits.
//
// Partial failures are tolerated: any task that produced hits keeps the
// search alive and marks the result degraded. Only a fully failed fan-out
// returns an error.
func (f *Fanout) Search(ctx context.Context, expanded core.ExpandedQuery, routes []routing.Route, monitor PipelineMonitor) (*FanoutResult, error) {
	if monitor == nil {
		monitor = NoopMonitor()
	}

	started := time.Now()
	if f.metrics != nil {
		f.metrics.SearchesTotal.Inc()
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	weights := make(map[core.DocumentType]float64, len(routes))
	for _, route := range routes {
		weights[route.Partition] = route.Weight
	}

	type task struct {
		variant core.QueryVariant
		route   routing.Route
	}
	tasks := make([]task, 0, len(expanded.Variants)*len(routes))
	for _, variant := range expanded.Variants {
		for _, route := range routes {
			tasks = append(tasks, task{variant: variant, route: route})
		}
	}

	result := &FanoutResult{
		Weights: weights,
		Tasks:   len(tasks),
	}
	if len(tasks) == 0 {
		return result, nil
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		hits     []core.DocumentHit
		failures []error
	)

	for _, tk := range tasks {
		tk := tk
		wg.Add(1)
		run := func() {
			defer wg.Done()

			partitionHits, err := f.index.Search(ctx, tk.route.Partition, tk.variant.Text, f.topK)
			monitor.PartitionSearched(tk.route.Partition, tk.variant.Text, len(partitionHits), err)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				f.logger.Warn("partition search failed",
					"partition", tk.route.Partition, "variant", tk.variant.Text, "err", err)
				failures = append(failures, err)
				if f.metrics != nil {
					f.metrics.PartitionSearches.WithLabelValues(string(tk.route.Partition), "error").Inc()
				}
				return
			}
			if f.metrics != nil {
				f.metrics.PartitionSearches.WithLabelValues(string(tk.route.Partition), "ok").Inc()
			}

			for _, hit := range partitionHits {
				if hit.Similarity < f.minSimilarity {
					continue
				}
				hit.Provenance = tk.variant.Provenance
				hits = append(hits, hit)
			}
		}

		if err := f.pool.Submit(run); err != nil {
			// Pool is released or overloaded; run inline rather than drop the task
			run()
		}
	}

	wg.Wait()

	result.Hits = hits
	result.Failures = len(failures)
	result.Degraded = len(failures) > 0 && len(failures) < len(tasks)

	if f.metrics != nil {
		f.metrics.SearchDuration.Observe(time.Since(started).Seconds())
		f.metrics.HitsReturned.Observe(float64(len(hits)))
		if result.Degraded {
			f.metrics.DegradedTotal.Inc()
		}
	}

	if len(failures) == len(tasks) {
		cause := errors.Join(failures...)
		if ctx.Err() != nil {
			return nil, core.NewDeadlineExceeded(cause)
		}
		return nil, core.NewRetrievalUnavailable(cause)
	}

	sortHits(result.Hits)
	monitor.AfterFanout(result.Hits, result.Failures)

	return result, nil
}

// sortHits orders raw hits deterministically so fusion input does not depend
// on goroutine scheduling.
func sortHits(hits []core.DocumentHit) {
	slices.SortFunc(hits, func(a, b core.DocumentHit) int {
		if c := strings.Compare(string(a.Partition), string(b.Partition)); c != 0 {
			return c
		}
		if c := strings.Compare(a.DocumentID, b.DocumentID); c != 0 {
			return c
		}
		if a.ChunkID != b.ChunkID {
			if a.ChunkID < b.ChunkID {
				return -1
			}
			return 1
		}
		return a.Provenance.Priority() - b.Provenance.Priority()
	})
}
