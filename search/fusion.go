package search

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/poiesic/ontosearch/core"
)

const (
	// DefaultRecencyHorizon is the age at which the recency contribution
	// decays to zero.
	DefaultRecencyHorizon = 2 * 365 * 24 * time.Hour

	// DefaultDiversityCap caps how much of the final list one partition may
	// occupy before backfill.
	DefaultDiversityCap = 0.6
)

// Weights are the composite score coefficients. They must be non-negative
// and sum to 1.
type Weights struct {
	Similarity float64
	Authority  float64
	Recency    float64
	Partition  float64
}

// DefaultWeights returns the standard scoring mix: similarity dominates,
// authority and recency adjust, partition weight nudges.
func DefaultWeights() Weights {
	return Weights{
		Similarity: 0.50,
		Authority:  0.25,
		Recency:    0.15,
		Partition:  0.10,
	}
}

// Validate checks that the weights form a convex combination.
func (w Weights) Validate() error {
	for _, v := range []float64{w.Similarity, w.Authority, w.Recency, w.Partition} {
		if v < 0 {
			return fmt.Errorf("%w: negative coefficient %f", ErrInvalidWeights, v)
		}
	}
	sum := w.Similarity + w.Authority + w.Recency + w.Partition
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("%w: sum is %f", ErrInvalidWeights, sum)
	}
	return nil
}

// AuthorityResolver supplies the authority level for a hit.
type AuthorityResolver interface {
	Resolve(ctx context.Context, hit core.DocumentHit) int
}

// Ranker fuses raw fan-out hits into a single ranked, deduplicated list.
type Ranker struct {
	weights        Weights
	recencyHorizon time.Duration
	diversityCap   float64
	resolver       AuthorityResolver
	logger         *slog.Logger
	now            func() time.Time
}

// RankerOption configures a Ranker.
type RankerOption func(*Ranker) error

// WithWeights overrides the default scoring coefficients.
func WithWeights(w Weights) RankerOption {
	return func(r *Ranker) error {
		if err := w.Validate(); err != nil {
			return err
		}
		r.weights = w
		return nil
	}
}

// WithRecencyHorizon sets the age at which recency decays to zero.
func WithRecencyHorizon(d time.Duration) RankerOption {
	return func(r *Ranker) error {
		if d > 0 {
			r.recencyHorizon = d
		}
		return nil
	}
}

// WithDiversityCap sets the fraction of the final list one partition may
// occupy before backfill. Must be in (0,1].
func WithDiversityCap(f float64) RankerOption {
	return func(r *Ranker) error {
		if f <= 0 || f > 1 {
			return fmt.Errorf("%w: diversity cap %f outside (0,1]", ErrInvalidWeights, f)
		}
		r.diversityCap = f
		return nil
	}
}

// WithRankerLogger sets a custom logger.
// Default is slog.Default().
func WithRankerLogger(logger *slog.Logger) RankerOption {
	return func(r *Ranker) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// withClock fixes the ranker's clock. Test hook.
func withClock(now func() time.Time) RankerOption {
	return func(r *Ranker) error {
		r.now = now
		return nil
	}
}

// NewRanker creates a fusion ranker backed by an authority resolver.
func NewRanker(resolver AuthorityResolver, opts ...RankerOption) (*Ranker, error) {
	if resolver == nil {
		return nil, ErrResolverRequired
	}

	r := &Ranker{
		weights:        DefaultWeights(),
		recencyHorizon: DefaultRecencyHorizon,
		diversityCap:   DefaultDiversityCap,
		resolver:       resolver,
		logger:         slog.Default(),
		now:            time.Now,
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// merged accumulates every retrieval of one chunk across variants.
type merged struct {
	hit         core.DocumentHit
	provenances map[core.Provenance]bool
}

// Rank deduplicates hits, scores each surviving chunk, and returns at most
// limit results in descending score order.
//
// Ties break on similarity, then authority, then document ID, so equal
// inputs always produce the same ordering.
func (r *Ranker) Rank(ctx context.Context, hits []core.DocumentHit, partitionWeights map[core.DocumentType]float64, limit int) []core.RankedResult {
	if limit <= 0 || len(hits) == 0 {
		return []core.RankedResult{}
	}

	// Dedupe by (document, chunk): keep the best similarity, union the
	// provenances that retrieved it
	byChunk := make(map[string]*merged)
	order := make([]string, 0, len(hits))
	for _, hit := range hits {
		key := hit.DocumentID + "\x00" + fmt.Sprintf("%d", hit.ChunkID)
		m, ok := byChunk[key]
		if !ok {
			m = &merged{hit: hit, provenances: make(map[core.Provenance]bool)}
			byChunk[key] = m
			order = append(order, key)
		}
		if hit.Similarity > m.hit.Similarity {
			m.hit = hit
		}
		m.provenances[hit.Provenance] = true
	}

	now := r.now().UTC()
	results := make([]core.RankedResult, 0, len(byChunk))
	for _, key := range order {
		m := byChunk[key]
		level := r.resolver.Resolve(ctx, m.hit)

		provenances := make([]core.Provenance, 0, len(m.provenances))
		for p := range m.provenances {
			provenances = append(provenances, p)
		}
		slices.SortFunc(provenances, func(a, b core.Provenance) int {
			if c := a.Priority() - b.Priority(); c != 0 {
				return c
			}
			return strings.Compare(string(a), string(b))
		})

		score := r.weights.Similarity*m.hit.Similarity +
			r.weights.Authority*(float64(level)/5.0) +
			r.weights.Recency*r.recencyScore(m.hit, now) +
			r.weights.Partition*partitionWeights[m.hit.Partition]

		results = append(results, core.RankedResult{
			Hit:         m.hit,
			Score:       score,
			Authority:   level,
			Provenances: provenances,
		})
	}

	slices.SortFunc(results, compareRanked)

	return applyDiversityCap(results, limit, r.diversityCap)
}

// recencyScore decays linearly from 1 at publication to 0 at the horizon.
// Standards text does not go stale and is exempt from decay; hits without a
// publication date score zero.
func (r *Ranker) recencyScore(hit core.DocumentHit, now time.Time) float64 {
	if hit.Partition == core.DocTypeStandards {
		return 1.0
	}
	if hit.Meta.Published.IsZero() {
		return 0.0
	}
	age := now.Sub(hit.Meta.Published)
	if age <= 0 {
		return 1.0
	}
	if age >= r.recencyHorizon {
		return 0.0
	}
	return 1.0 - float64(age)/float64(r.recencyHorizon)
}

func compareRanked(a, b core.RankedResult) int {
	if a.Score != b.Score {
		if a.Score > b.Score {
			return -1
		}
		return 1
	}
	if a.Hit.Similarity != b.Hit.Similarity {
		if a.Hit.Similarity > b.Hit.Similarity {
			return -1
		}
		return 1
	}
	if a.Authority != b.Authority {
		return b.Authority - a.Authority
	}
	if c := strings.Compare(a.Hit.DocumentID, b.Hit.DocumentID); c != 0 {
		return c
	}
	if a.Hit.ChunkID < b.Hit.ChunkID {
		return -1
	}
	if a.Hit.ChunkID > b.Hit.ChunkID {
		return 1
	}
	return 0
}

// applyDiversityCap limits how many results a single partition supplies in
// the first cut, then backfills from the skipped remainder in score order.
// The cap is soft: when the other partitions cannot fill the list, the
// dominant one may still exceed its share.
func applyDiversityCap(results []core.RankedResult, limit int, fraction float64) []core.RankedResult {
	maxPerPartition := int(math.Floor(float64(limit) * fraction))
	if maxPerPartition < 1 {
		maxPerPartition = 1
	}

	selected := make([]core.RankedResult, 0, limit)
	var skipped []core.RankedResult
	perPartition := make(map[core.DocumentType]int)

	for _, result := range results {
		if len(selected) == limit {
			break
		}
		if perPartition[result.Hit.Partition] >= maxPerPartition {
			skipped = append(skipped, result)
			continue
		}
		perPartition[result.Hit.Partition]++
		selected = append(selected, result)
	}

	for _, result := range skipped {
		if len(selected) == limit {
			break
		}
		selected = append(selected, result)
	}

	return selected
}
