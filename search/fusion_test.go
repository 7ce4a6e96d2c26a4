package search

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/poiesic/ontosearch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubResolver resolves authority by author ID with a fixed fallback.
type stubResolver struct {
	levels   map[string]int
	fallback int
}

func (s *stubResolver) Resolve(ctx context.Context, hit core.DocumentHit) int {
	if level, ok := s.levels[hit.Meta.AuthorID]; ok {
		return level
	}
	if s.fallback > 0 {
		return s.fallback
	}
	return 1
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestRankDeduplicatesAcrossVariants(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	ranker, err := NewRanker(&stubResolver{fallback: 3}, withClock(fixedClock(now)))
	require.NoError(t, err)

	hit := makeHit("doc", 7, 0.80, core.DocTypeExpertBlog)
	hit.Provenance = core.ProvenanceSynonym
	better := hit
	better.Similarity = 0.90
	better.Provenance = core.ProvenanceOriginal

	results := ranker.Rank(context.Background(), []core.DocumentHit{hit, better},
		map[core.DocumentType]float64{core.DocTypeExpertBlog: 1.0}, 10)

	require.Len(t, results, 1)
	// Best similarity survives the merge
	assert.Equal(t, 0.90, results[0].Hit.Similarity)
	// Provenances union in priority order
	assert.Equal(t, []core.Provenance{core.ProvenanceOriginal, core.ProvenanceSynonym}, results[0].Provenances)
}

func TestRankAuthorityReordersCloseSimilarities(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	resolver := &stubResolver{levels: map[string]int{
		"w3c":   5,
		"rando": 1,
	}}
	ranker, err := NewRanker(resolver, withClock(fixedClock(now)))
	require.NoError(t, err)

	authoritative := makeHit("wcag", 1, 0.82, core.DocTypeStandards)
	authoritative.Meta.AuthorID = "w3c"
	community := makeHit("forum-post", 2, 0.86, core.DocTypeNewsletter)
	community.Meta.AuthorID = "rando"
	community.Meta.Published = now.Add(-3 * 365 * 24 * time.Hour)

	weights := map[core.DocumentType]float64{
		core.DocTypeStandards:  1.0,
		core.DocTypeNewsletter: 0.4,
	}

	results := ranker.Rank(context.Background(), []core.DocumentHit{community, authoritative}, weights, 10)
	require.Len(t, results, 2)

	// Authority, recency exemption, and partition weight outweigh the
	// small similarity edge of the community post
	assert.Equal(t, "wcag", results[0].Hit.DocumentID)
	assert.Equal(t, 5, results[0].Authority)
}

func TestRankRecencyDecay(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	ranker, err := NewRanker(&stubResolver{fallback: 3},
		withClock(fixedClock(now)), WithRecencyHorizon(365*24*time.Hour))
	require.NoError(t, err)

	fresh := makeHit("fresh", 1, 0.80, core.DocTypeExpertBlog)
	fresh.Meta.AuthorID = "a"
	fresh.Meta.Published = now.Add(-30 * 24 * time.Hour)
	stale := makeHit("stale", 2, 0.80, core.DocTypeExpertBlog)
	stale.Meta.AuthorID = "a"
	stale.Meta.Published = now.Add(-2 * 365 * 24 * time.Hour)

	weights := map[core.DocumentType]float64{core.DocTypeExpertBlog: 1.0}
	results := ranker.Rank(context.Background(), []core.DocumentHit{stale, fresh}, weights, 10)

	require.Len(t, results, 2)
	assert.Equal(t, "fresh", results[0].Hit.DocumentID)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestRankStandardsExemptFromDecay(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	ranker, err := NewRanker(&stubResolver{fallback: 3},
		withClock(fixedClock(now)), WithRecencyHorizon(365*24*time.Hour))
	require.NoError(t, err)

	old := makeHit("wcag21", 1, 0.80, core.DocTypeStandards)
	old.Meta.Published = now.Add(-8 * 365 * 24 * time.Hour)

	results := ranker.Rank(context.Background(), []core.DocumentHit{old},
		map[core.DocumentType]float64{core.DocTypeStandards: 1.0}, 10)

	require.Len(t, results, 1)
	// 0.5*0.8 + 0.25*(3/5) + 0.15*1.0 + 0.10*1.0
	assert.InDelta(t, 0.90, results[0].Score, 1e-9)
}

func TestRankTieBreaks(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	ranker, err := NewRanker(&stubResolver{fallback: 2}, withClock(fixedClock(now)))
	require.NoError(t, err)

	a := makeHit("alpha", 1, 0.80, core.DocTypeAuditTicket)
	b := makeHit("beta", 2, 0.80, core.DocTypeAuditTicket)

	weights := map[core.DocumentType]float64{core.DocTypeAuditTicket: 0.8}
	results := ranker.Rank(context.Background(), []core.DocumentHit{b, a}, weights, 10)

	require.Len(t, results, 2)
	// Identical scores fall back to document ID order
	assert.Equal(t, "alpha", results[0].Hit.DocumentID)
	assert.Equal(t, "beta", results[1].Hit.DocumentID)
}

func TestRankDiversityCapLimitsDominantPartition(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	ranker, err := NewRanker(&stubResolver{fallback: 3}, withClock(fixedClock(now)))
	require.NoError(t, err)

	// Ten distinct expert-blog documents all outscore the standards hits
	var hits []core.DocumentHit
	for i := 1; i <= 10; i++ {
		hits = append(hits, makeHit(fmt.Sprintf("blog-%02d", i), core.ID(i), 0.96-float64(i)*0.01, core.DocTypeExpertBlog))
	}
	for i := 1; i <= 4; i++ {
		hits = append(hits, makeHit(fmt.Sprintf("std-%d", i), core.ID(100+i), 0.50, core.DocTypeStandards))
	}

	weights := map[core.DocumentType]float64{
		core.DocTypeExpertBlog: 1.0,
		core.DocTypeStandards:  0.3,
	}
	results := ranker.Rank(context.Background(), hits, weights, 10)
	require.Len(t, results, 10)

	// floor(10 * 0.6) = 6 is the most any one partition may supply while
	// other partitions still have results to contribute
	perPartition := map[core.DocumentType]int{}
	for _, result := range results {
		perPartition[result.Hit.Partition]++
	}
	assert.Equal(t, 6, perPartition[core.DocTypeExpertBlog])
	assert.Equal(t, 4, perPartition[core.DocTypeStandards])

	// The capped-out blog hits are the ones displaced, despite outscoring
	// every standards hit
	for _, result := range results[:6] {
		assert.Equal(t, core.DocTypeExpertBlog, result.Hit.Partition)
	}
	for _, result := range results[6:] {
		assert.Equal(t, core.DocTypeStandards, result.Hit.Partition)
	}
}

func TestRankDiversityCapBackfillsSinglePartition(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	ranker, err := NewRanker(&stubResolver{fallback: 3}, withClock(fixedClock(now)))
	require.NoError(t, err)

	var hits []core.DocumentHit
	for i := 1; i <= 10; i++ {
		hits = append(hits, makeHit(fmt.Sprintf("blog-%02d", i), core.ID(i), 0.96-float64(i)*0.01, core.DocTypeExpertBlog))
	}

	weights := map[core.DocumentType]float64{core.DocTypeExpertBlog: 1.0}
	results := ranker.Rank(context.Background(), hits, weights, 10)

	// The cap is soft: with nothing else to show, the skipped remainder
	// backfills the list in score order
	require.Len(t, results, 10)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestRankDiversityCapConfigurable(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	ranker, err := NewRanker(&stubResolver{fallback: 3},
		withClock(fixedClock(now)), WithDiversityCap(0.2))
	require.NoError(t, err)

	var hits []core.DocumentHit
	for i := 1; i <= 3; i++ {
		hits = append(hits, makeHit(fmt.Sprintf("blog-%d", i), core.ID(i), 0.95-float64(i)*0.01, core.DocTypeExpertBlog))
	}
	hits = append(hits, makeHit("ticket", 100, 0.70, core.DocTypeAuditTicket))

	weights := map[core.DocumentType]float64{
		core.DocTypeExpertBlog:  1.0,
		core.DocTypeAuditTicket: 0.8,
	}
	results := ranker.Rank(context.Background(), hits, weights, 4)

	// floor(4 * 0.2) = 0 is clamped to one result per partition before
	// backfill, so the lone audit ticket surfaces second
	require.Len(t, results, 4)
	assert.Equal(t, core.DocTypeExpertBlog, results[0].Hit.Partition)
	assert.Equal(t, core.DocTypeAuditTicket, results[1].Hit.Partition)

	_, err = NewRanker(&stubResolver{fallback: 3}, WithDiversityCap(1.5))
	assert.ErrorIs(t, err, ErrInvalidWeights)
}

func TestRankLimitZeroAndEmptyInput(t *testing.T) {
	ranker, err := NewRanker(&stubResolver{fallback: 1})
	require.NoError(t, err)

	assert.Empty(t, ranker.Rank(context.Background(), nil, nil, 10))
	hit := makeHit("doc", 1, 0.9, core.DocTypeStandards)
	assert.Empty(t, ranker.Rank(context.Background(), []core.DocumentHit{hit}, nil, 0))
}

func TestWeightsValidate(t *testing.T) {
	assert.NoError(t, DefaultWeights().Validate())

	bad := Weights{Similarity: 0.9, Authority: 0.3}
	assert.ErrorIs(t, bad.Validate(), ErrInvalidWeights)

	negative := Weights{Similarity: 1.2, Authority: -0.2}
	assert.ErrorIs(t, negative.Validate(), ErrInvalidWeights)
}

func TestNewRankerRequiresResolver(t *testing.T) {
	_, err := NewRanker(nil)
	assert.ErrorIs(t, err, ErrResolverRequired)
}
