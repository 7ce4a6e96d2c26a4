package ontosearch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/ontosearch/ai/mock"
	"github.com/poiesic/ontosearch/config"
	"github.com/poiesic/ontosearch/core"
	"github.com/poiesic/ontosearch/intent"
	"github.com/poiesic/ontosearch/routing"
	"github.com/poiesic/ontosearch/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{
  "concepts": {
    "color-contrast": {
      "label": "color contrast",
      "synonyms": ["contrast ratio"],
      "relations": [{"kind": "related", "target": "visual-presentation"}]
    },
    "visual-presentation": {
      "label": "visual presentation"
    },
    "screen-reader": {
      "label": "screen reader",
      "synonyms": ["assistive technology"]
    }
  }
}`

func writeSchema(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ontology.json")
	require.NoError(t, os.WriteFile(path, []byte(testSchema), 0644))
	return path
}

// flatEmbedder maps every text onto the same unit vector, so a chunk's
// similarity equals the first component of its stored vector.
func flatEmbedder() *mock.MockEmbedder {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0}, nil
	}
	return embedder
}

func newTestSystem(t *testing.T) *System {
	t.Helper()

	cfg := config.Default()
	cfg.Storage.InMemory = true
	cfg.Ontology.SchemaPath = writeSchema(t)

	sys, err := OpenSystem(cfg, WithProvider(mock.NewMockProviderWithEmbedder(flatEmbedder())))
	require.NoError(t, err)
	t.Cleanup(func() { sys.Close() })

	return sys
}

func seedChunk(t *testing.T, sys *System, docID string, similarity float32, docType core.DocumentType, authorID string, published time.Time) {
	t.Helper()
	_, err := sys.Chunks().AddChunks(context.Background(), &core.Chunk{
		DocumentID: docID,
		Text:       docID + " chunk",
		Vector:     []float32{similarity, 0},
		Meta: core.SourceMeta{
			AuthorID:  authorID,
			Published: published,
			DocType:   docType,
		},
	})
	require.NoError(t, err)
}

func TestSearchEndToEnd(t *testing.T) {
	sys := newTestSystem(t)
	ctx := context.Background()
	now := time.Now().UTC()

	// An authoritative standards chunk and a better-matching community post
	seedChunk(t, sys, "wcag-1.4.3", 0.82, core.DocTypeStandards, "w3c", now.Add(-6*365*24*time.Hour))
	seedChunk(t, sys, "blog-contrast-tips", 0.86, core.DocTypeExpertBlog, "rando", now.Add(-10*24*time.Hour))
	require.NoError(t, sys.Authorities().PutAuthorities(ctx,
		&core.AuthorityRecord{AuthorID: "w3c", Level: 5},
		&core.AuthorityRecord{AuthorID: "rando", Level: 1},
	))

	resp, err := sys.Pipeline().Search(ctx, Request{
		Text: "According to WCAG, what is the minimum color contrast ratio?",
	})
	require.NoError(t, err)

	assert.Equal(t, core.IntentStandards, resp.Intent)
	assert.False(t, resp.Degraded)

	// Original query always leads the variant list
	require.NotEmpty(t, resp.Variants)
	assert.Equal(t, core.ProvenanceOriginal, resp.Variants[0].Provenance)
	assert.Equal(t, "According to WCAG, what is the minimum color contrast ratio?", resp.Variants[0].Text)

	// Authority, partition weight, and the standards recency exemption
	// outrank the community post's small similarity edge
	require.Len(t, resp.Results, 2)
	assert.Equal(t, "wcag-1.4.3", resp.Results[0].Hit.DocumentID)
	assert.Equal(t, 5, resp.Results[0].Authority)
	assert.Equal(t, "blog-contrast-tips", resp.Results[1].Hit.DocumentID)
}

func TestSearchExpandsThroughOntology(t *testing.T) {
	sys := newTestSystem(t)

	resp, err := sys.Pipeline().Search(context.Background(), Request{
		Text: "wcag color contrast requirements",
	})
	require.NoError(t, err)

	// "color contrast" has a synonym in the schema, so expansion produces
	// at least one non-original variant, bounded by the configured cap
	assert.Greater(t, len(resp.Variants), 1)
	assert.LessOrEqual(t, len(resp.Variants), 5)

	found := false
	for _, variant := range resp.Variants[1:] {
		assert.NotEqual(t, core.ProvenanceOriginal, variant.Provenance)
		if variant.Provenance == core.ProvenanceSynonym {
			found = true
		}
	}
	assert.True(t, found, "expected a synonym-derived variant")
}

func TestSearchTypeFilter(t *testing.T) {
	sys := newTestSystem(t)
	ctx := context.Background()
	now := time.Now().UTC()

	seedChunk(t, sys, "std-doc", 0.90, core.DocTypeStandards, "w3c", now)
	seedChunk(t, sys, "ticket-doc", 0.90, core.DocTypeAuditTicket, "auditor", now)

	resp, err := sys.Pipeline().Search(ctx, Request{
		Text:       "wcag color contrast",
		TypeFilter: core.DocTypeAuditTicket,
	})
	require.NoError(t, err)

	require.Len(t, resp.Results, 1)
	assert.Equal(t, "ticket-doc", resp.Results[0].Hit.DocumentID)
}

func TestSearchIntentOverride(t *testing.T) {
	sys := newTestSystem(t)

	resp, err := sys.Pipeline().Search(context.Background(), Request{
		Text:   "color contrast",
		Intent: "testing",
	})
	require.NoError(t, err)
	assert.Equal(t, core.IntentTesting, resp.Intent)

	_, err = sys.Pipeline().Search(context.Background(), Request{
		Text:   "color contrast",
		Intent: "nonsense",
	})
	assert.ErrorIs(t, err, ErrUnknownIntent)
}

func TestSearchEmptyQuery(t *testing.T) {
	sys := newTestSystem(t)

	_, err := sys.Pipeline().Search(context.Background(), Request{Text: "   "})
	assert.ErrorIs(t, err, core.ErrEmptyQuery)
}

func TestSearchExpiredDeadlineAtIngress(t *testing.T) {
	sys := newTestSystem(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sys.Pipeline().Search(ctx, Request{Text: "color contrast"})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrDeadlineExceeded)

	reason, ok := core.ReasonOf(err)
	require.True(t, ok)
	assert.Equal(t, core.ReasonDeadlineExceeded, reason)
}

func TestSearchDefaultMockKeepsSimilarityInRange(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.InMemory = true
	cfg.Ontology.SchemaPath = writeSchema(t)
	cfg.Tuning.MinSimilarity = 0

	embedder := mock.NewMockEmbedder()
	sys, err := OpenSystem(cfg, WithProvider(mock.NewMockProviderWithEmbedder(embedder)))
	require.NoError(t, err)
	t.Cleanup(func() { sys.Close() })

	ctx := context.Background()
	text := "wcag color contrast minimum"
	vector, err := embedder.EmbedText(ctx, text)
	require.NoError(t, err)

	_, err = sys.Chunks().AddChunks(ctx, &core.Chunk{
		DocumentID: "wcag-1.4.3",
		Text:       text,
		Vector:     vector,
		Meta: core.SourceMeta{
			AuthorID:  "w3c",
			Published: time.Now().UTC(),
			DocType:   core.DocTypeStandards,
		},
	})
	require.NoError(t, err)

	resp, err := sys.Pipeline().Search(ctx, Request{Text: text})
	require.NoError(t, err)
	require.NotEmpty(t, resp.Results)

	// Unit-length vectors keep dot-product similarity on the raw scale;
	// searching for a chunk's own text sits at the top of it
	hit := resp.Results[0].Hit
	assert.NoError(t, core.ValidateHit(&hit))
	assert.InDelta(t, 1.0, hit.Similarity, 1e-4)
}

func TestSearchDeterministicAcrossRuns(t *testing.T) {
	sys := newTestSystem(t)
	ctx := context.Background()
	now := time.Now().UTC()

	seedChunk(t, sys, "doc-a", 0.85, core.DocTypeStandards, "w3c", now)
	seedChunk(t, sys, "doc-b", 0.85, core.DocTypeExpertBlog, "blogger", now)
	seedChunk(t, sys, "doc-c", 0.75, core.DocTypeExpertBlog, "blogger", now)

	req := Request{Text: "wcag color contrast"}

	first, err := sys.Pipeline().Search(ctx, req)
	require.NoError(t, err)
	second, err := sys.Pipeline().Search(ctx, req)
	require.NoError(t, err)

	require.Equal(t, len(first.Results), len(second.Results))
	for i := range first.Results {
		assert.Equal(t, first.Results[i].Hit.DocumentID, second.Results[i].Hit.DocumentID)
		assert.Equal(t, first.Results[i].Score, second.Results[i].Score)
	}
}

// partitionedIndex fails scripted partitions and serves one hit elsewhere.
type partitionedIndex struct {
	failing map[core.DocumentType]bool
}

func (p *partitionedIndex) Search(ctx context.Context, partition core.DocumentType, text string, limit int) ([]core.DocumentHit, error) {
	if p.failing[partition] {
		return nil, errors.New("partition offline")
	}
	return []core.DocumentHit{{
		DocumentID: "doc-" + string(partition),
		ChunkID:    1,
		Similarity: 0.9,
		Partition:  partition,
		Meta:       core.SourceMeta{DocType: partition},
	}}, nil
}

func newStubPipeline(t *testing.T, index search.VectorIndex) *Pipeline {
	t.Helper()

	sys := newTestSystem(t)

	fanout, err := search.NewFanout(index)
	require.NoError(t, err)
	t.Cleanup(fanout.Release)

	ranker, err := search.NewRanker(&staticResolver{})
	require.NoError(t, err)

	expander := sys.pipeline.expander

	pipeline, err := NewPipeline(intent.NewClassifier(), expander, routing.NewRouter(), fanout, ranker)
	require.NoError(t, err)
	return pipeline
}

type staticResolver struct{}

func (s *staticResolver) Resolve(ctx context.Context, hit core.DocumentHit) int { return 3 }

func TestSearchPartialFailureDegrades(t *testing.T) {
	index := &partitionedIndex{failing: map[core.DocumentType]bool{
		core.DocTypeAuditTicket: true,
	}}
	pipeline := newStubPipeline(t, index)

	// Implementation intent routes expert_blog, audit_ticket, standards
	resp, err := pipeline.Search(context.Background(), Request{Text: "how do i fix color contrast"})
	require.NoError(t, err)

	assert.True(t, resp.Degraded)
	assert.NotEmpty(t, resp.Results)
	for _, result := range resp.Results {
		assert.NotEqual(t, core.DocTypeAuditTicket, result.Hit.Partition)
	}
}

func TestSearchTotalFailureIsTerminal(t *testing.T) {
	index := &partitionedIndex{failing: map[core.DocumentType]bool{
		core.DocTypeAcademicPaper:     true,
		core.DocTypeStandards:         true,
		core.DocTypeExpertBlog:        true,
		core.DocTypeAuditTicket:       true,
		core.DocTypeTestingTranscript: true,
		core.DocTypeNewsletter:        true,
	}}
	pipeline := newStubPipeline(t, index)

	_, err := pipeline.Search(context.Background(), Request{Text: "how do i fix color contrast"})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrRetrievalUnavailable)
}
