package authority

import (
	"context"
	"testing"

	"github.com/poiesic/ontosearch/core"
	"github.com/poiesic/ontosearch/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveStoredRecord(t *testing.T) {
	_, authorityRepo, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	require.NoError(t, authorityRepo.PutAuthorities(ctx, &core.AuthorityRecord{
		AuthorID:  "deque-systems",
		Level:     4,
		Expertise: []string{"aria", "testing"},
	}))

	resolver := NewResolver(authorityRepo)

	hit := core.DocumentHit{
		Partition: core.DocTypeNewsletter,
		Meta:      core.SourceMeta{AuthorID: "deque-systems"},
	}

	// Stored record wins over the newsletter default of 1
	assert.Equal(t, 4, resolver.Resolve(ctx, hit))
	assert.Equal(t, []string{"aria", "testing"}, resolver.Expertise(ctx, "deque-systems"))
}

func TestResolveFallsBackToPartitionDefault(t *testing.T) {
	_, authorityRepo, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)
	defer backend.Close()

	resolver := NewResolver(authorityRepo)
	ctx := context.Background()

	tests := []struct {
		name      string
		partition core.DocumentType
		want      int
	}{
		{"standards", core.DocTypeStandards, 5},
		{"expert blog", core.DocTypeExpertBlog, 4},
		{"academic paper", core.DocTypeAcademicPaper, 3},
		{"audit ticket", core.DocTypeAuditTicket, 2},
		{"testing transcript", core.DocTypeTestingTranscript, 2},
		{"newsletter", core.DocTypeNewsletter, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit := core.DocumentHit{
				Partition: tt.partition,
				Meta:      core.SourceMeta{AuthorID: "unknown-author"},
			}
			assert.Equal(t, tt.want, resolver.Resolve(ctx, hit))
		})
	}
}

func TestResolveNilStore(t *testing.T) {
	resolver := NewResolver(nil)

	hit := core.DocumentHit{
		Partition: core.DocTypeStandards,
		Meta:      core.SourceMeta{AuthorID: "w3c"},
	}

	assert.Equal(t, 5, resolver.Resolve(context.Background(), hit))
	assert.Nil(t, resolver.Expertise(context.Background(), "w3c"))
}

func TestResolveEmptyAuthor(t *testing.T) {
	_, authorityRepo, backend, err := badger.NewMemoryStores()
	require.NoError(t, err)
	defer backend.Close()

	resolver := NewResolver(authorityRepo)

	hit := core.DocumentHit{Partition: core.DocTypeExpertBlog}
	assert.Equal(t, 4, resolver.Resolve(context.Background(), hit))
}

func TestDefaultLevelUnknownPartition(t *testing.T) {
	assert.Equal(t, 1, DefaultLevel("mystery"))
}
