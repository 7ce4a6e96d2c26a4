package authority

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/ontosearch/core"
	"github.com/poiesic/ontosearch/storage"
)

// Partition defaults used when an author has no stored record. Normative
// standards text outranks everything; newsletters rank lowest.
var defaultLevels = map[core.DocumentType]int{
	core.DocTypeStandards:         5,
	core.DocTypeExpertBlog:        4,
	core.DocTypeAcademicPaper:     3,
	core.DocTypeAuditTicket:       2,
	core.DocTypeTestingTranscript: 2,
	core.DocTypeNewsletter:        1,
}

// DefaultLevel returns the fallback authority level for a partition.
// Unknown partitions get the lowest level.
func DefaultLevel(dt core.DocumentType) int {
	if level, ok := defaultLevels[dt]; ok {
		return level
	}
	return 1
}

// Resolver resolves authority levels for document hits. Resolution never
// fails: store misses and store errors both fall back to partition defaults.
type Resolver struct {
	store  storage.AuthorityRepository
	logger *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
	}
}

// NewResolver creates a resolver backed by an authority store.
// A nil store is allowed and resolves everything to partition defaults.
func NewResolver(store storage.AuthorityRepository, opts ...Option) *Resolver {
	r := &Resolver{
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the authority level for a hit. A stored record for the
// hit's author wins; otherwise the partition default applies.
func (r *Resolver) Resolve(ctx context.Context, hit core.DocumentHit) int {
	record := r.lookup(ctx, hit.Meta.AuthorID)
	if record != nil {
		return record.Level
	}
	return DefaultLevel(hit.Partition)
}

// Expertise returns the recognised expertise areas for an author, or nil
// when no record exists.
func (r *Resolver) Expertise(ctx context.Context, authorID string) []string {
	record := r.lookup(ctx, authorID)
	if record == nil {
		return nil
	}
	return record.Expertise
}

func (r *Resolver) lookup(ctx context.Context, authorID string) *core.AuthorityRecord {
	if r.store == nil || authorID == "" {
		return nil
	}
	record, err := r.store.GetAuthority(ctx, authorID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			// Store trouble degrades ranking quality, it must not fail a search
			r.logger.Warn("authority lookup failed, using partition default", "author", authorID, "err", err)
		}
		return nil
	}
	return record
}
