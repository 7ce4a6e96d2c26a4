package expand

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/poiesic/ontosearch/core"
	"github.com/poiesic/ontosearch/ontology"
)

const (
	// DefaultMaxVariants caps the variant set, original query included.
	// Every variant multiplies downstream search cost.
	DefaultMaxVariants = 5
)

// Expander turns a classified query into a bounded set of search variants
// using the ontology graph.
type Expander struct {
	ontology    *ontology.Provider
	maxVariants int
	maxDepth    int
	logger      *slog.Logger
}

// Option configures an Expander.
type Option func(*Expander)

// WithMaxVariants caps the total variant count, original included.
// Default is DefaultMaxVariants.
func WithMaxVariants(n int) Option {
	return func(e *Expander) {
		if n > 0 {
			e.maxVariants = n
		}
	}
}

// WithMaxDepth bounds ontology traversal depth.
// Default is ontology.DefaultMaxDepth.
func WithMaxDepth(depth int) Option {
	return func(e *Expander) {
		if depth > 0 {
			e.maxDepth = depth
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Expander) {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
	}
}

// NewExpander creates an expander reading snapshots from the given provider.
func NewExpander(provider *ontology.Provider, opts ...Option) (*Expander, error) {
	if provider == nil {
		return nil, ErrOntologyRequired
	}

	e := &Expander{
		ontology:    provider,
		maxVariants: DefaultMaxVariants,
		maxDepth:    ontology.DefaultMaxDepth,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// candidate is one expansion-derived variant before ranking.
type candidate struct {
	variant core.QueryVariant
	// occurrences is the expansion term's frequency in the ontology.
	// Rarer terms are more specific and rank earlier.
	occurrences int
}

// Expand produces the expanded query for one request. The original query is
// always the first variant; the rest are synonym-substituted and
// hyponym-broadened forms, capped at the configured maximum.
func (e *Expander) Expand(q core.Query, queryIntent core.Intent) core.ExpandedQuery {
	graph := e.ontology.Graph()

	out := core.ExpandedQuery{
		Query:  q,
		Intent: queryIntent,
		Variants: []core.QueryVariant{
			{Text: q.Text, Provenance: core.ProvenanceOriginal},
		},
	}

	terms := tokenize(q.Text)
	if len(terms) == 0 || graph == nil {
		return out
	}

	groups := kindGroupsForIntent(queryIntent)
	var candidates []candidate
	var pureTerms []string
	pureProvenance := core.ProvenanceRelated
	seenText := map[string]bool{strings.ToLower(q.Text): true}
	seenTerm := map[string]bool{}

	for _, term := range terms {
		for _, grp := range groups {
			for _, expansion := range graph.Expand(term, grp.kinds, e.maxDepth) {
				key := strings.ToLower(expansion)
				if key == strings.ToLower(term) || seenTerm[key] {
					continue
				}
				seenTerm[key] = true
				pureTerms = append(pureTerms, expansion)
				if grp.provenance.Priority() < pureProvenance.Priority() {
					pureProvenance = grp.provenance
				}

				text := substitute(q.Text, term, expansion)
				if seenText[strings.ToLower(text)] {
					continue
				}
				seenText[strings.ToLower(text)] = true

				candidates = append(candidates, candidate{
					variant: core.QueryVariant{
						Text:       text,
						Provenance: grp.provenance,
						Term:       expansion,
					},
					occurrences: graph.Occurrences(expansion),
				})
			}
		}
	}

	// Pure-terms variant: the expansion vocabulary itself, useful against
	// partitions whose chunks are terse (tickets, transcripts).
	if len(pureTerms) > 0 {
		text := strings.Join(pureTerms, " ")
		if !seenText[strings.ToLower(text)] {
			candidates = append(candidates, candidate{
				variant: core.QueryVariant{
					Text:       text,
					Provenance: pureProvenance,
				},
				occurrences: len(pureTerms),
			})
		}
	}

	// Rank: provenance priority, then ontology rarity, then text for full
	// determinism.
	sort.SliceStable(candidates, func(i, j int) bool {
		pi, pj := candidates[i].variant.Provenance.Priority(), candidates[j].variant.Provenance.Priority()
		if pi != pj {
			return pi < pj
		}
		if candidates[i].occurrences != candidates[j].occurrences {
			return candidates[i].occurrences < candidates[j].occurrences
		}
		return candidates[i].variant.Text < candidates[j].variant.Text
	})

	for _, c := range candidates {
		if len(out.Variants) >= e.maxVariants {
			break
		}
		out.Variants = append(out.Variants, c.variant)
	}

	e.logger.Debug("expanded query",
		"intent", queryIntent.String(),
		"terms", len(terms),
		"variants", len(out.Variants))

	return out
}

// kindGroup ties a set of traversable edge kinds to the provenance recorded
// on variants they produce.
type kindGroup struct {
	kinds      []core.RelationKind
	provenance core.Provenance
}

// kindGroupsForIntent selects which ontology edges each intent follows.
// Research and standards queries favour cross-domain relations; hands-on
// intents favour narrowing hyponyms. Unknown gets the broadest strategy.
func kindGroupsForIntent(queryIntent core.Intent) []kindGroup {
	synonyms := kindGroup{kinds: []core.RelationKind{core.RelationSynonym}, provenance: core.ProvenanceSynonym}
	hyponyms := kindGroup{kinds: []core.RelationKind{core.RelationHyponym}, provenance: core.ProvenanceHyponym}
	related := kindGroup{kinds: ontology.CrossDomainKinds(), provenance: core.ProvenanceRelated}

	switch queryIntent {
	case core.IntentResearch, core.IntentStandards:
		return []kindGroup{synonyms, related}
	case core.IntentImplementation, core.IntentTesting:
		return []kindGroup{synonyms, hyponyms}
	case core.IntentNews:
		return []kindGroup{synonyms}
	default:
		return []kindGroup{synonyms, hyponyms, related}
	}
}

// substitute replaces one occurrence of term in the original query text,
// case-insensitively. When the term is not present verbatim (compound
// phrases collapse whitespace), the expansion is appended instead.
func substitute(text, term, expansion string) string {
	lowered := strings.ToLower(text)
	idx := strings.Index(lowered, strings.ToLower(term))
	if idx < 0 {
		return text + " " + expansion
	}
	return text[:idx] + expansion + text[idx+len(term):]
}
