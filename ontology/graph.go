package ontology

import (
	"sort"
	"strings"

	"github.com/poiesic/ontosearch/core"
)

const (
	// DefaultMaxDepth bounds expansion traversal when the caller passes 0.
	DefaultMaxDepth = 2
	// DefaultExpansionLimit bounds the expansion result-set size.
	DefaultExpansionLimit = 25
)

// Relation is one typed, directed edge to another concept.
type Relation struct {
	Kind   core.RelationKind
	Target string
}

// Concept is a node in the ontology.
type Concept struct {
	ID         string
	Label      string
	Definition string
	Parents    []string
	Children   []string
	Synonyms   []string
	Relations  []Relation
}

// Graph is an immutable, in-memory concept graph. Safe for unsynchronized
// concurrent reads.
type Graph struct {
	concepts map[string]*Concept
	// termIndex maps lowercased terms (ids, labels, synonyms) to concept IDs.
	termIndex map[string][]string
	// occurrences counts how many concepts mention each lowercased term.
	occurrences map[string]int
	// issues holds non-fatal consistency findings from load time.
	issues []string

	expansionLimit int
}

// Stats summarises graph size.
type Stats struct {
	Concepts int
	Terms    int
	Edges    int
}

// Concept returns the concept with the given ID, or nil.
func (g *Graph) Concept(id string) *Concept {
	return g.concepts[id]
}

// Stats returns counts of concepts, indexed terms, and edges.
func (g *Graph) Stats() Stats {
	edges := 0
	for _, c := range g.concepts {
		edges += len(c.Children) + len(c.Synonyms) + len(c.Relations)
	}
	return Stats{
		Concepts: len(g.concepts),
		Terms:    len(g.termIndex),
		Edges:    edges,
	}
}

// ConsistencyIssues returns non-fatal problems found while building the
// graph, such as edges pointing at unknown concepts.
func (g *Graph) ConsistencyIssues() []string {
	return g.issues
}

// Occurrences returns how many concepts mention the term. Rarer terms are
// more specific and rank earlier during variant generation.
func (g *Graph) Occurrences(term string) int {
	return g.occurrences[strings.ToLower(strings.TrimSpace(term))]
}

// expansionEdge is one traversal candidate, ordered for determinism.
type expansionEdge struct {
	rank int // edge kind priority: synonym < hyponym < related
	term string
	next string // target concept ID, empty for plain synonym strings
}

// Expand returns terms related to term by following only edges whose kind is
// in kinds, breadth-first, bounded by maxDepth hops and the graph's
// expansion limit. Matching is case-insensitive exact first, then substring
// over labels and synonyms. When no concept matches, Expand returns the
// singleton {term}: absence from the ontology is not an error.
func (g *Graph) Expand(term string, kinds []core.RelationKind, maxDepth int) []string {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	limit := g.expansionLimit
	if limit <= 0 {
		limit = DefaultExpansionLimit
	}

	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return []string{term}
	}

	start := g.matchConcepts(needle)
	if len(start) == 0 {
		return []string{term}
	}

	wanted := make(map[core.RelationKind]bool, len(kinds))
	for _, k := range kinds {
		wanted[k] = true
	}

	seen := map[string]bool{needle: true}
	visited := make(map[string]bool, len(start))
	results := make([]string, 0, limit)

	frontier := start
	for _, id := range frontier {
		visited[id] = true
	}

	for depth := 0; depth < maxDepth && len(frontier) > 0 && len(results) < limit; depth++ {
		edges := g.collectEdges(frontier, wanted)
		sort.Slice(edges, func(i, j int) bool {
			if edges[i].rank != edges[j].rank {
				return edges[i].rank < edges[j].rank
			}
			return edges[i].term < edges[j].term
		})

		next := make([]string, 0, len(edges))
		for _, e := range edges {
			if len(results) >= limit {
				break
			}
			key := strings.ToLower(e.term)
			if !seen[key] {
				seen[key] = true
				results = append(results, e.term)
			}
			target := e.next
			if target == "" {
				// Plain synonym strings may still name a concept.
				if ids, ok := g.termIndex[key]; ok && len(ids) > 0 {
					target = ids[0]
				}
			}
			if target != "" && !visited[target] {
				visited[target] = true
				next = append(next, target)
			}
		}
		frontier = next
	}

	if len(results) == 0 {
		return []string{term}
	}
	return results
}

// collectEdges gathers traversal candidates for one BFS level. Frontier
// order does not matter: candidates are re-sorted by (kind rank, term).
func (g *Graph) collectEdges(frontier []string, wanted map[core.RelationKind]bool) []expansionEdge {
	var edges []expansionEdge

	for _, id := range frontier {
		c := g.concepts[id]
		if c == nil {
			continue
		}

		if wanted[core.RelationSynonym] {
			for _, syn := range c.Synonyms {
				edges = append(edges, expansionEdge{rank: 0, term: syn})
			}
		}

		if wanted[core.RelationHyponym] {
			for _, childID := range c.Children {
				if child := g.concepts[childID]; child != nil {
					edges = append(edges, expansionEdge{rank: 1, term: child.Label, next: child.ID})
				}
			}
		}

		for _, rel := range c.Relations {
			if !wanted[rel.Kind] {
				continue
			}
			target := g.concepts[rel.Target]
			if target == nil {
				continue
			}
			rank := relationRank(rel.Kind)
			edges = append(edges, expansionEdge{rank: rank, term: target.Label, next: target.ID})
		}
	}

	return edges
}

// relationRank maps an edge kind to its traversal priority.
// Synonym edges win over hyponym edges, which win over everything else.
func relationRank(kind core.RelationKind) int {
	switch kind {
	case core.RelationSynonym:
		return 0
	case core.RelationHyponym:
		return 1
	default:
		return 2
	}
}

// matchConcepts resolves a lowercased term to concept IDs. Exact matches via
// the term index win; otherwise substring matches over labels and synonyms,
// sorted by concept ID for determinism.
func (g *Graph) matchConcepts(needle string) []string {
	if ids, ok := g.termIndex[needle]; ok {
		return ids
	}

	var matched []string
	for id, c := range g.concepts {
		if strings.Contains(strings.ToLower(c.Label), needle) {
			matched = append(matched, id)
			continue
		}
		for _, syn := range c.Synonyms {
			if strings.Contains(strings.ToLower(syn), needle) {
				matched = append(matched, id)
				break
			}
		}
	}
	sort.Strings(matched)
	return matched
}

// CrossDomainKinds returns the edge kinds grouped under "related" for
// expansion purposes.
func CrossDomainKinds() []core.RelationKind {
	return []core.RelationKind{
		core.RelationRelated,
		core.RelationImplements,
		core.RelationRequires,
		core.RelationAddresses,
		core.RelationTestedBy,
	}
}
