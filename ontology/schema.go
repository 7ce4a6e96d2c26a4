package ontology

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/poiesic/ontosearch/core"
)

// Schema is the on-disk ontology document shape. Concepts are keyed by ID.
type Schema struct {
	Concepts map[string]SchemaConcept `json:"concepts"`
}

// SchemaConcept is one concept entry in a schema document.
type SchemaConcept struct {
	Label       string           `json:"label"`
	Definition  string           `json:"definition,omitempty"`
	Parents     []string         `json:"parents,omitempty"`
	Subconcepts []string         `json:"subconcepts,omitempty"`
	Synonyms    []string         `json:"synonyms,omitempty"`
	Relations   []SchemaRelation `json:"relations,omitempty"`
}

// SchemaRelation is one typed edge entry in a schema document.
type SchemaRelation struct {
	Kind   string `json:"kind"`
	Target string `json:"target"`
}

// Option configures graph construction.
type Option func(*Graph)

// WithExpansionLimit caps the result-set size of Expand calls.
// Default is DefaultExpansionLimit.
func WithExpansionLimit(limit int) Option {
	return func(g *Graph) {
		if limit > 0 {
			g.expansionLimit = limit
		}
	}
}

// LoadFile reads and parses an ontology schema file and builds a graph.
// A cyclic parent/child hierarchy is fatal.
func LoadFile(path string, opts ...Option) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ontology schema %s: %w", path, err)
	}
	return Parse(data, opts...)
}

// Parse builds a graph from a schema document.
//
// Fatal conditions (ConfigurationError territory, the system must not serve):
//   - unparseable document
//   - no concepts
//   - a cycle in the parent/child hierarchy
//
// Dangling edge targets are tolerated and reported via ConsistencyIssues.
func Parse(data []byte, opts ...Option) (*Graph, error) {
	var schema Schema
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedSchema, err)
	}
	if len(schema.Concepts) == 0 {
		return nil, ErrEmptySchema
	}

	g := &Graph{
		concepts:       make(map[string]*Concept, len(schema.Concepts)),
		termIndex:      make(map[string][]string),
		occurrences:    make(map[string]int),
		expansionLimit: DefaultExpansionLimit,
	}
	for _, opt := range opts {
		opt(g)
	}

	for id, sc := range schema.Concepts {
		label := sc.Label
		if label == "" {
			label = id
		}
		c := &Concept{
			ID:         id,
			Label:      label,
			Definition: sc.Definition,
			Parents:    append([]string(nil), sc.Parents...),
			Children:   append([]string(nil), sc.Subconcepts...),
			Synonyms:   append([]string(nil), sc.Synonyms...),
		}
		for _, rel := range sc.Relations {
			c.Relations = append(c.Relations, Relation{
				Kind:   core.RelationKind(rel.Kind),
				Target: rel.Target,
			})
		}
		g.concepts[id] = c
	}

	linkHierarchy(g)
	g.issues = findConsistencyIssues(g)

	if err := checkAcyclic(g); err != nil {
		return nil, err
	}

	buildIndexes(g)
	return g, nil
}

// linkHierarchy makes parent/child edges bidirectional: a concept listing a
// subconcept becomes that subconcept's parent, and vice versa.
func linkHierarchy(g *Graph) {
	for id, c := range g.concepts {
		for _, childID := range c.Children {
			if child := g.concepts[childID]; child != nil && !contains(child.Parents, id) {
				child.Parents = append(child.Parents, id)
			}
		}
		for _, parentID := range c.Parents {
			if parent := g.concepts[parentID]; parent != nil && !contains(parent.Children, id) {
				parent.Children = append(parent.Children, id)
			}
		}
	}
}

// checkAcyclic verifies the parent/child relation is a DAG using a DFS with
// a visiting set (white/grey/black colouring).
func checkAcyclic(g *Graph) error {
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(g.concepts))

	var visit func(id string, path []string) error
	visit = func(id string, path []string) error {
		switch state[id] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("%w: %s", ErrCyclicHierarchy, strings.Join(append(path, id), " -> "))
		}
		state[id] = visiting
		c := g.concepts[id]
		if c != nil {
			for _, childID := range c.Children {
				if _, ok := g.concepts[childID]; !ok {
					continue
				}
				if err := visit(childID, append(path, id)); err != nil {
					return err
				}
			}
		}
		state[id] = done
		return nil
	}

	// Iterate in sorted order so any cycle report is deterministic.
	ids := make([]string, 0, len(g.concepts))
	for id := range g.concepts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if err := visit(id, nil); err != nil {
			return err
		}
	}
	return nil
}

// findConsistencyIssues reports edges that point at unknown concepts.
// Non-fatal: the dangling edge is simply never traversed.
func findConsistencyIssues(g *Graph) []string {
	var issues []string

	ids := make([]string, 0, len(g.concepts))
	for id := range g.concepts {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		c := g.concepts[id]
		for _, parentID := range c.Parents {
			if _, ok := g.concepts[parentID]; !ok {
				issues = append(issues, fmt.Sprintf("concept %s references unknown parent %s", id, parentID))
			}
		}
		for _, childID := range c.Children {
			if _, ok := g.concepts[childID]; !ok {
				issues = append(issues, fmt.Sprintf("concept %s references unknown subconcept %s", id, childID))
			}
		}
		for _, rel := range c.Relations {
			if _, ok := g.concepts[rel.Target]; !ok {
				issues = append(issues, fmt.Sprintf("concept %s has %s edge to unknown concept %s", id, rel.Kind, rel.Target))
			}
		}
	}
	return issues
}

// buildIndexes populates the term index and term occurrence counts.
func buildIndexes(g *Graph) {
	for id, c := range g.concepts {
		indexTerm(g, id, id)
		indexTerm(g, c.Label, id)
		for _, syn := range c.Synonyms {
			indexTerm(g, syn, id)
		}
	}
	// Stable lookup order regardless of map iteration.
	for term := range g.termIndex {
		sort.Strings(g.termIndex[term])
	}
}

func indexTerm(g *Graph, term, conceptID string) {
	key := strings.ToLower(strings.TrimSpace(term))
	if key == "" {
		return
	}
	if !contains(g.termIndex[key], conceptID) {
		g.termIndex[key] = append(g.termIndex[key], conceptID)
		g.occurrences[key]++
	}
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
