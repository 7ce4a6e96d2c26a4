package ontology

import "errors"

var (
	// ErrCyclicHierarchy indicates the parent/child relation forms a cycle.
	// Fatal at load time: depth-bounded traversal would be ill-defined.
	ErrCyclicHierarchy = errors.New("parent/child hierarchy contains a cycle")

	// ErrEmptySchema indicates a schema document with no concepts.
	ErrEmptySchema = errors.New("ontology schema contains no concepts")

	// ErrMalformedSchema indicates the schema document could not be parsed.
	ErrMalformedSchema = errors.New("malformed ontology schema")
)
