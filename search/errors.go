package search

import "errors"

var (
	// ErrIndexRequired indicates that no vector index was provided.
	ErrIndexRequired = errors.New("vector index is required")

	// ErrResolverRequired indicates that no authority resolver was provided.
	ErrResolverRequired = errors.New("authority resolver is required")

	// ErrInvalidWeights indicates fusion weights that are negative or do not
	// sum to one.
	ErrInvalidWeights = errors.New("fusion weights must be non-negative and sum to 1")
)
