package ontosearch

import "errors"

var (
	// ErrClassifierRequired indicates that no intent classifier was provided.
	ErrClassifierRequired = errors.New("intent classifier is required")

	// ErrExpanderRequired indicates that no query expander was provided.
	ErrExpanderRequired = errors.New("query expander is required")

	// ErrRouterRequired indicates that no collection router was provided.
	ErrRouterRequired = errors.New("collection router is required")

	// ErrFanoutRequired indicates that no search fan-out was provided.
	ErrFanoutRequired = errors.New("search fan-out is required")

	// ErrRankerRequired indicates that no fusion ranker was provided.
	ErrRankerRequired = errors.New("fusion ranker is required")

	// ErrChunkRepositoryRequired indicates that no chunk repository was provided.
	ErrChunkRepositoryRequired = errors.New("chunk repository is required")

	// ErrEmbedderRequired indicates that no embedder was provided.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrUnknownIntent indicates an intent override naming no known intent.
	ErrUnknownIntent = errors.New("unknown intent name")
)
