// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ontosearch

import (
	"log/slog"

	"github.com/poiesic/ontosearch/ai"
	"github.com/poiesic/ontosearch/ai/openai"
	"github.com/poiesic/ontosearch/authority"
	"github.com/poiesic/ontosearch/config"
	"github.com/poiesic/ontosearch/core"
	"github.com/poiesic/ontosearch/expand"
	"github.com/poiesic/ontosearch/intent"
	"github.com/poiesic/ontosearch/ontology"
	"github.com/poiesic/ontosearch/routing"
	"github.com/poiesic/ontosearch/search"
	"github.com/poiesic/ontosearch/storage"
	"github.com/poiesic/ontosearch/storage/badger"
)

// System owns every component of an assembled retrieval pipeline: the
// storage backend, the ontology snapshot, the embedding provider, and the
// pipeline itself.
type System struct {
	cfg           *config.Config
	backend       *badger.Backend
	chunkRepo     storage.ChunkRepository
	authorityRepo storage.AuthorityRepository
	provider      ai.Provider
	ontology      *ontology.Provider
	fanout        *search.Fanout
	pipeline      *Pipeline
	logger        *slog.Logger
}

// SystemOption configures system assembly.
type SystemOption func(*systemOptions)

type systemOptions struct {
	provider ai.Provider
	metrics  *search.Metrics
	monitor  search.PipelineMonitor
}

// WithProvider supplies an embedding provider, replacing the default
// OpenAI-compatible client built from the configuration.
func WithProvider(provider ai.Provider) SystemOption {
	return func(o *systemOptions) {
		o.provider = provider
	}
}

// WithSearchMetrics attaches Prometheus instruments to the fan-out.
func WithSearchMetrics(metrics *search.Metrics) SystemOption {
	return func(o *systemOptions) {
		o.metrics = metrics
	}
}

// WithPipelineMonitor attaches a monitor to the pipeline.
func WithPipelineMonitor(monitor search.PipelineMonitor) SystemOption {
	return func(o *systemOptions) {
		o.monitor = monitor
	}
}

// OpenSystem assembles a full pipeline from configuration. A schema that
// fails to load or a configuration that fails validation is fatal.
func OpenSystem(cfg *config.Config, opts ...SystemOption) (*System, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := &systemOptions{}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(cfg.Storage.Path, cfg.Storage.InMemory)
	if err != nil {
		return nil, err
	}

	chunkRepo, err := badger.NewChunkRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	authorityRepo, err := badger.NewAuthorityRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	graph, err := ontology.LoadFile(cfg.Ontology.SchemaPath,
		ontology.WithExpansionLimit(cfg.Tuning.ExpansionLimit))
	if err != nil {
		backend.Close()
		return nil, core.NewConfigurationFailure(err)
	}
	ontologyProvider := ontology.NewProvider(graph)

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(&ai.Config{
			EmbeddingHost:  cfg.Embedding.Host,
			EmbeddingModel: cfg.Embedding.Model,
		})
		if err != nil {
			backend.Close()
			return nil, err
		}
	}

	classifier := intent.NewClassifier()

	expander, err := expand.NewExpander(ontologyProvider,
		expand.WithMaxVariants(cfg.Tuning.MaxVariants),
		expand.WithMaxDepth(cfg.Tuning.ExpansionDepth))
	if err != nil {
		provider.Close()
		backend.Close()
		return nil, err
	}

	router := routing.NewRouter()

	index, err := NewChunkIndex(chunkRepo, provider.Embedder())
	if err != nil {
		provider.Close()
		backend.Close()
		return nil, err
	}

	fanoutOpts := []search.FanoutOption{
		search.WithPoolSize(cfg.Tuning.PoolSize),
		search.WithTopK(cfg.Tuning.TopK),
		search.WithMinSimilarity(cfg.Tuning.MinSimilarity),
		search.WithTimeout(cfg.Tuning.SearchTimeout),
	}
	if options.metrics != nil {
		fanoutOpts = append(fanoutOpts, search.WithMetrics(options.metrics))
	}
	fanout, err := search.NewFanout(index, fanoutOpts...)
	if err != nil {
		provider.Close()
		backend.Close()
		return nil, err
	}

	resolver := authority.NewResolver(authorityRepo)
	ranker, err := search.NewRanker(resolver,
		search.WithWeights(cfg.Tuning.FusionWeights()),
		search.WithRecencyHorizon(cfg.Tuning.RecencyHorizon),
		search.WithDiversityCap(cfg.Tuning.DiversityCap))
	if err != nil {
		fanout.Release()
		provider.Close()
		backend.Close()
		return nil, err
	}

	pipelineOpts := []Option{WithResultLimit(cfg.Tuning.ResultLimit)}
	if options.monitor != nil {
		pipelineOpts = append(pipelineOpts, WithMonitor(options.monitor))
	}
	pipeline, err := NewPipeline(classifier, expander, router, fanout, ranker, pipelineOpts...)
	if err != nil {
		fanout.Release()
		provider.Close()
		backend.Close()
		return nil, err
	}

	return &System{
		cfg:           cfg,
		backend:       backend,
		chunkRepo:     chunkRepo,
		authorityRepo: authorityRepo,
		provider:      provider,
		ontology:      ontologyProvider,
		fanout:        fanout,
		pipeline:      pipeline,
		logger:        slog.Default(),
	}, nil
}

// Close releases the worker pool, the embedding provider, and the storage
// backend.
func (s *System) Close() error {
	s.fanout.Release()

	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing embedding provider", "err", err)
	}

	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Pipeline returns the assembled retrieval pipeline.
func (s *System) Pipeline() *Pipeline {
	return s.pipeline
}

// Chunks returns the chunk repository, used by ingestion tooling.
func (s *System) Chunks() storage.ChunkRepository {
	return s.chunkRepo
}

// Authorities returns the authority repository, used by seeding tooling.
func (s *System) Authorities() storage.AuthorityRepository {
	return s.authorityRepo
}

// Ontology returns the ontology snapshot provider. Swapping in a new graph
// takes effect for subsequent searches without a restart.
func (s *System) Ontology() *ontology.Provider {
	return s.ontology
}
