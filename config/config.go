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


// Package config loads and validates the ontosearch runtime configuration.
//
// Configuration is read from an optional YAML file with environment
// variable overrides. Every knob has a sensible default; a malformed or
// inconsistent configuration is fatal at startup, never at query time.
package config

import (
	"fmt"
	"time"

	"github.com/poiesic/ontosearch/core"
	"github.com/poiesic/ontosearch/search"
)

// Config is the full runtime configuration.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Storage   StorageConfig   `mapstructure:"storage"`
	Embedding EmbeddingConfig `mapstructure:"embedding"`
	Ontology  OntologyConfig  `mapstructure:"ontology"`
	Tuning    Tuning          `mapstructure:"tuning"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `mapstructure:"level"`
}

// StorageConfig locates the chunk and authority store.
type StorageConfig struct {
	Path     string `mapstructure:"path"`
	InMemory bool   `mapstructure:"in_memory"`
}

// EmbeddingConfig locates the embedding service.
type EmbeddingConfig struct {
	Host  string `mapstructure:"host"`
	Model string `mapstructure:"model"`
}

// OntologyConfig locates the ontology schema.
type OntologyConfig struct {
	SchemaPath string `mapstructure:"schema_path"`
}

// WeightsConfig holds the fusion score coefficients.
type WeightsConfig struct {
	Similarity float64 `mapstructure:"similarity"`
	Authority  float64 `mapstructure:"authority"`
	Recency    float64 `mapstructure:"recency"`
	Partition  float64 `mapstructure:"partition"`
}

// Tuning holds the pipeline knobs.
type Tuning struct {
	MaxVariants    int           `mapstructure:"max_variants"`
	ExpansionDepth int           `mapstructure:"expansion_depth"`
	ExpansionLimit int           `mapstructure:"expansion_limit"`
	TopK           int           `mapstructure:"top_k"`
	ResultLimit    int           `mapstructure:"result_limit"`
	MinSimilarity  float64       `mapstructure:"min_similarity"`
	SearchTimeout  time.Duration `mapstructure:"search_timeout"`
	PoolSize       int           `mapstructure:"pool_size"`
	RecencyHorizon time.Duration `mapstructure:"recency_horizon"`
	DiversityCap   float64       `mapstructure:"diversity_cap"`
	Weights        WeightsConfig `mapstructure:"weights"`
}

// FusionWeights converts the configured coefficients into the ranker's form.
func (t Tuning) FusionWeights() search.Weights {
	return search.Weights{
		Similarity: t.Weights.Similarity,
		Authority:  t.Weights.Authority,
		Recency:    t.Weights.Recency,
		Partition:  t.Weights.Partition,
	}
}

// Validate checks the configuration for values the pipeline cannot serve
// with. Every violation is a fatal configuration failure.
func (c *Config) Validate() error {
	if c.Tuning.MaxVariants < 1 {
		return core.NewConfigurationFailure(fmt.Errorf("max_variants must be at least 1, got %d", c.Tuning.MaxVariants))
	}
	if c.Tuning.ExpansionDepth < 0 {
		return core.NewConfigurationFailure(fmt.Errorf("expansion_depth must not be negative, got %d", c.Tuning.ExpansionDepth))
	}
	if c.Tuning.ExpansionLimit < 1 {
		return core.NewConfigurationFailure(fmt.Errorf("expansion_limit must be at least 1, got %d", c.Tuning.ExpansionLimit))
	}
	if c.Tuning.TopK < 1 {
		return core.NewConfigurationFailure(fmt.Errorf("top_k must be at least 1, got %d", c.Tuning.TopK))
	}
	if c.Tuning.ResultLimit < 1 {
		return core.NewConfigurationFailure(fmt.Errorf("result_limit must be at least 1, got %d", c.Tuning.ResultLimit))
	}
	if c.Tuning.MinSimilarity < 0 || c.Tuning.MinSimilarity > 1 {
		return core.NewConfigurationFailure(fmt.Errorf("min_similarity must be in [0,1], got %f", c.Tuning.MinSimilarity))
	}
	if c.Tuning.SearchTimeout <= 0 {
		return core.NewConfigurationFailure(fmt.Errorf("search_timeout must be positive, got %s", c.Tuning.SearchTimeout))
	}
	if c.Tuning.PoolSize < 1 {
		return core.NewConfigurationFailure(fmt.Errorf("pool_size must be at least 1, got %d", c.Tuning.PoolSize))
	}
	if c.Tuning.RecencyHorizon <= 0 {
		return core.NewConfigurationFailure(fmt.Errorf("recency_horizon must be positive, got %s", c.Tuning.RecencyHorizon))
	}
	if c.Tuning.DiversityCap <= 0 || c.Tuning.DiversityCap > 1 {
		return core.NewConfigurationFailure(fmt.Errorf("diversity_cap must be in (0,1], got %f", c.Tuning.DiversityCap))
	}
	if err := c.Tuning.FusionWeights().Validate(); err != nil {
		return core.NewConfigurationFailure(err)
	}
	return nil
}
