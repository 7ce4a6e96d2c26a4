package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/poiesic/ontosearch/core"
	"github.com/spf13/viper"
)

// Load reads configuration with the following precedence, lowest first:
// built-in defaults, the YAML file at path, then ONTOSEARCH_* environment
// variables. An empty path skips the file and a missing file at a given
// path is a fatal configuration failure.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v)

	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, core.NewConfigurationFailure(fmt.Errorf("read config file %s: %w", path, err))
		}
		if err := v.ReadConfig(strings.NewReader(string(content))); err != nil {
			return nil, core.NewConfigurationFailure(fmt.Errorf("parse config file %s: %w", path, err))
		}
	}

	v.SetEnvPrefix("ONTOSEARCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, core.NewConfigurationFailure(fmt.Errorf("unmarshal config: %w", err))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Default returns the built-in configuration, valid without any file.
func Default() *Config {
	cfg, err := Load("")
	if err != nil {
		// Built-in defaults must always validate
		panic(err)
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")

	v.SetDefault("storage.path", "./data/ontosearch")
	v.SetDefault("storage.in_memory", false)

	v.SetDefault("embedding.host", "http://localhost:11434/v1")
	v.SetDefault("embedding.model", "mxbai-embed-large")

	v.SetDefault("ontology.schema_path", "./ontology.json")

	v.SetDefault("tuning.max_variants", 5)
	v.SetDefault("tuning.expansion_depth", 2)
	v.SetDefault("tuning.expansion_limit", 25)
	v.SetDefault("tuning.top_k", 10)
	v.SetDefault("tuning.result_limit", 10)
	v.SetDefault("tuning.min_similarity", 0.60)
	v.SetDefault("tuning.search_timeout", "2s")
	v.SetDefault("tuning.pool_size", 4)
	v.SetDefault("tuning.recency_horizon", "17520h") // two years
	v.SetDefault("tuning.diversity_cap", 0.6)
	v.SetDefault("tuning.weights.similarity", 0.50)
	v.SetDefault("tuning.weights.authority", 0.25)
	v.SetDefault("tuning.weights.recency", 0.15)
	v.SetDefault("tuning.weights.partition", 0.10)
}
