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


package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/poiesic/ontosearch"
	"github.com/poiesic/ontosearch/ai"
	"github.com/poiesic/ontosearch/ai/openai"
	"github.com/poiesic/ontosearch/config"
	"github.com/poiesic/ontosearch/core"
	"github.com/poiesic/ontosearch/ontology"
	"github.com/poiesic/ontosearch/search"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "ontosearch",
		Usage: "Ontology-guided retrieval over an accessibility knowledge base",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to YAML configuration file",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Run one query through the retrieval pipeline",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "type",
						Usage: "Restrict the search to one partition (e.g. standards, expert_blog)",
					},
					&cli.StringFlag{
						Name:  "intent",
						Usage: "Override intent classification (research, standards, implementation, testing, news)",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Maximum number of ranked results",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Emit results as JSON",
					},
				},
			},
			{
				Name:   "seed",
				Usage:  "Load chunks and authority records from JSON files",
				Action: seedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "chunks",
						Usage: "Path to a JSON array of document chunks to embed and store",
					},
					&cli.StringFlag{
						Name:  "authorities",
						Usage: "Path to a JSON array of authority records",
					},
				},
			},
			{
				Name:      "validate",
				Usage:     "Validate an ontology schema and report its statistics",
				ArgsUsage: "<schema.json>",
				Action:    validateCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	return cfg, nil
}

func searchCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("query text is required")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	sys, err := ontosearch.OpenSystem(cfg,
		ontosearch.WithSearchMetrics(search.NewMetrics(prometheus.DefaultRegisterer)))
	if err != nil {
		return fmt.Errorf("assembling pipeline: %w", err)
	}
	defer sys.Close()

	req := ontosearch.Request{
		Text:       query,
		TypeFilter: core.DocumentType(c.String("type")),
		Intent:     c.String("intent"),
		Limit:      c.Int("limit"),
	}

	resp, err := sys.Pipeline().Search(context.Background(), req)
	if err != nil {
		return err
	}

	if c.Bool("json") {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(resp)
	}

	fmt.Printf("intent: %s\n", resp.Intent)
	if resp.Degraded {
		fmt.Println("warning: some partitions did not answer, results are partial")
	}
	for i, result := range resp.Results {
		fmt.Printf("%2d. %-40s score=%.3f sim=%.3f authority=%d partition=%s\n",
			i+1, result.Hit.DocumentID, result.Score, result.Hit.Similarity,
			result.Authority, result.Hit.Partition)
	}
	return nil
}

// seedChunk is the JSON shape for one entry in a --chunks file.
type seedChunk struct {
	DocumentID string    `json:"document_id"`
	Text       string    `json:"text"`
	AuthorID   string    `json:"author_id"`
	Published  time.Time `json:"published"`
	DocType    string    `json:"doc_type"`
}

func seedCommand(c *cli.Context) error {
	chunksPath := c.String("chunks")
	authoritiesPath := c.String("authorities")
	if chunksPath == "" && authoritiesPath == "" {
		return fmt.Errorf("at least one of --chunks or --authorities is required")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	sys, err := ontosearch.OpenSystem(cfg)
	if err != nil {
		return fmt.Errorf("assembling pipeline: %w", err)
	}
	defer sys.Close()

	ctx := context.Background()

	if authoritiesPath != "" {
		var records []*core.AuthorityRecord
		if err := readJSONFile(authoritiesPath, &records); err != nil {
			return err
		}
		if err := sys.Authorities().PutAuthorities(ctx, records...); err != nil {
			return fmt.Errorf("storing authority records: %w", err)
		}
		fmt.Fprintf(os.Stderr, "stored %d authority records\n", len(records))
	}

	if chunksPath != "" {
		var entries []seedChunk
		if err := readJSONFile(chunksPath, &entries); err != nil {
			return err
		}

		embedder, err := openai.NewEmbedder(ai.DefaultConfig(
			ai.WithEmbeddingHost(cfg.Embedding.Host),
			ai.WithEmbeddingModel(cfg.Embedding.Model),
		))
		if err != nil {
			return fmt.Errorf("creating embedder: %w", err)
		}

		texts := make([]string, len(entries))
		for i, entry := range entries {
			texts[i] = entry.Text
		}
		vectors, err := embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return fmt.Errorf("embedding chunks: %w", err)
		}
		if len(vectors) != len(entries) {
			return fmt.Errorf("embedding service returned %d vectors for %d chunks", len(vectors), len(entries))
		}

		chunks := make([]*core.Chunk, 0, len(entries))
		for i, entry := range entries {
			chunks = append(chunks, &core.Chunk{
				DocumentID: entry.DocumentID,
				Text:       entry.Text,
				Vector:     vectors[i],
				Meta: core.SourceMeta{
					AuthorID:  entry.AuthorID,
					Published: entry.Published,
					DocType:   core.DocumentType(entry.DocType),
				},
			})
		}

		if _, err := sys.Chunks().AddChunks(ctx, chunks...); err != nil {
			return fmt.Errorf("storing chunks: %w", err)
		}
		fmt.Fprintf(os.Stderr, "stored %d chunks\n", len(chunks))
	}

	return nil
}

func validateCommand(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("schema path is required")
	}

	graph, err := ontology.LoadFile(path)
	if err != nil {
		return fmt.Errorf("schema is invalid: %w", err)
	}

	stats := graph.Stats()
	fmt.Printf("concepts: %d\n", stats.Concepts)
	fmt.Printf("terms:    %d\n", stats.Terms)
	fmt.Printf("edges:    %d\n", stats.Edges)

	issues := graph.ConsistencyIssues()
	if len(issues) == 0 {
		fmt.Println("no consistency issues")
		return nil
	}
	fmt.Printf("%d consistency issues (non-fatal):\n", len(issues))
	for _, issue := range issues {
		fmt.Printf("  - %s\n", issue)
	}
	return nil
}

func readJSONFile(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
