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


// Package ontosearch assembles the ontology-guided retrieval pipeline:
// intent classification, ontology-backed query expansion, partition
// routing, concurrent fan-out search, and authority-aware fusion ranking.
package ontosearch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/ontosearch/core"
	"github.com/poiesic/ontosearch/expand"
	"github.com/poiesic/ontosearch/intent"
	"github.com/poiesic/ontosearch/routing"
	"github.com/poiesic/ontosearch/search"
)

// DefaultResultLimit caps the ranked result list when the request does not
// ask for a specific size.
const DefaultResultLimit = 10

// Request is one retrieval request.
type Request struct {
	// Text is the natural-language query. Required.
	Text string
	// TypeFilter restricts the search to one partition when non-empty.
	TypeFilter core.DocumentType
	// Intent optionally overrides classification with an explicit intent
	// name ("research", "standards", ...).
	Intent string
	// Limit caps the ranked result list. Zero means the pipeline default.
	Limit int
}

// Response is the outcome of a successful retrieval. Degraded responses
// carry results from the partitions that did answer.
type Response struct {
	Intent   core.Intent
	Variants []core.QueryVariant
	Results  []core.RankedResult
	Degraded bool
}

// Pipeline wires the retrieval stages together. Stages are stateless per
// request; a single Pipeline serves concurrent callers.
type Pipeline struct {
	classifier  *intent.Classifier
	expander    *expand.Expander
	router      *routing.Router
	fanout      *search.Fanout
	ranker      *search.Ranker
	resultLimit int
	monitor     search.PipelineMonitor
	logger      *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithResultLimit sets the default ranked result cap.
func WithResultLimit(limit int) Option {
	return func(p *Pipeline) error {
		if limit > 0 {
			p.resultLimit = limit
		}
		return nil
	}
}

// WithMonitor attaches a monitor receiving callbacks at each stage.
func WithMonitor(monitor search.PipelineMonitor) Option {
	return func(p *Pipeline) error {
		if monitor == nil {
			monitor = search.NoopMonitor()
		}
		p.monitor = monitor
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a pipeline from its five stages.
func NewPipeline(
	classifier *intent.Classifier,
	expander *expand.Expander,
	router *routing.Router,
	fanout *search.Fanout,
	ranker *search.Ranker,
	opts ...Option,
) (*Pipeline, error) {
	if classifier == nil {
		return nil, ErrClassifierRequired
	}
	if expander == nil {
		return nil, ErrExpanderRequired
	}
	if router == nil {
		return nil, ErrRouterRequired
	}
	if fanout == nil {
		return nil, ErrFanoutRequired
	}
	if ranker == nil {
		return nil, ErrRankerRequired
	}

	p := &Pipeline{
		classifier:  classifier,
		expander:    expander,
		router:      router,
		fanout:      fanout,
		ranker:      ranker,
		resultLimit: DefaultResultLimit,
		monitor:     search.NoopMonitor(),
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Search runs the full pipeline for one request.
//
// A response with Degraded set means some partitions failed but others
// answered. Terminal failures wrap core.ErrRetrievalUnavailable,
// core.ErrDeadlineExceeded, or a validation sentinel.
func (p *Pipeline) Search(ctx context.Context, req Request) (*Response, error) {
	started := time.Now()
	p.monitor.Start(req.Text)

	query := core.Query{Text: req.Text, TypeFilter: req.TypeFilter}
	if err := core.ValidateQuery(&query); err != nil {
		return nil, err
	}

	// Ingress deadline check: refuse work that cannot finish
	if err := ctx.Err(); err != nil {
		return nil, core.NewDeadlineExceeded(err)
	}
	if deadline, ok := ctx.Deadline(); ok && time.Until(deadline) <= 0 {
		return nil, core.NewDeadlineExceeded(context.DeadlineExceeded)
	}

	queryIntent, err := p.resolveIntent(req)
	if err != nil {
		return nil, err
	}
	p.monitor.AfterClassify(queryIntent)

	expanded := p.expander.Expand(query, queryIntent)
	p.monitor.AfterExpand(expanded.Variants)

	routes := p.router.Plan(queryIntent, query)
	p.monitor.AfterRoute(routes)

	fanoutResult, err := p.fanout.Search(ctx, expanded, routes, p.monitor)
	if err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = p.resultLimit
	}

	results := p.ranker.Rank(ctx, fanoutResult.Hits, fanoutResult.Weights, limit)
	p.monitor.Finish(results)

	p.logger.Debug("search completed",
		"query", req.Text,
		"intent", queryIntent.String(),
		"variants", len(expanded.Variants),
		"partitions", len(routes),
		"results", len(results),
		"degraded", fanoutResult.Degraded,
		"elapsed", time.Since(started))

	return &Response{
		Intent:   queryIntent,
		Variants: expanded.Variants,
		Results:  results,
		Degraded: fanoutResult.Degraded,
	}, nil
}

// resolveIntent applies an explicit override when present, otherwise
// classifies the query text.
func (p *Pipeline) resolveIntent(req Request) (core.Intent, error) {
	if req.Intent == "" {
		return p.classifier.Classify(req.Text), nil
	}
	queryIntent, ok := core.ParseIntent(req.Intent)
	if !ok {
		return core.IntentUnknown, fmt.Errorf("%w: %q", ErrUnknownIntent, req.Intent)
	}
	return queryIntent, nil
}
