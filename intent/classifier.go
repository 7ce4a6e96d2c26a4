package intent

import (
	"log/slog"
	"strings"

	"github.com/poiesic/ontosearch/core"
)

// Rule is one entry in the classification table: a set of marker phrases and
// the intent assigned when any of them appears in the lowercased query.
type Rule struct {
	Name    string
	Intent  core.Intent
	Markers []string
}

// DefaultRules returns the classification table in evaluation order.
// First matching rule wins, so order is part of the design:
//
//	news           before everything: "latest wcag changes" is a news query,
//	               not a standards query
//	testing        before implementation: "how to test focus order" must not
//	               fall into the "how to" implementation bucket
//	research       before standards: "research shows wcag helps" asks about
//	               evidence, not normative text
//	standards      before implementation: "according to wcag, how do I..."
//	               anchors on the standard
//	implementation last matching rule; also absorbs troubleshooting phrasing
//	               ("not working", "why is")
//
// Queries matching no rule classify as Unknown, which routes to all
// partitions rather than failing.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:   "news",
			Intent: core.IntentNews,
			Markers: []string{
				"latest", "what's new", "whats new", "recently", "recent changes",
				"announced", "this week", "this month", "news about",
			},
		},
		{
			Name:   "testing",
			Intent: core.IntentTesting,
			Markers: []string{
				"how to test", "how do i test", "tester found", "test with",
				"testing with", "test results", "screen reader testing",
				"nvda", "jaws", "voiceover", "manual testing", "automated testing",
			},
		},
		{
			Name:   "research",
			Intent: core.IntentResearch,
			Markers: []string{
				"research shows", "research on", "studies show", "study",
				"according to research", "evidence", "findings", "peer-reviewed",
				"literature",
			},
		},
		{
			Name:   "standards",
			Intent: core.IntentStandards,
			Markers: []string{
				"according to wcag", "wcag", "success criterion", "success criteria",
				"section 508", "en 301 549", "conformance", "normative",
				"compliance", "level aa", "level aaa",
			},
		},
		{
			Name:   "implementation",
			Intent: core.IntentImplementation,
			Markers: []string{
				"how do i", "how to", "implement", "fix", "fixing", "code",
				"example", "markup", "aria-", "not working", "why is",
				"troubleshoot", "broken",
			},
		},
	}
}

// Classifier maps raw query text to an intent. Deterministic and
// pattern-driven: no learned components.
type Classifier struct {
	rules  []Rule
	logger *slog.Logger
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithRules replaces the default rule table. Evaluation order follows slice
// order.
func WithRules(rules []Rule) Option {
	return func(c *Classifier) {
		if len(rules) > 0 {
			c.rules = rules
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Classifier) {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
	}
}

// NewClassifier creates a classifier with the default rule table.
func NewClassifier(opts ...Option) *Classifier {
	c := &Classifier{
		rules:  DefaultRules(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify returns the intent of the first rule whose marker appears in the
// lowercased query text, or Unknown when no rule matches.
func (c *Classifier) Classify(queryText string) core.Intent {
	text := strings.ToLower(queryText)

	for _, rule := range c.rules {
		for _, marker := range rule.Markers {
			if strings.Contains(text, marker) {
				c.logger.Debug("classified query intent",
					"rule", rule.Name, "marker", marker)
				return rule.Intent
			}
		}
	}

	c.logger.Debug("no intent rule matched, using unknown")
	return core.IntentUnknown
}
