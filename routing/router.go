package routing

import (
	"github.com/poiesic/ontosearch/core"
)

// Route selects one partition to search with its prior weight, consumed
// later by fusion scoring.
type Route struct {
	Partition core.DocumentType
	Weight    float64
}

// uniformUnknownWeight trades precision for recall when no intent matched.
const uniformUnknownWeight = 0.5

// defaultTable maps each intent to its partitions and prior weights,
// ordered strongest first.
var defaultTable = map[core.Intent][]Route{
	core.IntentResearch: {
		{Partition: core.DocTypeAcademicPaper, Weight: 1.0},
		{Partition: core.DocTypeStandards, Weight: 0.4},
		{Partition: core.DocTypeExpertBlog, Weight: 0.3},
	},
	core.IntentStandards: {
		{Partition: core.DocTypeStandards, Weight: 1.0},
		{Partition: core.DocTypeExpertBlog, Weight: 0.5},
		{Partition: core.DocTypeAcademicPaper, Weight: 0.3},
	},
	core.IntentImplementation: {
		{Partition: core.DocTypeExpertBlog, Weight: 1.0},
		{Partition: core.DocTypeAuditTicket, Weight: 0.8},
		{Partition: core.DocTypeStandards, Weight: 0.3},
	},
	core.IntentTesting: {
		{Partition: core.DocTypeTestingTranscript, Weight: 1.0},
		{Partition: core.DocTypeAuditTicket, Weight: 0.8},
		{Partition: core.DocTypeExpertBlog, Weight: 0.2},
	},
	core.IntentNews: {
		{Partition: core.DocTypeNewsletter, Weight: 1.0},
		{Partition: core.DocTypeExpertBlog, Weight: 0.4},
	},
}

// Router maps intent and query constraints to an ordered partition plan.
type Router struct {
	table map[core.Intent][]Route
}

// Option configures a Router.
type Option func(*Router)

// WithTable replaces the default intent routing table.
func WithTable(table map[core.Intent][]Route) Option {
	return func(r *Router) {
		if len(table) > 0 {
			r.table = table
		}
	}
}

// NewRouter creates a router with the default routing table.
func NewRouter(opts ...Option) *Router {
	r := &Router{table: defaultTable}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Plan returns the partitions to search for this request, in priority order.
//
// An explicit document-type filter on the query overrides intent routing
// entirely: only that partition is searched, at weight 1.0. Unknown intent
// routes to every partition at a uniform weight.
func (r *Router) Plan(queryIntent core.Intent, q core.Query) []Route {
	if q.TypeFilter != "" {
		return []Route{{Partition: q.TypeFilter, Weight: 1.0}}
	}

	if routes, ok := r.table[queryIntent]; ok {
		out := make([]Route, len(routes))
		copy(out, routes)
		return out
	}

	all := core.AllDocumentTypes()
	out := make([]Route, 0, len(all))
	for _, dt := range all {
		out = append(out, Route{Partition: dt, Weight: uniformUnknownWeight})
	}
	return out
}
