package ontology

import "sync/atomic"

// Provider hands out the current ontology snapshot. Refresh builds a whole
// new graph and swaps the pointer atomically: readers never lock, and
// in-flight requests finish against the snapshot they started with.
type Provider struct {
	current atomic.Pointer[Graph]
}

// NewProvider creates a provider serving the given graph.
func NewProvider(g *Graph) *Provider {
	p := &Provider{}
	p.current.Store(g)
	return p
}

// Graph returns the current snapshot.
func (p *Provider) Graph() *Graph {
	return p.current.Load()
}

// Swap replaces the served snapshot. The old graph stays valid for requests
// already holding it.
func (p *Provider) Swap(g *Graph) {
	if g != nil {
		p.current.Store(g)
	}
}

// ReloadFile builds a new graph from the schema file and swaps it in.
// On error the previous snapshot keeps serving.
func (p *Provider) ReloadFile(path string, opts ...Option) error {
	g, err := LoadFile(path, opts...)
	if err != nil {
		return err
	}
	p.Swap(g)
	return nil
}
