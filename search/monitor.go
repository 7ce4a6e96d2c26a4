package search

import (
	"github.com/poiesic/ontosearch/core"
	"github.com/poiesic/ontosearch/routing"
)

// PipelineMonitor provides hooks to observe the retrieval pipeline.
// Implement this interface to track intermediate steps and results.
type PipelineMonitor interface {
	Start(query string)
	AfterClassify(intent core.Intent)
	AfterExpand(variants []core.QueryVariant)
	AfterRoute(routes []routing.Route)
	PartitionSearched(partition core.DocumentType, variant string, hitCount int, err error)
	AfterFanout(hits []core.DocumentHit, failures int)
	Finish(results []core.RankedResult)
}

// noopMonitor is a no-op implementation of PipelineMonitor
type noopMonitor struct{}

var _ PipelineMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                                                  {}
func (n *noopMonitor) AfterClassify(_ core.Intent)                                     {}
func (n *noopMonitor) AfterExpand(_ []core.QueryVariant)                               {}
func (n *noopMonitor) AfterRoute(_ []routing.Route)                                    {}
func (n *noopMonitor) PartitionSearched(_ core.DocumentType, _ string, _ int, _ error) {}
func (n *noopMonitor) AfterFanout(_ []core.DocumentHit, _ int)                         {}
func (n *noopMonitor) Finish(_ []core.RankedResult)                                    {}

// NoopMonitor returns a monitor that ignores every callback.
func NoopMonitor() PipelineMonitor {
	return &noopMonitor{}
}
