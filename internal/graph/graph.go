// Package graph defines the encoded simulation graph handed to the learned
// message-passing core: a node feature matrix plus one or more named edge
// sets with parallel sender/receiver index arrays and per-edge features.
// Graphs are rebuilt fresh every step and carry no cross-step state.
package graph

import "fmt"

// Edge set names used by the builders.
const (
	MeshEdges  = "mesh_edges"
	WorldEdges = "world_edges"
)

// EdgeSet is a named collection of directed edges. Senders, Receivers and
// Features are parallel: edge i runs Senders[i] -> Receivers[i] and carries
// feature row Features[i].
type EdgeSet struct {
	Name      string
	Senders   []int
	Receivers []int
	Features  [][]float64
}

// NumEdges returns the edge count.
func (e *EdgeSet) NumEdges() int { return len(e.Senders) }

// Graph is the full input to the message-passing core.
type Graph struct {
	NodeFeatures [][]float64
	EdgeSets     []EdgeSet
}

// NumNodes returns the node count.
func (g *Graph) NumNodes() int { return len(g.NodeFeatures) }

// EdgeSet returns the named edge set, or nil if absent.
func (g *Graph) EdgeSet(name string) *EdgeSet {
	for i := range g.EdgeSets {
		if g.EdgeSets[i].Name == name {
			return &g.EdgeSets[i]
		}
	}
	return nil
}

// Validate checks the structural invariants: parallel arrays within each
// edge set, and every sender/receiver index valid for the node feature
// matrix.
func (g *Graph) Validate() error {
	n := g.NumNodes()
	for _, es := range g.EdgeSets {
		if len(es.Receivers) != len(es.Senders) || len(es.Features) != len(es.Senders) {
			return fmt.Errorf("graph: edge set %q has unequal lengths (senders %d, receivers %d, features %d)",
				es.Name, len(es.Senders), len(es.Receivers), len(es.Features))
		}
		for i := range es.Senders {
			if es.Senders[i] < 0 || es.Senders[i] >= n {
				return fmt.Errorf("graph: edge set %q sender %d = %d outside [0,%d)", es.Name, i, es.Senders[i], n)
			}
			if es.Receivers[i] < 0 || es.Receivers[i] >= n {
				return fmt.Errorf("graph: edge set %q receiver %d = %d outside [0,%d)", es.Name, i, es.Receivers[i], n)
			}
		}
	}
	return nil
}
