// Package mesh provides the simulation-mesh data model: node role types,
// the per-step input record, and the decomposition of triangle connectivity
// into directed edge lists.
package mesh

import "fmt"

// NodeType is the enumerated role tag of a mesh node. The coding matches
// the upstream simulation datasets and is stable across checkpoints.
type NodeType int

const (
	NodeTypeNormal       NodeType = 0 // free node, integrated by the model
	NodeTypeObstacle     NodeType = 1 // externally driven toward a target position
	NodeTypeAirfoil      NodeType = 2
	NodeTypeHandle       NodeType = 3 // manually fixed
	NodeTypeInflow       NodeType = 4
	NodeTypeOutflow      NodeType = 5
	NodeTypeWallBoundary NodeType = 6

	// NodeTypeSize is the width of the one-hot encoding.
	NodeTypeSize = 9
)

// String returns the node type name.
func (t NodeType) String() string {
	switch t {
	case NodeTypeNormal:
		return "normal"
	case NodeTypeObstacle:
		return "obstacle"
	case NodeTypeAirfoil:
		return "airfoil"
	case NodeTypeHandle:
		return "handle"
	case NodeTypeInflow:
		return "inflow"
	case NodeTypeOutflow:
		return "outflow"
	case NodeTypeWallBoundary:
		return "wall_boundary"
	default:
		return fmt.Sprintf("NodeType(%d)", int(t))
	}
}

// Valid reports whether t is within the one-hot range.
func (t NodeType) Valid() bool {
	return t >= 0 && t < NodeTypeSize
}

// OneHot returns the one-hot encoding of t as a NodeTypeSize-wide row.
func (t NodeType) OneHot() []float64 {
	row := make([]float64, NodeTypeSize)
	if t.Valid() {
		row[t] = 1
	}
	return row
}

// OneHotRows encodes a node-type column as a matrix of one-hot rows.
// Invalid type codes are an input contract violation.
func OneHotRows(types []NodeType) ([][]float64, error) {
	rows := make([][]float64, len(types))
	for i, t := range types {
		if !t.Valid() {
			return nil, fmt.Errorf("mesh: node %d has invalid node type %d", i, int(t))
		}
		rows[i] = t.OneHot()
	}
	return rows, nil
}
