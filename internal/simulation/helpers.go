package simulation

import (
	"github.com/jangseop-park/meshsim/internal/mesh"
)

// FlagStrip builds a cloth strip of n quads (two triangles each), two nodes
// tall, with the left column pinned as handles. Material space is 2-D;
// the strip starts flat in the world z=0 plane at rest.
func FlagStrip(n int) *mesh.Data {
	const spacing = 0.1

	numNodes := 2 * (n + 1)
	d := &mesh.Data{
		WorldPos:     make([][]float64, numNodes),
		PrevWorldPos: make([][]float64, numNodes),
		MeshPos:      make([][]float64, numNodes),
		NodeType:     make([]mesh.NodeType, numNodes),
	}
	for i := 0; i <= n; i++ {
		for j := 0; j < 2; j++ {
			idx := i*2 + j
			x, y := float64(i)*spacing, float64(j)*spacing
			d.WorldPos[idx] = []float64{x, y, 0}
			d.PrevWorldPos[idx] = []float64{x, y, 0}
			d.MeshPos[idx] = []float64{x, y}
			if i == 0 {
				d.NodeType[idx] = mesh.NodeTypeHandle
			} else {
				d.NodeType[idx] = mesh.NodeTypeNormal
			}
		}
	}
	for i := 0; i < n; i++ {
		a, b := i*2, (i+1)*2
		c, e := i*2+1, (i+1)*2+1
		d.Cells = append(d.Cells, [3]int{a, b, c}, [3]int{b, e, c})
	}
	return d
}

// WithDrift gives every non-handle node an initial velocity of delta per
// step along dimension dim by backdating its previous position.
func WithDrift(d *mesh.Data, dim int, delta float64) *mesh.Data {
	for i := range d.PrevWorldPos {
		if d.NodeType[i] == mesh.NodeTypeHandle {
			continue
		}
		d.PrevWorldPos[i] = append([]float64(nil), d.WorldPos[i]...)
		d.PrevWorldPos[i][dim] -= delta
	}
	return d
}

// PlateWithObstacle builds a single-triangle plate plus a kinematic
// obstacle node hovering within contact range of the plate's first two
// nodes. Material space is 3-D; targets start equal to world positions.
func PlateWithObstacle() *mesh.Data {
	world := [][]float64{
		{0, 0, 0},
		{0.001, 0, 0},
		{1, 0, 0},
		{0.002, 0, 0},
	}
	d := &mesh.Data{
		WorldPos:       clonePositions(world),
		TargetWorldPos: clonePositions(world),
		MeshPos:        clonePositions(world),
		NodeType: []mesh.NodeType{
			mesh.NodeTypeNormal,
			mesh.NodeTypeNormal,
			mesh.NodeTypeNormal,
			mesh.NodeTypeObstacle,
		},
		Cells: [][3]int{{0, 1, 2}},
	}
	return d
}
