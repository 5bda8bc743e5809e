// Package vecmath provides small vector math helpers shared by the graph
// builders: row-wise differences and norms over position matrices, and the
// dense fixed-radius proximity scan used for world-edge construction.
package vecmath

import (
	"fmt"

	"github.com/viterin/vek"
	"gonum.org/v1/gonum/floats"
)

// Sub returns a - b as a new slice. Panics via gonum if lengths differ.
func Sub(a, b []float64) []float64 {
	out := make([]float64, len(a))
	floats.SubTo(out, a, b)
	return out
}

// Norm returns the Euclidean norm of v.
func Norm(v []float64) float64 {
	return floats.Norm(v, 2)
}

// RowDiffs returns rows[senders[i]] - rows[receivers[i]] for every i.
func RowDiffs(rows [][]float64, senders, receivers []int) ([][]float64, error) {
	if len(senders) != len(receivers) {
		return nil, fmt.Errorf("vecmath: senders (%d) and receivers (%d) length mismatch", len(senders), len(receivers))
	}
	out := make([][]float64, len(senders))
	for i := range senders {
		s, r := senders[i], receivers[i]
		if s < 0 || s >= len(rows) || r < 0 || r >= len(rows) {
			return nil, fmt.Errorf("vecmath: edge %d references node (%d,%d) outside [0,%d)", i, s, r, len(rows))
		}
		out[i] = Sub(rows[s], rows[r])
	}
	return out, nil
}

// RowNorms returns the Euclidean norm of every row.
func RowNorms(rows [][]float64) []float64 {
	out := make([]float64, len(rows))
	for i, row := range rows {
		out[i] = Norm(row)
	}
	return out
}

// Pair is an ordered (sender, receiver) index pair.
type Pair struct {
	Sender   int
	Receiver int
}

// PairsWithin returns every ordered pair (i, j), i != j, whose positions are
// strictly closer than radius. The scan is dense O(N²); callers targeting
// large meshes can swap this for a spatial index without changing the
// returned set. Pairs are emitted in row-major order, so the result is
// deterministic for a given input.
func PairsWithin(pos [][]float64, radius float64) []Pair {
	var pairs []Pair
	for i := range pos {
		for j := range pos {
			if i == j {
				continue
			}
			if vek.Distance(pos[i], pos[j]) < radius {
				pairs = append(pairs, Pair{Sender: i, Receiver: j})
			}
		}
	}
	return pairs
}
