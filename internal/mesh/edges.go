package mesh

import (
	"fmt"
	"sort"
)

// TrianglesToEdges decomposes triangle connectivity into a two-way directed
// edge list. Each triangle contributes its three sides; sides shared by
// adjacent triangles are deduplicated, and every unique undirected edge
// appears exactly once per direction in the result. The output order is
// deterministic: unique (lo, hi) pairs sorted lexicographically, forward
// directions first, then all reversed directions.
func TrianglesToEdges(cells [][3]int, numNodes int) (senders, receivers []int, err error) {
	type pair struct{ lo, hi int }
	seen := make(map[pair]struct{}, len(cells)*3)

	for ci, cell := range cells {
		sides := [3][2]int{
			{cell[0], cell[1]},
			{cell[1], cell[2]},
			{cell[2], cell[0]},
		}
		for _, side := range sides {
			a, b := side[0], side[1]
			if a < 0 || a >= numNodes || b < 0 || b >= numNodes {
				return nil, nil, fmt.Errorf("mesh: cell %d references node outside [0,%d): %v", ci, numNodes, cell)
			}
			if a == b {
				return nil, nil, fmt.Errorf("mesh: cell %d is degenerate: %v", ci, cell)
			}
			if a > b {
				a, b = b, a
			}
			seen[pair{a, b}] = struct{}{}
		}
	}

	unique := make([]pair, 0, len(seen))
	for p := range seen {
		unique = append(unique, p)
	}
	sort.Slice(unique, func(i, j int) bool {
		if unique[i].lo != unique[j].lo {
			return unique[i].lo < unique[j].lo
		}
		return unique[i].hi < unique[j].hi
	})

	senders = make([]int, 0, 2*len(unique))
	receivers = make([]int, 0, 2*len(unique))
	for _, p := range unique {
		senders = append(senders, p.lo)
		receivers = append(receivers, p.hi)
	}
	for _, p := range unique {
		senders = append(senders, p.hi)
		receivers = append(receivers, p.lo)
	}
	return senders, receivers, nil
}
