// Package segment implements grouped (unsorted-segment) reductions: per-edge
// values are aggregated into per-node results keyed by an arbitrary,
// unsorted group index. Results are independent of the order in which items
// with the same group id are presented.
package segment

import "fmt"

// Op is a reduction operation.
type Op int

const (
	OpSum Op = iota
	OpMean
	OpMax
	OpMin
)

// ParseOp maps an operation name to an Op. An unknown name is a
// configuration error and is never silently substituted.
func ParseOp(name string) (Op, error) {
	switch name {
	case "sum":
		return OpSum, nil
	case "mean":
		return OpMean, nil
	case "max":
		return OpMax, nil
	case "min":
		return OpMin, nil
	default:
		return 0, fmt.Errorf("segment: unknown reduction operation %q (valid: sum, mean, max, min)", name)
	}
}

// String returns the operation name.
func (op Op) String() string {
	switch op {
	case OpSum:
		return "sum"
	case OpMean:
		return "mean"
	case OpMax:
		return "max"
	case OpMin:
		return "min"
	default:
		return fmt.Sprintf("Op(%d)", int(op))
	}
}

// Reduce aggregates values row-wise into numSegments groups keyed by
// segmentIDs. segmentIDs must be parallel to values, with every id in
// [0, numSegments). Groups with no contributing rows take 0 for every
// operation; the cloth model relies on max/min being defined even for
// isolated nodes.
func Reduce(values [][]float64, segmentIDs []int, numSegments int, op Op) ([][]float64, error) {
	if len(values) != len(segmentIDs) {
		return nil, fmt.Errorf("segment: %d values but %d segment ids", len(values), len(segmentIDs))
	}
	width := 0
	for i, row := range values {
		if i == 0 {
			width = len(row)
		} else if len(row) != width {
			return nil, fmt.Errorf("segment: row %d has width %d, expected %d", i, len(row), width)
		}
	}

	result := make([][]float64, numSegments)
	for i := range result {
		result[i] = make([]float64, width)
	}
	counts := make([]int, numSegments)

	for i, row := range values {
		id := segmentIDs[i]
		if id < 0 || id >= numSegments {
			return nil, fmt.Errorf("segment: id %d at index %d outside [0,%d)", id, i, numSegments)
		}
		dst := result[id]
		switch op {
		case OpSum, OpMean:
			for j, v := range row {
				dst[j] += v
			}
		case OpMax:
			for j, v := range row {
				if counts[id] == 0 || v > dst[j] {
					dst[j] = v
				}
			}
		case OpMin:
			for j, v := range row {
				if counts[id] == 0 || v < dst[j] {
					dst[j] = v
				}
			}
		default:
			return nil, fmt.Errorf("segment: invalid operation %v", op)
		}
		counts[id]++
	}

	if op == OpMean {
		for id, c := range counts {
			if c == 0 {
				continue
			}
			for j := range result[id] {
				result[id][j] /= float64(c)
			}
		}
	}
	return result, nil
}

// ReduceScalar is Reduce over scalar values.
func ReduceScalar(values []float64, segmentIDs []int, numSegments int, op Op) ([]float64, error) {
	rows := make([][]float64, len(values))
	for i, v := range values {
		rows[i] = []float64{v}
	}
	reduced, err := Reduce(rows, segmentIDs, numSegments, op)
	if err != nil {
		return nil, err
	}
	out := make([]float64, numSegments)
	for i, row := range reduced {
		out[i] = row[0]
	}
	return out, nil
}
