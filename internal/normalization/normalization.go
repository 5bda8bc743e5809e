// Package normalization implements an online feature normalizer. It
// accumulates per-dimension mean/variance statistics from the batches it
// sees during training and whitens features against the frozen statistics
// during evaluation. Accumulation stops after a fixed number of events to
// bound float precision loss from unbounded running sums.
package normalization

import (
	"fmt"
	"math"

	"github.com/jangseop-park/meshsim/internal/constants"
	"gonum.org/v1/gonum/floats"
)

// Config holds tunable parameters for a Normalizer.
type Config struct {
	// MaxAccumulations is the number of accumulation events after which
	// statistics freeze. Default: constants.DefaultMaxAccumulations.
	MaxAccumulations int64

	// StdEpsilon is the floor applied to the standard deviation before it is
	// used as a divisor. Default: constants.DefaultStdEpsilon.
	StdEpsilon float64
}

// DefaultConfig returns the default normalizer configuration.
func DefaultConfig() Config {
	return Config{
		MaxAccumulations: constants.DefaultMaxAccumulations,
		StdEpsilon:       constants.DefaultStdEpsilon,
	}
}

// Normalizer accumulates streaming mean/variance statistics for a fixed
// feature dimensionality and applies the whitening transform. Each distinct
// physical quantity (node features, mesh-edge features, ...) owns its own
// instance. Not safe for concurrent use; the model design has exactly one
// active caller per instance.
type Normalizer struct {
	size             int
	maxAccumulations int64
	stdEpsilon       float64

	accSum           []float64
	accSumSquared    []float64
	accCount         float64
	numAccumulations int64
}

// New creates a Normalizer for feature vectors of the given width.
func New(size int, cfg Config) *Normalizer {
	if cfg.MaxAccumulations == 0 {
		cfg.MaxAccumulations = constants.DefaultMaxAccumulations
	}
	if cfg.StdEpsilon == 0 {
		cfg.StdEpsilon = constants.DefaultStdEpsilon
	}
	return &Normalizer{
		size:             size,
		maxAccumulations: cfg.MaxAccumulations,
		stdEpsilon:       cfg.StdEpsilon,
		accSum:           make([]float64, size),
		accSumSquared:    make([]float64, size),
	}
}

// Size returns the feature dimensionality this normalizer was built for.
func (n *Normalizer) Size() int { return n.size }

// Normalize whitens batch against the current statistics. When accumulate is
// true and the accumulation budget is not exhausted, the batch is folded
// into the statistics first; past the budget accumulation is silently
// skipped. Rows must be exactly Size() wide.
func (n *Normalizer) Normalize(batch [][]float64, accumulate bool) ([][]float64, error) {
	if err := n.checkBatch(batch); err != nil {
		return nil, err
	}
	if accumulate && n.numAccumulations < n.maxAccumulations {
		n.accumulate(batch)
	}

	mean := n.Mean()
	std := n.Std()
	out := make([][]float64, len(batch))
	for i, row := range batch {
		o := make([]float64, n.size)
		for j := range row {
			o[j] = (row[j] - mean[j]) / std[j]
		}
		out[i] = o
	}
	return out, nil
}

// Denormalize is the exact inverse of Normalize under the same frozen
// statistics: y*std + mean.
func (n *Normalizer) Denormalize(batch [][]float64) ([][]float64, error) {
	if err := n.checkBatch(batch); err != nil {
		return nil, err
	}
	mean := n.Mean()
	std := n.Std()
	out := make([][]float64, len(batch))
	for i, row := range batch {
		o := make([]float64, n.size)
		for j := range row {
			o[j] = row[j]*std[j] + mean[j]
		}
		out[i] = o
	}
	return out, nil
}

// accumulate folds a batch into the running statistics. The count advances
// by the number of rows, so the resulting statistics are invariant to how
// the data was chunked across calls.
func (n *Normalizer) accumulate(batch [][]float64) {
	rowSq := make([]float64, n.size)
	for _, row := range batch {
		floats.Add(n.accSum, row)
		floats.MulTo(rowSq, row, row)
		floats.Add(n.accSumSquared, rowSq)
	}
	n.accCount += float64(len(batch))
	n.numAccumulations++
}

// Mean returns the per-dimension mean of the accumulated data. Before any
// accumulation the mean is zero.
func (n *Normalizer) Mean() []float64 {
	safeCount := math.Max(n.accCount, 1)
	out := make([]float64, n.size)
	floats.ScaleTo(out, 1/safeCount, n.accSum)
	return out
}

// Std returns the per-dimension standard deviation, floored at StdEpsilon.
func (n *Normalizer) Std() []float64 {
	safeCount := math.Max(n.accCount, 1)
	mean := n.Mean()
	out := make([]float64, n.size)
	for j := range out {
		variance := n.accSumSquared[j]/safeCount - mean[j]*mean[j]
		std := 0.0
		if variance > 0 {
			std = math.Sqrt(variance)
		}
		out[j] = math.Max(std, n.stdEpsilon)
	}
	return out
}

// Frozen reports whether the accumulation budget is exhausted.
func (n *Normalizer) Frozen() bool {
	return n.numAccumulations >= n.maxAccumulations
}

func (n *Normalizer) checkBatch(batch [][]float64) error {
	for i, row := range batch {
		if len(row) != n.size {
			return fmt.Errorf("normalization: row %d has %d features, normalizer expects %d", i, len(row), n.size)
		}
	}
	return nil
}
