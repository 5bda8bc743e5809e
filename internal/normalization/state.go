package normalization

import (
	"encoding/json"
	"fmt"
)

// StateVersion is the current normalizer state schema version.
const StateVersion = 1

// State is the serializable snapshot of a Normalizer. It is the payload
// persisted by the checkpoint store and restored on load. Restoration
// validates version and dimensionality before acceptance, so an
// incompatible checkpoint fails at load time rather than on the first
// forward call.
type State struct {
	Version          int       `json:"version"`
	Size             int       `json:"size"`
	MaxAccumulations int64     `json:"max_accumulations"`
	StdEpsilon       float64   `json:"std_epsilon"`
	Sum              []float64 `json:"sum"`
	SumSquared       []float64 `json:"sum_squared"`
	Count            float64   `json:"count"`
	NumAccumulations int64     `json:"num_accumulations"`
}

// State returns a copy of the normalizer's current accumulator state.
func (n *Normalizer) State() State {
	sum := make([]float64, n.size)
	copy(sum, n.accSum)
	sumSq := make([]float64, n.size)
	copy(sumSq, n.accSumSquared)
	return State{
		Version:          StateVersion,
		Size:             n.size,
		MaxAccumulations: n.maxAccumulations,
		StdEpsilon:       n.stdEpsilon,
		Sum:              sum,
		SumSquared:       sumSq,
		Count:            n.accCount,
		NumAccumulations: n.numAccumulations,
	}
}

// Restore replaces the normalizer's accumulator state with s. It fails if
// the state schema version is unknown or the dimensionality disagrees with
// the normalizer's configured size.
func (n *Normalizer) Restore(s State) error {
	if s.Version != StateVersion {
		return fmt.Errorf("normalization: unsupported state version %d (expected %d)", s.Version, StateVersion)
	}
	if s.Size != n.size {
		return fmt.Errorf("normalization: state size %d does not match normalizer size %d", s.Size, n.size)
	}
	if len(s.Sum) != s.Size || len(s.SumSquared) != s.Size {
		return fmt.Errorf("normalization: state accumulators have length %d/%d, expected %d", len(s.Sum), len(s.SumSquared), s.Size)
	}
	n.maxAccumulations = s.MaxAccumulations
	n.stdEpsilon = s.StdEpsilon
	copy(n.accSum, s.Sum)
	copy(n.accSumSquared, s.SumSquared)
	n.accCount = s.Count
	n.numAccumulations = s.NumAccumulations
	return nil
}

// MarshalBlob encodes the normalizer state as a JSON blob for the
// checkpoint store.
func (n *Normalizer) MarshalBlob() ([]byte, error) {
	return json.Marshal(n.State())
}

// RestoreBlob decodes a JSON blob produced by MarshalBlob and restores it.
func (n *Normalizer) RestoreBlob(blob []byte) error {
	var s State
	if err := json.Unmarshal(blob, &s); err != nil {
		return fmt.Errorf("normalization: decoding state blob: %w", err)
	}
	return n.Restore(s)
}
