// Package model wires the simulation core together: per-variant graph
// builders, online feature normalization, the learned message-passing core
// behind the Core interface, and the time integration that turns network
// output back into physical state.
package model

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/jangseop-park/meshsim/internal/graph"
	"github.com/jangseop-park/meshsim/internal/normalization"
)

// Aux carries the collaboration extras handed to the learned core alongside
// the graph: references to the edge normalizers (the deforming-plate core
// applies further normalization internally), the optional node-dynamic
// auxiliary signal, and the raw positions.
type Aux struct {
	MeshEdgeNormalizer  *normalization.Normalizer
	WorldEdgeNormalizer *normalization.Normalizer

	// NodeDynamic is the per-node motion-variability scalar, present only
	// when the deforming-plate builder has it enabled. The external core
	// uses it to select high-dynamics nodes; this package does not consume
	// it further.
	NodeDynamic []float64

	WorldPos [][]float64
	MeshPos  [][]float64
}

// Core is the learned message-passing network. Implementations are external
// to this package; the only contract is per-node output of a fixed width
// for a given input graph.
type Core interface {
	// Forward runs the network and returns one output row per node.
	Forward(g *graph.Graph, aux *Aux) ([][]float64, error)
}

// CoreState is implemented by cores whose parameters participate in
// checkpoints.
type CoreState interface {
	// MarshalParams serializes the core's learned parameters.
	MarshalParams() ([]byte, error)

	// RestoreParams replaces the core's parameters. Dimension mismatches
	// must be rejected here so a bad checkpoint fails at load time.
	RestoreParams(blob []byte) error
}

// CoreFactory constructs a core emitting rows of the given width.
type CoreFactory func(outputSize int) (Core, error)

var coreRegistry = map[string]CoreFactory{}

// RegisterCore registers a core implementation under a name. Called from
// init functions; duplicate names panic.
func RegisterCore(name string, factory CoreFactory) {
	if _, dup := coreRegistry[name]; dup {
		panic(fmt.Sprintf("model: core %q registered twice", name))
	}
	coreRegistry[name] = factory
}

// NewCore constructs the named core. An unknown name is a configuration
// error, never silently substituted.
func NewCore(name string, outputSize int) (Core, error) {
	factory, ok := coreRegistry[name]
	if !ok {
		return nil, fmt.Errorf("model: unknown core %q (registered: %v)", name, CoreNames())
	}
	return factory(outputSize)
}

// CoreNames returns the registered core names, sorted.
func CoreNames() []string {
	names := make([]string, 0, len(coreRegistry))
	for name := range coreRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ZeroCore is the built-in null network: it returns all-zero output of the
// configured width. Under the integrators this yields pure inertial motion
// (cloth) or a static mesh (plate), which makes it useful for rollout
// smoke tests and as a placeholder before a trained core is attached.
type ZeroCore struct {
	outputSize int
}

// NewZeroCore creates a ZeroCore with the given output width.
func NewZeroCore(outputSize int) *ZeroCore {
	return &ZeroCore{outputSize: outputSize}
}

// Forward returns a zero row per node.
func (c *ZeroCore) Forward(g *graph.Graph, aux *Aux) ([][]float64, error) {
	out := make([][]float64, g.NumNodes())
	for i := range out {
		out[i] = make([]float64, c.outputSize)
	}
	return out, nil
}

type zeroCoreParams struct {
	OutputSize int `json:"output_size"`
}

// MarshalParams serializes the core configuration.
func (c *ZeroCore) MarshalParams() ([]byte, error) {
	return json.Marshal(zeroCoreParams{OutputSize: c.outputSize})
}

// RestoreParams validates that the checkpoint was produced by a core of the
// same output width.
func (c *ZeroCore) RestoreParams(blob []byte) error {
	var p zeroCoreParams
	if err := json.Unmarshal(blob, &p); err != nil {
		return fmt.Errorf("model: decoding core parameters: %w", err)
	}
	if p.OutputSize != c.outputSize {
		return fmt.Errorf("model: checkpoint core output size %d does not match configured %d", p.OutputSize, c.outputSize)
	}
	return nil
}

func init() {
	RegisterCore("zero", func(outputSize int) (Core, error) {
		return NewZeroCore(outputSize), nil
	})
}
