package model

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jangseop-park/meshsim/internal/checkpoint"
	"github.com/jangseop-park/meshsim/internal/constants"
	"github.com/jangseop-park/meshsim/internal/graph"
	"github.com/jangseop-park/meshsim/internal/mesh"
	"github.com/jangseop-park/meshsim/internal/normalization"
	"github.com/jangseop-park/meshsim/internal/vecmath"
)

// Cloth simulates a static cloth (flag) mesh. Node state advances by a
// position-form Verlet update from network-predicted acceleration; the
// graph carries a single mesh edge set derived from triangle connectivity,
// with no world edges. Material space is 2-D for this variant.
type Cloth struct {
	mode   Mode
	core   Core
	logger *slog.Logger

	outputNormalizer *normalization.Normalizer
	nodeNormalizer   *normalization.Normalizer
	edgeNormalizer   *normalization.Normalizer
}

// NewCloth creates a cloth model around the given learned core. The model
// starts in training mode.
func NewCloth(core Core, normCfg normalization.Config, logger *slog.Logger) *Cloth {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cloth{
		mode:             ModeTraining,
		core:             core,
		logger:           logger,
		outputNormalizer: normalization.New(constants.OutputSize, normCfg),
		nodeNormalizer:   normalization.New(constants.WorldDim+mesh.NodeTypeSize, normCfg),
		edgeNormalizer:   normalization.New(constants.ClothEdgeFeatureSize, normCfg),
	}
}

// Mode returns the current lifecycle mode.
func (m *Cloth) Mode() Mode { return m.mode }

// SetMode switches between training and evaluation.
func (m *Cloth) SetMode(mode Mode) { m.mode = mode }

// OutputNormalizer exposes the acceleration normalizer for the external
// training driver.
func (m *Cloth) OutputNormalizer() *normalization.Normalizer { return m.outputNormalizer }

// BuildGraph encodes the per-step input into the simulation graph:
// finite-difference velocity plus one-hot type per node, and the 7-wide
// relative-position feature per directed mesh edge.
func (m *Cloth) BuildGraph(d *mesh.Data) (*graph.Graph, error) {
	if err := d.Validate(constants.WorldDim, constants.ClothMeshDim); err != nil {
		return nil, err
	}
	if err := d.RequirePrev(constants.WorldDim); err != nil {
		return nil, err
	}
	training := m.mode == ModeTraining
	n := d.NumNodes()

	oneHot, err := mesh.OneHotRows(d.NodeType)
	if err != nil {
		return nil, err
	}
	nodeFeatures := make([][]float64, n)
	for i := 0; i < n; i++ {
		velocity := vecmath.Sub(d.WorldPos[i], d.PrevWorldPos[i])
		nodeFeatures[i] = append(velocity, oneHot[i]...)
	}

	senders, receivers, err := mesh.TrianglesToEdges(d.Cells, n)
	if err != nil {
		return nil, err
	}
	edgeFeatures := make([][]float64, len(senders))
	for i := range senders {
		relWorld := vecmath.Sub(d.WorldPos[senders[i]], d.WorldPos[receivers[i]])
		relMesh := vecmath.Sub(d.MeshPos[senders[i]], d.MeshPos[receivers[i]])
		feat := make([]float64, 0, constants.ClothEdgeFeatureSize)
		feat = append(feat, relWorld...)
		feat = append(feat, vecmath.Norm(relWorld))
		feat = append(feat, relMesh...)
		feat = append(feat, vecmath.Norm(relMesh))
		edgeFeatures[i] = feat
	}

	normEdges, err := m.edgeNormalizer.Normalize(edgeFeatures, training)
	if err != nil {
		return nil, fmt.Errorf("model: normalizing mesh-edge features: %w", err)
	}
	normNodes, err := m.nodeNormalizer.Normalize(nodeFeatures, training)
	if err != nil {
		return nil, fmt.Errorf("model: normalizing node features: %w", err)
	}

	g := &graph.Graph{
		NodeFeatures: normNodes,
		EdgeSets: []graph.EdgeSet{
			{Name: graph.MeshEdges, Senders: senders, Receivers: receivers, Features: normEdges},
		},
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	m.logger.Debug("built cloth graph", "nodes", n, "mesh_edges", len(senders), "mode", m.mode.String())
	return g, nil
}

// Step runs one simulation step. In training mode the result carries the
// raw network output for external loss computation; in evaluation mode it
// carries the integrated next position.
func (m *Cloth) Step(d *mesh.Data) (*StepOutput, error) {
	g, err := m.BuildGraph(d)
	if err != nil {
		return nil, err
	}
	raw, err := m.core.Forward(g, &Aux{WorldPos: d.WorldPos, MeshPos: d.MeshPos})
	if err != nil {
		return nil, fmt.Errorf("model: core forward: %w", err)
	}
	if m.mode == ModeTraining {
		return &StepOutput{Raw: raw}, nil
	}
	next, err := m.Update(d, raw)
	if err != nil {
		return nil, err
	}
	return &StepOutput{Next: next}, nil
}

// Update integrates raw network output into the next position:
// acceleration is denormalized and applied through the Verlet-style rule.
func (m *Cloth) Update(d *mesh.Data, raw [][]float64) ([][]float64, error) {
	acceleration, err := m.outputNormalizer.Denormalize(raw)
	if err != nil {
		return nil, fmt.Errorf("model: denormalizing output: %w", err)
	}
	return IntegrateCloth(d.WorldPos, d.PrevWorldPos, acceleration), nil
}

func (m *Cloth) normalizers() map[string]*normalization.Normalizer {
	return map[string]*normalization.Normalizer{
		"output_normalizer": m.outputNormalizer,
		"node_normalizer":   m.nodeNormalizer,
		"edge_normalizer":   m.edgeNormalizer,
	}
}

// Save persists the core parameters and normalizer states under name.
func (m *Cloth) Save(ctx context.Context, s checkpoint.Store, name string) error {
	return saveBlobSet(ctx, s, name, m.core, m.normalizers())
}

// Load restores a matched checkpoint set written by Save.
func (m *Cloth) Load(ctx context.Context, s checkpoint.Store, name string) error {
	return loadBlobSet(ctx, s, name, m.core, m.normalizers())
}
