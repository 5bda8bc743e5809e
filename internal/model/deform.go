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
	"github.com/jangseop-park/meshsim/internal/segment"
	"github.com/jangseop-park/meshsim/internal/vecmath"
)

// DeformConfig holds the deforming-plate builder parameters.
type DeformConfig struct {
	// WorldEdgeRadius is the proximity threshold for world-edge creation.
	// Default: constants.DefaultWorldEdgeRadius.
	WorldEdgeRadius float64

	// NodeDynamic enables the auxiliary per-node motion-variability signal
	// consumed by ripple-style core variants.
	NodeDynamic bool
}

// DefaultDeformConfig returns the default deforming-plate configuration.
func DefaultDeformConfig() DeformConfig {
	return DeformConfig{WorldEdgeRadius: constants.DefaultWorldEdgeRadius}
}

// Deform simulates a deforming plate. The graph carries two edge sets:
// mesh edges from triangle connectivity and world edges from spatial
// proximity (transient contact). Node state advances by explicit velocity
// integration. Material space is 3-D for this variant.
type Deform struct {
	mode   Mode
	core   Core
	config DeformConfig
	logger *slog.Logger

	outputNormalizer      *normalization.Normalizer
	nodeNormalizer        *normalization.Normalizer
	nodeDynamicNormalizer *normalization.Normalizer
	meshEdgeNormalizer    *normalization.Normalizer
	worldEdgeNormalizer   *normalization.Normalizer
}

// NewDeform creates a deforming-plate model around the given learned core.
// The model starts in training mode.
func NewDeform(core Core, cfg DeformConfig, normCfg normalization.Config, logger *slog.Logger) *Deform {
	if cfg.WorldEdgeRadius == 0 {
		cfg.WorldEdgeRadius = constants.DefaultWorldEdgeRadius
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Deform{
		mode:                  ModeTraining,
		core:                  core,
		config:                cfg,
		logger:                logger,
		outputNormalizer:      normalization.New(constants.OutputSize, normCfg),
		nodeNormalizer:        normalization.New(constants.WorldDim, normCfg),
		nodeDynamicNormalizer: normalization.New(1, normCfg),
		meshEdgeNormalizer:    normalization.New(constants.DeformMeshEdgeFeatureSize, normCfg),
		worldEdgeNormalizer:   normalization.New(constants.WorldEdgeFeatureSize, normCfg),
	}
}

// Mode returns the current lifecycle mode.
func (m *Deform) Mode() Mode { return m.mode }

// SetMode switches between training and evaluation.
func (m *Deform) SetMode(mode Mode) { m.mode = mode }

// OutputNormalizer exposes the velocity normalizer for the external
// training driver.
func (m *Deform) OutputNormalizer() *normalization.Normalizer { return m.outputNormalizer }

// BuildGraph encodes the per-step input into the simulation graph and the
// auxiliary signals for the learned core.
func (m *Deform) BuildGraph(d *mesh.Data) (*graph.Graph, *Aux, error) {
	if err := d.Validate(constants.WorldDim, constants.WorldDim); err != nil {
		return nil, nil, err
	}
	if err := d.RequireTarget(constants.WorldDim); err != nil {
		return nil, nil, err
	}
	training := m.mode == ModeTraining
	n := d.NumNodes()

	senders, receivers, err := mesh.TrianglesToEdges(d.Cells, n)
	if err != nil {
		return nil, nil, err
	}

	meshEdges, relWorldNorms, err := m.buildMeshEdges(d, senders, receivers, training)
	if err != nil {
		return nil, nil, err
	}
	worldEdges, err := m.buildWorldEdges(d, senders, receivers)
	if err != nil {
		return nil, nil, err
	}
	nodeFeatures, err := m.buildNodeFeatures(d, training)
	if err != nil {
		return nil, nil, err
	}

	aux := &Aux{
		MeshEdgeNormalizer:  m.meshEdgeNormalizer,
		WorldEdgeNormalizer: m.worldEdgeNormalizer,
		WorldPos:            d.WorldPos,
		MeshPos:             d.MeshPos,
	}
	if m.config.NodeDynamic {
		dynamic, err := m.buildNodeDynamic(relWorldNorms, receivers, n, training)
		if err != nil {
			return nil, nil, err
		}
		aux.NodeDynamic = dynamic
	}

	g := &graph.Graph{
		NodeFeatures: nodeFeatures,
		EdgeSets:     []graph.EdgeSet{*meshEdges, *worldEdges},
	}
	if err := g.Validate(); err != nil {
		return nil, nil, err
	}
	m.logger.Debug("built deform graph",
		"nodes", n,
		"mesh_edges", meshEdges.NumEdges(),
		"world_edges", worldEdges.NumEdges(),
		"mode", m.mode.String())
	return g, aux, nil
}

// buildMeshEdges assembles the 8-wide mesh-edge features. It also returns
// the per-edge |Δworld| magnitudes, reused by the node-dynamic signal.
func (m *Deform) buildMeshEdges(d *mesh.Data, senders, receivers []int, training bool) (*graph.EdgeSet, []float64, error) {
	features := make([][]float64, len(senders))
	relWorldNorms := make([]float64, len(senders))
	for i := range senders {
		relMesh := vecmath.Sub(d.MeshPos[senders[i]], d.MeshPos[receivers[i]])
		relWorld := vecmath.Sub(d.WorldPos[senders[i]], d.WorldPos[receivers[i]])
		relWorldNorms[i] = vecmath.Norm(relWorld)

		feat := make([]float64, 0, constants.DeformMeshEdgeFeatureSize)
		feat = append(feat, relMesh...)
		feat = append(feat, vecmath.Norm(relMesh))
		feat = append(feat, relWorld...)
		feat = append(feat, relWorldNorms[i])
		features[i] = feat
	}
	normalized, err := m.meshEdgeNormalizer.Normalize(features, training)
	if err != nil {
		return nil, nil, fmt.Errorf("model: normalizing mesh-edge features: %w", err)
	}
	return &graph.EdgeSet{
		Name:      graph.MeshEdges,
		Senders:   senders,
		Receivers: receivers,
		Features:  normalized,
	}, relWorldNorms, nil
}

// buildWorldEdges runs the proximity query and applies the exclusion rules:
// no self pairs, no pair already connected by a mesh edge, and no edge into
// an OBSTACLE or HANDLE receiver (those nodes are driven externally, not by
// contact). World-edge statistics are frozen by policy: the normalizer only
// transforms, it never accumulates.
func (m *Deform) buildWorldEdges(d *mesh.Data, meshSenders, meshReceivers []int) (*graph.EdgeSet, error) {
	meshPair := make(map[[2]int]struct{}, len(meshSenders))
	for i := range meshSenders {
		meshPair[[2]int{meshSenders[i], meshReceivers[i]}] = struct{}{}
	}

	var senders, receivers []int
	var features [][]float64
	for _, p := range vecmath.PairsWithin(d.WorldPos, m.config.WorldEdgeRadius) {
		if _, dup := meshPair[[2]int{p.Sender, p.Receiver}]; dup {
			continue
		}
		switch d.NodeType[p.Receiver] {
		case mesh.NodeTypeObstacle, mesh.NodeTypeHandle:
			continue
		}
		relWorld := vecmath.Sub(d.WorldPos[p.Sender], d.WorldPos[p.Receiver])
		feat := make([]float64, 0, constants.WorldEdgeFeatureSize)
		feat = append(feat, relWorld...)
		feat = append(feat, vecmath.Norm(relWorld))

		senders = append(senders, p.Sender)
		receivers = append(receivers, p.Receiver)
		features = append(features, feat)
	}

	normalized, err := m.worldEdgeNormalizer.Normalize(features, false)
	if err != nil {
		return nil, fmt.Errorf("model: normalizing world-edge features: %w", err)
	}
	return &graph.EdgeSet{
		Name:      graph.WorldEdges,
		Senders:   senders,
		Receivers: receivers,
		Features:  normalized,
	}, nil
}

// buildNodeFeatures assembles the per-node blend: OBSTACLE nodes carry
// their normalized prescribed displacement (target - current), all other
// nodes carry zeros; both are concatenated with the one-hot type. The
// masked displacement matrix is normalized whole, so the zero rows of
// non-obstacle nodes enter the statistics.
func (m *Deform) buildNodeFeatures(d *mesh.Data, training bool) ([][]float64, error) {
	n := d.NumNodes()
	oneHot, err := mesh.OneHotRows(d.NodeType)
	if err != nil {
		return nil, err
	}

	masked := make([][]float64, n)
	for i := 0; i < n; i++ {
		if d.NodeType[i] == mesh.NodeTypeObstacle {
			masked[i] = vecmath.Sub(d.TargetWorldPos[i], d.WorldPos[i])
		} else {
			masked[i] = make([]float64, constants.WorldDim)
		}
	}
	kinematic, err := m.nodeNormalizer.Normalize(masked, training)
	if err != nil {
		return nil, fmt.Errorf("model: normalizing kinematic features: %w", err)
	}

	features := make([][]float64, n)
	for i := 0; i < n; i++ {
		feat := make([]float64, 0, constants.WorldDim+mesh.NodeTypeSize)
		if d.NodeType[i] == mesh.NodeTypeObstacle {
			feat = append(feat, kinematic[i]...)
		} else {
			feat = append(feat, make([]float64, constants.WorldDim)...)
		}
		feat = append(feat, oneHot[i]...)
		features[i] = feat
	}
	return features, nil
}

// buildNodeDynamic aggregates |Δworld| over the mesh edges into each
// receiver node under max and min, and normalizes the spread. Isolated
// nodes get the segment sentinel 0 for both, so their dynamic is 0 before
// normalization.
func (m *Deform) buildNodeDynamic(relWorldNorms []float64, receivers []int, numNodes int, training bool) ([]float64, error) {
	maxAgg, err := segment.ReduceScalar(relWorldNorms, receivers, numNodes, segment.OpMax)
	if err != nil {
		return nil, fmt.Errorf("model: node-dynamic max reduction: %w", err)
	}
	minAgg, err := segment.ReduceScalar(relWorldNorms, receivers, numNodes, segment.OpMin)
	if err != nil {
		return nil, fmt.Errorf("model: node-dynamic min reduction: %w", err)
	}

	spread := make([][]float64, numNodes)
	for i := 0; i < numNodes; i++ {
		spread[i] = []float64{maxAgg[i] - minAgg[i]}
	}
	normalized, err := m.nodeDynamicNormalizer.Normalize(spread, training)
	if err != nil {
		return nil, fmt.Errorf("model: normalizing node dynamic: %w", err)
	}
	out := make([]float64, numNodes)
	for i, row := range normalized {
		out[i] = row[0]
	}
	return out, nil
}

// Step runs one simulation step. In training mode the result carries the
// raw network output; in evaluation mode it carries the integrated next
// position together with the current position and velocity for the
// external rollout driver.
func (m *Deform) Step(d *mesh.Data) (*StepOutput, error) {
	g, aux, err := m.BuildGraph(d)
	if err != nil {
		return nil, err
	}
	raw, err := m.core.Forward(g, aux)
	if err != nil {
		return nil, fmt.Errorf("model: core forward: %w", err)
	}
	if m.mode == ModeTraining {
		return &StepOutput{Raw: raw}, nil
	}
	return m.Update(d, raw)
}

// Update integrates raw network output: velocity is denormalized and
// applied through the explicit Euler rule.
func (m *Deform) Update(d *mesh.Data, raw [][]float64) (*StepOutput, error) {
	velocity, err := m.outputNormalizer.Denormalize(raw)
	if err != nil {
		return nil, fmt.Errorf("model: denormalizing output: %w", err)
	}
	return &StepOutput{
		Next:     IntegrateVelocity(d.WorldPos, velocity),
		Current:  d.WorldPos,
		Velocity: velocity,
	}, nil
}

func (m *Deform) normalizers() map[string]*normalization.Normalizer {
	return map[string]*normalization.Normalizer{
		"output_normalizer":       m.outputNormalizer,
		"node_normalizer":         m.nodeNormalizer,
		"node_dynamic_normalizer": m.nodeDynamicNormalizer,
		"mesh_edge_normalizer":    m.meshEdgeNormalizer,
		"world_edge_normalizer":   m.worldEdgeNormalizer,
	}
}

// Save persists the core parameters and normalizer states under name.
func (m *Deform) Save(ctx context.Context, s checkpoint.Store, name string) error {
	return saveBlobSet(ctx, s, name, m.core, m.normalizers())
}

// Load restores a matched checkpoint set written by Save.
func (m *Deform) Load(ctx context.Context, s checkpoint.Store, name string) error {
	return loadBlobSet(ctx, s, name, m.core, m.normalizers())
}
