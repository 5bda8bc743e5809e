// Package constants provides named constants used throughout the meshsim codebase.
// This centralizes magic numbers for better maintainability and documentation.
package constants

// Normalizer constants
const (
	// DefaultMaxAccumulations is the number of accumulation events after which
	// a normalizer freezes its statistics. Bounding accumulation prevents
	// float precision loss from unbounded running sums.
	DefaultMaxAccumulations = 1_000_000

	// DefaultStdEpsilon is the floor applied to the standard deviation before
	// it is used as a divisor.
	DefaultStdEpsilon = 1e-8
)

// Graph construction constants
const (
	// DefaultWorldEdgeRadius is the proximity threshold, in mesh length units,
	// below which two nodes are connected by a world edge in the deforming-plate
	// variant.
	DefaultWorldEdgeRadius = 0.006

	// WorldDim is the dimensionality of world-space positions.
	WorldDim = 3

	// ClothMeshDim is the dimensionality of material-space positions in the
	// cloth variant. Cloth meshes are parameterized over a 2-D material space,
	// which is why the cloth mesh-edge feature is 7 wide (3+1+2+1) while the
	// deforming-plate feature is 8 wide (3+1+3+1).
	ClothMeshDim = 2
)

// Feature sizes derived from the layouts above. Normalizer sizes are
// validated against these at model construction.
const (
	// OutputSize is the per-node network output width (a 3-vector: acceleration
	// for cloth, velocity for the deforming plate).
	OutputSize = 3

	// ClothEdgeFeatureSize is Δworld(3) + |Δworld| + Δmesh(2) + |Δmesh|.
	ClothEdgeFeatureSize = 7

	// DeformMeshEdgeFeatureSize is Δmesh(3) + |Δmesh| + Δworld(3) + |Δworld|.
	DeformMeshEdgeFeatureSize = 8

	// WorldEdgeFeatureSize is Δworld(3) + |Δworld|.
	WorldEdgeFeatureSize = 4
)
