package simulation

import (
	"github.com/jangseop-park/meshsim/internal/mesh"
	"github.com/jangseop-park/meshsim/internal/model"
	"github.com/jangseop-park/meshsim/internal/normalization"
)

// Scenario defines a complete simulation experiment.
type Scenario struct {
	Name    string
	Variant string // "cloth" or "deform"
	Mesh    *mesh.Data
	Steps   int

	// Core names a registered core implementation. Empty means "zero".
	Core string

	// CoreOverride, when non-nil, replaces the registry lookup entirely.
	// Use this for scenarios that need scripted network output.
	CoreOverride model.Core

	// Deform holds deforming-plate options; ignored for cloth.
	Deform model.DeformConfig

	// NormConfig overrides the normalizer configuration when non-nil.
	NormConfig *normalization.Config

	// Targets, when non-nil, supplies per-step prescribed target positions
	// for the deform variant. Step numbering starts at 0.
	Targets func(step int) [][]float64

	// BeforeStep, when non-nil, is called before each step executes with
	// the mutable working state. Use this to inject external motion.
	BeforeStep func(step int, d *mesh.Data)
}

// StepResult captures the outcome of a single simulation step.
type StepResult struct {
	Index  int
	Output *model.StepOutput

	// Positions is the world position after this step.
	Positions [][]float64
}

// SimulationResult captures all steps and the model that produced them.
type SimulationResult struct {
	Initial [][]float64
	Steps   []StepResult
	Model   model.Model
}

// FinalPositions returns the world position after the last step.
func (r SimulationResult) FinalPositions() [][]float64 {
	if len(r.Steps) == 0 {
		return r.Initial
	}
	return r.Steps[len(r.Steps)-1].Positions
}
