package simulation

import (
	"testing"

	"github.com/jangseop-park/meshsim/internal/model"
	"github.com/jangseop-park/meshsim/internal/normalization"
)

// Runner orchestrates multi-step simulation experiments against real
// models and graph builders.
type Runner struct {
	t *testing.T
}

// NewRunner creates a simulation runner.
func NewRunner(t *testing.T) *Runner {
	t.Helper()
	return &Runner{t: t}
}

// Run executes the scenario and returns the collected results.
func (r *Runner) Run(scenario Scenario) SimulationResult {
	r.t.Helper()

	if scenario.Mesh == nil {
		r.t.Fatalf("scenario %s: no mesh", scenario.Name)
	}
	if scenario.Steps < 1 {
		r.t.Fatalf("scenario %s: steps must be at least 1", scenario.Name)
	}

	m := r.buildModel(scenario)
	m.SetMode(model.ModeEvaluation)

	cur := *scenario.Mesh
	result := SimulationResult{
		Initial: clonePositions(cur.WorldPos),
		Model:   m,
	}

	for step := 0; step < scenario.Steps; step++ {
		if scenario.BeforeStep != nil {
			scenario.BeforeStep(step, &cur)
		}
		if scenario.Variant == "deform" && scenario.Targets != nil {
			if target := scenario.Targets(step); target != nil {
				cur.TargetWorldPos = target
			}
		}

		out, err := m.Step(&cur)
		if err != nil {
			r.t.Fatalf("scenario %s: step %d: %v", scenario.Name, step, err)
		}
		result.Steps = append(result.Steps, StepResult{
			Index:     step,
			Output:    out,
			Positions: clonePositions(out.Next),
		})

		switch scenario.Variant {
		case "cloth":
			cur.PrevWorldPos = cur.WorldPos
			cur.WorldPos = out.Next
		case "deform":
			cur.WorldPos = out.Next
		}
	}

	return result
}

// buildModel constructs the variant model from the scenario.
func (r *Runner) buildModel(scenario Scenario) model.Model {
	r.t.Helper()

	normCfg := normalization.DefaultConfig()
	if scenario.NormConfig != nil {
		normCfg = *scenario.NormConfig
	}

	core := scenario.CoreOverride
	if core == nil {
		name := scenario.Core
		if name == "" {
			name = "zero"
		}
		c, err := model.NewCore(name, 3)
		if err != nil {
			r.t.Fatalf("scenario %s: %v", scenario.Name, err)
		}
		core = c
	}

	switch scenario.Variant {
	case "cloth":
		return model.NewCloth(core, normCfg, nil)
	case "deform":
		return model.NewDeform(core, scenario.Deform, normCfg, nil)
	default:
		r.t.Fatalf("scenario %s: unknown variant %q", scenario.Name, scenario.Variant)
		return nil
	}
}

func clonePositions(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

// offsetRows returns rows with delta added to every coordinate of dim d.
func offsetRows(rows [][]float64, d int, delta float64) [][]float64 {
	out := clonePositions(rows)
	for i := range out {
		out[i][d] += delta
	}
	return out
}

// TimestepTargets holds every node's target at base plus a per-step offset
// in dimension d, moving linearly by delta each step.
func TimestepTargets(base [][]float64, d int, delta float64) func(step int) [][]float64 {
	return func(step int) [][]float64 {
		return offsetRows(base, d, delta*float64(step+1))
	}
}
