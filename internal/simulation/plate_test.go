package simulation

import (
	"testing"

	"github.com/jangseop-park/meshsim/internal/graph"
	"github.com/jangseop-park/meshsim/internal/model"
)

// scriptedCore emits a fixed raw row for every node.
type scriptedCore struct {
	rows int
}

func (c *scriptedCore) Forward(g *graph.Graph, aux *model.Aux) ([][]float64, error) {
	out := make([][]float64, c.rows)
	for i := range out {
		out[i] = []float64{1, 0, 0}
	}
	return out, nil
}

// With zero predicted velocity, the plate holds its position regardless of
// how the obstacle's prescribed targets move.
func TestPlateHoldsUnderMovingObstacle(t *testing.T) {
	base := PlateWithObstacle()
	r := NewRunner(t)
	result := r.Run(Scenario{
		Name:    "plate-moving-obstacle",
		Variant: "deform",
		Mesh:    base,
		Steps:   10,
		Targets: TimestepTargets(base.TargetWorldPos, 1, 0.001),
	})

	AssertAllFinite(t, result)
	AssertVelocityOutputs(t, result)
	AssertBoundedDisplacement(t, result, 1e-12)
}

// Node-dynamic extraction runs across a full rollout without disturbing
// the state threading.
func TestPlateNodeDynamicRollout(t *testing.T) {
	r := NewRunner(t)
	result := r.Run(Scenario{
		Name:    "plate-node-dynamic",
		Variant: "deform",
		Mesh:    PlateWithObstacle(),
		Steps:   5,
		Deform:  model.DeformConfig{NodeDynamic: true},
	})

	AssertAllFinite(t, result)
	if len(result.Steps) != 5 {
		t.Fatalf("recorded %d steps, want 5", len(result.Steps))
	}
}

// A scripted core's raw output flows through the velocity-form update:
// denormalized velocity lands in the Velocity field and Next = cur + v.
func TestPlateScriptedVelocity(t *testing.T) {
	core := &scriptedCore{rows: 4}

	r := NewRunner(t)
	result := r.Run(Scenario{
		Name:         "plate-scripted",
		Variant:      "deform",
		Mesh:         PlateWithObstacle(),
		Steps:        1,
		CoreOverride: core,
	})

	out := result.Steps[0].Output
	if out.Next == nil || out.Current == nil || out.Velocity == nil {
		t.Fatal("velocity-form output incomplete")
	}
	for node := range out.Next {
		for d := range out.Next[node] {
			want := out.Current[node][d] + out.Velocity[node][d]
			if diff := out.Next[node][d] - want; diff > 1e-12 || diff < -1e-12 {
				t.Errorf("node %d dim %d: next = %v, want cur+velocity = %v", node, d, out.Next[node][d], want)
			}
		}
	}
}
