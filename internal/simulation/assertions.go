package simulation

import (
	"math"
	"testing"
)

// AssertAllFinite asserts that no recorded position is NaN or infinite.
func AssertAllFinite(t *testing.T, result SimulationResult) {
	t.Helper()
	for _, sr := range result.Steps {
		for node, pos := range sr.Positions {
			for d, v := range pos {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					t.Errorf("AssertAllFinite: step %d node %d dim %d = %v", sr.Index, node, d, v)
				}
			}
		}
	}
}

// AssertNodeStationary asserts that a node never moves from its initial
// position in any step.
func AssertNodeStationary(t *testing.T, result SimulationResult, node int) {
	t.Helper()
	want := result.Initial[node]
	for _, sr := range result.Steps {
		for d := range want {
			if diff := math.Abs(sr.Positions[node][d] - want[d]); diff > 1e-9 {
				t.Errorf("AssertNodeStationary: step %d node %d dim %d drifted by %v", sr.Index, node, d, diff)
			}
		}
	}
}

// AssertNodeAt asserts a node's position after the final step.
func AssertNodeAt(t *testing.T, result SimulationResult, node int, want []float64, tol float64) {
	t.Helper()
	got := result.FinalPositions()[node]
	if len(got) != len(want) {
		t.Fatalf("AssertNodeAt: node %d has %d dims, want %d", node, len(got), len(want))
	}
	for d := range want {
		if math.Abs(got[d]-want[d]) > tol {
			t.Errorf("AssertNodeAt: node %d dim %d = %v, want %v (tol %v)", node, d, got[d], want[d], tol)
		}
	}
}

// AssertConstantVelocity asserts that a node advances by the same
// displacement along dim every step.
func AssertConstantVelocity(t *testing.T, result SimulationResult, node, dim int, delta float64) {
	t.Helper()
	prev := result.Initial[node][dim]
	for _, sr := range result.Steps {
		got := sr.Positions[node][dim]
		if math.Abs((got-prev)-delta) > 1e-9 {
			t.Errorf("AssertConstantVelocity: step %d node %d moved %v, want %v", sr.Index, node, got-prev, delta)
		}
		prev = got
	}
}

// AssertBoundedDisplacement asserts that no node moves farther than maxDist
// from its initial position in any step.
func AssertBoundedDisplacement(t *testing.T, result SimulationResult, maxDist float64) {
	t.Helper()
	for _, sr := range result.Steps {
		for node, pos := range sr.Positions {
			var sq float64
			for d := range pos {
				diff := pos[d] - result.Initial[node][d]
				sq += diff * diff
			}
			if dist := math.Sqrt(sq); dist > maxDist {
				t.Errorf("AssertBoundedDisplacement: step %d node %d moved %v > %v", sr.Index, node, dist, maxDist)
			}
		}
	}
}

// AssertVelocityOutputs asserts that every step output carries the
// current-position and velocity fields of the velocity-form update.
func AssertVelocityOutputs(t *testing.T, result SimulationResult) {
	t.Helper()
	for _, sr := range result.Steps {
		if sr.Output.Current == nil || sr.Output.Velocity == nil {
			t.Errorf("AssertVelocityOutputs: step %d output missing current/velocity", sr.Index)
		}
	}
}
