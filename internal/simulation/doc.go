// Package simulation provides a multi-step test harness for validating
// emergent dynamics of the simulation pipeline.
//
// The simulation exercises the real models, normalizers, graph builders,
// and checkpoint stores — no mocks. Scenarios are Go builders that
// construct meshes and run configurable numbers of simulation steps,
// capturing position snapshots for property-based assertions.
//
// Each test gets isolated checkpoint storage via t.TempDir().
//
// Usage:
//
//	func TestClothInertia(t *testing.T) {
//	    r := simulation.NewRunner(t)
//	    result := r.Run(simulation.Scenario{
//	        Name:    "cloth-inertia",
//	        Variant: "cloth",
//	        Mesh:    simulation.FlagStrip(4),
//	        Steps:   10,
//	    })
//	    simulation.AssertAllFinite(t, result)
//	    simulation.AssertNodeStationary(t, result, 0)
//	}
package simulation
