package rollout

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/jangseop-park/meshsim/internal/mesh"
	"github.com/jangseop-park/meshsim/internal/model"
	"github.com/jangseop-park/meshsim/internal/normalization"
)

func clothInitial() *mesh.Data {
	return &mesh.Data{
		WorldPos:     [][]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		PrevWorldPos: [][]float64{{0, 0, 0}, {0.9, 0, 0}, {0, 1, 0}},
		MeshPos:      [][]float64{{0, 0}, {1, 0}, {0, 1}},
		NodeType:     []mesh.NodeType{mesh.NodeTypeNormal, mesh.NodeTypeNormal, mesh.NodeTypeHandle},
		Cells:        [][3]int{{0, 1, 2}},
	}
}

func deformInitial() *mesh.Data {
	return &mesh.Data{
		WorldPos:       [][]float64{{2, 0, 0}},
		TargetWorldPos: [][]float64{{2, 0, 0}},
		MeshPos:        [][]float64{{2, 0, 0}},
		NodeType:       []mesh.NodeType{mesh.NodeTypeNormal},
		Cells:          [][3]int{},
	}
}

func TestRunClothInertia(t *testing.T) {
	// The zero core predicts zero acceleration under frozen statistics, so
	// node 1 keeps drifting by its initial velocity of 0.1 per step.
	m := model.NewCloth(model.NewZeroCore(3), normalization.DefaultConfig(), nil)

	traj, err := Run(m, "cloth", clothInitial(), Config{Steps: 5}, nil, nil)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if traj.NumSteps() != 5 {
		t.Errorf("NumSteps() = %d, want 5", traj.NumSteps())
	}
	if len(traj.Positions) != 6 {
		t.Fatalf("trajectory has %d frames, want 6 (initial + 5)", len(traj.Positions))
	}
	if got := traj.Positions[0][1][0]; got != 1 {
		t.Errorf("initial frame node 1 x = %v, want 1", got)
	}
	for step := 1; step <= 5; step++ {
		want := 1 + 0.1*float64(step)
		if got := traj.Positions[step][1][0]; math.Abs(got-want) > 1e-9 {
			t.Errorf("frame %d node 1 x = %v, want %v", step, got, want)
		}
		// The pinned node never moves.
		if got := traj.Positions[step][0][0]; got != 0 {
			t.Errorf("frame %d node 0 x = %v, want 0", step, got)
		}
	}
}

func TestRunClothDoesNotMutateInitial(t *testing.T) {
	m := model.NewCloth(model.NewZeroCore(3), normalization.DefaultConfig(), nil)
	initial := clothInitial()

	if _, err := Run(m, "cloth", initial, Config{Steps: 3}, nil, nil); err != nil {
		t.Fatal(err)
	}
	if initial.WorldPos[1][0] != 1 || initial.PrevWorldPos[1][0] != 0.9 {
		t.Error("rollout mutated the caller's initial state")
	}
}

func TestRunDeformHoldsPosition(t *testing.T) {
	m := model.NewDeform(model.NewZeroCore(3), model.DefaultDeformConfig(), normalization.DefaultConfig(), nil)

	traj, err := Run(m, "deform", deformInitial(), Config{Steps: 4}, nil, nil)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	// Zero predicted velocity: the position never changes.
	for step, frame := range traj.Positions {
		if got := frame[0][0]; math.Abs(got-2) > 1e-9 {
			t.Errorf("frame %d x = %v, want 2", step, got)
		}
	}
}

func TestRunDeformTargetFn(t *testing.T) {
	m := model.NewDeform(model.NewZeroCore(3), model.DefaultDeformConfig(), normalization.DefaultConfig(), nil)

	var steps []int
	targets := func(step int) [][]float64 {
		steps = append(steps, step)
		return [][]float64{{2, 0.001 * float64(step), 0}}
	}

	if _, err := Run(m, "deform", deformInitial(), Config{Steps: 3, Targets: targets}, nil, nil); err != nil {
		t.Fatal(err)
	}
	if len(steps) != 3 || steps[0] != 0 || steps[2] != 2 {
		t.Errorf("target fn called for steps %v, want [0 1 2]", steps)
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	m := model.NewCloth(model.NewZeroCore(3), normalization.DefaultConfig(), nil)

	if _, err := Run(m, "cloth", clothInitial(), Config{Steps: 0}, nil, nil); err == nil {
		t.Error("Run() with zero steps should fail")
	}
	if _, err := Run(m, "airfoil", clothInitial(), Config{Steps: 1}, nil, nil); err == nil {
		t.Error("Run() with unknown variant should fail")
	}
}

func TestArrowRoundTrip(t *testing.T) {
	traj := &Trajectory{
		Variant:  "cloth",
		NumNodes: 2,
		Positions: [][][]float64{
			{{0, 0, 0}, {1, 0, 0}},
			{{0, 0.5, 0}, {1.1, 0, -0.25}},
		},
	}
	path := filepath.Join(t.TempDir(), "traj.arrow")

	if err := WriteArrowFile(path, traj); err != nil {
		t.Fatalf("WriteArrowFile() error: %v", err)
	}
	got, err := ReadArrowFile(path)
	if err != nil {
		t.Fatalf("ReadArrowFile() error: %v", err)
	}

	if got.Variant != "cloth" {
		t.Errorf("variant = %q, want cloth", got.Variant)
	}
	if got.NumNodes != 2 {
		t.Errorf("NumNodes = %d, want 2", got.NumNodes)
	}
	if len(got.Positions) != len(traj.Positions) {
		t.Fatalf("read %d frames, want %d", len(got.Positions), len(traj.Positions))
	}
	for step := range traj.Positions {
		for node := range traj.Positions[step] {
			for d := range traj.Positions[step][node] {
				if got.Positions[step][node][d] != traj.Positions[step][node][d] {
					t.Errorf("position[%d][%d][%d] = %v, want %v",
						step, node, d, got.Positions[step][node][d], traj.Positions[step][node][d])
				}
			}
		}
	}
}

func TestWriteArrowFileRejectsBadWidth(t *testing.T) {
	traj := &Trajectory{
		Variant:   "cloth",
		NumNodes:  1,
		Positions: [][][]float64{{{1, 2}}},
	}
	if err := WriteArrowFile(filepath.Join(t.TempDir(), "bad.arrow"), traj); err == nil {
		t.Error("WriteArrowFile() with 2-wide positions should fail")
	}
}
