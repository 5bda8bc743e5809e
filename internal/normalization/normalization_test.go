package normalization

import (
	"math"
	"testing"
)

const tol = 1e-9

func almostEqual(a, b []float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}

func TestNormalizeBeforeAnyAccumulation(t *testing.T) {
	n := New(2, DefaultConfig())

	// With no statistics: mean=0, std floored at epsilon.
	out, err := n.Normalize([][]float64{{1, 2}}, false)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	want := []float64{1 / 1e-8, 2 / 1e-8}
	if !almostEqualScaled(out[0], want) {
		t.Errorf("Normalize() = %v, want %v", out[0], want)
	}
}

func almostEqualScaled(a, b []float64) bool {
	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-3*math.Abs(b[i])+tol {
			return false
		}
	}
	return true
}

func TestRoundTrip(t *testing.T) {
	n := New(3, DefaultConfig())

	// Seed some statistics first so mean/std are non-trivial.
	seed := [][]float64{{1, 2, 3}, {4, 5, 6}, {-2, 0, 9}}
	if _, err := n.Normalize(seed, true); err != nil {
		t.Fatalf("Normalize(accumulate) error: %v", err)
	}

	batch := [][]float64{{0.5, -1.5, 2.25}, {100, 0, -3}}
	norm, err := n.Normalize(batch, false)
	if err != nil {
		t.Fatalf("Normalize() error: %v", err)
	}
	back, err := n.Denormalize(norm)
	if err != nil {
		t.Fatalf("Denormalize() error: %v", err)
	}
	for i := range batch {
		if !almostEqual(back[i], batch[i]) {
			t.Errorf("round trip row %d = %v, want %v", i, back[i], batch[i])
		}
	}
}

func TestChunkingInvariance(t *testing.T) {
	a := [][]float64{{1, 10}, {2, 20}}
	b := [][]float64{{3, 30}, {4, 40}, {5, 50}}

	chunked := New(2, DefaultConfig())
	if _, err := chunked.Normalize(a, true); err != nil {
		t.Fatal(err)
	}
	if _, err := chunked.Normalize(b, true); err != nil {
		t.Fatal(err)
	}

	whole := New(2, DefaultConfig())
	if _, err := whole.Normalize(append(append([][]float64{}, a...), b...), true); err != nil {
		t.Fatal(err)
	}

	if !almostEqual(chunked.Mean(), whole.Mean()) {
		t.Errorf("chunked mean %v != whole mean %v", chunked.Mean(), whole.Mean())
	}
	if !almostEqual(chunked.Std(), whole.Std()) {
		t.Errorf("chunked std %v != whole std %v", chunked.Std(), whole.Std())
	}
}

func TestAccumulationCap(t *testing.T) {
	n := New(1, Config{MaxAccumulations: 3})

	for i := 0; i < 3; i++ {
		if _, err := n.Normalize([][]float64{{float64(i)}}, true); err != nil {
			t.Fatal(err)
		}
	}
	if !n.Frozen() {
		t.Fatal("normalizer should be frozen after reaching the cap")
	}
	mean, std := n.Mean(), n.Std()

	// Further accumulation is silently skipped.
	if _, err := n.Normalize([][]float64{{1000}, {2000}}, true); err != nil {
		t.Fatal(err)
	}
	if !almostEqual(n.Mean(), mean) || !almostEqual(n.Std(), std) {
		t.Errorf("statistics changed past the cap: mean %v->%v std %v->%v", mean, n.Mean(), std, n.Std())
	}
}

func TestKnownStatistics(t *testing.T) {
	n := New(1, DefaultConfig())
	if _, err := n.Normalize([][]float64{{2}, {4}, {4}, {4}, {5}, {5}, {7}, {9}}, true); err != nil {
		t.Fatal(err)
	}
	if mean := n.Mean()[0]; math.Abs(mean-5) > tol {
		t.Errorf("mean = %v, want 5", mean)
	}
	if std := n.Std()[0]; math.Abs(std-2) > tol {
		t.Errorf("std = %v, want 2", std)
	}
}

func TestNormalizeShapeMismatch(t *testing.T) {
	n := New(3, DefaultConfig())
	if _, err := n.Normalize([][]float64{{1, 2}}, false); err == nil {
		t.Error("Normalize() with a short row should fail")
	}
	if _, err := n.Denormalize([][]float64{{1, 2, 3, 4}}); err == nil {
		t.Error("Denormalize() with a long row should fail")
	}
}

func TestStateRoundTrip(t *testing.T) {
	n := New(2, DefaultConfig())
	if _, err := n.Normalize([][]float64{{1, -1}, {3, 5}}, true); err != nil {
		t.Fatal(err)
	}

	blob, err := n.MarshalBlob()
	if err != nil {
		t.Fatalf("MarshalBlob() error: %v", err)
	}

	restored := New(2, DefaultConfig())
	if err := restored.RestoreBlob(blob); err != nil {
		t.Fatalf("RestoreBlob() error: %v", err)
	}
	if !almostEqual(restored.Mean(), n.Mean()) || !almostEqual(restored.Std(), n.Std()) {
		t.Errorf("restored statistics differ: mean %v vs %v, std %v vs %v",
			restored.Mean(), n.Mean(), restored.Std(), n.Std())
	}
}

func TestRestoreValidation(t *testing.T) {
	n := New(2, DefaultConfig())

	if err := n.Restore(State{Version: 99, Size: 2, Sum: make([]float64, 2), SumSquared: make([]float64, 2)}); err == nil {
		t.Error("Restore() with unknown version should fail")
	}
	if err := n.Restore(State{Version: StateVersion, Size: 5, Sum: make([]float64, 5), SumSquared: make([]float64, 5)}); err == nil {
		t.Error("Restore() with mismatched size should fail")
	}
}
