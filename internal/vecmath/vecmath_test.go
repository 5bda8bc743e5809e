package vecmath

import (
	"math"
	"testing"
)

func TestSub(t *testing.T) {
	got := Sub([]float64{3, 4, 5}, []float64{1, 1, 1})
	want := []float64{2, 3, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Sub()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestNorm(t *testing.T) {
	tests := []struct {
		name string
		v    []float64
		want float64
	}{
		{name: "3-4-5 triangle", v: []float64{3, 4}, want: 5},
		{name: "unit axis", v: []float64{0, 0, 1}, want: 1},
		{name: "zero vector", v: []float64{0, 0, 0}, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Norm(tt.v); math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("Norm() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRowDiffs(t *testing.T) {
	rows := [][]float64{{0, 0, 0}, {1, 0, 0}, {0, 2, 0}}

	got, err := RowDiffs(rows, []int{1, 2}, []int{0, 1})
	if err != nil {
		t.Fatalf("RowDiffs() error: %v", err)
	}
	want := [][]float64{{1, 0, 0}, {-1, 2, 0}}
	for i := range want {
		for j := range want[i] {
			if got[i][j] != want[i][j] {
				t.Errorf("RowDiffs()[%d][%d] = %v, want %v", i, j, got[i][j], want[i][j])
			}
		}
	}
}

func TestRowDiffsErrors(t *testing.T) {
	rows := [][]float64{{0, 0, 0}}

	if _, err := RowDiffs(rows, []int{0, 0}, []int{0}); err == nil {
		t.Error("RowDiffs() with mismatched index lengths should fail")
	}
	if _, err := RowDiffs(rows, []int{1}, []int{0}); err == nil {
		t.Error("RowDiffs() with out-of-range sender should fail")
	}
}

func TestPairsWithin(t *testing.T) {
	pos := [][]float64{
		{0, 0, 0},
		{0.001, 0, 0}, // close to node 0
		{1, 0, 0},     // far from everything
	}

	pairs := PairsWithin(pos, 0.006)

	want := []Pair{{Sender: 0, Receiver: 1}, {Sender: 1, Receiver: 0}}
	if len(pairs) != len(want) {
		t.Fatalf("PairsWithin() returned %d pairs, want %d: %v", len(pairs), len(want), pairs)
	}
	for i := range want {
		if pairs[i] != want[i] {
			t.Errorf("PairsWithin()[%d] = %v, want %v", i, pairs[i], want[i])
		}
	}
}

func TestPairsWithinExcludesSelf(t *testing.T) {
	pos := [][]float64{{0, 0, 0}, {0, 0, 0}}

	for _, p := range PairsWithin(pos, 0.006) {
		if p.Sender == p.Receiver {
			t.Errorf("PairsWithin() emitted self pair %v", p)
		}
	}
}

func TestPairsWithinRadiusIsExclusive(t *testing.T) {
	pos := [][]float64{{0, 0, 0}, {0.006, 0, 0}}

	if pairs := PairsWithin(pos, 0.006); len(pairs) != 0 {
		t.Errorf("PairsWithin() at exactly the radius should be excluded, got %v", pairs)
	}
}
