package segment

import (
	"math"
	"reflect"
	"testing"
)

func TestParseOp(t *testing.T) {
	tests := []struct {
		name    string
		want    Op
		wantErr bool
	}{
		{name: "sum", want: OpSum},
		{name: "mean", want: OpMean},
		{name: "max", want: OpMax},
		{name: "min", want: OpMin},
		{name: "avg", wantErr: true},
		{name: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseOp(tt.name)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseOp(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseOp(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestReduceSingleItemPerGroupIsReordering(t *testing.T) {
	values := [][]float64{{3, 3}, {1, 1}, {2, 2}}
	ids := []int{2, 0, 1}

	got, err := Reduce(values, ids, 3, OpSum)
	if err != nil {
		t.Fatalf("Reduce() error: %v", err)
	}
	want := [][]float64{{1, 1}, {2, 2}, {3, 3}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Reduce() = %v, want %v", got, want)
	}
}

func TestReduceOps(t *testing.T) {
	values := [][]float64{{1}, {5}, {3}, {-2}}
	ids := []int{0, 0, 0, 2}

	tests := []struct {
		op   Op
		want [][]float64
	}{
		{op: OpSum, want: [][]float64{{9}, {0}, {-2}}},
		{op: OpMean, want: [][]float64{{3}, {0}, {-2}}},
		{op: OpMax, want: [][]float64{{5}, {0}, {-2}}},
		{op: OpMin, want: [][]float64{{1}, {0}, {-2}}},
	}
	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			got, err := Reduce(values, ids, 3, tt.op)
			if err != nil {
				t.Fatalf("Reduce(%v) error: %v", tt.op, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Reduce(%v) = %v, want %v", tt.op, got, tt.want)
			}
		})
	}
}

// Negative values still reduce correctly against the empty-group sentinel:
// the first contribution to a group always replaces it.
func TestReduceMaxWithAllNegative(t *testing.T) {
	got, err := ReduceScalar([]float64{-5, -3}, []int{0, 0}, 1, OpMax)
	if err != nil {
		t.Fatal(err)
	}
	if got[0] != -3 {
		t.Errorf("max of {-5,-3} = %v, want -3", got[0])
	}
}

func TestReduceOrderIndependence(t *testing.T) {
	forward, err := ReduceScalar([]float64{1, 2, 3, 4}, []int{1, 0, 1, 0}, 2, OpSum)
	if err != nil {
		t.Fatal(err)
	}
	backward, err := ReduceScalar([]float64{4, 3, 2, 1}, []int{0, 1, 0, 1}, 2, OpSum)
	if err != nil {
		t.Fatal(err)
	}
	for i := range forward {
		if math.Abs(forward[i]-backward[i]) > 1e-12 {
			t.Errorf("group %d: %v != %v", i, forward[i], backward[i])
		}
	}
}

func TestReduceErrors(t *testing.T) {
	if _, err := Reduce([][]float64{{1}}, []int{0, 1}, 2, OpSum); err == nil {
		t.Error("Reduce() with mismatched lengths should fail")
	}
	if _, err := Reduce([][]float64{{1}, {1, 2}}, []int{0, 1}, 2, OpSum); err == nil {
		t.Error("Reduce() with ragged rows should fail")
	}
	if _, err := Reduce([][]float64{{1}}, []int{5}, 2, OpSum); err == nil {
		t.Error("Reduce() with out-of-range id should fail")
	}
	if _, err := Reduce([][]float64{{1}}, []int{0}, 1, Op(42)); err == nil {
		t.Error("Reduce() with invalid op should fail")
	}
}

func TestReduceEmptyInput(t *testing.T) {
	got, err := Reduce(nil, nil, 3, OpMax)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("Reduce() returned %d groups, want 3", len(got))
	}
	for i, row := range got {
		if len(row) != 0 {
			t.Errorf("group %d = %v, want empty row", i, row)
		}
	}
}
