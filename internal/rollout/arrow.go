package rollout

import (
	"fmt"
	"os"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/apache/arrow/go/v17/arrow/memory"
)

// Trajectories are exported in long form: one row per (step, node) pair
// with the world position split across x/y/z columns. Step 0 is the
// initial state. The variant travels as schema metadata.
func trajectorySchema(variant string) *arrow.Schema {
	md := arrow.NewMetadata([]string{"variant"}, []string{variant})
	return arrow.NewSchema([]arrow.Field{
		{Name: "step", Type: arrow.PrimitiveTypes.Int64},
		{Name: "node", Type: arrow.PrimitiveTypes.Int64},
		{Name: "x", Type: arrow.PrimitiveTypes.Float64},
		{Name: "y", Type: arrow.PrimitiveTypes.Float64},
		{Name: "z", Type: arrow.PrimitiveTypes.Float64},
	}, &md)
}

// WriteArrowFile exports the trajectory to path in the Arrow IPC file
// format, one record batch per recorded step.
func WriteArrowFile(path string, t *Trajectory) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("rollout: creating export file: %w", err)
	}
	defer f.Close()

	schema := trajectorySchema(t.Variant)
	w, err := ipc.NewFileWriter(f, ipc.WithSchema(schema))
	if err != nil {
		return fmt.Errorf("rollout: opening arrow writer: %w", err)
	}

	builder := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer builder.Release()

	for step, positions := range t.Positions {
		stepCol := builder.Field(0).(*array.Int64Builder)
		nodeCol := builder.Field(1).(*array.Int64Builder)
		coordCols := []*array.Float64Builder{
			builder.Field(2).(*array.Float64Builder),
			builder.Field(3).(*array.Float64Builder),
			builder.Field(4).(*array.Float64Builder),
		}
		for node, pos := range positions {
			if len(pos) != 3 {
				w.Close()
				return fmt.Errorf("rollout: step %d node %d has %d coordinates, want 3", step, node, len(pos))
			}
			stepCol.Append(int64(step))
			nodeCol.Append(int64(node))
			for d, col := range coordCols {
				col.Append(pos[d])
			}
		}

		rec := builder.NewRecord()
		writeErr := w.Write(rec)
		rec.Release()
		if writeErr != nil {
			w.Close()
			return fmt.Errorf("rollout: writing step %d: %w", step, writeErr)
		}
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("rollout: closing arrow writer: %w", err)
	}
	return f.Sync()
}

// ReadArrowFile loads a trajectory previously written by WriteArrowFile.
func ReadArrowFile(path string) (*Trajectory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("rollout: opening export file: %w", err)
	}
	defer f.Close()

	r, err := ipc.NewFileReader(f)
	if err != nil {
		return nil, fmt.Errorf("rollout: opening arrow reader: %w", err)
	}
	defer r.Close()

	t := &Trajectory{}
	if variant, ok := r.Schema().Metadata().GetValue("variant"); ok {
		t.Variant = variant
	}

	for i := 0; i < r.NumRecords(); i++ {
		rec, err := r.RecordAt(i)
		if err != nil {
			return nil, fmt.Errorf("rollout: reading record %d: %w", i, err)
		}

		xs := rec.Column(2).(*array.Float64)
		ys := rec.Column(3).(*array.Float64)
		zs := rec.Column(4).(*array.Float64)
		positions := make([][]float64, rec.NumRows())
		for row := 0; row < int(rec.NumRows()); row++ {
			positions[row] = []float64{xs.Value(row), ys.Value(row), zs.Value(row)}
		}
		t.Positions = append(t.Positions, positions)
		if len(positions) > t.NumNodes {
			t.NumNodes = len(positions)
		}
		rec.Release()
	}
	return t, nil
}
