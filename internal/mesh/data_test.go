package mesh

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validData() *Data {
	return &Data{
		WorldPos:     [][]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		PrevWorldPos: [][]float64{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		MeshPos:      [][]float64{{0, 0}, {1, 0}, {0, 1}},
		NodeType:     []NodeType{NodeTypeNormal, NodeTypeNormal, NodeTypeHandle},
		Cells:        [][3]int{{0, 1, 2}},
	}
}

func TestValidate(t *testing.T) {
	d := validData()
	if err := d.Validate(3, 2); err != nil {
		t.Fatalf("Validate() on valid data: %v", err)
	}
	if err := d.RequirePrev(3); err != nil {
		t.Fatalf("RequirePrev() on valid data: %v", err)
	}
}

func TestValidateNamesMissingKey(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Data)
		key    string
	}{
		{name: "world_pos", mutate: func(d *Data) { d.WorldPos = nil }, key: KeyWorldPos},
		{name: "mesh_pos", mutate: func(d *Data) { d.MeshPos = nil }, key: KeyMeshPos},
		{name: "node_type", mutate: func(d *Data) { d.NodeType = nil }, key: KeyNodeType},
		{name: "cells", mutate: func(d *Data) { d.Cells = nil }, key: KeyCells},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validData()
			tt.mutate(d)
			err := d.Validate(3, 2)
			if err == nil {
				t.Fatal("Validate() should fail")
			}
			if !strings.Contains(err.Error(), tt.key) {
				t.Errorf("error %q does not name missing key %q", err, tt.key)
			}
		})
	}
}

func TestValidateShapeMismatches(t *testing.T) {
	d := validData()
	d.MeshPos = d.MeshPos[:2]
	if err := d.Validate(3, 2); err == nil {
		t.Error("row-count mismatch should fail")
	}

	d = validData()
	d.WorldPos[1] = []float64{1, 0}
	if err := d.Validate(3, 2); err == nil {
		t.Error("width mismatch should fail")
	}

	d = validData()
	d.NodeType[0] = NodeType(99)
	if err := d.Validate(3, 2); err == nil {
		t.Error("invalid node type should fail")
	}
}

func TestRequirePrevAndTarget(t *testing.T) {
	d := validData()
	d.PrevWorldPos = nil
	err := d.RequirePrev(3)
	if err == nil || !strings.Contains(err.Error(), KeyPrevWorldPos) {
		t.Errorf("RequirePrev() error = %v, want it to name %q", err, KeyPrevWorldPos)
	}

	err = d.RequireTarget(3)
	if err == nil || !strings.Contains(err.Error(), KeyTargetWorldPos) {
		t.Errorf("RequireTarget() error = %v, want it to name %q", err, KeyTargetWorldPos)
	}

	d.TargetWorldPos = [][]float64{{0, 0, 0}}
	if err := d.RequireTarget(3); err == nil {
		t.Error("RequireTarget() with wrong row count should fail")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mesh.json")
	payload := `{
		"world_pos": [[0,0,0],[1,0,0]],
		"prev_world_pos": [[0,0,0],[0.9,0,0]],
		"mesh_pos": [[0,0],[1,0]],
		"node_type": [0,3],
		"cells": []
	}`
	if err := os.WriteFile(path, []byte(payload), 0600); err != nil {
		t.Fatal(err)
	}

	d, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if d.NumNodes() != 2 {
		t.Errorf("NumNodes() = %d, want 2", d.NumNodes())
	}
	if d.NodeType[1] != NodeTypeHandle {
		t.Errorf("NodeType[1] = %v, want handle", d.NodeType[1])
	}

	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("Load() on a missing file should fail")
	}
}
