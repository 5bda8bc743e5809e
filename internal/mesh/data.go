package mesh

import (
	"encoding/json"
	"fmt"
	"os"
)

// Input keys as they appear in the per-step input mapping and on disk.
// Error messages reference these names so callers can identify the missing
// or malformed field.
const (
	KeyWorldPos       = "world_pos"
	KeyPrevWorldPos   = "prev_world_pos"
	KeyTargetWorldPos = "target_world_pos"
	KeyMeshPos        = "mesh_pos"
	KeyNodeType       = "node_type"
	KeyCells          = "cells"
)

// Data is the per-step simulation input, read-only to the model core. The
// cloth variant requires PrevWorldPos; the deforming-plate variant requires
// TargetWorldPos. MeshPos is material-space and unchanging per simulation.
type Data struct {
	WorldPos       [][]float64 `json:"world_pos"`
	PrevWorldPos   [][]float64 `json:"prev_world_pos,omitempty"`
	TargetWorldPos [][]float64 `json:"target_world_pos,omitempty"`
	MeshPos        [][]float64 `json:"mesh_pos"`
	NodeType       []NodeType  `json:"node_type"`
	Cells          [][3]int    `json:"cells"`
}

// NumNodes returns the node count.
func (d *Data) NumNodes() int { return len(d.WorldPos) }

// Validate checks the fields every variant requires: presence, matching
// node counts, and position widths. worldDim applies to WorldPos, meshDim
// to MeshPos (cloth uses a 2-D material space, the deforming plate 3-D).
func (d *Data) Validate(worldDim, meshDim int) error {
	if len(d.WorldPos) == 0 {
		return fmt.Errorf("mesh: missing required input %q", KeyWorldPos)
	}
	if len(d.MeshPos) == 0 {
		return fmt.Errorf("mesh: missing required input %q", KeyMeshPos)
	}
	if len(d.NodeType) == 0 {
		return fmt.Errorf("mesh: missing required input %q", KeyNodeType)
	}
	if d.Cells == nil {
		return fmt.Errorf("mesh: missing required input %q", KeyCells)
	}
	n := len(d.WorldPos)
	if len(d.MeshPos) != n {
		return fmt.Errorf("mesh: %q has %d rows, %q has %d", KeyMeshPos, len(d.MeshPos), KeyWorldPos, n)
	}
	if len(d.NodeType) != n {
		return fmt.Errorf("mesh: %q has %d entries, %q has %d rows", KeyNodeType, len(d.NodeType), KeyWorldPos, n)
	}
	if err := checkWidth(KeyWorldPos, d.WorldPos, worldDim); err != nil {
		return err
	}
	if err := checkWidth(KeyMeshPos, d.MeshPos, meshDim); err != nil {
		return err
	}
	for i, t := range d.NodeType {
		if !t.Valid() {
			return fmt.Errorf("mesh: %q entry %d has invalid value %d", KeyNodeType, i, int(t))
		}
	}
	return nil
}

// RequirePrev validates the previous-position field (cloth variant).
func (d *Data) RequirePrev(worldDim int) error {
	if len(d.PrevWorldPos) == 0 {
		return fmt.Errorf("mesh: missing required input %q", KeyPrevWorldPos)
	}
	if len(d.PrevWorldPos) != len(d.WorldPos) {
		return fmt.Errorf("mesh: %q has %d rows, %q has %d", KeyPrevWorldPos, len(d.PrevWorldPos), KeyWorldPos, len(d.WorldPos))
	}
	return checkWidth(KeyPrevWorldPos, d.PrevWorldPos, worldDim)
}

// RequireTarget validates the target-position field (deforming-plate variant).
func (d *Data) RequireTarget(worldDim int) error {
	if len(d.TargetWorldPos) == 0 {
		return fmt.Errorf("mesh: missing required input %q", KeyTargetWorldPos)
	}
	if len(d.TargetWorldPos) != len(d.WorldPos) {
		return fmt.Errorf("mesh: %q has %d rows, %q has %d", KeyTargetWorldPos, len(d.TargetWorldPos), KeyWorldPos, len(d.WorldPos))
	}
	return checkWidth(KeyTargetWorldPos, d.TargetWorldPos, worldDim)
}

func checkWidth(key string, rows [][]float64, width int) error {
	for i, row := range rows {
		if len(row) != width {
			return fmt.Errorf("mesh: %q row %d has width %d, expected %d", key, i, len(row), width)
		}
	}
	return nil
}

// Load reads a Data record from a JSON file.
func Load(path string) (*Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mesh: reading %s: %w", path, err)
	}
	var d Data
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("mesh: parsing %s: %w", path, err)
	}
	return &d, nil
}
