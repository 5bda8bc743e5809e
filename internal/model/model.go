package model

import (
	"context"
	"fmt"

	"github.com/jangseop-park/meshsim/internal/checkpoint"
	"github.com/jangseop-park/meshsim/internal/mesh"
	"github.com/jangseop-park/meshsim/internal/normalization"
)

// Mode selects the model's lifecycle state. In training mode Step returns
// raw network output for external loss computation and the normalizers
// accumulate; in evaluation mode Step returns integrated physical state and
// all normalizer statistics are frozen. The switch is explicit and global
// to the instance.
type Mode int

const (
	ModeTraining Mode = iota
	ModeEvaluation
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeTraining:
		return "training"
	case ModeEvaluation:
		return "evaluation"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// StepOutput is the result of one simulation step. Raw is set in training
// mode; the physical fields are set in evaluation mode. Current and
// Velocity are populated by the deforming-plate variant for the external
// loss/rollout driver.
type StepOutput struct {
	Raw      [][]float64
	Next     [][]float64
	Current  [][]float64
	Velocity [][]float64
}

// Model is the per-variant simulation orchestrator.
type Model interface {
	// Mode returns the current lifecycle mode.
	Mode() Mode

	// SetMode switches between training and evaluation.
	SetMode(Mode)

	// Step runs one simulation step over the per-step input.
	Step(d *mesh.Data) (*StepOutput, error)

	// OutputNormalizer exposes the output-residual normalizer; the external
	// training driver normalizes ground-truth targets with it.
	OutputNormalizer() *normalization.Normalizer

	// Save persists the learned core parameters and all normalizer states
	// as a matched blob set under the given checkpoint name.
	Save(ctx context.Context, s checkpoint.Store, name string) error

	// Load restores a matched blob set. A partial or dimensionally
	// incompatible set fails here, not on the first forward call.
	Load(ctx context.Context, s checkpoint.Store, name string) error
}

// saveCore marshals the core's parameters, or an empty blob for stateless
// cores, so every checkpoint set has the same shape.
func saveCore(core Core) ([]byte, error) {
	cs, ok := core.(CoreState)
	if !ok {
		return []byte{}, nil
	}
	blob, err := cs.MarshalParams()
	if err != nil {
		return nil, fmt.Errorf("model: marshaling core parameters: %w", err)
	}
	return blob, nil
}

// restoreCore hands the parameter blob to the core if it is stateful.
func restoreCore(core Core, blob []byte) error {
	cs, ok := core.(CoreState)
	if !ok {
		return nil
	}
	if err := cs.RestoreParams(blob); err != nil {
		return fmt.Errorf("model: restoring core parameters: %w", err)
	}
	return nil
}

// saveNormalizers writes a matched blob set: the core parameters plus one
// blob per named normalizer.
func saveBlobSet(ctx context.Context, s checkpoint.Store, name string, core Core, norms map[string]*normalization.Normalizer) error {
	blobs := make(map[string][]byte, len(norms)+1)

	coreBlob, err := saveCore(core)
	if err != nil {
		return err
	}
	blobs[name+"_learned_model"] = coreBlob

	for suffix, norm := range norms {
		blob, err := norm.MarshalBlob()
		if err != nil {
			return fmt.Errorf("model: marshaling %s: %w", suffix, err)
		}
		blobs[name+"_"+suffix] = blob
	}
	return checkpoint.PutSet(ctx, s, blobs)
}

// loadBlobSet reads and restores a matched blob set. Every member must be
// present and dimensionally compatible.
func loadBlobSet(ctx context.Context, s checkpoint.Store, name string, core Core, norms map[string]*normalization.Normalizer) error {
	keys := []string{name + "_learned_model"}
	for suffix := range norms {
		keys = append(keys, name+"_"+suffix)
	}

	blobs, err := checkpoint.GetSet(ctx, s, keys)
	if err != nil {
		return err
	}

	for suffix, norm := range norms {
		if err := norm.RestoreBlob(blobs[name+"_"+suffix]); err != nil {
			return fmt.Errorf("model: restoring %s: %w", suffix, err)
		}
	}
	return restoreCore(core, blobs[name+"_learned_model"])
}
