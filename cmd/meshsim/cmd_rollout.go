package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jangseop-park/meshsim/internal/checkpoint"
	"github.com/jangseop-park/meshsim/internal/config"
	"github.com/jangseop-park/meshsim/internal/logging"
	"github.com/jangseop-park/meshsim/internal/mesh"
	"github.com/jangseop-park/meshsim/internal/model"
	"github.com/jangseop-park/meshsim/internal/normalization"
	"github.com/jangseop-park/meshsim/internal/rollout"
)

// buildModel constructs the configured variant model around a registered core.
func buildModel(cfg *config.Config) (model.Model, error) {
	core, err := model.NewCore(cfg.Core.Name, 3)
	if err != nil {
		return nil, err
	}
	normCfg := normalization.Config{
		MaxAccumulations: cfg.Normalizer.MaxAccumulations,
		StdEpsilon:       cfg.Normalizer.StdEpsilon,
	}
	logger := logging.NewLogger(cfg.Logging.Level, os.Stderr)

	switch cfg.Variant {
	case "cloth":
		return model.NewCloth(core, normCfg, logger), nil
	case "deform":
		deformCfg := model.DeformConfig{
			WorldEdgeRadius: cfg.Graph.WorldEdgeRadius,
			NodeDynamic:     cfg.Graph.NodeDynamic,
		}
		return model.NewDeform(core, deformCfg, normCfg, logger), nil
	default:
		return nil, fmt.Errorf("unknown variant %q (valid: cloth, deform)", cfg.Variant)
	}
}

// openStore opens the configured checkpoint backend.
func openStore(cfg *config.Config) (checkpoint.Store, error) {
	switch cfg.Checkpoint.Backend {
	case "sqlite":
		return checkpoint.NewSQLiteStore(cfg.Checkpoint.Path)
	default:
		return checkpoint.NewFileStore(cfg.Checkpoint.Dir)
	}
}

func newRolloutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rollout",
		Short: "Roll a model forward over a mesh and export the trajectory",
		Long: `Run a multi-step evaluation rollout from an initial mesh state.

The mesh is loaded from a JSON file, the model is built from the
configured variant and core, and the resulting trajectory is written
in the Arrow IPC file format.

Example:
  meshsim rollout --mesh flag.json --steps 100 --out traj.arrow`,
		RunE: func(cmd *cobra.Command, args []string) error {
			meshPath, _ := cmd.Flags().GetString("mesh")
			steps, _ := cmd.Flags().GetInt("steps")
			outPath, _ := cmd.Flags().GetString("out")
			ckptName, _ := cmd.Flags().GetString("checkpoint")
			jsonOut, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("config invalid: %w", err)
			}

			d, err := mesh.Load(meshPath)
			if err != nil {
				return fmt.Errorf("loading mesh: %w", err)
			}

			m, err := buildModel(cfg)
			if err != nil {
				return err
			}

			if ckptName != "" {
				store, err := openStore(cfg)
				if err != nil {
					return fmt.Errorf("opening checkpoint store: %w", err)
				}
				loadErr := m.Load(context.Background(), store, ckptName)
				store.Close()
				if loadErr != nil {
					return fmt.Errorf("loading checkpoint %q: %w", ckptName, loadErr)
				}
			}

			logger := logging.NewLogger(cfg.Logging.Level, os.Stderr)
			tracer := logging.NewStepTracer(".meshsim", cfg.Logging.Level)
			defer tracer.Close()

			traj, err := rollout.Run(m, cfg.Variant, d, rollout.Config{Steps: steps}, logger, tracer)
			if err != nil {
				return err
			}

			if outPath != "" {
				if err := rollout.WriteArrowFile(outPath, traj); err != nil {
					return err
				}
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"variant": traj.Variant,
					"steps":   traj.NumSteps(),
					"nodes":   traj.NumNodes,
					"out":     outPath,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Rolled out %d steps over %d nodes (%s)\n", traj.NumSteps(), traj.NumNodes, traj.Variant)
			if outPath != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Trajectory written to %s\n", outPath)
			}
			return nil
		},
	}

	cmd.Flags().String("mesh", "", "Path to the initial mesh state JSON (required)")
	cmd.Flags().Int("steps", 1, "Number of simulation steps")
	cmd.Flags().String("out", "", "Arrow IPC output path (omit to skip export)")
	cmd.Flags().String("checkpoint", "", "Checkpoint name to restore before rolling out")
	cmd.MarkFlagRequired("mesh")

	return cmd
}
