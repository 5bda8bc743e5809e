package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Populated by the release build via -ldflags.
var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "meshsim",
		Short: "Learned mesh-based simulation",
		Long: `meshsim runs learned simulations over triangular meshes.

It builds simulation graphs from mesh state, steps a learned core
network over them, integrates the predicted dynamics, and manages
model checkpoints and trajectory exports.`,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: ~/.meshsim/config.yaml)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newConfigCmd(),
		newRolloutCmd(),
		newCheckpointsCmd(),
	)

	return rootCmd
}
