package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckpointsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkpoints",
		Short: "Manage stored model checkpoints",
	}
	cmd.AddCommand(newCheckpointsListCmd(), newCheckpointsDeleteCmd())
	return cmd
}

func newCheckpointsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored checkpoint blobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			store, err := openStore(cfg)
			if err != nil {
				return fmt.Errorf("opening checkpoint store: %w", err)
			}
			defer store.Close()

			keys, err := store.List(context.Background())
			if err != nil {
				return err
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{
					"keys":  keys,
					"count": len(keys),
				})
			}
			if len(keys) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No checkpoints stored.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored checkpoint blobs (%d):\n", len(keys))
			for _, k := range keys {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s\n", k)
			}
			return nil
		},
	}
}

func newCheckpointsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <key>",
		Short: "Delete a stored checkpoint blob",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			store, err := openStore(cfg)
			if err != nil {
				return fmt.Errorf("opening checkpoint store: %w", err)
			}
			defer store.Close()

			if err := store.Delete(context.Background(), args[0]); err != nil {
				return err
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{
					"status": "deleted",
					"key":    args[0],
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}
}
