package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/kmsearch/internal/db/sqlite"
)

func newMigrateCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or revert schema migrations",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(cmd, flags)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			n, err := sqlite.MigrateUp(cmd.Context(), store.DB())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s), schema version %d\n", n, sqlite.SchemaVersion())
			return nil
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Revert the most recent migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(cmd, flags)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			n, err := sqlite.MigrateDown(cmd.Context(), store.DB(), steps)
			if err != nil {
				return err
			}
			current, err := sqlite.CurrentVersion(cmd.Context(), store.DB())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "reverted %d migration(s), schema version %d\n", n, current)
			return nil
		},
	}
	down.Flags().IntVarP(&steps, "steps", "n", 1, "number of migrations to revert")

	status := &cobra.Command{
		Use:   "status",
		Short: "Print the current schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(cmd, flags)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			current, err := sqlite.CurrentVersion(cmd.Context(), store.DB())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d of %d\n", current, sqlite.SchemaVersion())
			return nil
		},
	}

	cmd.AddCommand(up, down, status)
	return cmd
}

func openStore(cmd *cobra.Command, flags *globalFlags) (*sqlite.Store, error) {
	cfg, _, err := flags.load()
	if err != nil {
		return nil, err
	}
	return sqlite.Open(cmd.Context(), sqlite.Config{
		Path:        cfg.Database.Path,
		BusyTimeout: cfg.Database.BusyTimeout(),
	})
}
