package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"zeladoria/internal/store"
)

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	var to int64
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.load(false)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			if cfg.Database.DSN == "" {
				return errors.New("missing database.dsn (or ZL_DB_DSN / DATABASE_URL)")
			}

			st, err := store.Open(cfg.Database.DSN)
			if err != nil {
				return err
			}
			defer st.Close()

			ctx := cmd.Context()
			if to > 0 {
				err = store.MigrateTo(ctx, st.DB(), to)
			} else {
				err = store.Migrate(ctx, st.DB())
			}
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			version, err := store.SchemaVersion(ctx, st.DB())
			if err != nil {
				return err
			}
			logger.Info("migrations applied", zap.Int64("version", version))
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", version)
			return nil
		},
	}
	cmd.Flags().Int64Var(&to, "to", 0, "migrate up to this version only")
	return cmd
}
