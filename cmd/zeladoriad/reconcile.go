package main

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"zeladoria/internal/reconcile"
	"zeladoria/internal/store"
)

func newReconcileCmd(opts *rootOptions) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Fold legacy category spellings into the canonical catalogue",
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
			if err := store.Migrate(ctx, st.DB()); err != nil {
				return err
			}

			svc := reconcile.NewService(st, logger.Named("reconcile"))
			svc.DryRun = dryRun
			report, err := svc.Run(ctx)
			if err != nil {
				return err
			}
			logger.Info("reconciliation complete",
				zap.Int("renamed", report.Renamed),
				zap.Int("merged", report.Merged),
				zap.Int64("requests_moved", report.RequestsMoved),
				zap.Bool("dry_run", dryRun))

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report planned changes without writing")
	return cmd
}
