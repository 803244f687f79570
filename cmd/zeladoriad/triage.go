package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"zeladoria/internal/app"
	"zeladoria/internal/triage"
)

func newTriageCmd(opts *rootOptions) *cobra.Command {
	var report triage.Report
	cmd := &cobra.Command{
		Use:   "triage",
		Short: "Classify one report with the configured provider and print the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			if report.Title == "" || report.Description == "" {
				return errors.New("--title and --description are required")
			}
			cfg, logger, err := opts.load(false)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			gen, err := app.SelectGenerator(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			pipeline := triage.New(gen,
				triage.WithBaseDelay(cfg.Triage.BaseDelay),
				triage.WithLogger(logger.Named("pipeline")))

			res, err := pipeline.ProcessCitizenRequest(cmd.Context(), report)
			if err != nil {
				var cerr *triage.ClassificationError
				if errors.As(err, &cerr) {
					return fmt.Errorf("%s (status %d): %s", cerr.Message, cerr.HTTPStatus, cerr.Detail)
				}
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		},
	}
	cmd.Flags().StringVar(&report.Title, "title", "", "report title")
	cmd.Flags().StringVar(&report.Description, "description", "", "report description")
	cmd.Flags().StringVar(&report.LocationText, "location", "", "location text")
	cmd.Flags().Float64Var(&report.Latitude, "lat", 0, "latitude")
	cmd.Flags().Float64Var(&report.Longitude, "lng", 0, "longitude")
	return cmd
}
