package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"zeladoria/internal/config"
	"zeladoria/internal/logging"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:           "zeladoriad",
		Short:         "Urban maintenance request intake with AI triage",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", os.Getenv("ZL_CONFIG"), "path to a YAML config file")

	cmd.AddCommand(
		newServeCmd(opts),
		newMigrateCmd(opts),
		newReconcileCmd(opts),
		newTriageCmd(opts),
	)
	return cmd
}

// load reads configuration; strict commands also validate it.
func (o *rootOptions) load(strict bool) (config.Config, *zap.Logger, error) {
	var (
		cfg config.Config
		err error
	)
	if strict {
		cfg, err = config.Load(o.configPath)
	} else {
		cfg, err = config.Read(o.configPath)
	}
	if err != nil {
		return cfg, nil, err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return cfg, nil, err
	}
	return cfg, logger, nil
}
