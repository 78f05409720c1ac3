package main

import (
	"github.com/plus3/gidstore/internal/workload"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type churnOptions struct {
	ops         int
	initial     int
	verifyEvery int
	graveyard   int
}

func newChurnCmd(global *globalOptions) *cobra.Command {
	opts := &churnOptions{}
	cmd := &cobra.Command{
		Use:   "churn",
		Short: "Run randomized insert/remove/get churn against a slot map",
		Long: `The churn command applies a weighted mix of inserts, removes, lookups
and stale-handle lookups to a slot map, mirrors every operation in a reference
model, and fails if the two ever disagree.

Example:
  gidstore-stress churn --ops 5000000 --seed 7
  gidstore-stress churn --config churn.toml --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChurn(cmd, global, opts)
		},
	}

	cmd.Flags().IntVar(&opts.ops, "ops", 0, "Number of operations to run")
	cmd.Flags().IntVar(&opts.initial, "initial", 0, "Handles inserted before the run")
	cmd.Flags().IntVar(&opts.verifyEvery, "verify-every", 0, "Operations between full model sweeps (0 disables)")
	cmd.Flags().IntVar(&opts.graveyard, "graveyard", 0, "Removed handles kept for stale lookups")
	return cmd
}

func runChurn(cmd *cobra.Command, global *globalOptions, opts *churnOptions) error {
	cfg, log, done, err := global.setup(cmd)
	if err != nil {
		return err
	}
	defer done()

	flags := cmd.Flags()
	if flags.Changed("ops") {
		cfg.Operations = opts.ops
	}
	if flags.Changed("initial") {
		cfg.InitialLive = opts.initial
	}
	if flags.Changed("verify-every") {
		cfg.VerifyEvery = opts.verifyEvery
	}
	if flags.Changed("graveyard") {
		cfg.GraveyardSize = opts.graveyard
	}

	runner, err := workload.NewRunner(cfg, log.Named("churn"))
	if err != nil {
		return err
	}
	res, err := runner.Run(cmd.Context())
	if err != nil {
		log.Error("churn failed", zap.Error(err))
		return err
	}
	return global.writeReport(cmd.OutOrStdout(), res)
}
