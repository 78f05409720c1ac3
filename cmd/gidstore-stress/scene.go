package main

import (
	"github.com/plus3/gidstore/internal/workload"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type sceneOptions struct {
	entities int
	frames   int
}

func newSceneCmd(global *globalOptions) *cobra.Command {
	opts := &sceneOptions{}
	cmd := &cobra.Command{
		Use:   "scene",
		Short: "Run an ecs simulation whose entities expire and respawn",
		Long: `The scene command populates an ecs storage, runs a fixed set of systems
for a number of frames, and reports frame timings, per-system cost and memory
usage. Expired entities are replaced every frame, so entity ids churn through
the slot map registry.

Example:
  gidstore-stress scene --entities 50000 --frames 1200
  gidstore-stress scene --profile cpu --profile-dir /tmp`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScene(cmd, global, opts)
		},
	}

	cmd.Flags().IntVar(&opts.entities, "entities", 0, "The initial number of entities to create")
	cmd.Flags().IntVar(&opts.frames, "frames", 0, "Number of scheduler frames to run")
	return cmd
}

func runScene(cmd *cobra.Command, global *globalOptions, opts *sceneOptions) error {
	cfg, log, done, err := global.setup(cmd)
	if err != nil {
		return err
	}
	defer done()

	flags := cmd.Flags()
	if flags.Changed("entities") {
		cfg.Scene.Entities = opts.entities
	}
	if flags.Changed("frames") {
		cfg.Scene.Frames = opts.frames
	}

	scene, err := workload.NewScene(cfg, log.Named("scene"))
	if err != nil {
		return err
	}
	report, err := scene.Run(cmd.Context())
	if err != nil {
		log.Error("scene failed", zap.Error(err))
		return err
	}
	return global.writeReport(cmd.OutOrStdout(), report)
}
