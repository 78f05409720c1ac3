package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/profile"
	"github.com/plus3/gidstore/internal/workload"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// globalOptions holds the persistent flags shared by every subcommand.
type globalOptions struct {
	configPath string
	seed       uint64
	chunkSize  int
	format     string
	logLevel   string
	logFormat  string
	profMode   string
	profDir    string
}

// newRootCmd builds a fresh command tree with its own flag state.
func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	cmd := &cobra.Command{
		Use:   "gidstore-stress",
		Short: "Stress the generational slot map containers",
		Long: `gidstore-stress drives randomized workloads against the slot map
containers and the ecs storage built on them, checks the results against a
reference model, and prints a report.`,
		SilenceUsage: true,
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Workload config file (.toml, .yaml or .yml)")
	flags.Uint64Var(&opts.seed, "seed", 0, "Random seed")
	flags.IntVar(&opts.chunkSize, "chunk-size", 0, "Elements per storage chunk (0 uses the default byte budget)")
	flags.StringVar(&opts.format, "format", "text", "Report format: text or json")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flags.StringVar(&opts.logFormat, "log-format", "", "Log format: console or json")
	flags.StringVar(&opts.profMode, "profile", "", "Write a pprof profile: cpu or mem")
	flags.StringVar(&opts.profDir, "profile-dir", ".", "Directory for profile output")

	cmd.AddCommand(newChurnCmd(opts), newSceneCmd(opts))
	return cmd
}

func execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// loadConfig reads the config file, if any, and applies flags the user set.
func (o *globalOptions) loadConfig(cmd *cobra.Command) (*workload.Config, error) {
	cfg := workload.Defaults()
	if o.configPath != "" {
		var err error
		if cfg, err = workload.Load(o.configPath); err != nil {
			return nil, err
		}
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = o.seed
	}
	if flags.Changed("chunk-size") {
		cfg.ChunkSize = o.chunkSize
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = o.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = o.logFormat
	}
	return cfg, nil
}

func newLogger(cfg workload.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}

// startProfile starts the requested profiler and returns its stop function.
func (o *globalOptions) startProfile() (func(), error) {
	var mode func(*profile.Profile)
	switch o.profMode {
	case "":
		return func() {}, nil
	case "cpu":
		mode = profile.CPUProfile
	case "mem":
		mode = profile.MemProfile
	default:
		return nil, fmt.Errorf("unknown profile mode %q", o.profMode)
	}
	p := profile.Start(mode, profile.ProfilePath(o.profDir), profile.NoShutdownHook, profile.Quiet)
	return p.Stop, nil
}

type report interface {
	WriteText(io.Writer) error
	WriteJSON(io.Writer) error
}

func (o *globalOptions) writeReport(w io.Writer, r report) error {
	switch o.format {
	case "text":
		return r.WriteText(w)
	case "json":
		return r.WriteJSON(w)
	default:
		return fmt.Errorf("unknown report format %q", o.format)
	}
}

// setup loads the config and builds the logger and profiler shared by every
// subcommand.
func (o *globalOptions) setup(cmd *cobra.Command) (*workload.Config, *zap.Logger, func(), error) {
	if o.format != "text" && o.format != "json" {
		return nil, nil, nil, fmt.Errorf("unknown report format %q", o.format)
	}
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("build logger: %w", err)
	}
	stop, err := o.startProfile()
	if err != nil {
		_ = log.Sync()
		return nil, nil, nil, err
	}
	return cfg, log, func() {
		stop()
		_ = log.Sync()
	}, nil
}
