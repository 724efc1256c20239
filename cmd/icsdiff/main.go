// Package main provides the entry point for the icsdiff CLI.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"icsdiff/internal/app"
	"icsdiff/internal/config"
	"icsdiff/internal/diff"
	"icsdiff/internal/export"
	appLog "icsdiff/internal/log"
	"icsdiff/internal/report"
)

var version = "0.1.0-dev"

// globalFlags are shared by the root command and its subcommands.
type globalFlags struct {
	configPath string
	outputDir  string
	policy     string
	logLevel   string
	quiet      bool
}

type diffFlags struct {
	dryRun bool
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd(os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	var (
		global globalFlags
		flags  diffFlags
	)

	rootCmd := &cobra.Command{
		Use:   "icsdiff <base.ics> <changed.ics>",
		Short: "Compare two ICS calendar files and export the differences",
		Long: "Compares a base ICS calendar file with a changed one, classifies events as\n" +
			"added, removed or modified, and exports an annotated ICS file.",
		Version:       version,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd, stdout, global, flags, args[0], args[1])
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&global.configPath, "config", "c", "", "Path to YAML config file (optional)")
	pf.StringVarP(&global.outputDir, "output-dir", "o", ".", "Directory to store the exported ICS file")
	pf.StringVarP(&global.policy, "policy", "p", string(diff.DefaultPolicy), "Modification policy: full or schedule")
	pf.StringVar(&global.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	pf.BoolVarP(&global.quiet, "quiet", "q", false, "Do not print the summary")

	rootCmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Compute and report the diff without writing a file")

	rootCmd.AddCommand(
		newWatchCmd(stdout, &global),
		newInitConfigCmd(stdout),
	)

	return rootCmd
}

func runDiff(cmd *cobra.Command, stdout io.Writer, global globalFlags, flags diffFlags, basePath, changedPath string) error {
	cfg, err := resolveConfig(cmd, global)
	if err != nil {
		return err
	}

	opts, err := runOptions(cfg, basePath, changedPath)
	if err != nil {
		return err
	}
	opts.DryRun = flags.dryRun

	outcome, err := app.Run(cmd.Context(), opts)
	if err != nil {
		return err
	}

	if global.quiet {
		return nil
	}
	return report.Write(stdout, report.Summary{
		BasePath:    basePath,
		ChangedPath: changedPath,
		Policy:      opts.Policy,
		Result:      outcome.Result,
		OutputPath:  outcome.OutputPath,
	})
}

// resolveConfig loads the config file and lets explicitly set flags win.
func resolveConfig(cmd *cobra.Command, global globalFlags) (*config.Config, error) {
	cfg, err := config.Load(global.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("output-dir") {
		cfg.OutputDir = global.outputDir
	}
	if flags.Changed("policy") {
		cfg.Policy = global.policy
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = global.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level, _ := appLog.ParseLevel(cfg.LogLevel)
	appLog.SetLevel(level)

	appLog.Debug("effective config",
		"config_path", global.configPath,
		"policy", cfg.Policy,
		"output_dir", cfg.OutputDir,
		"timestamp_layout", cfg.TimestampLayout,
	)
	return cfg, nil
}

func runOptions(cfg *config.Config, basePath, changedPath string) (app.Options, error) {
	policy, err := diff.ParsePolicy(cfg.Policy)
	if err != nil {
		return app.Options{}, err
	}

	clock := export.SystemClock
	return app.Options{
		BasePath:    basePath,
		ChangedPath: changedPath,
		Policy:      policy,
		Markers: export.Markers{
			Deleted: cfg.Markers.Deleted,
			Updated: cfg.Markers.Updated,
		},
		ProductID: cfg.ProductID,
		Clock:     clock,
		Sink:      export.NewFileSink(cfg.OutputDir, cfg.TimestampLayout, clock),
	}, nil
}
