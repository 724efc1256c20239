package main

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"icsdiff/internal/app"
	"icsdiff/internal/report"
	"icsdiff/internal/watch"
)

type watchFlags struct {
	schedule string
}

func newWatchCmd(stdout io.Writer, global *globalFlags) *cobra.Command {
	var flags watchFlags

	cmd := &cobra.Command{
		Use:   "watch <base.ics> <changed.ics>",
		Short: "Re-run the diff on a schedule whenever an input changes",
		Long: "Checks both inputs on a cron schedule and exports a new diff whenever\n" +
			"either file's size or modification time changed. Stops on SIGINT/SIGTERM.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, stdout, *global, flags, args[0], args[1])
		},
	}

	cmd.Flags().StringVarP(&flags.schedule, "schedule", "s", "", "Cron schedule (default from config: */5 * * * *)")

	return cmd
}

func runWatch(cmd *cobra.Command, stdout io.Writer, global globalFlags, flags watchFlags, basePath, changedPath string) error {
	cfg, err := resolveConfig(cmd, global)
	if err != nil {
		return err
	}
	if flags.schedule != "" {
		cfg.Watch.Schedule = flags.schedule
	}

	opts, err := runOptions(cfg, basePath, changedPath)
	if err != nil {
		return err
	}

	w, err := watch.New(cfg.Watch.Schedule, []string{basePath, changedPath}, func(ctx context.Context) error {
		outcome, err := app.Run(ctx, opts)
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
	})
	if err != nil {
		return err
	}

	return w.Start(cmd.Context())
}
