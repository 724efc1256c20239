package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"icsdiff/internal/config"
)

type initConfigFlags struct {
	force bool
}

func newInitConfigCmd(stdout io.Writer) *cobra.Command {
	var flags initConfigFlags

	cmd := &cobra.Command{
		Use:   "init-config <path>",
		Short: "Write a default config file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInitConfig(stdout, flags, args[0])
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Overwrite an existing file")

	return cmd
}

func runInitConfig(stdout io.Writer, flags initConfigFlags, path string) error {
	if !flags.force {
		_, err := os.Stat(path)
		if err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	if err := config.Save(path, config.DefaultConfig()); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Fprintf(stdout, "Wrote default config to %s\n", path)
	return nil
}
