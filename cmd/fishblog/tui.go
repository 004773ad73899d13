package main

import (
	"github.com/spf13/cobra"

	"github.com/fishblog/fishblog/internal/app"
	"github.com/fishblog/fishblog/internal/tui"
)

func newTUICmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the terminal UI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, cleanup, err := app.New(ctx, opts.configPath, app.Options{Seed: true})
			if err != nil {
				return err
			}
			defer cleanup()

			return tui.Run(ctx, a.Commands, a.Log.Named("tui"))
		},
	}
}
