package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/fishblog/fishblog/internal/app"
)

func newSeedCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Install the sample articles into an empty blog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, cleanup, err := app.New(ctx, opts.configPath, app.Options{Console: true})
			if err != nil {
				return err
			}
			defer cleanup()

			seeded, err := a.Model.SeedIfEmpty(ctx, time.Now().UTC().Truncate(time.Millisecond), uuid.NewString)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if !seeded {
				_, _ = fmt.Fprintf(w, "blog already has %d articles, nothing to do\n", len(a.Model.Articles()))
				return nil
			}
			_, _ = fmt.Fprintln(w, "installed sample articles")
			return nil
		},
	}
}
