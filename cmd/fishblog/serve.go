package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fishblog/fishblog/internal/app"
	"github.com/fishblog/fishblog/internal/httpapi"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		Long: `Serve the blog as a JSON API for a browser front-end. Requests are handled
one at a time against the same state the terminal UI uses.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, cleanup, err := app.New(ctx, opts.configPath, app.Options{Console: true, Seed: true})
			if err != nil {
				return err
			}
			defer cleanup()

			if addr == "" {
				addr = a.Config.Server.Addr
			}
			srv := httpapi.New(a.Commands, a.Log.Named("http"), a.Config.Server.CORSOrigins)
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
