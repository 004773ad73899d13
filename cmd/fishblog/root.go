package main

import (
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	tui := newTUICmd(opts)
	root := &cobra.Command{
		Use:   "fishblog",
		Short: "A small personal blog with a guestbook and a drawing board",
		Long: `fishblog keeps articles, comments, guestbook messages and drawings in a
local key-value store.

Example usage:
  fishblog                       # Open the terminal UI
  fishblog serve                 # Serve the JSON API for a browser front-end
  fishblog sketch fish.lua       # Draw with a Lua script and save the drawing
  fishblog seed                  # Install the sample articles into an empty blog`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          tui.RunE,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "config.yaml", "path to configuration file")

	root.AddCommand(tui, newServeCmd(opts), newSketchCmd(opts), newSeedCmd(opts))
	return root
}
