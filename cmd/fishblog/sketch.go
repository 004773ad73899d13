package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fishblog/fishblog/internal/app"
	"github.com/fishblog/fishblog/internal/scripting"
)

func newSketchCmd(opts *rootOptions) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "sketch <file.lua>",
		Short: "Draw with a Lua script and save the result",
		Long: `Run a Lua sketch against a blank canvas and save what it draws.

Without --title the result is saved to the drawing gallery. With --title it is
posted to the guestbook as a drawing message.

The script gets a "pen" module and a "canvas" table with the surface size:

  function draw(w, h)
    pen.color("#1e90ff")
    pen.width(6)
    pen.line(w * 0.2, h / 2, w * 0.8, h / 2)
  end`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, cleanup, err := app.New(ctx, opts.configPath, app.Options{Console: true})
			if err != nil {
				return err
			}
			defer cleanup()

			sk, err := scripting.NewRunner(a.Commands, a.Log.Named("sketch")).RunFile(ctx, args[0], title)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if sk.Posted {
				_, _ = fmt.Fprintf(w, "posted %q to the guestbook (%d segments)\n", title, sk.Segments)
				return nil
			}
			_, _ = fmt.Fprintf(w, "saved drawing %s (%d segments)\n", sk.DrawingID, sk.Segments)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "post to the guestbook under this title")
	return cmd
}
