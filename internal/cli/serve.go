package cli

import (
	"os"
	"os/signal"
	"syscall"

	"coopcontrol/internal/app"

	"github.com/spf13/cobra"
)

func serveCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the daily scheduler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return opts.withApp(func(a *app.App) error {
				return a.Serve(ctx)
			})
		},
	}
}
