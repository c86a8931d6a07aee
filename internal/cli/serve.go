package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/deusflow/transferradar/internal/app"
	"github.com/deusflow/transferradar/internal/ratelimit"
	"github.com/deusflow/transferradar/internal/server"
)

func (c *cli) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			svc, closeStore, err := app.Open(ctx, c.cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			limiter := ratelimit.NewClientLimiter(
				c.cfg.RateLimit.RequestsPerSecond,
				c.cfg.RateLimit.Burst,
				c.cfg.RateLimit.IdleTTL,
			)
			return server.New(svc, limiter, c.cfg.Server).ListenAndServe(ctx)
		},
	}
	cmd.Flags().String("addr", "", "listen address (default :8080)")
	_ = c.v.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	return cmd
}
