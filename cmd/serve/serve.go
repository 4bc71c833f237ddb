package serve

import (
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/edctrack/exposure/internal/app"
	"github.com/edctrack/exposure/internal/datastore"
	"github.com/edctrack/exposure/internal/logger"
)

type options struct {
	listen          string
	monitorInterval time.Duration
}

// Command creates the serve command.
func Command(session *app.Session) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the exposure HTTP API",
		Long: "Starts the HTTP API under /api/v1/exposure with /healthz and /metrics, and " +
			"monitors the database connection until interrupted.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, session.App, opts)
		},
	}

	cmd.Flags().StringVar(&opts.listen, "listen", "", "Listen address (default: api.listen)")
	cmd.Flags().DurationVar(&opts.monitorInterval, "monitor-interval", datastore.DefaultMonitorInterval, "Database health check interval, 0 disables")

	return cmd
}

// run serves until the command context is cancelled. The caller's context is
// expected to carry signal cancellation.
func run(cmd *cobra.Command, a *app.App, opts *options) error {
	if opts.listen != "" {
		a.Settings.API.Listen = opts.listen
	}
	server := a.APIServer()

	log := logger.Global().Module("serve")
	log.Info("starting exposure service",
		logger.String("version", a.Build.Version()),
		logger.String("listen", a.Settings.API.Listen),
		logger.String("database", a.Store.Dialect))

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		return server.Run(ctx)
	})
	if opts.monitorInterval > 0 {
		g.Go(func() error {
			return a.Store.Monitor(ctx, opts.monitorInterval, a.Metrics.Database)
		})
	}

	err := g.Wait()
	log.Info("exposure service stopped")
	return err
}
