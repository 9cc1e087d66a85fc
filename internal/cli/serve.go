package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/pixelsort/pkg/observability"
	"github.com/matzehuels/pixelsort/pkg/server"
)

// serveCommand creates the serve command, which exposes the sort pipeline
// over HTTP until interrupted.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the sort pipeline over HTTP",
		Long: `Run an HTTP service with the endpoints:

  GET  /healthz    liveness and build information
  POST /v1/sort    sort the image in the request body
  POST /v1/stats   summarize the image in the request body

Sort options are passed as query parameters named like the sort flags.
Set PIXELSORT_REDIS_URL to share the result cache between instances.`,
		Example: `  pixelsort serve --addr :8080
  curl --data-binary @photo.png 'localhost:8080/v1/sort?by=hue&interval=8&seed=1' -o sorted.png`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			logger := loggerFromContext(ctx)
			observability.NewLogHooks(logger).Register()
			defer observability.Reset()

			newPrinter(cmd.OutOrStdout()).info("Listening on %s", StyleValue.Render(addr))
			return server.New(runner, logger).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")

	return cmd
}
