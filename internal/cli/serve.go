package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/bomgraph/bomgraph/pkg/server"
)

// serveCommand creates the serve command: run the pipeline once, then
// expose the result over a read-only HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	opts := struct {
		policyFlags
		parts   []string
		addr    string
		noCache bool
	}{}

	cmd := &cobra.Command{
		Use:   "serve <edge-file>",
		Short: "Serve a finished run over HTTP",
		Long: `Serve imports the exports once and answers queries against the result:

  GET /healthz
  GET /api/graph
  GET /api/stats
  GET /api/diagnostics
  GET /api/parts/{number}
  GET /api/parts/{number}/ancestors
  GET /api/parts/{number}/descendants

The served data is immutable; rerun the command to pick up new exports.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := c.newRunner(cmd, opts.noCache, "")
			if err != nil {
				return err
			}
			defer runner.Cache.Close()

			res, err := runner.Execute(cmd.Context(), opts.pipelineOptions(opts.parts, args[0], false))
			if err != nil {
				return err
			}

			logger := loggerFromContext(cmd.Context())
			srv := &http.Server{
				Addr:              opts.addr,
				Handler:           server.New(res.Dataset, res.Graph, res.Index, logger).Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			go func() {
				<-cmd.Context().Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()

			logger.Info("serving", "addr", opts.addr, "run_id", res.RunID)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}

	opts.policyFlags.register(cmd)
	cmd.Flags().StringArrayVarP(&opts.parts, "parts", "p", nil, "parts export (repeatable, merged in order)")
	cmd.Flags().StringVar(&opts.addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")
	_ = cmd.MarkFlagRequired("parts")
	return cmd
}
