package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sebastiansztangierski/ancestral-scribe/pkg/server"
)

// serveCommand creates the serve command for the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout and collapse-state HTTP API",
		Long: `Serve the HTTP API.

  POST   /v1/layout                                      scene JSON
  POST   /v1/render?format=svg|json|dot|graph|minimap
  POST   /v1/search
  GET    /v1/trees/{treeID}/collapsed
  PUT    /v1/trees/{treeID}/collapsed
  DELETE /v1/trees/{treeID}/collapsed
  POST   /v1/trees/{treeID}/collapsed/{personID}/toggle
  GET    /healthz`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.Config()
			if err != nil {
				return err
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			store, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			printInfo("Serving on %s", StyleHighlight.Render(addr))
			printKeyValue("Store", backendName(cfg.Store.Backend))
			printKeyValue("Cache", cacheBackendName(cfg.CacheConfig().Backend, noCache))
			printNewline()
			srv := server.New(runner, store, server.WithLogger(c.Logger))
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: config server.addr)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func cacheBackendName(b string, disabled bool) string {
	switch {
	case disabled:
		return "disabled"
	case b == "":
		return "file"
	default:
		return b
	}
}
