package cli

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/grafana/grafana-cube-datasource/internal/client"
	"github.com/grafana/grafana-cube-datasource/internal/server"
)

// ServeOptions holds options for the serve command.
type ServeOptions struct {
	Listen string // Listen address override
}

// NewServeCommand creates the serve command.
func NewServeCommand(root *rootOptions) *cobra.Command {
	opts := &ServeOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the editor resource endpoints over HTTP",
		Long: `Expose the engine to the editor frontend: POST /api/normalize,
POST /api/check and POST /api/preview. Preview requires a configured
query service; the other endpoints work standalone.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(root, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Listen, "listen", "", "Listen address (overrides server.listen)")

	return cmd
}

func runServe(root *rootOptions, opts *ServeOptions) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))

	var compiler server.Compiler
	if cfg.Service.URL != "" {
		if err := cfg.ValidateService(); err != nil {
			return err
		}
		compiler = client.New(cfg.Service, client.WithLogger(log))
	} else {
		log.Warn("no query service configured, preview endpoint disabled")
	}

	addr := cfg.Server.Listen
	if opts.Listen != "" {
		addr = opts.Listen
	}

	srv := server.New(log, compiler)
	log.Info("listening", "addr", addr)
	return http.ListenAndServe(addr, srv.Routes())
}
