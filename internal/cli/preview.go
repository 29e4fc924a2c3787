package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/grafana/grafana-cube-datasource/internal/client"
	"github.com/grafana/grafana-cube-datasource/pkg/cube"
)

// PreviewOptions holds options for the preview command.
type PreviewOptions struct {
	File    string   // Query file path
	Source  string   // Source identity
	Vars    []string // name=value dashboard variables
	Execute bool     // Also execute the query and print the rows
}

// NewPreviewCommand creates the preview command.
func NewPreviewCommand(root *rootOptions) *cobra.Command {
	opts := &PreviewOptions{}
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Compile a query to SQL via the query service",
		Long: `Normalize a stored query and ask the configured service to compile it
to SQL without executing it. The payload sent for compilation is the
same canonical query the execution path sends.

Members unknown to the service's schema are reported as warnings; they
never fail the preview.`,
		Example: `  # Show the SQL a panel's query compiles to
  cubeql preview -f query.json --var region=us-east

  # Compile and execute
  cubeql preview -f query.json --execute`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPreview(cmd, root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "Query file (JSON or YAML)")
	cmd.Flags().StringVar(&opts.Source, "source", "", "Source identity")
	cmd.Flags().StringArrayVar(&opts.Vars, "var", nil, "Dashboard variable as name=value (repeatable)")
	cmd.Flags().BoolVar(&opts.Execute, "execute", false, "Execute the query and print the rows")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runPreview(cmd *cobra.Command, root *rootOptions, opts *PreviewOptions) error {
	cfg, err := root.loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateService(); err != nil {
		return err
	}

	q, err := LoadQueryFile(opts.File)
	if err != nil {
		return err
	}
	applyDefaultLimit(&q, cfg)

	vars, err := parseVars(opts.Vars)
	if err != nil {
		return err
	}
	normalized := cube.NormalizeQuery(q, normalizeContext(opts.Source, vars))

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	svc := client.New(cfg.Service, client.WithLogger(log))

	// Schema metadata and SQL compilation are independent requests.
	var (
		meta *client.Meta
		sql  string
	)
	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		var err error
		meta, err = svc.Meta(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		sql, err = svc.CompileSQL(ctx, normalized)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	for _, warning := range unknownMembers(normalized, meta) {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s is not in the service schema\n", warning)
	}

	fmt.Fprintln(cmd.OutOrStdout(), sql)

	if !opts.Execute {
		return nil
	}
	result, err := svc.Load(cmd.Context(), normalized)
	if err != nil {
		return err
	}
	renderResultTable(cmd.OutOrStdout(), append(normalized.Dimensions, normalized.Measures...), result)
	return nil
}

// unknownMembers lists the query's dimensions and measures the schema
// does not know about, in query order.
func unknownMembers(q cube.NormalizedQuery, meta *client.Meta) []string {
	if meta == nil {
		return nil
	}
	known := meta.Members()
	var out []string
	for _, member := range append(append([]string{}, q.Dimensions...), q.Measures...) {
		if _, ok := known[member]; !ok {
			out = append(out, member)
		}
	}
	return out
}
