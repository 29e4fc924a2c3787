package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grafana/grafana-cube-datasource/pkg/cube"
)

// NormalizeOptions holds options for the normalize command.
type NormalizeOptions struct {
	File   string   // Query file path
	Source string   // Source identity for ad-hoc filter lookup
	Vars   []string // name=value dashboard variables
}

// NewNormalizeCommand creates the normalize command.
func NewNormalizeCommand(root *rootOptions) *cobra.Command {
	opts := &NormalizeOptions{}
	cmd := &cobra.Command{
		Use:   "normalize",
		Short: "Normalize a stored query into its canonical shape",
		Long: `Read a stored query file, resolve dashboard variables, and print the
canonical query the service accepts. This is the exact payload both
execution and SQL preview send.`,
		Example: `  # Normalize a panel's stored query
  cubeql normalize -f query.json

  # Resolve dashboard variables while normalizing
  cubeql normalize -f query.yaml --var region=us-east --var timeDimension=orders.created_at`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runNormalize(cmd, root, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "Query file (JSON or YAML)")
	cmd.Flags().StringVar(&opts.Source, "source", "", "Source identity")
	cmd.Flags().StringArrayVar(&opts.Vars, "var", nil, "Dashboard variable as name=value (repeatable)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runNormalize(cmd *cobra.Command, root *rootOptions, opts *NormalizeOptions) error {
	cfg, err := root.loadConfig()
	if err != nil {
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

	out, err := json.MarshalIndent(normalized, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
