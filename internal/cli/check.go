package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/grafana/grafana-cube-datasource/pkg/cube"
)

// CheckOptions holds options for the check command.
type CheckOptions struct {
	File   string // Query file path
	Format string // Output format: table, json
}

// NewCheckCommand creates the check command.
func NewCheckCommand(root *rootOptions) *cobra.Command {
	opts := &CheckOptions{}
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check whether a query fits the visual editor",
		Long: `Classify a stored query against the visual editor's capabilities and
list every reason it would fall back to text editing. An unsupported
query still normalizes and executes; this only decides which editor the
frontend renders.`,
		Example: `  # Check a panel's stored query
  cubeql check -f query.json

  # Machine-readable verdict
  cubeql check -f query.yaml --format json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCheck(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.File, "file", "f", "", "Query file (JSON or YAML)")
	cmd.Flags().StringVar(&opts.Format, "format", "table", "Output format: table, json")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runCheck(cmd *cobra.Command, opts *CheckOptions) error {
	q, err := LoadQueryFile(opts.File)
	if err != nil {
		return err
	}

	verdict := cube.CheckQuery(q)

	if opts.Format == "json" {
		out, err := json.MarshalIndent(verdict, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	}

	if verdict.Supported() {
		fmt.Fprintln(cmd.OutOrStdout(), "Query is representable by the visual editor.")
		return nil
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Query requires the text editor (%d reasons):\n", len(verdict.Reasons))
	renderReasons(cmd.OutOrStdout(), verdict)
	return nil
}
