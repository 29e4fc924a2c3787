// Package cli provides the command-line interface for cubeql.
package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/grafana/grafana-cube-datasource/internal/config"
	"github.com/grafana/grafana-cube-datasource/pkg/cube"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

// rootOptions holds flags shared by every subcommand.
type rootOptions struct {
	configPath string
}

// loadConfig loads the layered configuration honoring the --config flag.
func (o *rootOptions) loadConfig() (*config.Config, error) {
	return config.Load(o.configPath)
}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	rootCmd := &cobra.Command{
		Use:   "cubeql",
		Short: "cubeql - semantic-layer query tooling",
		Long: `cubeql normalizes stored dashboard queries into the canonical shape the
semantic-layer query service accepts, checks whether a query fits the
visual editor, and previews the compiled SQL.

Queries are read from JSON or YAML files in the shape panels persist,
legacy field spellings included.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to cubeql.yaml")

	rootCmd.AddCommand(
		NewNormalizeCommand(opts),
		NewCheckCommand(opts),
		NewPreviewCommand(opts),
		NewServeCommand(opts),
		NewVersionCommand(),
	)

	return rootCmd
}

// parseVars turns repeated --var name=value flags into a variable map.
func parseVars(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	vars := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --var %q, expected name=value", pair)
		}
		vars[name] = value
	}
	return vars, nil
}

// normalizeContext builds the ambient context for a CLI invocation.
func normalizeContext(source string, vars map[string]string) cube.NormalizeContext {
	return cube.NormalizeContext{
		Source: source,
		Host:   cube.StaticHost{Vars: vars},
	}
}

// applyDefaultLimit fills in the configured default when the query has no
// limit of its own. Zero config means no default.
func applyDefaultLimit(q *cube.Query, cfg *config.Config) {
	if q.Limit == nil && cfg.Query.DefaultLimit > 0 {
		q.Limit = cube.LimitOf(cfg.Query.DefaultLimit)
	}
}
