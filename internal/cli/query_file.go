package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/grafana/grafana-cube-datasource/pkg/cube"
)

// LoadQueryFile reads a stored query from a JSON or YAML file. The file
// holds the query in whatever shape the panel persisted it, legacy
// spellings included; decoding tolerance lives in cube.DecodeQuery.
func LoadQueryFile(path string) (cube.Query, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cube.Query{}, err
	}

	var raw map[string]any
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return cube.Query{}, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, &raw); err != nil {
			return cube.Query{}, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	q, err := cube.DecodeQuery(raw)
	if err != nil {
		return cube.Query{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return q, nil
}
