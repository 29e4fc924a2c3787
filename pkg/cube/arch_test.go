package cube_test

import (
	"go/parser"
	"go/token"
	"os"
	"strings"
	"testing"
)

// TestCubeImportsOnly verifies pkg/cube only imports allowed packages.
// The Golden Rule: pkg/cube imports ONLY mapstructure and stdlib.
func TestCubeImportsOnly(t *testing.T) {
	allowedExternal := map[string]bool{
		"github.com/go-viper/mapstructure/v2": true,
	}

	fset := token.NewFileSet()

	entries, err := os.ReadDir(".")
	if err != nil {
		t.Fatalf("Failed to read package directory: %v", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".go") {
			continue
		}
		if strings.HasSuffix(entry.Name(), "_test.go") {
			continue
		}

		f, err := parser.ParseFile(fset, entry.Name(), nil, parser.ImportsOnly)
		if err != nil {
			t.Errorf("Failed to parse %s: %v", entry.Name(), err)
			continue
		}

		for _, imp := range f.Imports {
			importPath := strings.Trim(imp.Path.Value, `"`)

			// Stdlib paths carry no dot
			if !strings.Contains(importPath, ".") {
				continue
			}

			if !allowedExternal[importPath] {
				t.Errorf("%s imports forbidden package: %s", entry.Name(), importPath)
			}
		}
	}
}
