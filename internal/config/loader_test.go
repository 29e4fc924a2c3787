package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultTimeout, cfg.Service.Timeout)
	assert.Equal(t, DefaultListen, cfg.Server.Listen)
	assert.Empty(t, cfg.Service.URL)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
service:
  url: https://cube.example.com
  token: secret
  timeout: 5s
query:
  default_limit: 500
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://cube.example.com", cfg.Service.URL)
	assert.Equal(t, "secret", cfg.Service.Token)
	assert.Equal(t, 5*time.Second, cfg.Service.Timeout)
	assert.Equal(t, int64(500), cfg.Query.DefaultLimit)
	assert.Equal(t, DefaultListen, cfg.Server.Listen, "unset keys keep defaults")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
service:
  url: https://file.example.com
`)
	t.Setenv("CUBEQL_SERVICE_URL", "https://env.example.com")
	t.Setenv("CUBEQL_QUERY_DEFAULT_LIMIT", "100")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.com", cfg.Service.URL)
	assert.Equal(t, int64(100), cfg.Query.DefaultLimit)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateService(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"empty", "", true},
		{"no scheme", "cube.example.com", true},
		{"http", "http://cube.example.com", false},
		{"https", "https://cube.example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Service: ServiceConfig{URL: tt.url}}
			err := cfg.ValidateService()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
