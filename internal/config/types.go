// Package config provides configuration for the cube datasource tooling.
// It is decoupled from CLI concerns so the resource server and other
// tools can load the same settings.
package config

import (
	"fmt"
	"strings"
	"time"
)

// ServiceConfig holds the connection settings for the remote semantic-layer
// query service.
type ServiceConfig struct {
	// URL is the service's base URL, e.g. "https://cube.example.com".
	URL string `koanf:"url"`
	// Token is the bearer token sent with every request. Optional.
	Token string `koanf:"token"`
	// Timeout bounds each request to the service.
	Timeout time.Duration `koanf:"timeout"`
}

// QueryConfig holds query-shaping defaults.
type QueryConfig struct {
	// DefaultLimit is applied by callers when a query carries no limit of
	// its own. Zero means no default.
	DefaultLimit int64 `koanf:"default_limit"`
}

// ServerConfig holds the resource server settings.
type ServerConfig struct {
	// Listen is the address the resource server binds, e.g. ":8088".
	Listen string `koanf:"listen"`
}

// Config is the root configuration.
type Config struct {
	Service ServiceConfig `koanf:"service"`
	Query   QueryConfig   `koanf:"query"`
	Server  ServerConfig  `koanf:"server"`
}

// ValidateService checks that the service connection is usable. Commands
// that never talk to the service skip this.
func (c *Config) ValidateService() error {
	if c.Service.URL == "" {
		return fmt.Errorf("service url is required (set service.url or CUBEQL_SERVICE_URL)")
	}
	if !strings.HasPrefix(c.Service.URL, "http://") && !strings.HasPrefix(c.Service.URL, "https://") {
		return fmt.Errorf("service url must start with http:// or https://, got %q", c.Service.URL)
	}
	return nil
}
