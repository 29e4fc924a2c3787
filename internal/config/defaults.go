package config

import "time"

// Default configuration values.
const (
	DefaultTimeout = 30 * time.Second
	DefaultListen  = ":8088"
	DefaultLimit   = int64(0)
)

// defaults is the base layer every other configuration source overrides.
func defaults() map[string]interface{} {
	return map[string]interface{}{
		"service.timeout":     DefaultTimeout,
		"query.default_limit": DefaultLimit,
		"server.listen":       DefaultListen,
	}
}
