package config

import (
	"fmt"
	"time"
)

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

// Default upstream endpoints.
const (
	DefaultWeatherBaseURL = "https://api.weatherapi.com/v1"
	DefaultSearchBaseURL  = "https://api.tavily.com"
	DefaultAmadeusBaseURL = "https://test.api.amadeus.com"
	DefaultGatewayPort    = 7860
	DefaultTemperature    = 0.6
)

// Failure policies.
const (
	PolicyLegacy = "legacy"
	PolicySoft   = "soft"
)

// Flight offer selection strategies.
const (
	SelectFirst    = "first"
	SelectCheapest = "cheapest"
)

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	cfg := Config{}
	applyDefaults(&cfg)
	return cfg
}

// ToolTimeout returns the per-request timeout for upstream calls.
func (c *Config) ToolTimeout() time.Duration {
	return time.Duration(c.Tools.TimeoutSeconds) * time.Second
}
