package config

import (
	"errors"
	"io/fs"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} patterns in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// Unset variables are left unchanged.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

// expandSensitiveFields processes environment variable references in
// credential fields so keys and secrets can be stored as ${ENV_VAR}.
func expandSensitiveFields(cfg *Config) {
	cfg.Weather.APIKey = expandEnvVars(cfg.Weather.APIKey)
	cfg.Search.APIKey = expandEnvVars(cfg.Search.APIKey)
	cfg.Amadeus.ClientID = expandEnvVars(cfg.Amadeus.ClientID)
	cfg.Amadeus.ClientSecret = expandEnvVars(cfg.Amadeus.ClientSecret)
	cfg.Model.APIKey = expandEnvVars(cfg.Model.APIKey)
	cfg.Gateway.Token = expandEnvVars(cfg.Gateway.Token)
}

// LoadDotEnv loads KEY=VALUE pairs from the given .env files into the
// process environment. Missing files are skipped and variables that are
// already set are never overwritten.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if f == "" {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return &ConfigError{Message: "failed to load " + f + ": " + err.Error()}
		}
	}
	return nil
}

// Load reads the config file, applies environment overrides, and returns
// a merged Config. Missing files produce defaults only.
func Load(path string) (Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return Defaults(), err
		}
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Defaults(), &ConfigError{Message: "failed to parse config: " + err.Error()}
	}

	applyDefaults(&cfg)
	expandSensitiveFields(&cfg)
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// LoadRaw reads the config file into a generic map for path-based access.
func LoadRaw(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

// SaveRaw writes a generic map back to a YAML config file.
func SaveRaw(path string, raw map[string]any) error {
	data, err := yaml.Marshal(raw)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// applyDefaults fills zero-value fields with sensible defaults.
func applyDefaults(cfg *Config) {
	if cfg.Weather.BaseURL == "" {
		cfg.Weather.BaseURL = DefaultWeatherBaseURL
	}
	if cfg.Search.BaseURL == "" {
		cfg.Search.BaseURL = DefaultSearchBaseURL
	}
	if cfg.Search.MaxResults == 0 {
		cfg.Search.MaxResults = 5
	}
	if cfg.Search.Topic == "" {
		cfg.Search.Topic = "news"
	}
	if cfg.Search.Depth == "" {
		cfg.Search.Depth = "advanced"
	}
	if cfg.Amadeus.BaseURL == "" {
		cfg.Amadeus.BaseURL = DefaultAmadeusBaseURL
	}
	if cfg.Tools.TimeoutSeconds == 0 {
		cfg.Tools.TimeoutSeconds = 30
	}
	if cfg.Tools.FailurePolicy == "" {
		cfg.Tools.FailurePolicy = PolicyLegacy
	}
	if cfg.Tools.FlightSelection == "" {
		cfg.Tools.FlightSelection = SelectFirst
	}
	if cfg.Model.Provider == "" {
		cfg.Model.Provider = "openai"
	}
	if cfg.Model.Temperature == nil {
		t := DefaultTemperature
		cfg.Model.Temperature = &t
	}
	if cfg.Gateway.Port == 0 {
		cfg.Gateway.Port = DefaultGatewayPort
	}
	if cfg.Gateway.Bind == "" {
		cfg.Gateway.Bind = "loopback"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Style == "" {
		cfg.Logging.Style = "pretty"
	}
}

// applyEnvOverrides reads HOLIDAY_* environment variables and overrides
// config values, then fills still-empty credentials from the conventional
// provider variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HOLIDAY_GATEWAY_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Gateway.Port = port
		}
	}
	if v := os.Getenv("HOLIDAY_GATEWAY_BIND"); v != "" {
		cfg.Gateway.Bind = v
	}
	if v := os.Getenv("HOLIDAY_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("HOLIDAY_MODEL"); v != "" {
		cfg.Model.Model = v
	}
	if v := os.Getenv("HOLIDAY_FAILURE_POLICY"); v != "" {
		cfg.Tools.FailurePolicy = strings.ToLower(v)
	}

	fillFromEnv(&cfg.Gateway.Token, "HOLIDAY_GATEWAY_TOKEN")
	fillFromEnv(&cfg.Weather.APIKey, "WEATHER_API_KEY")
	fillFromEnv(&cfg.Search.APIKey, "TAVILY_API_KEY")
	fillFromEnv(&cfg.Amadeus.ClientID, "AMADEUS_API_KEY")
	fillFromEnv(&cfg.Amadeus.ClientSecret, "AMADEUS_API_SECRET")

	switch cfg.Model.Provider {
	case "openai":
		fillFromEnv(&cfg.Model.APIKey, "OPENAI_API_KEY")
		fillFromEnv(&cfg.Model.Endpoint, "OPENAI_BASE_URL")
	case "anthropic":
		fillFromEnv(&cfg.Model.APIKey, "ANTHROPIC_API_KEY")
	case "ollama":
		fillFromEnv(&cfg.Model.Endpoint, "OLLAMA_HOST")
	}
}

func fillFromEnv(dst *string, name string) {
	if *dst != "" {
		return
	}
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}
