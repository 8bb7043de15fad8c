package config

import (
	"cmp"
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	// Upstream credentials
	if cfg.Weather.APIKey == "" {
		issues = append(issues, ValidationIssue{Path: "weather.apiKey", Message: "required (or set WEATHER_API_KEY)"})
	}
	if cfg.Search.APIKey == "" {
		issues = append(issues, ValidationIssue{Path: "search.apiKey", Message: "required (or set TAVILY_API_KEY)"})
	}
	if cfg.Amadeus.ClientID == "" {
		issues = append(issues, ValidationIssue{Path: "amadeus.clientId", Message: "required (or set AMADEUS_API_KEY)"})
	}
	if cfg.Amadeus.ClientSecret == "" {
		issues = append(issues, ValidationIssue{Path: "amadeus.clientSecret", Message: "required (or set AMADEUS_API_SECRET)"})
	}

	for path, raw := range map[string]string{
		"weather.baseUrl": cfg.Weather.BaseURL,
		"search.baseUrl":  cfg.Search.BaseURL,
		"amadeus.baseUrl": cfg.Amadeus.BaseURL,
	} {
		if u, err := url.Parse(raw); err != nil || u.Scheme == "" || u.Host == "" {
			issues = append(issues, ValidationIssue{Path: path, Message: fmt.Sprintf("must be an absolute URL, got %q", raw)})
		}
	}

	if cfg.Search.MaxResults < 1 || cfg.Search.MaxResults > 20 {
		issues = append(issues, ValidationIssue{
			Path:    "search.maxResults",
			Message: fmt.Sprintf("must be 1-20, got %d", cfg.Search.MaxResults),
		})
	}
	validTopics := []string{"news", "general"}
	if !slices.Contains(validTopics, cfg.Search.Topic) {
		issues = append(issues, ValidationIssue{
			Path:    "search.topic",
			Message: fmt.Sprintf("must be one of %v, got %q", validTopics, cfg.Search.Topic),
		})
	}
	validDepths := []string{"basic", "advanced"}
	if !slices.Contains(validDepths, cfg.Search.Depth) {
		issues = append(issues, ValidationIssue{
			Path:    "search.depth",
			Message: fmt.Sprintf("must be one of %v, got %q", validDepths, cfg.Search.Depth),
		})
	}

	// Tools
	if cfg.Tools.TimeoutSeconds < 1 {
		issues = append(issues, ValidationIssue{
			Path:    "tools.timeoutSeconds",
			Message: fmt.Sprintf("must be positive, got %d", cfg.Tools.TimeoutSeconds),
		})
	}
	validPolicies := []string{PolicyLegacy, PolicySoft}
	if !slices.Contains(validPolicies, cfg.Tools.FailurePolicy) {
		issues = append(issues, ValidationIssue{
			Path:    "tools.failurePolicy",
			Message: fmt.Sprintf("must be one of %v, got %q", validPolicies, cfg.Tools.FailurePolicy),
		})
	}
	validSelections := []string{SelectFirst, SelectCheapest}
	if !slices.Contains(validSelections, cfg.Tools.FlightSelection) {
		issues = append(issues, ValidationIssue{
			Path:    "tools.flightSelection",
			Message: fmt.Sprintf("must be one of %v, got %q", validSelections, cfg.Tools.FlightSelection),
		})
	}

	// Model
	validProviders := []string{"openai", "anthropic", "ollama"}
	if !slices.Contains(validProviders, cfg.Model.Provider) {
		issues = append(issues, ValidationIssue{
			Path:    "model.provider",
			Message: fmt.Sprintf("must be one of %v, got %q", validProviders, cfg.Model.Provider),
		})
	}
	if cfg.Model.Provider != "ollama" && cfg.Model.APIKey == "" {
		issues = append(issues, ValidationIssue{
			Path:    "model.apiKey",
			Message: "required (except for ollama)",
		})
	}
	if t := cfg.Model.Temperature; t != nil && (*t < 0 || *t > 2) {
		issues = append(issues, ValidationIssue{
			Path:    "model.temperature",
			Message: fmt.Sprintf("must be 0-2, got %g", *t),
		})
	}
	if cfg.Model.MaxTokens < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "model.maxTokens",
			Message: fmt.Sprintf("must not be negative, got %d", cfg.Model.MaxTokens),
		})
	}

	// Gateway
	if cfg.Gateway.Port < 0 || cfg.Gateway.Port > 65535 {
		issues = append(issues, ValidationIssue{
			Path:    "gateway.port",
			Message: fmt.Sprintf("port must be 0-65535, got %d", cfg.Gateway.Port),
		})
	}
	validBinds := []string{"loopback", "lan", "custom"}
	if !slices.Contains(validBinds, cfg.Gateway.Bind) {
		issues = append(issues, ValidationIssue{
			Path:    "gateway.bind",
			Message: fmt.Sprintf("must be one of %v, got %q", validBinds, cfg.Gateway.Bind),
		})
	}
	if cfg.Gateway.Bind == "custom" && cfg.Gateway.CustomBindHost == "" {
		issues = append(issues, ValidationIssue{
			Path:    "gateway.customBindHost",
			Message: "required when bind is custom",
		})
	}

	// Logging
	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	if !slices.Contains(validLogLevels, cfg.Logging.Level) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got %q", validLogLevels, cfg.Logging.Level),
		})
	}
	validStyles := []string{"pretty", "json"}
	if !slices.Contains(validStyles, cfg.Logging.Style) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.style",
			Message: fmt.Sprintf("must be one of %v, got %q", validStyles, cfg.Logging.Style),
		})
	}

	slices.SortStableFunc(issues, func(a, b ValidationIssue) int {
		return cmp.Compare(a.Path, b.Path)
	})
	return issues
}

// Check validates cfg and folds any issues into a single ConfigError.
// Issues under any of the ignored section prefixes (e.g. "model") are
// dropped, for commands that never use that section.
func Check(cfg *Config, ignore ...string) error {
	issues := slices.DeleteFunc(Validate(cfg), func(v ValidationIssue) bool {
		for _, prefix := range ignore {
			if v.Path == prefix || strings.HasPrefix(v.Path, prefix+".") {
				return true
			}
		}
		return false
	})
	if len(issues) == 0 {
		return nil
	}
	msg := fmt.Sprintf("%d invalid setting(s):", len(issues))
	for _, issue := range issues {
		msg += "\n  " + issue.String()
	}
	return &ConfigError{Message: msg}
}
