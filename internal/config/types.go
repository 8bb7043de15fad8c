package config

// Config is the root configuration for holiday.
type Config struct {
	Weather WeatherConfig `yaml:"weather,omitempty"`
	Search  SearchConfig  `yaml:"search,omitempty"`
	Amadeus AmadeusConfig `yaml:"amadeus,omitempty"`
	Tools   ToolsConfig   `yaml:"tools,omitempty"`
	Model   ModelConfig   `yaml:"model,omitempty"`
	Gateway GatewayConfig `yaml:"gateway,omitempty"`
	Store   StoreConfig   `yaml:"store,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
}

// WeatherConfig points at the weatherapi.com forecast API.
type WeatherConfig struct {
	APIKey  string `yaml:"apiKey,omitempty"`
	BaseURL string `yaml:"baseUrl,omitempty"`
}

// SearchConfig configures the Tavily news search.
type SearchConfig struct {
	APIKey     string `yaml:"apiKey,omitempty"`
	BaseURL    string `yaml:"baseUrl,omitempty"`
	MaxResults int    `yaml:"maxResults,omitempty"`
	Topic      string `yaml:"topic,omitempty"` // "news" | "general"
	Depth      string `yaml:"depth,omitempty"` // "basic" | "advanced"
}

// AmadeusConfig holds the Amadeus self-service credentials.
type AmadeusConfig struct {
	ClientID     string `yaml:"clientId,omitempty"`
	ClientSecret string `yaml:"clientSecret,omitempty"`
	BaseURL      string `yaml:"baseUrl,omitempty"`
	CacheTokens  bool   `yaml:"cacheTokens,omitempty"` // reuse bearer tokens until they expire
}

// ToolsConfig controls tool execution behavior.
type ToolsConfig struct {
	TimeoutSeconds  int    `yaml:"timeoutSeconds,omitempty"`
	FailurePolicy   string `yaml:"failurePolicy,omitempty"`   // "legacy" | "soft"
	FlightSelection string `yaml:"flightSelection,omitempty"` // "first" | "cheapest"
}

// ModelConfig selects the chat model backing the assistant.
type ModelConfig struct {
	Provider    string   `yaml:"provider,omitempty"` // "openai" | "anthropic" | "ollama"
	Model       string   `yaml:"model,omitempty"`
	APIKey      string   `yaml:"apiKey,omitempty"`
	Endpoint    string   `yaml:"endpoint,omitempty"`
	Temperature *float64 `yaml:"temperature,omitempty"`
	MaxTokens   int      `yaml:"maxTokens,omitempty"`
}

// GatewayConfig controls the chat HTTP/WebSocket server.
type GatewayConfig struct {
	Port           int      `yaml:"port,omitempty"`
	Bind           string   `yaml:"bind,omitempty"` // "loopback" | "lan" | "custom"
	CustomBindHost string   `yaml:"customBindHost,omitempty"`
	Token          string   `yaml:"token,omitempty"`
	AllowedOrigins []string `yaml:"allowedOrigins,omitempty"`
}

// StoreConfig controls the tool invocation log.
type StoreConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"` // defaults to true
	Path    string `yaml:"path,omitempty"`
}

// IsEnabled reports whether the invocation log should be opened.
func (s StoreConfig) IsEnabled() bool {
	return s.Enabled == nil || *s.Enabled
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	File  string `yaml:"file,omitempty"`
	Style string `yaml:"style,omitempty"` // "pretty" | "json"
}
