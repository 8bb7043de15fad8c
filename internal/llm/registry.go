package llm

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/soyeahso/holiday/internal/config"
	"github.com/soyeahso/holiday/internal/logging"
)

// ProviderError is returned when a model provider fails.
type ProviderError struct {
	Provider string
	Message  string
	Code     int // HTTP status code (401, 429, 500, etc.)
}

func (e *ProviderError) Error() string {
	if e.Code > 0 {
		return fmt.Sprintf("%s: %d %s", e.Provider, e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// Registry manages provider clients and resolves model references to clients.
type Registry struct {
	mu       sync.RWMutex
	clients  map[string]Client // provider name → client
	aliases  map[string]string // model alias → provider name
	fallback string            // default provider name
	log      *logging.Logger
}

// NewRegistry creates an empty provider registry.
func NewRegistry(log *logging.Logger) *Registry {
	return &Registry{
		clients: make(map[string]Client),
		aliases: make(map[string]string),
		log:     log.Sub("llm.registry"),
	}
}

// Register adds a client under the given provider name.
func (r *Registry) Register(name string, client Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[name] = client
	r.log.Debug().Str("provider", name).Msg("registered LLM provider")
}

// Alias maps a model name to a provider.
// e.g., Alias("gpt-4o", "openai") means "gpt-4o" resolves to the "openai" provider.
func (r *Registry) Alias(model, provider string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.aliases[model] = provider
}

// SetFallback sets the default provider used when no model/provider match is found.
func (r *Registry) SetFallback(provider string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = provider
}

// Resolve returns the Client for the given model reference.
// Resolution order: exact provider name → alias → fallback.
func (r *Registry) Resolve(model string) (Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if c, ok := r.clients[model]; ok {
		return c, nil
	}

	if provider, ok := r.aliases[model]; ok {
		if c, ok := r.clients[provider]; ok {
			return c, nil
		}
	}

	if r.fallback != "" {
		if c, ok := r.clients[r.fallback]; ok {
			return c, nil
		}
	}

	return nil, fmt.Errorf("no LLM provider for model %q", model)
}

// List returns all registered provider names, sorted.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.clients))
	for n := range r.clients {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NewRegistryFromConfig builds a Registry holding the configured provider,
// which is also the fallback. The configured model name is aliased to it.
func NewRegistryFromConfig(cfg config.ModelConfig, timeout time.Duration, log *logging.Logger) (*Registry, error) {
	reg := NewRegistry(log)

	var client Client
	switch cfg.Provider {
	case "openai":
		client = NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.Endpoint, timeout)
	case "anthropic":
		client = NewAnthropicClient(cfg.APIKey, cfg.Model, cfg.Endpoint, timeout)
	case "ollama":
		oc, err := NewOllamaClient(cfg.Endpoint, cfg.Model, timeout)
		if err != nil {
			return nil, err
		}
		client = oc
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}

	reg.Register(cfg.Provider, client)
	reg.SetFallback(cfg.Provider)
	if cfg.Model != "" {
		reg.Alias(cfg.Model, cfg.Provider)
	}
	return reg, nil
}
