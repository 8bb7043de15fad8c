package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	ollama "github.com/ollama/ollama/api"
)

const (
	// DefaultOllamaHost is the local Ollama daemon.
	DefaultOllamaHost = "http://localhost:11434"
	// DefaultOllamaModel is used when no model is configured.
	DefaultOllamaModel = "llama3.1"
)

// OllamaClient talks to an Ollama server's chat endpoint.
type OllamaClient struct {
	client *ollama.Client
	model  string
}

// NewOllamaClient creates a client for host (DefaultOllamaHost if empty).
func NewOllamaClient(host, model string, timeout time.Duration) (*OllamaClient, error) {
	if host == "" {
		host = DefaultOllamaHost
	}
	u, err := url.Parse(strings.TrimSuffix(host, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	return &OllamaClient{
		client: ollama.NewClient(u, &http.Client{Timeout: timeout}),
		model:  model,
	}, nil
}

func (o *OllamaClient) Name() string { return "ollama" }

// Complete sends a non-streaming chat request.
func (o *OllamaClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	model := o.model
	if req.Model != "" {
		model = req.Model
	}

	msgs := make([]ollama.Message, 0, len(req.Messages)+1)
	if req.System != "" {
		msgs = append(msgs, ollama.Message{Role: RoleSystem, Content: req.System})
	}
	for _, m := range req.Messages {
		role := m.Role
		if role == RoleTool {
			role = RoleUser
		}
		msgs = append(msgs, ollama.Message{Role: role, Content: m.Content})
	}

	options := map[string]any{}
	if req.Temperature != nil {
		options["temperature"] = *req.Temperature
	}
	if req.MaxTokens > 0 {
		options["num_predict"] = req.MaxTokens
	}

	stream := false
	creq := &ollama.ChatRequest{
		Model:    model,
		Messages: msgs,
		Stream:   &stream,
		Options:  options,
	}

	var (
		text strings.Builder
		last ollama.ChatResponse
	)
	err := o.client.Chat(ctx, creq, func(cr ollama.ChatResponse) error {
		text.WriteString(cr.Message.Content)
		last = cr
		return nil
	})
	if err != nil {
		return nil, &ProviderError{Provider: "ollama", Message: err.Error()}
	}

	return &CompletionResponse{
		Content:    text.String(),
		StopReason: last.DoneReason,
		Model:      last.Model,
		Usage: Usage{
			InputTokens:  last.PromptEvalCount,
			OutputTokens: last.EvalCount,
		},
		Duration: time.Since(start),
	}, nil
}
