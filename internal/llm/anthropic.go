package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	// DefaultAnthropicModel is used when no model is configured.
	DefaultAnthropicModel = "claude-sonnet-4-5"
	defaultMaxTokens      = 1024
)

// AnthropicClient talks to the Anthropic Messages API. Tools are described
// in the system prompt, so it does not report native tool support.
type AnthropicClient struct {
	client anthropic.Client
	model  string
}

// NewAnthropicClient creates a client. An empty endpoint uses the public API.
func NewAnthropicClient(apiKey, model, endpoint string, timeout time.Duration) *AnthropicClient {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
		option.WithMaxRetries(0),
	}
	if endpoint != "" {
		opts = append(opts, option.WithBaseURL(endpoint))
	}
	if model == "" {
		model = DefaultAnthropicModel
	}
	return &AnthropicClient{client: anthropic.NewClient(opts...), model: model}
}

func (a *AnthropicClient) Name() string { return "anthropic" }

// Complete sends a Messages API request and concatenates the text blocks.
func (a *AnthropicClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	model := a.model
	if req.Model != "" {
		model = req.Model
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages:  toAnthropicMessages(req.Messages),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if req.Temperature != nil {
		// Anthropic accepts 0-1.
		params.Temperature = anthropic.Float(min(*req.Temperature, 1))
	}

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return nil, &ProviderError{Provider: "anthropic", Message: apiErr.Error(), Code: apiErr.StatusCode}
		}
		return nil, fmt.Errorf("anthropic: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(tb.Text)
		}
	}

	return &CompletionResponse{
		Content:    b.String(),
		StopReason: string(msg.StopReason),
		Model:      string(msg.Model),
		Usage: Usage{
			InputTokens:  int(msg.Usage.InputTokens),
			OutputTokens: int(msg.Usage.OutputTokens),
		},
		Duration: time.Since(start),
	}, nil
}

func toAnthropicMessages(msgs []Message) []anthropic.MessageParam {
	out := make([]anthropic.MessageParam, 0, len(msgs))
	for _, m := range msgs {
		if m.Content == "" {
			continue
		}
		block := anthropic.NewTextBlock(m.Content)
		switch m.Role {
		case RoleAssistant:
			out = append(out, anthropic.NewAssistantMessage(block))
		case RoleSystem:
			continue
		default:
			out = append(out, anthropic.NewUserMessage(block))
		}
	}
	return out
}
