package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
)

// DefaultOpenAIModel is used when no model is configured.
const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIClient talks to the OpenAI chat completions API, or any endpoint
// compatible with it, using native function calling.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient creates a client. An empty endpoint uses api.openai.com.
func NewOpenAIClient(apiKey, model, endpoint string, timeout time.Duration) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if endpoint != "" {
		cfg.BaseURL = endpoint
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIClient{client: openai.NewClientWithConfig(cfg), model: model}
}

func (o *OpenAIClient) Name() string { return "openai" }

// NativeTools is always true for OpenAI.
func (o *OpenAIClient) NativeTools() bool { return true }

// Complete sends a chat completion request.
func (o *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	model := o.model
	if req.Model != "" {
		model = req.Model
	}

	creq := openai.ChatCompletionRequest{
		Model:     model,
		Messages:  toOpenAIMessages(req.System, req.Messages),
		MaxTokens: req.MaxTokens,
	}
	if req.Temperature != nil {
		creq.Temperature = float32(*req.Temperature)
	}
	for _, t := range req.Tools {
		creq.Tools = append(creq.Tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  t.Parameters,
			},
		})
	}

	resp, err := o.client.CreateChatCompletion(ctx, creq)
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return nil, &ProviderError{Provider: "openai", Message: apiErr.Message, Code: apiErr.HTTPStatusCode}
		}
		return nil, fmt.Errorf("openai: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, &ProviderError{Provider: "openai", Message: "no choices in response"}
	}

	choice := resp.Choices[0]
	out := &CompletionResponse{
		Content:    choice.Message.Content,
		StopReason: string(choice.FinishReason),
		Model:      resp.Model,
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
		Duration: time.Since(start),
	}
	for _, tc := range choice.Message.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, ToolCall{
			ID:    tc.ID,
			Name:  tc.Function.Name,
			Input: tc.Function.Arguments,
		})
	}
	return out, nil
}

func toOpenAIMessages(system string, msgs []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(msgs)+1)
	if system != "" {
		out = append(out, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	for _, m := range msgs {
		cm := openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
		switch m.Role {
		case RoleTool:
			cm.Role = openai.ChatMessageRoleTool
			cm.ToolCallID = m.ToolCallID
		case RoleAssistant:
			for _, tc := range m.ToolCalls {
				cm.ToolCalls = append(cm.ToolCalls, openai.ToolCall{
					ID:   tc.ID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      tc.Name,
						Arguments: tc.Input,
					},
				})
			}
		}
		out = append(out, cm)
	}
	return out
}
