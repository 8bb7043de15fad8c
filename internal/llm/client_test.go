package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soyeahso/holiday/internal/config"
	"github.com/soyeahso/holiday/internal/logging"
)

func silentLog() *logging.Logger {
	return logging.New(nil, "silent")
}

func ptr[T any](v T) *T { return &v }

// --- Registry tests ---

func TestRegistryRegisterAndResolve(t *testing.T) {
	reg := NewRegistry(silentLog())
	reg.Register("test-provider", &MockClient{ProviderName: "test-provider"})

	client, err := reg.Resolve("test-provider")
	require.NoError(t, err)
	assert.Equal(t, "test-provider", client.Name())
}

func TestRegistryAliasAndFallback(t *testing.T) {
	reg := NewRegistry(silentLog())
	reg.Register("openai", &MockClient{ProviderName: "openai"})
	reg.Alias("gpt-4o", "openai")

	client, err := reg.Resolve("gpt-4o")
	require.NoError(t, err)
	assert.Equal(t, "openai", client.Name())

	_, err = reg.Resolve("unknown-model")
	assert.ErrorContains(t, err, "no LLM provider")

	reg.SetFallback("openai")
	client, err = reg.Resolve("unknown-model")
	require.NoError(t, err)
	assert.Equal(t, "openai", client.Name())
}

func TestRegistryList(t *testing.T) {
	reg := NewRegistry(silentLog())
	reg.Register("ollama", &MockClient{ProviderName: "ollama"})
	reg.Register("anthropic", &MockClient{ProviderName: "anthropic"})
	assert.Equal(t, []string{"anthropic", "ollama"}, reg.List())
}

func TestNewRegistryFromConfig(t *testing.T) {
	tests := []struct {
		provider string
		native   bool
	}{
		{"openai", true},
		{"anthropic", false},
		{"ollama", false},
	}
	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			reg, err := NewRegistryFromConfig(config.ModelConfig{
				Provider: tt.provider, Model: "some-model", APIKey: "k",
			}, time.Second, silentLog())
			require.NoError(t, err)

			client, err := reg.Resolve("some-model")
			require.NoError(t, err)
			assert.Equal(t, tt.provider, client.Name())
			assert.Equal(t, tt.native, SupportsNativeTools(client))
		})
	}

	_, err := NewRegistryFromConfig(config.ModelConfig{Provider: "gemini"}, time.Second, silentLog())
	assert.Error(t, err)
}

func TestProviderError(t *testing.T) {
	assert.Equal(t, "openai: 429 rate limited", (&ProviderError{Provider: "openai", Message: "rate limited", Code: 429}).Error())
	assert.Equal(t, "ollama: connection refused", (&ProviderError{Provider: "ollama", Message: "connection refused"}).Error())
}

func TestMockClient(t *testing.T) {
	m := &MockClient{ProviderName: "mock"}
	resp, err := m.Complete(context.Background(), CompletionRequest{})
	require.NoError(t, err)
	assert.Equal(t, "mock response", resp.Content)
	assert.False(t, SupportsNativeTools(m))

	m.Native = true
	m.CompleteFunc = func(_ context.Context, _ CompletionRequest) (*CompletionResponse, error) {
		return nil, errors.New("boom")
	}
	_, err = m.Complete(context.Background(), CompletionRequest{})
	assert.EqualError(t, err, "boom")
	assert.True(t, SupportsNativeTools(m))
}

// --- Provider wire tests ---

func TestOpenAIClientComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o-mini", body["model"])
		assert.InDelta(t, 0.6, body["temperature"], 1e-6)

		msgs, _ := body["messages"].([]any)
		if !assert.Len(t, msgs, 4) {
			return
		}
		assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
		assistant := msgs[2].(map[string]any)
		assert.Len(t, assistant["tool_calls"], 1)
		tool := msgs[3].(map[string]any)
		assert.Equal(t, "tool", tool["role"])
		assert.Equal(t, "call_1", tool["tool_call_id"])

		tools, _ := body["tools"].([]any)
		if !assert.Len(t, tools, 1) {
			return
		}
		fn := tools[0].(map[string]any)["function"].(map[string]any)
		assert.Equal(t, "get_weather_info", fn["name"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
		  "id": "chatcmpl-1", "object": "chat.completion", "model": "gpt-4o-mini-2024-07-18",
		  "choices": [{"index": 0, "finish_reason": "tool_calls", "message": {
		    "role": "assistant", "content": "",
		    "tool_calls": [{"id": "call_2", "type": "function",
		      "function": {"name": "get_hotels", "arguments": "{\"city\":\"ROM\",\"km_from_center\":3}"}}]
		  }}],
		  "usage": {"prompt_tokens": 120, "completion_tokens": 18, "total_tokens": 138}
		}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient("sk-test", "", srv.URL+"/v1", 5*time.Second)
	resp, err := c.Complete(context.Background(), CompletionRequest{
		System: "You are a holiday planner.",
		Messages: []Message{
			{Role: RoleUser, Content: "Weather in Paris?"},
			{Role: RoleAssistant, ToolCalls: []ToolCall{{ID: "call_1", Name: "get_weather_info", Input: `{"city":"Paris","number_of_days":1}`}}},
			{Role: RoleTool, ToolCallID: "call_1", Content: `[{"country":"France"}]`},
		},
		Tools: []ToolDefinition{{
			Name: "get_weather_info", Description: "forecast",
			Parameters: map[string]any{"type": "object", "properties": map[string]any{}},
		}},
		Temperature: ptr(0.6),
	})
	require.NoError(t, err)
	assert.Equal(t, "tool_calls", resp.StopReason)
	assert.Equal(t, 120, resp.Usage.InputTokens)
	require.Len(t, resp.ToolCalls, 1)
	assert.Equal(t, ToolCall{ID: "call_2", Name: "get_hotels", Input: `{"city":"ROM","km_from_center":3}`}, resp.ToolCalls[0])
}

func TestOpenAIClientAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error": {"message": "Incorrect API key provided", "type": "invalid_request_error", "code": "invalid_api_key"}}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient("bad", "gpt-4o", srv.URL+"/v1", 5*time.Second)
	_, err := c.Complete(context.Background(), CompletionRequest{Messages: []Message{{Role: RoleUser, Content: "hi"}}})

	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 401, pe.Code)
}

func TestAnthropicClientComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-ant", r.Header.Get("X-Api-Key"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.EqualValues(t, 1024, body["max_tokens"])
		system := body["system"].([]any)
		assert.Equal(t, "plan trips", system[0].(map[string]any)["text"])
		assert.Len(t, body["messages"], 2)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
		  "id": "msg_1", "type": "message", "role": "assistant", "model": "claude-sonnet-4-5",
		  "content": [{"type": "text", "text": "Rome is lovely "}, {"type": "text", "text": "in May."}],
		  "stop_reason": "end_turn", "stop_sequence": null,
		  "usage": {"input_tokens": 40, "output_tokens": 9}
		}`))
	}))
	defer srv.Close()

	c := NewAnthropicClient("sk-ant", "", srv.URL, 5*time.Second)
	resp, err := c.Complete(context.Background(), CompletionRequest{
		System: "plan trips",
		Messages: []Message{
			{Role: RoleUser, Content: "Where should I go?"},
			{Role: RoleAssistant, Content: "How about Italy?"},
			{Role: RoleAssistant, Content: ""},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Rome is lovely in May.", resp.Content)
	assert.Equal(t, "end_turn", resp.StopReason)
	assert.Equal(t, 9, resp.Usage.OutputTokens)
}

func TestOllamaClientComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "llama3.1", body["model"])
		assert.Equal(t, false, body["stream"])
		msgs, _ := body["messages"].([]any)
		if !assert.Len(t, msgs, 2) {
			return
		}
		assert.Equal(t, "system", msgs[0].(map[string]any)["role"])

		w.Header().Set("Content-Type", "application/json")
		// Ollama answers with newline-delimited JSON, one object per line.
		_, _ = w.Write([]byte(`{"model":"llama3.1","created_at":"2026-05-01T10:00:00Z",` +
			`"message":{"role":"assistant","content":"Pack an umbrella."},` +
			`"done":true,"done_reason":"stop","prompt_eval_count":31,"eval_count":5}` + "\n"))
	}))
	defer srv.Close()

	c, err := NewOllamaClient(srv.URL, "", 5*time.Second)
	require.NoError(t, err)

	resp, err := c.Complete(context.Background(), CompletionRequest{
		System:   "be brief",
		Messages: []Message{{Role: RoleUser, Content: "London tomorrow?"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Pack an umbrella.", resp.Content)
	assert.Equal(t, "stop", resp.StopReason)
	assert.Equal(t, 31, resp.Usage.InputTokens)
	assert.Equal(t, 5, resp.Usage.OutputTokens)
}
