package llm

import "context"

// MockClient is a test double for Client.
type MockClient struct {
	ProviderName string
	Native       bool
	CompleteFunc func(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

func (m *MockClient) Name() string { return m.ProviderName }

// NativeTools reports the Native field.
func (m *MockClient) NativeTools() bool { return m.Native }

func (m *MockClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if m.CompleteFunc != nil {
		return m.CompleteFunc(ctx, req)
	}
	return &CompletionResponse{Content: "mock response"}, nil
}
