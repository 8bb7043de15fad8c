package agent

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/soyeahso/holiday/internal/llm"
)

// Tool is a capability the agent can invoke during a conversation.
type Tool interface {
	// Name returns the tool's identifier.
	Name() string

	// Description returns a human-readable description for the LLM.
	Description() string

	// InputSchema returns the JSON Schema for the tool's input.
	InputSchema() map[string]any

	// Execute runs the tool with the given JSON input and returns JSON output.
	Execute(ctx context.Context, input string) (string, error)
}

// Outcome classifies a finished tool invocation.
type Outcome string

const (
	OutcomeOK    Outcome = "ok"
	OutcomeEmpty Outcome = "empty" // the tool returned no result
	OutcomeError Outcome = "error"
)

// Invocation describes one tool execution, reported to observers.
type Invocation struct {
	Tool     string
	Input    string
	Output   string
	Err      error
	Started  time.Time
	Duration time.Duration
}

// Outcome classifies the invocation.
func (inv Invocation) Outcome() Outcome {
	switch {
	case inv.Err != nil:
		return OutcomeError
	case inv.Output == "" || inv.Output == "null" || inv.Output == "[]":
		return OutcomeEmpty
	default:
		return OutcomeOK
	}
}

// Observer is notified after every tool execution.
type Observer interface {
	ToolInvoked(ctx context.Context, inv Invocation)
}

// ToolRegistry holds available tools.
type ToolRegistry struct {
	mu        sync.RWMutex
	tools     map[string]Tool
	observers []Observer
}

// NewToolRegistry creates an empty tool registry.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{tools: make(map[string]Tool)}
}

// Register adds a tool, replacing any tool with the same name.
func (r *ToolRegistry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Name()] = t
}

// Observe adds an observer for tool executions.
func (r *ToolRegistry) Observe(o Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, o)
}

// Get returns a tool by name.
func (r *ToolRegistry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Names returns the registered tool names, sorted.
func (r *ToolRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for n := range r.tools {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Definitions returns LLM-ready tool definitions for all registered tools,
// sorted by name.
func (r *ToolRegistry) Definitions() []llm.ToolDefinition {
	names := r.Names()
	defs := make([]llm.ToolDefinition, 0, len(names))
	for _, n := range names {
		t, _ := r.Get(n)
		defs = append(defs, llm.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.InputSchema(),
		})
	}
	return defs
}

// Execute runs the named tool and notifies observers.
func (r *ToolRegistry) Execute(ctx context.Context, name, input string) (string, error) {
	inv := Invocation{Tool: name, Input: input, Started: time.Now()}

	t, ok := r.Get(name)
	if ok {
		inv.Output, inv.Err = t.Execute(ctx, input)
	} else {
		inv.Err = fmt.Errorf("unknown tool: %s", name)
	}
	inv.Duration = time.Since(inv.Started)

	r.mu.RLock()
	observers := r.observers
	r.mu.RUnlock()
	for _, o := range observers {
		o.ToolInvoked(ctx, inv)
	}
	return inv.Output, inv.Err
}
