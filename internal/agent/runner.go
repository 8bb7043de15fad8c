package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/soyeahso/holiday/internal/llm"
	"github.com/soyeahso/holiday/internal/logging"
)

// maxToolIterations limits how many tool call rounds the agent can perform.
const maxToolIterations = 5

// maxParallelTools bounds concurrent tool executions within one round.
const maxParallelTools = 4

// RunnerConfig configures the agent runner.
type RunnerConfig struct {
	Model       string
	MaxTokens   int
	Temperature *float64
	ExtraPrompt string
}

// TurnResult is the outcome of one chat turn.
type TurnResult struct {
	Reply string `json:"reply"`
	// History is the caller's history plus this turn's user and assistant
	// messages. Tool traffic is not included.
	History   []llm.Message `json:"history"`
	Model     string        `json:"model,omitempty"`
	Usage     llm.Usage     `json:"usage"`
	ToolCalls int           `json:"toolCalls"`
	Duration  time.Duration `json:"duration"`
}

// Runner drives one chat turn: it calls the LLM, executes the tools it
// asks for and returns the final reply.
type Runner struct {
	cfg      RunnerConfig
	registry *llm.Registry
	tools    *ToolRegistry
	log      *logging.Logger
}

// NewRunner creates an agent runner.
func NewRunner(cfg RunnerConfig, registry *llm.Registry, tools *ToolRegistry, log *logging.Logger) *Runner {
	if tools == nil {
		tools = NewToolRegistry()
	}
	return &Runner{
		cfg:      cfg,
		registry: registry,
		tools:    tools,
		log:      log.Sub("agent"),
	}
}

// Tools returns the runner's tool registry.
func (r *Runner) Tools() *ToolRegistry { return r.tools }

// SubmitTurn sends userText to the model with the prior history and returns
// the reply. The caller's slice is never modified. A blank userText returns
// the history unchanged without calling the model.
func (r *Runner) SubmitTurn(ctx context.Context, userText string, history []llm.Message) (*TurnResult, error) {
	start := time.Now()

	hist := slices.Clone(history)
	if strings.TrimSpace(userText) == "" {
		return &TurnResult{History: hist}, nil
	}

	client, err := r.registry.Resolve(r.cfg.Model)
	if err != nil {
		return nil, err
	}
	native := llm.SupportsNativeTools(client)
	defs := r.tools.Definitions()

	r.log.Info().
		Str("provider", client.Name()).
		Int("historyLen", len(hist)).
		Bool("nativeTools", native).
		Msg("processing message")

	hist = append(hist, llm.Message{Role: llm.RoleUser, Content: userText})

	system := BuildSystemPrompt(PromptConfig{
		Tools:       defs,
		NativeTools: native,
		ExtraPrompt: r.cfg.ExtraPrompt,
	})

	convo := slices.Clone(hist)
	var (
		finalResp *llm.CompletionResponse
		usage     llm.Usage
		executed  int
	)
	for i := 0; i < maxToolIterations; i++ {
		req := llm.CompletionRequest{
			Model:       r.cfg.Model,
			System:      system,
			Messages:    convo,
			MaxTokens:   r.cfg.MaxTokens,
			Temperature: r.cfg.Temperature,
		}
		if native {
			req.Tools = defs
		}

		resp, err := client.Complete(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("LLM completion: %w", err)
		}
		finalResp = resp
		usage.InputTokens += resp.Usage.InputTokens
		usage.OutputTokens += resp.Usage.OutputTokens

		calls := requestedCalls(resp, native)
		if len(calls) == 0 {
			break
		}

		r.log.Info().Int("toolCalls", len(calls)).Int("round", i+1).Msg("executing tool calls")
		results := r.executeToolCalls(ctx, calls)
		executed += len(results)

		if native {
			convo = append(convo, llm.Message{Role: llm.RoleAssistant, Content: resp.Content, ToolCalls: resp.ToolCalls})
			for _, res := range results {
				convo = append(convo, llm.Message{Role: llm.RoleTool, ToolCallID: res.ID, Content: res.content()})
			}
		} else {
			convo = append(convo,
				llm.Message{Role: llm.RoleAssistant, Content: resp.Content},
				llm.Message{Role: llm.RoleUser, Content: formatToolResults(results)},
			)
		}
	}

	if finalResp == nil {
		return nil, errors.New("no response from LLM")
	}

	reply := stripToolCalls(finalResp.Content, r.log)
	hist = append(hist, llm.Message{Role: llm.RoleAssistant, Content: reply})

	r.log.Info().
		Str("model", finalResp.Model).
		Int("inputTokens", usage.InputTokens).
		Int("outputTokens", usage.OutputTokens).
		Int("toolCalls", executed).
		Dur("duration", time.Since(start)).
		Msg("response generated")

	return &TurnResult{
		Reply:     reply,
		History:   hist,
		Model:     finalResp.Model,
		Usage:     usage,
		ToolCalls: executed,
		Duration:  time.Since(start),
	}, nil
}

// toolCall is a parsed tool invocation from the LLM response.
type toolCall struct {
	ID    string          `json:"-"`
	Tool  string          `json:"tool"`
	Input json.RawMessage `json:"input"`
}

// toolResult holds the output from executing a tool.
type toolResult struct {
	ID     string
	Tool   string
	Output string
	Err    error
}

func (tr toolResult) content() string {
	if tr.Err != nil {
		return "Error: " + tr.Err.Error()
	}
	return tr.Output
}

// toolCallRe matches ```tool_call\n{...}\n``` blocks in LLM output.
var toolCallRe = regexp.MustCompile("(?s)```tool_call\\s*\n(\\{.*?\\})\n\\s*```")

// xmlFuncCallRe matches <function_calls>...</function_calls> XML blocks in LLM output.
var xmlFuncCallRe = regexp.MustCompile(`(?s)<function_calls>.*?</function_calls>`)

// xmlBlockLevelRe matches self-contained XML blocks that LLMs emit for tool use.
var xmlBlockLevelRe = regexp.MustCompile(`(?s)(?:` +
	`<invoke\b[^>]*>.*?</invoke>` +
	`|<tool_call\b[^>]*>.*?</tool_call>` +
	`|<tool_use\b[^>]*>.*?</tool_use>` +
	`)`)

// xmlInlineTagRe matches parameter tags that can appear inline within text.
var xmlInlineTagRe = regexp.MustCompile(`(?s)<parameter\b[^>]*>.*?</parameter>`)

// whitespaceLineRe matches lines containing only horizontal whitespace.
var whitespaceLineRe = regexp.MustCompile(`(?m)^[ \t]+$`)

// blankLineCollapseRe collapses 3+ consecutive newlines to a single blank line.
var blankLineCollapseRe = regexp.MustCompile(`\n{3,}`)

// requestedCalls returns the tool calls of a response: the provider's
// native calls, or the fenced tool_call blocks of its text.
func requestedCalls(resp *llm.CompletionResponse, native bool) []toolCall {
	if !native {
		return parseToolCalls(resp.Content)
	}
	calls := make([]toolCall, 0, len(resp.ToolCalls))
	for _, tc := range resp.ToolCalls {
		calls = append(calls, toolCall{ID: tc.ID, Tool: tc.Name, Input: json.RawMessage(tc.Input)})
	}
	return calls
}

// parseToolCalls extracts tool_call blocks from LLM response text.
func parseToolCalls(text string) []toolCall {
	matches := toolCallRe.FindAllStringSubmatch(text, -1)
	var calls []toolCall
	for _, match := range matches {
		if len(match) < 2 {
			continue
		}
		var tc toolCall
		if err := json.Unmarshal([]byte(match[1]), &tc); err != nil {
			continue
		}
		if tc.Tool != "" {
			tc.ID = fmt.Sprintf("call_%d", len(calls)+1)
			calls = append(calls, tc)
		}
	}
	return calls
}

// executeToolCalls runs the calls of one round concurrently. Results keep
// the order of calls.
func (r *Runner) executeToolCalls(ctx context.Context, calls []toolCall) []toolResult {
	results := make([]toolResult, len(calls))

	var g errgroup.Group
	g.SetLimit(maxParallelTools)
	for i, tc := range calls {
		g.Go(func() error {
			input := string(tc.Input)
			if strings.TrimSpace(input) == "" || input == "null" {
				input = "{}"
			}
			r.log.Debug().Str("tool", tc.Tool).Str("input", input).Msg("executing tool")
			output, err := r.tools.Execute(ctx, tc.Tool, input)
			if err != nil {
				r.log.Warn().Err(err).Str("tool", tc.Tool).Msg("tool failed")
			}
			results[i] = toolResult{ID: tc.ID, Tool: tc.Tool, Output: output, Err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// formatToolResults renders tool execution results for the LLM.
func formatToolResults(results []toolResult) string {
	var b strings.Builder
	b.WriteString("Tool execution results:\n\n")
	for _, r := range results {
		fmt.Fprintf(&b, "### %s\n", r.Tool)
		if r.Err != nil {
			fmt.Fprintf(&b, "Error: %s\n", r.Err)
		} else {
			b.WriteString(r.Output)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

// stripToolCalls removes tool_call code blocks and XML function_calls blocks
// from the response, leaving surrounding text.
func stripToolCalls(text string, log *logging.Logger) string {
	// Block-level elements become a paragraph break, inline tags a space.
	cleaned := toolCallRe.ReplaceAllString(text, "\n\n")

	xmlMatches := xmlFuncCallRe.FindAllString(cleaned, -1)
	if len(xmlMatches) > 0 && log != nil {
		for _, m := range xmlMatches {
			log.Info().Str("xml", m).Msg("stripped XML function_calls from LLM response")
		}
	}
	cleaned = xmlFuncCallRe.ReplaceAllString(cleaned, "\n\n")
	cleaned = xmlBlockLevelRe.ReplaceAllString(cleaned, "\n\n")
	cleaned = xmlInlineTagRe.ReplaceAllString(cleaned, " ")

	cleaned = whitespaceLineRe.ReplaceAllString(cleaned, "")
	cleaned = blankLineCollapseRe.ReplaceAllString(cleaned, "\n\n")

	return strings.TrimSpace(cleaned)
}
