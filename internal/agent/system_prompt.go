package agent

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/soyeahso/holiday/internal/llm"
)

// WelcomeMessage is the assistant's opening line in a new chat.
const WelcomeMessage = "Hello! I'm your holiday planner assistant. Where would you like to travel? " +
	"I can help with destinations, accommodations, activities, and more!"

// PromptConfig controls system prompt generation.
type PromptConfig struct {
	Tools []llm.ToolDefinition
	// NativeTools is set when the provider receives the tool definitions
	// through its API, so they are not repeated in the prompt.
	NativeTools bool
	ExtraPrompt string
	Now         time.Time
}

// BuildSystemPrompt constructs the system prompt for the LLM.
func BuildSystemPrompt(cfg PromptConfig) string {
	var b strings.Builder

	b.WriteString("You are a holiday planner assistant. You help travellers choose destinations, ")
	b.WriteString("check the weather, follow local news, and find hotels and flights.\n\n")

	now := cfg.Now
	if now.IsZero() {
		now = time.Now()
	}
	fmt.Fprintf(&b, "Current date: %s\n\n", now.Format("2006-01-02"))

	b.WriteString("Guidelines:\n")
	b.WriteString("- Hotel and flight tools take IATA city codes (ROM for Rome, PAR for Paris).\n")
	b.WriteString("- Only search flights when the user asks about flights.\n")
	b.WriteString("- A tool result of null means the lookup found nothing; say so instead of guessing.\n")

	if len(cfg.Tools) > 0 && !cfg.NativeTools {
		b.WriteString("\n## Available Tools\n\n")
		b.WriteString("You can call tools by outputting a fenced code block with the language tag `tool_call`:\n\n")
		b.WriteString("```tool_call\n{\"tool\": \"tool_name\", \"input\": {\"param\": \"value\"}}\n```\n\n")
		b.WriteString("After a tool is executed, the result will be provided. You may call multiple tools before giving your final response.\n\n")
		for _, t := range cfg.Tools {
			fmt.Fprintf(&b, "### %s\n%s\n", t.Name, t.Description)
			if len(t.Parameters) > 0 {
				if schema, err := json.Marshal(t.Parameters); err == nil {
					fmt.Fprintf(&b, "Input schema: %s\n", schema)
				}
			}
			b.WriteString("\n")
		}
	}

	if cfg.ExtraPrompt != "" {
		b.WriteString("\n")
		b.WriteString(cfg.ExtraPrompt)
		b.WriteString("\n")
	}

	return b.String()
}
