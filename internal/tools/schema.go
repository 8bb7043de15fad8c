package tools

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ArgumentError reports tool arguments that do not match the tool's schema.
type ArgumentError struct {
	Tool    string
	Details []string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("%s: arguments failed validation: %s", e.Tool, strings.Join(e.Details, "; "))
}

// validator checks raw JSON arguments against a compiled schema.
type validator struct {
	tool   string
	schema *gojsonschema.Schema
}

func mustValidator(tool string, schema map[string]any) *validator {
	s, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		panic(fmt.Sprintf("tools: invalid schema for %s: %v", tool, err))
	}
	return &validator{tool: tool, schema: s}
}

// decode validates input and unmarshals it into dst.
func (v *validator) decode(input string, dst any) error {
	if strings.TrimSpace(input) == "" {
		input = "{}"
	}
	result, err := v.schema.Validate(gojsonschema.NewStringLoader(input))
	if err != nil {
		return fmt.Errorf("%s: parsing arguments: %w", v.tool, err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return &ArgumentError{Tool: v.tool, Details: details}
	}
	if err := json.Unmarshal([]byte(input), dst); err != nil {
		return fmt.Errorf("%s: decoding arguments: %w", v.tool, err)
	}
	return nil
}

// encode renders a tool result. A nil slice becomes "null".
func encode(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding result: %w", err)
	}
	return string(b), nil
}

func stringProp(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

func iataProp(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc, "pattern": "^[A-Za-z]{3}$"}
}

func dateProp(desc string, nullable bool) map[string]any {
	p := map[string]any{"type": "string", "description": desc, "pattern": `^\d{4}-\d{2}-\d{2}$`}
	if nullable {
		p["type"] = []string{"string", "null"}
	}
	return p
}

func enumList(desc string, values []string) map[string]any {
	return map[string]any{
		"type":        []string{"array", "null"},
		"description": desc,
		"items":       map[string]any{"type": "string", "enum": values},
		"uniqueItems": true,
	}
}

func object(required []string, props map[string]any) map[string]any {
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   required,
	}
}
