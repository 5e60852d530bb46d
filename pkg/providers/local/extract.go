package local

import (
	"encoding/json"
	"log/slog"
	"strings"

	"nimbus-hq/callisto/pkg/providers"
)

// Delimiters for the embedded function-call block local models are prompted
// to emit. The block carries a JSON object: {"name": ..., "arguments": {...}}.
const (
	callBlockOpen  = "<function_call>"
	callBlockClose = "</function_call>"
)

// embeddedCall is the JSON payload inside a delimited block.
type embeddedCall struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

// extractFunctionCall scans text for a delimited function-call block. On a
// successful parse it returns the call and the text with the block stripped;
// otherwise it returns the text unchanged with ok=false.
//
// This is deliberately a tagged result rather than an error: malformed
// model output degrades to "return the unparsed text", never to a failed
// call. Parse failures are logged for diagnostics only.
func extractFunctionCall(text string) (call *providers.FunctionCall, remainder string, ok bool) {
	start := strings.Index(text, callBlockOpen)
	if start < 0 {
		return nil, text, false
	}

	end := strings.Index(text[start:], callBlockClose)
	if end < 0 {
		return nil, text, false
	}
	end += start

	payload := text[start+len(callBlockOpen) : end]

	var parsed embeddedCall
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil || parsed.Name == "" {
		slog.Warn("failed to parse embedded function call, returning raw text",
			"error", err,
			"payload_len", len(payload),
		)
		return nil, text, false
	}

	arguments := "{}"
	if len(parsed.Arguments) > 0 {
		arguments = string(parsed.Arguments)
	}

	remainder = strings.TrimSpace(text[:start] + text[end+len(callBlockClose):])

	return &providers.FunctionCall{
		Name:      parsed.Name,
		Arguments: arguments,
	}, remainder, true
}

// toolPrompt renders the instruction block appended to the system prompt so
// models without a native tool channel can still request calls.
func toolPrompt(tools []providers.Tool) string {
	if len(tools) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("\n\nYou may call one of the following functions. To call a function, ")
	b.WriteString("respond with a block of the form ")
	b.WriteString(callBlockOpen)
	b.WriteString(`{"name": "...", "arguments": {...}}`)
	b.WriteString(callBlockClose)
	b.WriteString(" and nothing else inside the block.\nAvailable functions:\n")

	for _, tool := range tools {
		b.WriteString("- ")
		b.WriteString(tool.Function.Name)
		if tool.Function.Description != "" {
			b.WriteString(": ")
			b.WriteString(tool.Function.Description)
		}
		if tool.Function.Parameters != nil {
			if schema, err := json.Marshal(tool.Function.Parameters); err == nil {
				b.WriteString(" (parameters: ")
				b.Write(schema)
				b.WriteString(")")
			}
		}
		b.WriteString("\n")
	}

	return b.String()
}
