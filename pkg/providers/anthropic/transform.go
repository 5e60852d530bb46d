package anthropic

import (
	"encoding/json"
	"fmt"

	"nimbus-hq/callisto/pkg/providers"
)

// Anthropic API request/response types

// messagesRequest represents an Anthropic messages request.
type messagesRequest struct {
	Model         string        `json:"model"`
	Messages      []wireMessage `json:"messages"`
	System        string        `json:"system,omitempty"`
	MaxTokens     int           `json:"max_tokens"`
	Temperature   float64       `json:"temperature,omitempty"`
	TopP          float64       `json:"top_p,omitempty"`
	StopSequences []string      `json:"stop_sequences,omitempty"`
	Tools         []wireTool    `json:"tools,omitempty"`
	Metadata      *wireMetadata `json:"metadata,omitempty"`
}

// wireMessage represents a message in Anthropic format.
type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// wireTool represents a tool definition in Anthropic format.
type wireTool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	InputSchema map[string]interface{} `json:"input_schema"`
}

// wireMetadata carries the optional user identifier.
type wireMetadata struct {
	UserID string `json:"user_id,omitempty"`
}

// contentBlock represents a response content block.
type contentBlock struct {
	Type string `json:"type"` // "text" or "tool_use"
	Text string `json:"text,omitempty"`

	// For tool_use blocks
	ID    string                 `json:"id,omitempty"`
	Name  string                 `json:"name,omitempty"`
	Input map[string]interface{} `json:"input,omitempty"`
}

// messagesResponse represents an Anthropic messages response.
type messagesResponse struct {
	ID         string         `json:"id"`
	Type       string         `json:"type"`
	Role       string         `json:"role"`
	Content    []contentBlock `json:"content"`
	Model      string         `json:"model"`
	StopReason string         `json:"stop_reason"`
	Usage      wireUsage      `json:"usage"`
}

// wireUsage represents token usage in Anthropic format.
type wireUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Transformation functions

// transformRequest transforms provider-agnostic messages and config to
// Anthropic format.
//
// Anthropic takes the system prompt out-of-band: the first system message is
// lifted into the request's system field and any further system messages are
// demoted to ordinary user content, preserving their position. Consecutive
// same-role messages are merged because the Messages API requires strict
// user/assistant alternation.
func transformRequest(messages []providers.Message, config providers.CompletionConfig, defaultModel string) *messagesRequest {
	model := config.Model
	if model == "" {
		model = defaultModel
	}

	req := &messagesRequest{
		Model:         model,
		MaxTokens:     config.MaxTokens,
		Temperature:   config.Temperature,
		TopP:          config.TopP,
		StopSequences: config.Stop,
	}

	// max_tokens is mandatory in the Messages API.
	if req.MaxTokens == 0 {
		req.MaxTokens = 4096
	}

	if user := config.Metadata["user_id"]; user != "" {
		req.Metadata = &wireMetadata{UserID: user}
	}

	systemSeen := false
	for _, msg := range messages {
		if msg.Role == providers.RoleSystem && !systemSeen {
			req.System = msg.Content
			systemSeen = true
			continue
		}

		role := msg.Role
		switch role {
		case providers.RoleSystem, providers.RoleFunction:
			// No equivalent slot; send as ordinary user content.
			role = providers.RoleUser
		}

		if n := len(req.Messages); n > 0 && req.Messages[n-1].Role == role {
			req.Messages[n-1].Content += "\n\n" + msg.Content
			continue
		}

		req.Messages = append(req.Messages, wireMessage{
			Role:    role,
			Content: msg.Content,
		})
	}

	if len(config.Tools) > 0 {
		req.Tools = make([]wireTool, len(config.Tools))
		for i, tool := range config.Tools {
			req.Tools[i] = wireTool{
				Name:        tool.Function.Name,
				Description: tool.Function.Description,
				InputSchema: tool.Function.Parameters,
			}
		}
	}

	return req
}

// transformResponse normalizes an Anthropic response to the provider-
// agnostic result. Text blocks concatenate into Content; tool_use blocks
// become tool calls with their input maps re-encoded as JSON argument
// strings.
func transformResponse(resp *messagesResponse, raw []byte) (*providers.CompletionResult, error) {
	var content string
	var toolCalls []providers.ToolCall

	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			content += block.Text

		case "tool_use":
			args, err := json.Marshal(block.Input)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal tool input: %w", err)
			}
			toolCalls = append(toolCalls, providers.ToolCall{
				ID:   block.ID,
				Type: providers.ToolTypeFunction,
				Function: providers.FunctionCall{
					Name:      block.Name,
					Arguments: string(args),
				},
			})
		}
	}

	result := &providers.CompletionResult{
		Content:      content,
		Model:        resp.Model,
		FinishReason: normalizeStopReason(resp.StopReason),
		Usage: providers.TokenUsage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
		},
		ToolCalls: toolCalls,
		Raw:       raw,
	}

	if len(toolCalls) > 0 {
		result.FunctionCall = &result.ToolCalls[0].Function
	}

	return result, nil
}

// normalizeStopReason normalizes Anthropic stop reasons to provider-agnostic
// values.
func normalizeStopReason(reason string) string {
	switch reason {
	case "end_turn", "stop_sequence":
		return providers.FinishReasonStop
	case "max_tokens":
		return providers.FinishReasonLength
	case "tool_use":
		return providers.FinishReasonFunctionCall
	default:
		return reason
	}
}
