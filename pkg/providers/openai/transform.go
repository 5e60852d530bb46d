package openai

import (
	"fmt"

	"nimbus-hq/callisto/pkg/providers"
)

// OpenAI API request/response types

// chatRequest represents an OpenAI chat completion request.
type chatRequest struct {
	Model            string                 `json:"model"`
	Messages         []chatMessage          `json:"messages"`
	Temperature      float64                `json:"temperature,omitempty"`
	TopP             float64                `json:"top_p,omitempty"`
	MaxTokens        int                    `json:"max_tokens,omitempty"`
	FrequencyPenalty float64                `json:"frequency_penalty,omitempty"`
	PresencePenalty  float64                `json:"presence_penalty,omitempty"`
	Stop             []string               `json:"stop,omitempty"`
	Tools            []chatTool             `json:"tools,omitempty"`
	ToolChoice       interface{}            `json:"tool_choice,omitempty"`
	ResponseFormat   map[string]interface{} `json:"response_format,omitempty"`
	Seed             *int                   `json:"seed,omitempty"`
	N                int                    `json:"n,omitempty"`
}

// chatMessage represents a message in OpenAI format.
type chatMessage struct {
	Role         string         `json:"role"`
	Content      string         `json:"content"`
	Name         string         `json:"name,omitempty"`
	FunctionCall *functionCall  `json:"function_call,omitempty"`
	ToolCalls    []chatToolCall `json:"tool_calls,omitempty"`
}

// functionCall represents a function call in OpenAI format.
type functionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// chatToolCall represents a tool call in OpenAI format.
type chatToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function functionCall `json:"function"`
}

// chatTool represents a tool definition in OpenAI format.
type chatTool struct {
	Type     string             `json:"type"`
	Function functionDefinition `json:"function"`
}

// functionDefinition represents a function definition in OpenAI format.
type functionDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
}

// chatResponse represents an OpenAI chat completion response.
type chatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   usage        `json:"usage"`
}

// chatChoice represents a completion choice in OpenAI format.
type chatChoice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// usage represents token usage in OpenAI format.
type usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// embeddingRequest represents an OpenAI embeddings request.
type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

// embeddingResponse represents an OpenAI embeddings response.
type embeddingResponse struct {
	Object string          `json:"object"`
	Model  string          `json:"model"`
	Data   []embeddingItem `json:"data"`
	Usage  usage           `json:"usage"`
}

// embeddingItem is a single vector in an embeddings response.
type embeddingItem struct {
	Object    string    `json:"object"`
	Index     int       `json:"index"`
	Embedding []float32 `json:"embedding"`
}

// Transformation functions

// transformRequest transforms provider-agnostic messages and config to
// OpenAI format. OpenAI is the baseline wire shape, so messages pass through
// in caller order, system role included.
func transformRequest(messages []providers.Message, config providers.CompletionConfig, defaultModel string) *chatRequest {
	model := config.Model
	if model == "" {
		model = defaultModel
	}

	req := &chatRequest{
		Model:            model,
		Messages:         make([]chatMessage, len(messages)),
		Temperature:      config.Temperature,
		TopP:             config.TopP,
		MaxTokens:        config.MaxTokens,
		FrequencyPenalty: config.FrequencyPenalty,
		PresencePenalty:  config.PresencePenalty,
		Stop:             config.Stop,
		ToolChoice:       config.ToolChoice,
		ResponseFormat:   config.ResponseFormat,
		Seed:             config.Seed,
		N:                1,
	}

	for i, msg := range messages {
		req.Messages[i] = chatMessage{
			Role:    msg.Role,
			Content: msg.Content,
			Name:    msg.Name,
		}
		if msg.FunctionCall != nil {
			req.Messages[i].FunctionCall = &functionCall{
				Name:      msg.FunctionCall.Name,
				Arguments: msg.FunctionCall.Arguments,
			}
		}
	}

	if len(config.Tools) > 0 {
		req.Tools = make([]chatTool, len(config.Tools))
		for i, tool := range config.Tools {
			req.Tools[i] = chatTool{
				Type: tool.Type,
				Function: functionDefinition{
					Name:        tool.Function.Name,
					Description: tool.Function.Description,
					Parameters:  tool.Function.Parameters,
				},
			}
		}
	}

	return req
}

// transformResponse normalizes an OpenAI response to the provider-agnostic
// result.
func transformResponse(resp *chatResponse, raw []byte) (*providers.CompletionResult, error) {
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices in response")
	}

	// First choice only; requests always carry N=1.
	choice := resp.Choices[0]

	result := &providers.CompletionResult{
		Content:      choice.Message.Content,
		Model:        resp.Model,
		FinishReason: normalizeFinishReason(choice.FinishReason),
		Usage: providers.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
		Raw: raw,
	}

	if len(choice.Message.ToolCalls) > 0 {
		result.ToolCalls = make([]providers.ToolCall, len(choice.Message.ToolCalls))
		for i, tc := range choice.Message.ToolCalls {
			result.ToolCalls[i] = providers.ToolCall{
				ID:   tc.ID,
				Type: tc.Type,
				Function: providers.FunctionCall{
					Name:      tc.Function.Name,
					Arguments: tc.Function.Arguments,
				},
			}
		}
	}

	// Legacy single function_call field, or the first tool call, fills
	// the single-call slot callers without multi-tool support read.
	if choice.Message.FunctionCall != nil {
		result.FunctionCall = &providers.FunctionCall{
			Name:      choice.Message.FunctionCall.Name,
			Arguments: choice.Message.FunctionCall.Arguments,
		}
	} else if len(result.ToolCalls) > 0 {
		result.FunctionCall = &result.ToolCalls[0].Function
	}

	return result, nil
}

// normalizeFinishReason normalizes OpenAI finish reasons to provider-agnostic
// values.
func normalizeFinishReason(reason string) string {
	switch reason {
	case "stop":
		return providers.FinishReasonStop
	case "length":
		return providers.FinishReasonLength
	case "tool_calls", "function_call":
		return providers.FinishReasonFunctionCall
	case "content_filter":
		return providers.FinishReasonContentFilter
	default:
		return reason
	}
}
