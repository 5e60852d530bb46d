// Package anthropic implements the Anthropic provider adapter.
//
// It implements the providers.Adapter contract against the Anthropic
// Messages API:
//
//   - Chat completions with native tool_use blocks
//   - Token usage tracking (input/output tokens summed for the total)
//   - Health probing via a one-token completion
//
// Anthropic serves no embeddings endpoint. Embed returns a typed
// CapabilityError rather than a generic failure so the compatibility facade
// can route embedding calls to a capable provider.
//
// # Request Transformation
//
// The Messages API differs from the baseline wire shape in two ways the
// adapter absorbs:
//
//   - The system prompt lives out-of-band: the first system message is
//     lifted into the request's system field; later system messages are
//     demoted to user content in place.
//   - Messages must strictly alternate between user and assistant, so
//     consecutive same-role messages are merged.
//
// Tool definitions map to Anthropic's input_schema form, and tool_use
// response blocks are normalized into ordered tool calls with JSON-encoded
// argument strings.
package anthropic
