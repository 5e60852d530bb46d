// Package local implements the adapter for OpenAI-compatible local model
// servers such as Ollama, LM Studio and vLLM.
//
// Chat completions and embeddings speak the OpenAI wire shape against a
// configurable base URL; authentication is optional. The one real
// difference from hosted providers is tool calling: local models expose no
// native tool channel, so the adapter renders tool declarations into the
// system prompt and scans the reply for a delimited block of the form
//
//	<function_call>{"name": "...", "arguments": {...}}</function_call>
//
// A well-formed block is parsed into the result's FunctionCall and stripped
// from the returned text. A malformed block is logged and the text is
// returned unmodified; extraction never fails the call.
package local
