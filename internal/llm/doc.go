// Package llm provides an OpenAI-compatible chat completion client used for
// intent classification, filter extraction, and title suggestions.
//
// # Entry Points
//
// NewClient: construct client from Config.
// Client.Complete: send a task prompt plus conversation turns, receive raw text.
// DecodeJSON: decode a JSON object or array from model output, tolerating
// code fences and surrounding prose.
//
// # Retry Behaviour
//
// The client retries on HTTP 408/429/5xx errors, network timeouts, and empty
// completions with exponential backoff (base 1s, max 10s, up to 3 attempts by
// default). Context cancellation aborts retries immediately.
package llm
