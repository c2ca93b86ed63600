// Package llm talks to an OpenAI-compatible chat-completions endpoint and is
// used to turn raw release records into structured metadata. Rate-limit and
// server errors are retried with a linear backoff before the caller sees a
// failure.
package llm
