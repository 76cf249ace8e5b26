// Package llm provides an OpenRouter chat client used for bitrate advice.
//
// The client sends a system and user prompt to the configured model and
// returns the plain-text reply. It tolerates the few response shapes that
// OpenAI-compatible providers emit (message, delta, legacy text).
//
// # Retry Behaviour
//
// Requests are retried on HTTP 408/429/5xx and network timeouts with
// exponential backoff. Callers that want a single attempt pass
// WithRetryMaxAttempts(1). Context cancellation aborts retries immediately.
//
// # Configuration
//
// Requires api_key and model; base_url, referer, title and timeout are
// optional. Without a key Complete returns ErrMissingAPIKey without touching
// the network, so callers can fall back to canned text.
package llm
