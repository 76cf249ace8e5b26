// Package advisor asks an LLM why a bitrate falls short of the Netflix ad
// creative specification and renders the answer for the terminal or HTML.
//
// Only the integer bitrate is sent. Any failure, including a missing API key,
// yields FallbackText instead of an error so callers can always show something.
package advisor
