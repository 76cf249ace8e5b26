package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the OpenRouter chat completions endpoint.
	DefaultBaseURL = "https://openrouter.ai/api/v1/chat/completions"

	defaultHTTPTimeout = 60 * time.Second
	defaultTemperature = 0.4
)

// ErrMissingAPIKey is returned before any network traffic when no key is configured.
var ErrMissingAPIKey = errors.New("llm: api key required")

// Config captures the runtime settings required to talk to the chat endpoint.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	Referer        string
	Title          string
	TimeoutSeconds int
}

// Client wraps an OpenAI-compatible chat completion API.
type Client struct {
	cfg        Config
	httpClient *http.Client
	retry      retryPolicy
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryMaxAttempts overrides the attempt count. The advisory flow uses 1.
func WithRetryMaxAttempts(attempts int) Option {
	return func(c *Client) {
		c.retry.maxAttempts = attempts
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.retry.baseDelay = baseDelay
		c.retry.maxDelay = maxDelay
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.retry.sleeper = sleeper
	}
}

// NewClient builds a client for cfg. Without a base URL requests go to
// OpenRouter; without a timeout the HTTP client gives up after a minute.
func NewClient(cfg Config, opts ...Option) *Client {
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)
	cfg.Model = strings.TrimSpace(cfg.Model)
	cfg.Referer = strings.TrimSpace(cfg.Referer)
	cfg.Title = strings.TrimSpace(cfg.Title)
	if cfg.BaseURL = strings.TrimSpace(cfg.BaseURL); cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}

	c := &Client{cfg: cfg, httpClient: &http.Client{Timeout: timeout}, retry: defaultRetryPolicy()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete sends a system and user prompt and returns the model's text reply.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	userPrompt = strings.TrimSpace(userPrompt)
	if userPrompt == "" {
		return "", errors.New("llm complete: user prompt required")
	}
	if c.cfg.APIKey == "" {
		return "", ErrMissingAPIKey
	}
	messages := make([]chatMessage, 0, 2)
	if systemPrompt = strings.TrimSpace(systemPrompt); systemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: systemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: userPrompt})
	return c.completeWithRetry(ctx, chatRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: defaultTemperature,
	}, "llm complete")
}

// HealthCheck issues a short request to verify the API key and model are usable.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.cfg.APIKey == "" {
		return ErrMissingAPIKey
	}
	reply, err := c.completeWithRetry(ctx, chatRequest{
		Model:    c.cfg.Model,
		Messages: []chatMessage{{Role: "user", Content: "Reply with the single word OK."}},
	}, "llm health")
	if err != nil {
		return err
	}
	if !strings.Contains(strings.ToUpper(reply), "OK") {
		return fmt.Errorf("llm health: unexpected reply %q", summarize(reply))
	}
	return nil
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatChoice struct {
	Message struct {
		Content string `json:"content"`
		Refusal string `json:"refusal"`
	} `json:"message"`
	// Some providers answer in the streaming shape even with stream=false.
	Delta struct {
		Content string `json:"content"`
	} `json:"delta"`
	Text         string `json:"text"`
	FinishReason string `json:"finish_reason"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// reply returns the first non-blank content among the choices, or an
// emptyReplyError describing the first choice.
func (r chatResponse) reply(op string) (string, error) {
	for _, choice := range r.Choices {
		for _, content := range [...]string{choice.Message.Content, choice.Delta.Content, choice.Text} {
			if content = strings.TrimSpace(content); content != "" {
				return content, nil
			}
		}
	}
	empty := &emptyReplyError{Op: op}
	if len(r.Choices) > 0 {
		empty.FinishReason = strings.TrimSpace(r.Choices[0].FinishReason)
		empty.Refusal = strings.TrimSpace(r.Choices[0].Message.Refusal)
	}
	return "", empty
}

type statusError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *statusError) Error() string {
	return fmt.Sprintf("llm request: http %d: %s", e.StatusCode, summarize(e.Body))
}

type emptyReplyError struct {
	Op           string
	FinishReason string
	Refusal      string
}

func (e *emptyReplyError) Error() string {
	return fmt.Sprintf("%s: empty reply (finish_reason=%q, refusal=%q)", e.Op, e.FinishReason, e.Refusal)
}

func (c *Client) headers() map[string]string {
	h := map[string]string{
		"Authorization": "Bearer " + c.cfg.APIKey,
		"Content-Type":  "application/json",
	}
	if c.cfg.Referer != "" {
		h["HTTP-Referer"] = c.cfg.Referer
	}
	if c.cfg.Title != "" {
		h["X-Title"] = c.cfg.Title
	}
	return h
}

// send performs one POST. Non-2xx answers become *statusError so the retry
// policy can inspect them.
func (c *Client) send(ctx context.Context, payload chatRequest) (chatResponse, error) {
	var out chatResponse
	body, err := json.Marshal(payload)
	if err != nil {
		return out, fmt.Errorf("llm request: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(body))
	if err != nil {
		return out, fmt.Errorf("llm request: new request: %w", err)
	}
	for key, value := range c.headers() {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return out, fmt.Errorf("llm request: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return out, fmt.Errorf("llm request: read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		wait, _ := parseRetryAfter(resp.Header.Get("Retry-After"))
		return out, &statusError{StatusCode: resp.StatusCode, Body: string(raw), RetryAfter: wait}
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("llm request: decode response: %w", err)
	}
	if out.Error != nil {
		return out, fmt.Errorf("llm request: api error: %s", strings.TrimSpace(out.Error.Message))
	}
	return out, nil
}

func summarize(content string) string {
	clean := strings.Join(strings.Fields(content), " ")
	if clean == "" {
		return "<empty>"
	}
	const limit = 160
	if runes := []rune(clean); len(runes) > limit {
		return string(runes[:limit]) + "..."
	}
	return clean
}
