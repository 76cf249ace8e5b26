package advisor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"adconvert/internal/config"
	"adconvert/internal/logging"
	"adconvert/internal/metrics"
	"adconvert/internal/services"
	"adconvert/internal/services/llm"
)

// FallbackText is returned whenever advice cannot be fetched.
const FallbackText = "An error occurred while fetching expert advice. Please ensure your API key is configured correctly. For Netflix compliance, aim for a video bitrate of at least 10,000 kbps for SDR content."

// SectionTitles is the order the prompt asks the model to follow.
var SectionTitles = []string{"Problem Analysis", "Netflix Requirements", "Recommendation", "Key Settings"}

const systemPrompt = "You are a senior video encoding engineer. Answer in concise Markdown."

// Completer is the chat transport used to fetch advice.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Advice is the outcome of one advisory request. Fallback is set, and Err
// explains why, when Text is FallbackText.
type Advice struct {
	Text     string
	Fallback bool
	Err      error
}

// Advisor fetches bitrate guidance from the configured model.
type Advisor struct {
	client Completer
	logger *slog.Logger
}

// New wraps an existing transport. A nil client always yields the fallback.
func New(client Completer, logger *slog.Logger) *Advisor {
	return &Advisor{client: client, logger: logging.NewComponentLogger(logger, "advisor")}
}

// NewFromConfig builds an advisor on the OpenRouter client with a single attempt.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) *Advisor {
	settings := cfg.GetLLM()
	if settings.APIKey == "" {
		return New(nil, logger)
	}
	client := llm.NewClient(llm.Config{
		APIKey:         settings.APIKey,
		BaseURL:        settings.BaseURL,
		Model:          settings.Model,
		Referer:        settings.Referer,
		Title:          settings.Title,
		TimeoutSeconds: settings.TimeoutSeconds,
	}, llm.WithRetryMaxAttempts(1))
	return New(client, logger)
}

// Configured reports whether requests will reach a model.
func (a *Advisor) Configured() bool {
	return a != nil && a.client != nil
}

// GetAdvice asks for guidance on bitrateKbps. Failures never escape as
// errors; they produce FallbackText with Err populated.
func (a *Advisor) GetAdvice(ctx context.Context, bitrateKbps int) Advice {
	if !a.Configured() {
		metrics.AdvisoryRequestsTotal.WithLabelValues("unconfigured").Inc()
		return Advice{
			Text:     FallbackText,
			Fallback: true,
			Err:      services.Wrap(services.ErrConfiguration, "advisor", "", "llm api key not configured", llm.ErrMissingAPIKey),
		}
	}

	text, err := a.client.Complete(ctx, systemPrompt, BuildPrompt(bitrateKbps))
	if err == nil && strings.TrimSpace(text) == "" {
		err = errors.New("empty advice")
	}
	if err != nil {
		metrics.AdvisoryRequestsTotal.WithLabelValues("fallback").Inc()
		wrapped := services.Wrap(services.ErrExternalTool, "advisor", "complete", "", err)
		logging.WarnWithContext(a.logger, "advice request failed", "advice_failed",
			logging.Int("bitrate_kbps", bitrateKbps),
			logging.Error(err),
			logging.String(logging.FieldImpact, "fallback guidance shown"),
			logging.String(logging.FieldErrorHint, "check llm.api_key and llm.model"),
		)
		return Advice{Text: FallbackText, Fallback: true, Err: wrapped}
	}
	metrics.AdvisoryRequestsTotal.WithLabelValues("ok").Inc()
	a.logger.Debug("advice received", logging.Int("bitrate_kbps", bitrateKbps), logging.Int("chars", len(text)))
	return Advice{Text: strings.TrimSpace(text)}
}

// BuildPrompt renders the user prompt for bitrateKbps.
func BuildPrompt(bitrateKbps int) string {
	var b strings.Builder
	b.WriteString("Act as a senior video encoding engineer consulting for a team preparing ad creatives for Netflix.\n")
	fmt.Fprintf(&b, "A user's video was rejected with the error: \"Bitrate %d is too low.\"\n\n", bitrateKbps)
	b.WriteString("Based on the official Netflix Ad Creative Source Specification (which requires a minimum of 10,000 kbps for SDR and 20,000 kbps for HDR), provide a concise and clear explanation and recommendation.\n\n")
	b.WriteString("Structure your response in Markdown:\n")
	details := []string{
		fmt.Sprintf("Briefly explain why the bitrate of %d kbps is too low for Netflix.", bitrateKbps),
		"State the minimum bitrate requirements for both SDR and HDR content.",
		"Suggest a safe target bitrate for SDR content (e.g., 12,000-15,000 kbps) and explain the benefit of choosing a bitrate slightly above the minimum.",
		"Mention other important encoding settings from the spec, such as H.264 High Profile, Level 4.2.",
	}
	for i, title := range SectionTitles {
		fmt.Fprintf(&b, "%d.  **%s:** %s\n", i+1, title, details[i])
	}
	return b.String()
}
