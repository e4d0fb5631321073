package provider

import (
	"fmt"

	"gemini-chat/config"
)

// FromConfig builds the adapter named by provider.name and wraps it with the
// local quota guard.
func FromConfig(cfg config.ProviderConfig) (Adapter, error) {
	var base Adapter
	switch cfg.Name {
	case "", "gemini":
		base = NewGeminiAdapter(GeminiOptions{
			APIKey:            cfg.GeminiApiKey,
			Model:             cfg.Model,
			SystemInstruction: cfg.SystemInstruction,
			MaxOutputTokens:   cfg.MaxOutputTokens,
			DefaultRetryAfter: cfg.DefaultRetryAfter,
		})
	case "openai":
		base = NewOpenAIAdapter(OpenAIOptions{
			APIKey:            cfg.OpenAIApiKey,
			Model:             cfg.Model,
			SystemInstruction: cfg.SystemInstruction,
			MaxOutputTokens:   cfg.MaxOutputTokens,
			DefaultRetryAfter: cfg.DefaultRetryAfter,
		})
	case "anthropic":
		base = NewAnthropicAdapter(AnthropicOptions{
			APIKey:            cfg.AnthropicApiKey,
			Model:             cfg.Model,
			SystemInstruction: cfg.SystemInstruction,
			MaxOutputTokens:   cfg.MaxOutputTokens,
			DefaultRetryAfter: cfg.DefaultRetryAfter,
		})
	default:
		return nil, fmt.Errorf("unknown provider %q", cfg.Name)
	}
	return NewQuotaGuard(base, cfg.Quota), nil
}
