package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicAdapter answers turns with the Anthropic messages API.
type AnthropicAdapter struct {
	client            anthropic.Client
	configured        bool
	model             string
	systemInstruction string
	maxTokens         int64
	defaultRetryAfter int
}

type AnthropicOptions struct {
	APIKey            string
	Model             string
	SystemInstruction string
	MaxOutputTokens   int
	DefaultRetryAfter int
}

func NewAnthropicAdapter(opts AnthropicOptions) *AnthropicAdapter {
	maxTokens := int64(opts.MaxOutputTokens)
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &AnthropicAdapter{
		client:            anthropic.NewClient(anthropicopt.WithAPIKey(opts.APIKey), anthropicopt.WithMaxRetries(0)),
		configured:        opts.APIKey != "",
		model:             opts.Model,
		systemInstruction: opts.SystemInstruction,
		maxTokens:         maxTokens,
		defaultRetryAfter: opts.DefaultRetryAfter,
	}
}

func (a *AnthropicAdapter) Name() string { return "anthropic" }

func (a *AnthropicAdapter) Respond(ctx context.Context, history []Turn, message string) Outcome {
	if !a.configured {
		return Failure("provider_unavailable", fmt.Errorf("anthropic API key not configured"))
	}

	messages := make([]anthropic.MessageParam, 0, len(history)+1)
	for _, t := range history {
		if t.Role == "assistant" {
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(t.Content)))
		} else {
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(t.Content)))
		}
	}
	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(message)))

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		Messages:  messages,
	}
	if a.systemInstruction != "" {
		params.System = []anthropic.TextBlockParam{{Text: a.systemInstruction}}
	}

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		if o, ok := classifyContextError(err); ok {
			return o
		}
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return classifyHTTPStatusError(err, apiErr.StatusCode, apiErr.Response, a.defaultRetryAfter)
		}
		return Failure("provider_error", err)
	}

	parts := make([]string, 0, len(msg.Content))
	for _, block := range msg.Content {
		parts = append(parts, block.Text)
	}
	text, ok := joinText(parts)
	if !ok {
		return Failure("empty_response", nil)
	}
	return Ok(text)
}
