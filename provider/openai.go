package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	openaiopt "github.com/openai/openai-go/option"
)

// OpenAIAdapter answers turns with the OpenAI chat completions API.
type OpenAIAdapter struct {
	client            openai.Client
	configured        bool
	model             string
	systemInstruction string
	maxTokens         int64
	defaultRetryAfter int
}

type OpenAIOptions struct {
	APIKey            string
	Model             string
	SystemInstruction string
	MaxOutputTokens   int
	DefaultRetryAfter int
}

func NewOpenAIAdapter(opts OpenAIOptions) *OpenAIAdapter {
	return &OpenAIAdapter{
		// Retries are disabled: a 429 must reach the client as one signal.
		client:            openai.NewClient(openaiopt.WithAPIKey(opts.APIKey), openaiopt.WithMaxRetries(0)),
		configured:        opts.APIKey != "",
		model:             opts.Model,
		systemInstruction: opts.SystemInstruction,
		maxTokens:         int64(opts.MaxOutputTokens),
		defaultRetryAfter: opts.DefaultRetryAfter,
	}
}

func (a *OpenAIAdapter) Name() string { return "openai" }

func (a *OpenAIAdapter) Respond(ctx context.Context, history []Turn, message string) Outcome {
	if !a.configured {
		return Failure("provider_unavailable", fmt.Errorf("openai API key not configured"))
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+2)
	if a.systemInstruction != "" {
		messages = append(messages, openai.SystemMessage(a.systemInstruction))
	}
	for _, t := range history {
		if t.Role == "assistant" {
			messages = append(messages, openai.AssistantMessage(t.Content))
		} else {
			messages = append(messages, openai.UserMessage(t.Content))
		}
	}
	messages = append(messages, openai.UserMessage(message))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(a.model),
		Messages: messages,
	}
	if a.maxTokens > 0 {
		params.MaxTokens = openai.Int(a.maxTokens)
	}

	resp, err := a.client.Chat.Completions.New(ctx, params)
	if err != nil {
		if o, ok := classifyContextError(err); ok {
			return o
		}
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return classifyHTTPStatusError(err, apiErr.StatusCode, apiErr.Response, a.defaultRetryAfter)
		}
		return Failure("provider_error", err)
	}

	parts := make([]string, 0, len(resp.Choices))
	for _, choice := range resp.Choices {
		parts = append(parts, choice.Message.Content)
	}
	text, ok := joinText(parts)
	if !ok {
		return Failure("empty_response", nil)
	}
	return Ok(text)
}
