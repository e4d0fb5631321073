package provider

import (
	"context"
	"fmt"
	"sync"

	"google.golang.org/genai"
)

// GeminiAdapter answers turns with google.golang.org/genai.
// The SDK client is created lazily on the first request.
type GeminiAdapter struct {
	apiKey            string
	model             string
	systemInstruction string
	maxOutputTokens   int32
	defaultRetryAfter int

	once    sync.Once
	client  *genai.Client
	initErr error
}

type GeminiOptions struct {
	APIKey            string
	Model             string
	SystemInstruction string
	MaxOutputTokens   int
	DefaultRetryAfter int
}

func NewGeminiAdapter(opts GeminiOptions) *GeminiAdapter {
	return &GeminiAdapter{
		apiKey:            opts.APIKey,
		model:             opts.Model,
		systemInstruction: opts.SystemInstruction,
		maxOutputTokens:   int32(opts.MaxOutputTokens),
		defaultRetryAfter: opts.DefaultRetryAfter,
	}
}

func (a *GeminiAdapter) Name() string { return "gemini" }

func (a *GeminiAdapter) init(ctx context.Context) error {
	a.once.Do(func() {
		if a.apiKey == "" {
			a.initErr = fmt.Errorf("gemini API key not configured")
			return
		}
		a.client, a.initErr = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  a.apiKey,
			Backend: genai.BackendGeminiAPI,
		})
	})
	return a.initErr
}

func (a *GeminiAdapter) Respond(ctx context.Context, history []Turn, message string) Outcome {
	if err := a.init(ctx); err != nil {
		return Failure("provider_unavailable", err)
	}

	contents := geminiContents(history, message)
	cfg := &genai.GenerateContentConfig{}
	if a.systemInstruction != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: a.systemInstruction}}}
	}
	if a.maxOutputTokens > 0 {
		cfg.MaxOutputTokens = a.maxOutputTokens
	}

	result, err := a.client.Models.GenerateContent(ctx, a.model, contents, cfg)
	if err != nil {
		return classifyGeminiError(err, a.defaultRetryAfter)
	}
	if result == nil {
		return Failure("empty_response", nil)
	}

	text, ok := joinText([]string{result.Text()})
	if !ok {
		return Failure("empty_response", nil)
	}
	return Ok(text)
}

// geminiContents converts the history plus the new message into genai contents.
// Gemini names the assistant role "model".
func geminiContents(history []Turn, message string) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, t := range history {
		var role genai.Role = genai.RoleUser
		if t.Role == "assistant" {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(t.Content, role))
	}
	return append(contents, genai.NewContentFromText(message, genai.RoleUser))
}
