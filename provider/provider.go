// Package provider wraps the external generative-response backends behind one
// Respond call that classifies every result into Ok, RateLimited or Failure.
//
// Adapters never retry. Retry pacing belongs to the client so that a single
// RateLimited outcome drives the cooldown countdown.
package provider

import (
	"context"
	"fmt"
	"strings"
)

// Turn is one prior entry of the conversation handed to the provider as context.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Kind classifies an Outcome.
type Kind int

const (
	KindOK Kind = iota
	KindRateLimited
	KindFailure
)

func (k Kind) String() string {
	switch k {
	case KindOK:
		return "ok"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "failure"
	}
}

// Outcome is the result of a single Respond call.
//
//   - KindOK: Text holds the assistant reply.
//   - KindRateLimited: RetryAfter (seconds) and Details describe the quota signal.
//   - KindFailure: Reason is a short machine-friendly code, Err the cause.
type Outcome struct {
	Kind       Kind
	Text       string
	RetryAfter int
	Details    map[string]any
	Reason     string
	Err        error
}

func Ok(text string) Outcome {
	return Outcome{Kind: KindOK, Text: text}
}

func RateLimited(retryAfter int, details map[string]any) Outcome {
	if details == nil {
		details = map[string]any{}
	}
	return Outcome{Kind: KindRateLimited, RetryAfter: retryAfter, Details: details}
}

func Failure(reason string, err error) Outcome {
	return Outcome{Kind: KindFailure, Reason: reason, Err: err}
}

// String describes the outcome for logs. Empty for KindOK.
func (o Outcome) String() string {
	switch o.Kind {
	case KindRateLimited:
		return fmt.Sprintf("rate limited: retry after %ds", o.RetryAfter)
	case KindFailure:
		if o.Err != nil {
			return fmt.Sprintf("%s: %v", o.Reason, o.Err)
		}
		return o.Reason
	default:
		return ""
	}
}

// Adapter is the uniform capability consumed by the turn orchestrator.
// history holds everything before message; message is the turn to answer.
type Adapter interface {
	Name() string
	Respond(ctx context.Context, history []Turn, message string) Outcome
}

// joinText concatenates text parts and reports whether anything besides
// whitespace came back.
func joinText(parts []string) (string, bool) {
	var b strings.Builder
	for _, p := range parts {
		b.WriteString(p)
	}
	text := b.String()
	return text, strings.TrimSpace(text) != ""
}
