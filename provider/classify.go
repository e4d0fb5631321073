package provider

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"google.golang.org/genai"
)

const (
	retryInfoType    = "type.googleapis.com/google.rpc.RetryInfo"
	quotaFailureType = "type.googleapis.com/google.rpc.QuotaFailure"

	statusResourceExhausted = "RESOURCE_EXHAUSTED"
)

// classifyGeminiError maps a genai error onto an Outcome.
func classifyGeminiError(err error, defaultRetryAfter int) Outcome {
	if o, ok := classifyContextError(err); ok {
		return o
	}

	var apiErr genai.APIError
	if !errors.As(err, &apiErr) {
		var apiErrPtr *genai.APIError
		if !errors.As(err, &apiErrPtr) || apiErrPtr == nil {
			return Failure("provider_error", err)
		}
		apiErr = *apiErrPtr
	}

	if apiErr.Code != http.StatusTooManyRequests && !strings.EqualFold(apiErr.Status, statusResourceExhausted) {
		return Failure("provider_error", err)
	}

	retryAfter, details := geminiQuotaDetails(apiErr.Details, defaultRetryAfter)
	if apiErr.Status != "" {
		details["status"] = apiErr.Status
	}
	if apiErr.Message != "" {
		details["message"] = apiErr.Message
	}
	return RateLimited(retryAfter, details)
}

// geminiQuotaDetails extracts the retry delay and quota violations from the
// google.rpc detail entries attached to a RESOURCE_EXHAUSTED error.
func geminiQuotaDetails(entries []map[string]any, defaultRetryAfter int) (int, map[string]any) {
	retryAfter := defaultRetryAfter
	details := map[string]any{}

	for _, entry := range entries {
		switch entry["@type"] {
		case retryInfoType:
			if delay, ok := entry["retryDelay"].(string); ok {
				if secs, ok := parseRetryDelay(delay); ok {
					retryAfter = secs
				}
				details["retryDelay"] = delay
			}
		case quotaFailureType:
			raw, _ := entry["violations"].([]any)
			violations := make([]map[string]any, 0, len(raw))
			for _, v := range raw {
				vm, ok := v.(map[string]any)
				if !ok {
					continue
				}
				violation := map[string]any{}
				for _, key := range []string{"quotaMetric", "quotaId", "quotaValue", "quotaDimensions"} {
					if val, ok := vm[key]; ok {
						violation[key] = val
					}
				}
				violations = append(violations, violation)
			}
			if len(violations) > 0 {
				details["violations"] = violations
			}
		}
	}
	return retryAfter, details
}

// parseRetryDelay parses a protobuf Duration string such as "30s" or "12.5s"
// and rounds up to whole seconds.
func parseRetryDelay(delay string) (int, bool) {
	d, err := time.ParseDuration(strings.TrimSpace(delay))
	if err != nil || d < 0 {
		return 0, false
	}
	return int(math.Ceil(d.Seconds())), true
}

// retryAfterFromHeader reads a Retry-After header given either as delta-seconds
// or as an HTTP date.
func retryAfterFromHeader(h http.Header, defaultRetryAfter int) int {
	if h == nil {
		return defaultRetryAfter
	}
	v := strings.TrimSpace(h.Get("Retry-After"))
	if v == "" {
		return defaultRetryAfter
	}
	if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
		return secs
	}
	if at, err := http.ParseTime(v); err == nil {
		secs := int(math.Ceil(time.Until(at).Seconds()))
		if secs < 0 {
			secs = 0
		}
		return secs
	}
	return defaultRetryAfter
}

// classifyHTTPStatusError handles the OpenAI/Anthropic style errors that expose
// the status code and the raw response.
func classifyHTTPStatusError(err error, status int, resp *http.Response, defaultRetryAfter int) Outcome {
	if status != http.StatusTooManyRequests {
		return Failure("provider_error", err)
	}
	var header http.Header
	if resp != nil {
		header = resp.Header
	}
	details := map[string]any{"status": status}
	if header != nil {
		for _, key := range []string{
			"x-ratelimit-limit-requests",
			"x-ratelimit-remaining-requests",
			"x-ratelimit-reset-requests",
			"anthropic-ratelimit-requests-limit",
			"anthropic-ratelimit-requests-remaining",
			"anthropic-ratelimit-requests-reset",
		} {
			if v := header.Get(key); v != "" {
				details[key] = v
			}
		}
	}
	return RateLimited(retryAfterFromHeader(header, defaultRetryAfter), details)
}

func classifyContextError(err error) (Outcome, bool) {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return Failure("timeout", err), true
	case errors.Is(err, context.Canceled):
		return Failure("canceled", err), true
	}
	return Outcome{}, false
}
