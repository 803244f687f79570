package triage

import (
	"errors"
	"net/http"
	"strings"
)

const (
	msgProviderFailure = "could not classify the request with the AI provider"
	msgInvalidResponse = "the AI provider returned an invalid classification"
)

// ClassificationError is the only error ProcessCitizenRequest returns.
// HTTPStatus is meant to be copied onto the outward response status.
type ClassificationError struct {
	Provider   string `json:"provider"`
	HTTPStatus int    `json:"-"`
	Message    string `json:"message"`
	Detail     string `json:"detail"`
}

func (e *ClassificationError) Error() string {
	if e.Detail == "" {
		return e.Provider + ": " + e.Message
	}
	return e.Provider + ": " + e.Message + ": " + e.Detail
}

var retryableMarkers = []string{
	"429", "500", "502", "503", "504",
	"too many requests", "rate limit", "resource_exhausted", "resource exhausted", "quota",
	"timeout", "timed out", "deadline exceeded",
	"service unavailable", "unavailable", "overloaded",
	"network", "fetch failed", "socket hang up", "eof",
	"econnreset", "connection reset", "connection refused", "broken pipe",
	"enotfound", "eai_again", "no such host", "dns",
}

var rateLimitMarkers = []string{
	"429", "too many requests", "rate limit", "resource_exhausted", "resource exhausted",
}

// IsRetryable reports whether a provider error looks transient. It inspects
// the lowercased error text only, so it works for any SDK.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	return containsAny(strings.ToLower(err.Error()), retryableMarkers)
}

func isRateLimited(err error) bool {
	if err == nil {
		return false
	}
	return containsAny(strings.ToLower(err.Error()), rateLimitMarkers)
}

func containsAny(text string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(text, m) {
			return true
		}
	}
	return false
}

// providerError wraps the last error seen after the attempt budget is spent.
func providerError(provider string, err error) *ClassificationError {
	status := http.StatusBadGateway
	if isRateLimited(err) {
		status = http.StatusServiceUnavailable
	}
	return &ClassificationError{
		Provider:   provider,
		HTTPStatus: status,
		Message:    msgProviderFailure,
		Detail:     err.Error(),
	}
}

// responseError folds parse and validation failures into a 502. An error that
// is already a ClassificationError passes through untouched.
func responseError(provider string, err error) *ClassificationError {
	var ce *ClassificationError
	if errors.As(err, &ce) {
		return ce
	}
	return &ClassificationError{
		Provider:   provider,
		HTTPStatus: http.StatusBadGateway,
		Message:    msgInvalidResponse,
		Detail:     err.Error(),
	}
}
