package provider

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/seenimoa/tickerlens/internal/infra"
)

// FailureReason classifies why a fetch attempt failed. The set is closed so
// callers can branch on it without string matching.
type FailureReason string

const (
	ReasonRateLimited       FailureReason = "rate-limited"
	ReasonNotFound          FailureReason = "not-found"
	ReasonMalformedResponse FailureReason = "malformed-response"
	ReasonNetworkError      FailureReason = "network-error"
	ReasonUnauthorized      FailureReason = "unauthorized"
	ReasonTimeout           FailureReason = "timeout"
)

// Failure is a classified fetch error from a single provider attempt.
type Failure struct {
	Provider   string
	Capability Capability
	Reason     FailureReason
	Err        error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s/%s: %s: %v", f.Provider, f.Capability, f.Reason, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }

// NewFailure classifies err and wraps it with provider and capability context.
// Already-classified failures pass through with context filled in if missing.
func NewFailure(providerName string, cap Capability, err error) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		if f.Provider == "" {
			f.Provider = providerName
		}
		if f.Capability == "" {
			f.Capability = cap
		}
		return f
	}
	return &Failure{
		Provider:   providerName,
		Capability: cap,
		Reason:     Classify(err),
		Err:        err,
	}
}

// Classify maps an arbitrary fetch error onto the failure taxonomy.
// Unrecognized errors classify as network errors, the broadest retryable bucket.
func Classify(err error) FailureReason {
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}

	var httpErr *infra.ErrHTTP
	if errors.As(err, &httpErr) {
		switch {
		case httpErr.StatusCode == 401 || httpErr.StatusCode == 403:
			return ReasonUnauthorized
		case httpErr.StatusCode == 404:
			return ReasonNotFound
		case httpErr.StatusCode == 429:
			return ReasonRateLimited
		default:
			return ReasonNetworkError
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ReasonTimeout
		}
		return ReasonNetworkError
	}

	var missing *ErrMissingParam
	var badCreds *ErrInvalidCredentials
	switch {
	case errors.As(err, &missing):
		return ReasonMalformedResponse
	case errors.As(err, &badCreds):
		return ReasonUnauthorized
	}

	return ReasonNetworkError
}

// MalformedError builds a pre-classified failure for responses that parsed
// but did not contain usable data (empty arrays, missing fields, error JSON).
func MalformedError(providerName string, cap Capability, detail string) *Failure {
	return &Failure{
		Provider:   providerName,
		Capability: cap,
		Reason:     ReasonMalformedResponse,
		Err:        errors.New(detail),
	}
}

// NotFoundError builds a pre-classified failure for symbols the provider
// genuinely does not know.
func NotFoundError(providerName string, cap Capability, detail string) *Failure {
	return &Failure{
		Provider:   providerName,
		Capability: cap,
		Reason:     ReasonNotFound,
		Err:        errors.New(detail),
	}
}

// RateLimitedError builds a pre-classified failure for provider-level quota
// responses that arrive with HTTP 200 (Alpha Vantage does this).
func RateLimitedError(providerName string, cap Capability, detail string) *Failure {
	return &Failure{
		Provider:   providerName,
		Capability: cap,
		Reason:     ReasonRateLimited,
		Err:        errors.New(detail),
	}
}
