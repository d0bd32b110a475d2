package provider

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind represents the category of failure from a provider fetch.
type Kind string

const (
	// KindCredentialMissing indicates the provider has no credential
	// configured and was skipped without a network attempt.
	KindCredentialMissing Kind = "credential_missing"
	// KindRateLimited indicates the upstream rejected the call with HTTP 429.
	KindRateLimited Kind = "rate_limited"
	// KindUnauthorized indicates a bad credential (HTTP 401/403); the
	// provider is disabled for the remainder of the run.
	KindUnauthorized Kind = "unauthorized"
	// KindNetwork indicates a connection-level failure or an unexpected
	// upstream status.
	KindNetwork Kind = "network"
	// KindTimeout indicates the call was abandoned because its context expired.
	KindTimeout Kind = "timeout"
	// KindMalformed indicates the response arrived but required fields
	// were missing or unparseable.
	KindMalformed Kind = "malformed"
)

// Error is a classified failure from a provider fetch.
type Error struct {
	Provider   string
	Kind       Kind
	StatusCode int
	Message    string
	Cause      error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: %s error (status %d): %s", e.Provider, e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s error: %s", e.Provider, e.Kind, e.Message)
}

// Unwrap implements error unwrapping for errors.Is and errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// NewCredentialMissing creates a credential-missing error.
func NewCredentialMissing(providerName string) *Error {
	return &Error{
		Provider: providerName,
		Kind:     KindCredentialMissing,
		Message:  "no credential configured",
	}
}

// NewRateLimited creates a rate-limited error.
func NewRateLimited(providerName string, statusCode int) *Error {
	return &Error{
		Provider:   providerName,
		Kind:       KindRateLimited,
		StatusCode: statusCode,
		Message:    "rate limit exceeded",
	}
}

// NewUnauthorized creates an unauthorized error.
func NewUnauthorized(providerName string, statusCode int) *Error {
	return &Error{
		Provider:   providerName,
		Kind:       KindUnauthorized,
		StatusCode: statusCode,
		Message:    "credential rejected",
	}
}

// NewNetwork creates a network error.
func NewNetwork(providerName string, cause error) *Error {
	return &Error{
		Provider: providerName,
		Kind:     KindNetwork,
		Message:  "network request failed",
		Cause:    cause,
	}
}

// NewTimeout creates a timeout error.
func NewTimeout(providerName string, cause error) *Error {
	return &Error{
		Provider: providerName,
		Kind:     KindTimeout,
		Message:  "request timed out",
		Cause:    cause,
	}
}

// NewMalformed creates a malformed-response error.
func NewMalformed(providerName, message string) *Error {
	return &Error{
		Provider: providerName,
		Kind:     KindMalformed,
		Message:  message,
	}
}

// ClassifyStatus classifies a non-success HTTP status code into an Error.
func ClassifyStatus(providerName string, statusCode int) *Error {
	switch {
	case statusCode == http.StatusTooManyRequests:
		return NewRateLimited(providerName, statusCode)
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return NewUnauthorized(providerName, statusCode)
	default:
		return &Error{
			Provider:   providerName,
			Kind:       KindNetwork,
			StatusCode: statusCode,
			Message:    fmt.Sprintf("unexpected status code: %d", statusCode),
		}
	}
}

// KindOf extracts the failure Kind from err. Unclassified errors count
// as network failures.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindNetwork
}
