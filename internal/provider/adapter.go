// Package provider contains the vendor usage adapters. Each adapter maps one
// vendor's usage/billing API onto the NormalizedUsage shape; dispatch happens
// through an explicitly constructed Registry, never a module-level map.
package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/penwyp/go-cost-tracker/internal/core/model"
)

// ErrorCode identifies the machine-readable failure class of a provider call.
type ErrorCode string

const (
	CodeUnauthorized     ErrorCode = "UNAUTHORIZED"
	CodeRateLimited      ErrorCode = "RATE_LIMITED"
	CodeNetworkError     ErrorCode = "NETWORK_ERROR"
	CodeConnectionFailed ErrorCode = "CONNECTION_FAILED"
	CodeTimeout          ErrorCode = "TIMEOUT"
	CodeMockError        ErrorCode = "MOCK_ERROR"
)

// Error is the typed result value for connectivity failures. Adapters always
// return it in place of raw transport errors so callers can branch on Code
// and render Message.
type Error struct {
	Provider string    `json:"provider"`
	Code     ErrorCode `json:"code"`
	Message  string    `json:"message"`
	Err      error     `json:"-"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s (%s)", e.Provider, e.Message, e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Fetch and health timeouts are fixed; a call past its deadline is a TIMEOUT
// failure, never left pending.
const (
	FetchTimeout  = 15 * time.Second
	HealthTimeout = 5 * time.Second
)

// Adapter is the per-vendor contract: usage fetch, model listing, credential
// validation, and a cheap health probe.
type Adapter interface {
	// Name returns the provider key this adapter serves, e.g. "openai".
	Name() string

	// FetchUsage returns normalized usage records for the date range.
	FetchUsage(ctx context.Context, cfg model.ProviderConfig, from, to time.Time) ([]model.NormalizedUsage, error)

	// FetchModels lists the models visible to the configured credentials.
	FetchModels(ctx context.Context, cfg model.ProviderConfig) ([]model.ProviderModel, error)

	// ValidateConfig checks credentials shape without any network call.
	// Failures are field-level messages, never errors.
	ValidateConfig(cfg model.ProviderConfig) []model.FieldError

	// HealthCheck probes connectivity with the configured credentials.
	HealthCheck(ctx context.Context, cfg model.ProviderConfig) error
}

// classifyTransportError converts a transport-level failure into a typed Error.
func classifyTransportError(providerName string, err error) *Error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Provider: providerName, Code: CodeTimeout, Message: "request timed out", Err: err}
	case errors.As(err, &netErr) && netErr.Timeout():
		return &Error{Provider: providerName, Code: CodeTimeout, Message: "request timed out", Err: err}
	case errors.Is(err, context.Canceled):
		return &Error{Provider: providerName, Code: CodeConnectionFailed, Message: "request canceled", Err: err}
	default:
		return &Error{Provider: providerName, Code: CodeConnectionFailed, Message: fmt.Sprintf("connection failed: %v", err), Err: err}
	}
}

// classifyStatusError converts a non-2xx HTTP status into a typed Error.
func classifyStatusError(providerName string, status int) *Error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &Error{Provider: providerName, Code: CodeUnauthorized, Message: "invalid or expired API key"}
	case status == http.StatusTooManyRequests:
		return &Error{Provider: providerName, Code: CodeRateLimited, Message: "rate limit exceeded, retry later"}
	default:
		return &Error{Provider: providerName, Code: CodeNetworkError, Message: fmt.Sprintf("unexpected HTTP status %d", status)}
	}
}
