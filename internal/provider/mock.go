package provider

import (
	"context"
	"time"

	"github.com/penwyp/go-cost-tracker/internal/core/model"
)

// MockAdapter is a canned adapter for tests and for trying the tracker
// without real credentials. It returns its configured usage slice, or fails
// every call with a MOCK_ERROR when FailMessage is set.
type MockAdapter struct {
	ProviderName string
	Usage        []model.NormalizedUsage
	Models       []model.ProviderModel
	FailMessage  string
	Delay        time.Duration
}

// NewMockAdapter creates a mock adapter answering for the given provider name.
func NewMockAdapter(name string) *MockAdapter {
	return &MockAdapter{ProviderName: name}
}

// Name returns the provider key
func (a *MockAdapter) Name() string {
	return a.ProviderName
}

func (a *MockAdapter) fail() *Error {
	return &Error{Provider: a.ProviderName, Code: CodeMockError, Message: a.FailMessage}
}

func (a *MockAdapter) wait(ctx context.Context) error {
	if a.Delay <= 0 {
		return nil
	}
	select {
	case <-time.After(a.Delay):
		return nil
	case <-ctx.Done():
		return classifyTransportError(a.ProviderName, ctx.Err())
	}
}

// FetchUsage returns the canned usage records.
func (a *MockAdapter) FetchUsage(ctx context.Context, cfg model.ProviderConfig, from, to time.Time) ([]model.NormalizedUsage, error) {
	if err := a.wait(ctx); err != nil {
		return nil, err
	}
	if a.FailMessage != "" {
		return nil, a.fail()
	}
	return a.Usage, nil
}

// FetchModels returns the canned model list.
func (a *MockAdapter) FetchModels(ctx context.Context, cfg model.ProviderConfig) ([]model.ProviderModel, error) {
	if err := a.wait(ctx); err != nil {
		return nil, err
	}
	if a.FailMessage != "" {
		return nil, a.fail()
	}
	return a.Models, nil
}

// ValidateConfig only requires a non-empty API key.
func (a *MockAdapter) ValidateConfig(cfg model.ProviderConfig) []model.FieldError {
	if cfg.APIKey == "" {
		return []model.FieldError{{Field: "apiKey", Message: "API key is required"}}
	}
	return nil
}

// HealthCheck succeeds unless the adapter is configured to fail.
func (a *MockAdapter) HealthCheck(ctx context.Context, cfg model.ProviderConfig) error {
	if err := a.wait(ctx); err != nil {
		return err
	}
	if a.FailMessage != "" {
		return a.fail()
	}
	return nil
}
