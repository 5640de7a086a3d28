package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/bytedance/sonic"

	"github.com/penwyp/go-cost-tracker/internal/core/model"
	"github.com/penwyp/go-cost-tracker/internal/util"
)

const (
	anthropicDefaultBaseURL = "https://api.anthropic.com"
	anthropicAPIVersion     = "2023-06-01"
)

var anthropicKeyPattern = regexp.MustCompile(`^sk-ant-[A-Za-z0-9_-]{16,}$`)

// AnthropicAdapter maps the Anthropic usage report API onto NormalizedUsage.
type AnthropicAdapter struct {
	client *http.Client
}

// NewAnthropicAdapter creates the Anthropic usage adapter.
func NewAnthropicAdapter() *AnthropicAdapter {
	return &AnthropicAdapter{
		client: &http.Client{Timeout: FetchTimeout},
	}
}

// Name returns the provider key
func (a *AnthropicAdapter) Name() string {
	return "anthropic"
}

// anthropicUsageResponse mirrors the usage report endpoint: time buckets with
// per-model result rows.
type anthropicUsageResponse struct {
	Data []struct {
		StartingAt string `json:"starting_at"`
		Results    []struct {
			Model               string `json:"model"`
			UncachedInputTokens int    `json:"uncached_input_tokens"`
			OutputTokens        int    `json:"output_tokens"`
			APIKeyID            string `json:"api_key_id"`
		} `json:"results"`
	} `json:"data"`
}

// FetchUsage pulls per-day, per-model token usage for the date range.
func (a *AnthropicAdapter) FetchUsage(ctx context.Context, cfg model.ProviderConfig, from, to time.Time) ([]model.NormalizedUsage, error) {
	endpoint := fmt.Sprintf("%s/v1/organizations/usage_report/messages", baseURL(cfg, anthropicDefaultBaseURL))

	query := url.Values{}
	query.Set("starting_at", from.UTC().Format(time.RFC3339))
	query.Set("ending_at", to.UTC().Format(time.RFC3339))
	query.Set("bucket_width", "1d")
	query.Set("group_by[]", "model")

	body, provErr := a.get(ctx, cfg, endpoint+"?"+query.Encode())
	if provErr != nil {
		return nil, provErr
	}

	var resp anthropicUsageResponse
	if err := sonic.Unmarshal(body, &resp); err != nil {
		return nil, &Error{Provider: a.Name(), Code: CodeNetworkError, Message: fmt.Sprintf("malformed usage response: %v", err), Err: err}
	}

	var usages []model.NormalizedUsage
	for _, bucket := range resp.Data {
		day := bucket.StartingAt
		if t, err := time.Parse(time.RFC3339, bucket.StartingAt); err == nil {
			day = t.UTC().Format(model.DateLayout)
		}
		for _, result := range bucket.Results {
			usages = append(usages, Normalize(RawUsage{
				ModelID:      result.Model,
				Provider:     a.Name(),
				InputTokens:  result.UncachedInputTokens,
				OutputTokens: result.OutputTokens,
				Date:         day,
				SessionID:    result.APIKeyID,
			}))
		}
	}

	util.LogDebugf("anthropic: fetched %d usage records", len(usages))
	return usages, nil
}

type anthropicModelsResponse struct {
	Data []struct {
		ID          string `json:"id"`
		DisplayName string `json:"display_name"`
	} `json:"data"`
}

// FetchModels lists models visible to the configured key.
func (a *AnthropicAdapter) FetchModels(ctx context.Context, cfg model.ProviderConfig) ([]model.ProviderModel, error) {
	body, provErr := a.get(ctx, cfg, baseURL(cfg, anthropicDefaultBaseURL)+"/v1/models")
	if provErr != nil {
		return nil, provErr
	}

	var resp anthropicModelsResponse
	if err := sonic.Unmarshal(body, &resp); err != nil {
		return nil, &Error{Provider: a.Name(), Code: CodeNetworkError, Message: fmt.Sprintf("malformed models response: %v", err), Err: err}
	}

	models := make([]model.ProviderModel, 0, len(resp.Data))
	for _, m := range resp.Data {
		name := m.DisplayName
		if name == "" {
			name = m.ID
		}
		models = append(models, model.ProviderModel{ID: m.ID, Name: name, Provider: a.Name()})
	}
	return models, nil
}

// ValidateConfig checks the credential shape without any network call.
func (a *AnthropicAdapter) ValidateConfig(cfg model.ProviderConfig) []model.FieldError {
	var errs []model.FieldError
	if cfg.APIKey == "" {
		errs = append(errs, model.FieldError{Field: "apiKey", Message: "API key is required"})
	} else if !anthropicKeyPattern.MatchString(cfg.APIKey) {
		errs = append(errs, model.FieldError{Field: "apiKey", Message: "API key must start with sk-ant-"})
	}
	if cfg.BaseURL != "" {
		if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
			errs = append(errs, model.FieldError{Field: "baseUrl", Message: "base URL is not a valid URL"})
		}
	}
	return errs
}

// HealthCheck probes the models endpoint with the short health timeout.
func (a *AnthropicAdapter) HealthCheck(ctx context.Context, cfg model.ProviderConfig) error {
	ctx, cancel := context.WithTimeout(ctx, HealthTimeout)
	defer cancel()

	_, provErr := a.get(ctx, cfg, baseURL(cfg, anthropicDefaultBaseURL)+"/v1/models")
	if provErr != nil {
		return provErr
	}
	return nil
}

func (a *AnthropicAdapter) get(ctx context.Context, cfg model.ProviderConfig, rawURL string) ([]byte, *Error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &Error{Provider: a.Name(), Code: CodeNetworkError, Message: fmt.Sprintf("build request: %v", err), Err: err}
	}
	req.Header.Set("x-api-key", cfg.APIKey)
	req.Header.Set("anthropic-version", anthropicAPIVersion)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, classifyTransportError(a.Name(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatusError(a.Name(), resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Provider: a.Name(), Code: CodeNetworkError, Message: fmt.Sprintf("read response: %v", err), Err: err}
	}
	return body, nil
}
