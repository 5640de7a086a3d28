package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/bytedance/sonic"

	"github.com/penwyp/go-cost-tracker/internal/core/model"
	"github.com/penwyp/go-cost-tracker/internal/util"
)

const openAIDefaultBaseURL = "https://api.openai.com"

var openAIKeyPattern = regexp.MustCompile(`^sk-[A-Za-z0-9_-]{20,}$`)

// OpenAIAdapter maps the OpenAI organization usage API onto NormalizedUsage.
type OpenAIAdapter struct {
	client *http.Client
}

// NewOpenAIAdapter creates the OpenAI usage adapter.
func NewOpenAIAdapter() *OpenAIAdapter {
	return &OpenAIAdapter{
		client: &http.Client{Timeout: FetchTimeout},
	}
}

// Name returns the provider key
func (a *OpenAIAdapter) Name() string {
	return "openai"
}

// openAIUsageResponse mirrors the organization usage endpoint: daily buckets
// each holding per-model result rows.
type openAIUsageResponse struct {
	Data []struct {
		StartTime int64 `json:"start_time"`
		Results   []struct {
			Model        string `json:"model"`
			InputTokens  int    `json:"input_tokens"`
			OutputTokens int    `json:"output_tokens"`
			ProjectID    string `json:"project_id"`
		} `json:"results"`
	} `json:"data"`
}

// FetchUsage pulls per-day, per-model token usage for the date range.
func (a *OpenAIAdapter) FetchUsage(ctx context.Context, cfg model.ProviderConfig, from, to time.Time) ([]model.NormalizedUsage, error) {
	endpoint := fmt.Sprintf("%s/v1/organization/usage/completions", baseURL(cfg, openAIDefaultBaseURL))

	query := url.Values{}
	query.Set("start_time", strconv.FormatInt(from.Unix(), 10))
	query.Set("end_time", strconv.FormatInt(to.Unix(), 10))
	query.Set("bucket_width", "1d")
	query.Set("group_by", "model")

	body, provErr := a.get(ctx, cfg, endpoint+"?"+query.Encode())
	if provErr != nil {
		return nil, provErr
	}

	var resp openAIUsageResponse
	if err := sonic.Unmarshal(body, &resp); err != nil {
		return nil, &Error{Provider: a.Name(), Code: CodeNetworkError, Message: fmt.Sprintf("malformed usage response: %v", err), Err: err}
	}

	var usages []model.NormalizedUsage
	for _, bucket := range resp.Data {
		day := time.Unix(bucket.StartTime, 0).UTC().Format(model.DateLayout)
		for _, result := range bucket.Results {
			usages = append(usages, Normalize(RawUsage{
				ModelID:      result.Model,
				Provider:     a.Name(),
				InputTokens:  result.InputTokens,
				OutputTokens: result.OutputTokens,
				Date:         day,
				ProjectID:    result.ProjectID,
			}))
		}
	}

	util.LogDebugf("openai: fetched %d usage records", len(usages))
	return usages, nil
}

type openAIModelsResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
}

// FetchModels lists models visible to the configured key.
func (a *OpenAIAdapter) FetchModels(ctx context.Context, cfg model.ProviderConfig) ([]model.ProviderModel, error) {
	body, provErr := a.get(ctx, cfg, baseURL(cfg, openAIDefaultBaseURL)+"/v1/models")
	if provErr != nil {
		return nil, provErr
	}

	var resp openAIModelsResponse
	if err := sonic.Unmarshal(body, &resp); err != nil {
		return nil, &Error{Provider: a.Name(), Code: CodeNetworkError, Message: fmt.Sprintf("malformed models response: %v", err), Err: err}
	}

	models := make([]model.ProviderModel, 0, len(resp.Data))
	for _, m := range resp.Data {
		models = append(models, model.ProviderModel{ID: m.ID, Name: m.ID, Provider: a.Name()})
	}
	return models, nil
}

// ValidateConfig checks the credential shape without any network call.
func (a *OpenAIAdapter) ValidateConfig(cfg model.ProviderConfig) []model.FieldError {
	var errs []model.FieldError
	if cfg.APIKey == "" {
		errs = append(errs, model.FieldError{Field: "apiKey", Message: "API key is required"})
	} else if !openAIKeyPattern.MatchString(cfg.APIKey) {
		errs = append(errs, model.FieldError{Field: "apiKey", Message: "API key must start with sk-"})
	}
	if cfg.BaseURL != "" {
		if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
			errs = append(errs, model.FieldError{Field: "baseUrl", Message: "base URL is not a valid URL"})
		}
	}
	return errs
}

// HealthCheck probes the models endpoint with the short health timeout.
func (a *OpenAIAdapter) HealthCheck(ctx context.Context, cfg model.ProviderConfig) error {
	ctx, cancel := context.WithTimeout(ctx, HealthTimeout)
	defer cancel()

	_, provErr := a.get(ctx, cfg, baseURL(cfg, openAIDefaultBaseURL)+"/v1/models")
	if provErr != nil {
		return provErr
	}
	return nil
}

func (a *OpenAIAdapter) get(ctx context.Context, cfg model.ProviderConfig, rawURL string) ([]byte, *Error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &Error{Provider: a.Name(), Code: CodeNetworkError, Message: fmt.Sprintf("build request: %v", err), Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+cfg.APIKey)

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

func baseURL(cfg model.ProviderConfig, fallback string) string {
	if cfg.BaseURL != "" {
		return cfg.BaseURL
	}
	return fallback
}
