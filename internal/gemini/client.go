package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aashari/go-report-analyzer/internal/config"
	"github.com/aashari/go-report-analyzer/internal/httpclient"
	"github.com/aashari/go-report-analyzer/internal/logger"
	"github.com/aashari/go-report-analyzer/internal/reliability"
	"github.com/aashari/go-report-analyzer/internal/types"
	"github.com/aashari/go-report-analyzer/internal/utils"
)

// maxErrorBodyLog caps how much of a provider error body reaches the logs
const maxErrorBodyLog = 4096

// Client calls the generateContent endpoint
type Client struct {
	baseURL    string
	model      string
	apiKey     string
	httpClient *http.Client
	retry      reliability.RetryConfig
}

// NewClient builds a client from provider configuration. The credential is
// captured here and never re-read from the environment.
func NewClient(cfg config.ProviderConfig, factory *httpclient.Factory) *Client {
	if factory == nil {
		factory = httpclient.NewFactory(httpclient.Options{})
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		apiKey:     cfg.APIKey,
		httpClient: factory.CreateClient(httpclient.Options{Timeout: cfg.Timeout}),
		retry:      reliability.DefaultRetryConfig(cfg.MaxAttempts),
	}

	logger.Info(logger.WithComponent(context.Background(), logger.ComponentNames.Gemini), "Gemini client initialized",
		"base_url", c.baseURL,
		"model", c.model,
		"timeout", cfg.Timeout.String(),
		"max_attempts", cfg.MaxAttempts,
		"credential_configured", c.HasCredential(),
	)
	return c
}

// HasCredential reports whether an API key was configured
func (c *Client) HasCredential() bool {
	return c.apiKey != ""
}

// Model returns the configured model name
func (c *Client) Model() string {
	return c.model
}

// endpoint returns the generateContent URL carrying the key as a query parameter
func (c *Client) endpoint() string {
	return fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, url.QueryEscape(c.apiKey))
}

// GenerateContent posts payload and classifies the answer. Non-2xx answers
// come back as *ProviderError, transport failures as *TransportError.
func (c *Client) GenerateContent(ctx context.Context, payload *types.GenerateContentRequest) (*Outcome, error) {
	if !c.HasCredential() {
		return nil, ErrMissingCredential
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode gemini payload: %w", err)
	}

	ctx = logger.WithComponent(ctx, logger.ComponentNames.Gemini)

	var outcome *Outcome
	err = reliability.Retry(ctx, c.retry, func(ctx context.Context) error {
		var attemptErr error
		outcome, attemptErr = c.send(ctx, body)
		return attemptErr
	})
	if err != nil {
		return nil, err
	}
	return outcome, nil
}

func (c *Client) send(ctx context.Context, body []byte) (*Outcome, error) {
	endpoint := c.endpoint()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini request: %w", err)
	}
	req.Header.Set(utils.HeaderContentType, utils.ContentTypeJSON)

	logger.Debug(logger.WithStage(ctx, logger.LogStages.ProviderRequest), "Sending request to Gemini",
		"url", utils.MaskURLCredential(endpoint),
		"model", c.model,
		"request_size", len(body),
	)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		err = withoutURL(err)
		logger.Error(logger.WithStage(ctx, logger.LogStages.ProviderError), "Gemini communication failed", err,
			"url", utils.MaskURLCredential(endpoint),
			"duration_ms", duration.Milliseconds(),
		)
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read gemini response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logged := respBody
		if len(logged) > maxErrorBodyLog {
			logged = logged[:maxErrorBodyLog]
		}
		logger.Error(logger.WithStage(ctx, logger.LogStages.ProviderError), "Gemini API returned an error", nil,
			"status_code", resp.StatusCode,
			"duration_ms", duration.Milliseconds(),
			"response_body", string(logged),
		)
		return nil, &ProviderError{
			StatusCode: resp.StatusCode,
			StatusText: statusText(resp),
			Body:       respBody,
		}
	}

	var decoded types.GenerateContentResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode gemini response: %w", err)
	}

	outcome := Classify(&decoded)
	logger.Info(logger.WithStage(ctx, logger.LogStages.ProviderResponse), "Gemini response received",
		"status_code", resp.StatusCode,
		"duration_ms", duration.Milliseconds(),
		"outcome", outcome.Kind.String(),
		"model_version", decoded.ModelVersion,
	)
	return outcome, nil
}

// withoutURL drops the *url.Error layer, whose message embeds the request URL
// and with it the key query parameter.
func withoutURL(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		return urlErr.Err
	}
	return err
}

// statusText returns the reason phrase, e.g. "Too Many Requests"
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
