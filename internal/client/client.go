// Package client calls a running analyzer service over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/aashari/go-report-analyzer/internal/httpclient"
	"github.com/aashari/go-report-analyzer/internal/types"
	"github.com/aashari/go-report-analyzer/internal/utils"
)

// DefaultBaseURL is where a locally started server listens
const DefaultBaseURL = "http://localhost:8082"

// AnalyzePath is the endpoint the client posts to
const AnalyzePath = "/api/analyze"

// Error is a non-200 answer; Message is the server's "error" field
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("analyzer returned %d: %s", e.StatusCode, e.Message)
}

// Client posts images to the analyze endpoint
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for baseURL. httpClient may be nil.
func New(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = httpclient.NewFactory(httpclient.Options{}).CreateDefaultClient()
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}
}

// DetectImage returns the MIME type of data, rejecting anything that is not an image
func DetectImage(data []byte) (string, error) {
	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		return "", fmt.Errorf("unsupported file type %s: an image is required", mime.String())
	}
	return mime.String(), nil
}

// NewRequest builds the request body for an image
func NewRequest(image []byte, mimeType, language string) types.AnalysisRequest {
	return types.AnalysisRequest{
		ImageData: base64.StdEncoding.EncodeToString(image),
		MimeType:  mimeType,
		Language:  language,
	}
}

// AnalyzeFile reads the image at path, detects its type and analyzes it
func (c *Client) AnalyzeFile(ctx context.Context, path, language string) (string, error) {
	image, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	mimeType, err := DetectImage(image)
	if err != nil {
		return "", err
	}
	return c.Analyze(ctx, NewRequest(image, mimeType, language))
}

// Analyze posts req and returns the analysis text
func (c *Client) Analyze(ctx context.Context, req types.AnalysisRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+AnalyzePath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set(utils.HeaderContentType, utils.ContentTypeJSON)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to reach analyzer: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errBody struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(respBody, &errBody); err != nil || errBody.Error == "" {
			errBody.Error = strings.TrimSpace(string(respBody))
		}
		return "", &Error{StatusCode: resp.StatusCode, Message: errBody.Error}
	}

	var result types.AnalysisResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	return result.Analysis, nil
}
