// Package client is the Go SDK for the LegalEase HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/LegalEase-Intelligence/pkg/errors"
)

const Version = "0.1.0"

// Logger defines the logging interface used by the Client
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Debugf(format string, args ...interface{}) {}
func (noopLogger) Infof(format string, args ...interface{})  {}
func (noopLogger) Errorf(format string, args ...interface{}) {}

// Client is the LegalEase SDK client.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	apiKey       string
	userAgent    string
	logger       Logger
	retryMax     int
	retryWaitMin time.Duration
	retryWaitMax time.Duration

	documents     *DocumentsClient
	documentsOnce sync.Once
	glossary      *GlossaryClient
	glossaryOnce  sync.Once
}

// APIError is an error response from the API.
type APIError struct {
	StatusCode int    `json:"status_code"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	RequestID  string `json:"request_id"`
}

func (e *APIError) Error() string {
	msg := e.Message
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return fmt.Sprintf("legalease: %s (HTTP %d): %s [request_id=%s]", e.Code, e.StatusCode, msg, e.RequestID)
}

func (e *APIError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

func (e *APIError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

func (e *APIError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// envelope is the wrapper of every JSON response.
type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data,omitempty"`
	Error     *errorBody      `json:"error,omitempty"`
	RequestID string          `json:"request_id,omitempty"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// NewClient creates a client for the API at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.InvalidParam("baseURL is required")
	}
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.InvalidParam("invalid baseURL").WithDetail(err.Error())
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, errors.InvalidParam("baseURL scheme must be http or https")
	}

	c := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		httpClient:   &http.Client{Timeout: 60 * time.Second},
		userAgent:    fmt.Sprintf("legalease-go-sdk/%s", Version),
		logger:       noopLogger{},
		retryMax:     3,
		retryWaitMin: 500 * time.Millisecond,
		retryWaitMax: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Documents returns the documents sub-client.
func (c *Client) Documents() *DocumentsClient {
	c.documentsOnce.Do(func() {
		c.documents = &DocumentsClient{client: c}
	})
	return c.documents
}

// Glossary returns the glossary sub-client.
func (c *Client) Glossary() *GlossaryClient {
	c.glossaryOnce.Do(func() {
		c.glossary = &GlossaryClient{client: c}
	})
	return c.glossary
}

// request describes one API call.  body is re-read on every attempt.
type request struct {
	method      string
	path        string
	body        []byte
	contentType string
	accept      string
}

// response is a successful reply.
type response struct {
	header http.Header
	body   []byte
}

// do performs req, retrying network errors, 429 and 5xx replies.
func (c *Client) do(ctx context.Context, req request) (*response, error) {
	if !strings.HasPrefix(req.path, "/") {
		req.path = "/" + req.path
	}
	fullURL := c.baseURL + req.path
	if req.accept == "" {
		req.accept = "application/json"
	}

	var lastErr error
	var wait time.Duration
	for attempt := 0; attempt <= c.retryMax; attempt++ {
		if attempt > 0 {
			if wait <= 0 {
				wait = c.calculateBackoff(attempt)
			}
			c.logger.Debugf("Retry attempt %d after %v", attempt, wait)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			wait = 0
		}

		var bodyReader io.Reader
		if req.body != nil {
			bodyReader = bytes.NewReader(req.body)
		}
		httpReq, err := http.NewRequestWithContext(ctx, req.method, fullURL, bodyReader)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		requestID := uuid.New().String()
		if c.apiKey != "" {
			httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
		}
		if req.contentType != "" {
			httpReq.Header.Set("Content-Type", req.contentType)
		}
		httpReq.Header.Set("Accept", req.accept)
		httpReq.Header.Set("User-Agent", c.userAgent)
		httpReq.Header.Set("X-Request-ID", requestID)

		start := time.Now()
		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Errorf("Request failed: %v", err)
			lastErr = err
			continue
		}
		c.logger.Debugf("%s %s %d (%v)", req.method, req.path, resp.StatusCode, time.Since(start))

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read response body: %w", err)
		}

		if resp.StatusCode < 400 {
			return &response{header: resp.Header, body: respBody}, nil
		}

		apiErr := parseAPIError(resp.StatusCode, respBody, requestID)
		lastErr = apiErr
		if !shouldRetry(resp.StatusCode) {
			return nil, apiErr
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			if seconds, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && seconds > 0 {
				c.logger.Infof("Rate limited, retrying after %d seconds", seconds)
				wait = time.Duration(seconds) * time.Second
			}
		}
	}
	return nil, lastErr
}

// doJSON sends body as JSON and decodes the envelope data into result.
func (c *Client) doJSON(ctx context.Context, method, path string, body, result interface{}) error {
	req := request{method: method, path: path}
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		req.body = b
		req.contentType = "application/json"
	}
	resp, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	return decodeData(resp.body, result)
}

func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	return c.doJSON(ctx, http.MethodGet, path, nil, result)
}

func (c *Client) post(ctx context.Context, path string, body, result interface{}) error {
	return c.doJSON(ctx, http.MethodPost, path, body, result)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.doJSON(ctx, http.MethodDelete, path, nil, nil)
}

func decodeData(body []byte, result interface{}) error {
	if result == nil || len(body) == 0 {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, result); err != nil {
		return fmt.Errorf("failed to unmarshal response data: %w", err)
	}
	return nil
}

func parseAPIError(status int, body []byte, requestID string) *APIError {
	apiErr := &APIError{StatusCode: status, RequestID: requestID}
	if len(body) == 0 {
		apiErr.Message = http.StatusText(status)
		return apiErr
	}
	var env envelope
	if err := json.Unmarshal(body, &env); err == nil && env.Error != nil {
		apiErr.Code = env.Error.Code
		apiErr.Message = env.Error.Message
		apiErr.Detail = env.Error.Detail
		if env.RequestID != "" {
			apiErr.RequestID = env.RequestID
		}
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(string(body))
	return apiErr
}

func shouldRetry(status int) bool {
	return status == http.StatusTooManyRequests || (status >= 500 && status < 600)
}

func (c *Client) calculateBackoff(attempt int) time.Duration {
	backoff := c.retryWaitMin * time.Duration(1<<uint(attempt-1))
	if backoff > c.retryWaitMax {
		backoff = c.retryWaitMax
	}
	if q := int64(backoff / 4); q > 0 {
		backoff += time.Duration(rand.Int63n(q))
	}
	return backoff
}

// Analysis is the result of analyzing one text.
type Analysis struct {
	SimplifiedText    string              `json:"simplified_text"`
	Clauses           []string            `json:"clauses"`
	ClauseCandidates  []ClauseCandidate   `json:"clause_candidates"`
	Terms             map[string][]string `json:"terms"`
	ReadabilityBefore int                 `json:"readability_before"`
	ReadabilityAfter  int                 `json:"readability_after"`
	Keywords          []string            `json:"keywords"`
	WordsBefore       int                 `json:"words_before"`
	WordsAfter        int                 `json:"words_after"`
	Steps             []Step              `json:"steps,omitempty"`
}

// ClauseCandidate is a detected clause with its category.
type ClauseCandidate struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

// Step is the output of one simplification stage.
type Step struct {
	Stage    string        `json:"stage"`
	Output   string        `json:"output"`
	Duration time.Duration `json:"duration"`
}

// AnalyzeOptions tunes Analyze.
type AnalyzeOptions struct {
	// Trace returns the per-stage outputs.
	Trace bool
}

// Analyze simplifies text and returns the full analysis.
func (c *Client) Analyze(ctx context.Context, text string, opts *AnalyzeOptions) (*Analysis, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.InvalidParam("text is required")
	}
	body := map[string]interface{}{"text": text}
	if opts != nil && opts.Trace {
		body["trace"] = true
	}
	var out Analysis
	if err := c.post(ctx, "/api/v1/analyze", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AnalyzeBatch analyzes several texts; results keep the input order.
func (c *Client) AnalyzeBatch(ctx context.Context, texts []string) ([]*Analysis, error) {
	if len(texts) == 0 {
		return nil, errors.InvalidParam("texts is required")
	}
	var out []*Analysis
	if err := c.post(ctx, "/api/v1/analyze/batch", map[string][]string{"texts": texts}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Health reports whether the server answers its readiness probe.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.do(ctx, request{method: http.MethodGet, path: "/readyz"})
	return err
}
