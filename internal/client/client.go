package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jcaMx/company-extractor-web/internal/model"
)

const (
	// DefaultBaseURL is where the extraction API listens unless configured otherwise.
	DefaultBaseURL = "http://localhost:5000"
	// ExtractPath is appended to the base URL for every submission.
	ExtractPath = "/api/extract"
	// FallbackMessage is shown when a failure carries no structured error.
	FallbackMessage = "Failed to fetch data"

	maxBodySize = int64(10 * 1024 * 1024)
)

// Error is returned for every failed submission. Message is what the form
// displays; Err keeps the underlying cause for callers that care.
type Error struct {
	Message    string
	StatusCode int
	Err        error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// Dispatcher is what the form needs to submit a URL.
type Dispatcher interface {
	Extract(ctx context.Context, url string) (*model.ExtractionResult, error)
}

// Client posts extraction requests to the API. It performs exactly one
// request per call: no retry and no timeout of its own.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// New returns a Client for baseURL, falling back to DefaultBaseURL.
func New(baseURL string) *Client {
	return &Client{BaseURL: baseURL}
}

// Endpoint returns the absolute extract URL.
func (c *Client) Endpoint() string {
	base := strings.TrimSpace(c.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	return strings.TrimRight(base, "/") + ExtractPath
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

// Extract sends {"url": url} and decodes the result. On failure the returned
// error is always a *Error.
func (c *Client) Extract(ctx context.Context, url string) (*model.ExtractionResult, error) {
	payload, err := json.Marshal(model.ExtractionRequest{URL: url})
	if err != nil {
		return nil, &Error{Message: FallbackMessage, Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), bytes.NewReader(payload))
	if err != nil {
		return nil, &Error{Message: FallbackMessage, Err: fmt.Errorf("new request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, &Error{Message: FallbackMessage, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &Error{Message: FallbackMessage, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{
			Message:    messageFrom(body),
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status: %d", resp.StatusCode),
		}
	}

	var result model.ExtractionResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &Error{Message: FallbackMessage, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode result: %w", err)}
	}
	return &result, nil
}

// messageFrom pulls the "error" field out of a failure body.
func messageFrom(body []byte) string {
	var eb model.ErrorBody
	if err := json.Unmarshal(body, &eb); err != nil || eb.Error == "" {
		return FallbackMessage
	}
	return eb.Error
}

// MessageOf returns the display message for any error from Extract.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var ce *Error
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	return FallbackMessage
}
