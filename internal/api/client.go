// Package api provides typed access to the Highflying Themes backend API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client wraps the backend REST surface consumed by the web frontend.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customises client instantiation.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// New constructs a Client pointing at the provided backend base URL.
func New(base string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(base)
	if trimmed == "" {
		trimmed = "http://localhost:8000"
	}
	if !strings.HasPrefix(trimmed, "http://") && !strings.HasPrefix(trimmed, "https://") {
		trimmed = "http://" + trimmed
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, fmt.Errorf("invalid backend base url: %w", err)
	}
	cli := &Client{
		baseURL:    strings.TrimRight(trimmed, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(cli)
	}
	return cli, nil
}

// ErrUnreachable marks network-level failures where no response arrived.
var ErrUnreachable = errors.New("network error, please check your connection")

// APIError represents a non-2xx response from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return statusMessage(e.Status)
	}
	return e.Message
}

// IsAuthError reports whether err is a backend 401 response.
func IsAuthError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// IsNotFound reports whether err is a backend 404 response.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// statusMessage maps HTTP status codes to user-facing sentences, used when
// the backend error body carries no detail string.
func statusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "Bad request. Please check your input."
	case http.StatusUnauthorized:
		return "Authentication failed. Please log in again."
	case http.StatusForbidden:
		return "Access denied. You don't have permission for this action."
	case http.StatusNotFound:
		return "Resource not found."
	case http.StatusConflict:
		return "Conflict. This resource already exists."
	case http.StatusUnprocessableEntity:
		return "Validation error. Please check your input."
	case http.StatusTooManyRequests:
		return "Too many requests. Please try again later."
	case http.StatusInternalServerError:
		return "Server error. Please try again later."
	case http.StatusBadGateway:
		return "Bad gateway. Please try again later."
	case http.StatusServiceUnavailable:
		return "Service unavailable. Please try again later."
	default:
		return fmt.Sprintf("HTTP error! status: %d", status)
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any, token string, v any) error {
	if c == nil {
		return errors.New("client is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	setBearer(req, token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return responseError(resp)
	}
	if v == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// doMultipart sends a multipart form built by fill and decodes the response.
func (c *Client) doMultipart(ctx context.Context, path, token string, fill func(*multipart.Writer) error, v any) error {
	if ctx == nil {
		ctx = context.Background()
	}
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := fill(mw); err != nil {
		return fmt.Errorf("build multipart body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("finalize multipart body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	setBearer(req, token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return responseError(resp)
	}
	if v == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func setBearer(req *http.Request, token string) {
	if strings.TrimSpace(token) != "" {
		req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(token))
	}
}

// responseError extracts the backend detail string, falling back to the
// static status mapping.
func responseError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil || len(data) == 0 {
		return apiErr
	}
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && strings.TrimSpace(payload.Detail) != "" {
		apiErr.Message = strings.TrimSpace(payload.Detail)
	}
	return apiErr
}
