package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrTransport wraps every failure to get a response from the backend.
var ErrTransport = errors.New("backend request failed")

// maxResponseBytes caps how much of a backend body is read.
const maxResponseBytes = 10 << 20

// Request is one outbound call.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Body   []byte
	Token  string
	// ContentType defaults to application/json when Body is set.
	ContentType string
}

// Response is the backend's reply, body fully read.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Client forwards requests to the external REST API. It does not retry.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a client for baseURL with the given timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client: &http.Client{
			Transport: &http.Transport{Proxy: http.ProxyFromEnvironment},
			Timeout:   timeout,
		},
	}
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string { return c.baseURL }

// Do performs one request. Any status is a successful call; only transport
// and read failures return an error, wrapped in ErrTransport.
func (c *Client) Do(ctx context.Context, r Request) (*Response, error) {
	target := c.baseURL + "/" + strings.TrimLeft(r.Path, "/")
	if len(r.Query) > 0 {
		target += "?" + r.Query.Encode()
	}

	var body io.Reader
	if len(r.Body) > 0 {
		body = bytes.NewReader(r.Body)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrTransport, err)
	}

	req.Header.Set("Accept", "application/json")
	if len(r.Body) > 0 {
		contentType := r.ContentType
		if contentType == "" {
			contentType = "application/json"
		}
		req.Header.Set("Content-Type", contentType)
	}
	if r.Token != "" {
		req.Header.Set("Authorization", "Bearer "+r.Token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %v", ErrTransport, err)
	}

	return &Response{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        data,
	}, nil
}

// StatusError is returned by GetJSON when the backend answers non-2xx.
type StatusError struct {
	Response *Response
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned status %d", e.Response.Status)
}

// GetJSON performs a GET and decodes a 2xx body into out. A non-2xx status
// is returned as *StatusError so callers can relay it.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, token string, out any) (*Response, error) {
	resp, err := c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query, Token: token})
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return resp, &StatusError{Response: resp}
	}
	if out == nil {
		return resp, nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return resp, fmt.Errorf("%w: failed to unmarshal response: %v", ErrTransport, err)
	}
	return resp, nil
}

// ErrorMessage pulls a human message out of a backend error body, checking
// the "message" and "error" fields.
func ErrorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Message != "" {
		return payload.Message
	}
	return payload.Error
}
