// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	ErrTimeout     = errors.New("upstream request timed out")
	ErrUnavailable = errors.New("upstream request failed")
)

// DefaultTimeout applies when no timeout is configured.
const DefaultTimeout = 30 * time.Second

// maxBodySize caps relayed bodies; document downloads stay well below it.
const maxBodySize = 64 << 20

// Outcomes passed to the observer
const (
	OutcomeSuccess = "success"
	OutcomeError   = "upstream_error"
	OutcomeTimeout = "timeout"
	OutcomeFailure = "network_error"
)

// Client talks to the external REST API. It never retries.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	observe func(outcome string)
}

type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithObserver registers a callback invoked once per request with its outcome.
func WithObserver(fn func(outcome string)) Option {
	return func(c *Client) { c.observe = fn }
}

func New(baseURL string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		http:    &http.Client{},
		observe: func(string) {},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Request describes one call to the upstream API.
type Request struct {
	Method      string
	Resource    string // path below the base URL, e.g. "usulan/bangunan-gedung/asb/3"
	Query       url.Values
	Token       string
	Body        io.Reader
	ContentType string
}

// Response is a fully read upstream response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// URL builds the absolute upstream URL for a resource.
func (c *Client) URL(resource string, query url.Values) string {
	u := c.baseURL + "/" + strings.TrimLeft(resource, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// Do sends the request with the configured timeout and reads the whole body.
// Non-2xx responses are returned without error; callers inspect OK().
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.URL(req.Resource, req.Query), req.Body)
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}
	if req.Token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.Token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, c.classify(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, c.classify(err)
	}

	out := &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}
	if out.OK() {
		c.observe(OutcomeSuccess)
	} else {
		c.observe(OutcomeError)
	}
	return out, nil
}

// DoJSON marshals body (when non-nil) and sends it as application/json.
func (c *Client) DoJSON(ctx context.Context, method, resource, token string, body any) (*Response, error) {
	req := Request{Method: method, Resource: resource, Token: token}
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode upstream body: %w", err)
		}
		req.Body = bytes.NewReader(b)
		req.ContentType = "application/json"
	}
	return c.Do(ctx, req)
}

func (c *Client) classify(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		c.observe(OutcomeTimeout)
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	c.observe(OutcomeFailure)
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// ErrorMessage extracts a human message from an error body, trying
// "message" (string or list) then "error", falling back to the status.
func (r *Response) ErrorMessage() string {
	var body struct {
		Message json.RawMessage `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(r.Body, &body); err == nil {
		for _, raw := range []json.RawMessage{body.Message, body.Error} {
			if msg := rawMessage(raw); msg != "" {
				return msg
			}
		}
	}
	return fmt.Sprintf("Request failed with status %d", r.StatusCode)
}

func rawMessage(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, "; ")
	}
	var nested struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &nested); err == nil {
		return nested.Message
	}
	return ""
}

// DecodeData unmarshals the response into v, unwrapping a top-level
// "data" field when the upstream uses one.
func (r *Response) DecodeData(v any) error {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(r.Body, &envelope); err == nil && len(envelope.Data) > 0 && string(envelope.Data) != "null" {
		return json.Unmarshal(envelope.Data, v)
	}
	return json.Unmarshal(r.Body, v)
}
