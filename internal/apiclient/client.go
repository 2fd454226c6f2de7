// Package apiclient is a small recording JSON client for the programmer API.
// The integration test harness and the smoke command both drive the server
// through it.
package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

// Response is a fully read HTTP response. The body is buffered so it can be
// asserted on and printed more than once.
type Response struct {
	Proto      string
	Status     string
	StatusCode int
	Header     http.Header
	Body       []byte
}

// JSON decodes the body into v.
func (r *Response) JSON(v any) error {
	return json.Unmarshal(r.Body, v)
}

// Exchange is one request/response pair kept in the client history.
type Exchange struct {
	Method   string
	URL      string
	Response *Response
}

// Client is a small JSON HTTP client that remembers every exchange. It never
// treats a 4xx or 5xx as an error; callers assert on the status themselves.
type Client struct {
	baseURL string
	http    *http.Client

	mu      sync.Mutex
	history []Exchange
}

// NewClient returns a Client that resolves paths against baseURL.
func NewClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// Get sends a GET request.
func (c *Client) Get(path string) (*Response, error) {
	return c.Do(http.MethodGet, path, nil, nil)
}

// Post sends body as JSON.
func (c *Client) Post(path string, body any) (*Response, error) {
	return c.Do(http.MethodPost, path, body, nil)
}

// Put sends body as JSON.
func (c *Client) Put(path string, body any) (*Response, error) {
	return c.Do(http.MethodPut, path, body, nil)
}

// Patch sends body as JSON.
func (c *Client) Patch(path string, body any) (*Response, error) {
	return c.Do(http.MethodPatch, path, body, nil)
}

// Delete sends a DELETE request.
func (c *Client) Delete(path string) (*Response, error) {
	return c.Do(http.MethodDelete, path, nil, nil)
}

// Do sends a request and records it in the history.
//
// A string or []byte body is sent verbatim, which lets tests send malformed
// JSON; anything else is JSON encoded. path may be absolute, as returned in
// a Location header.
func (c *Client) Do(method, path string, body any, header http.Header) (*Response, error) {
	payload, err := encodeBody(body)
	if err != nil {
		return nil, err
	}

	url := path
	if !strings.HasPrefix(path, "http://") && !strings.HasPrefix(path, "https://") {
		url = c.baseURL + path
	}

	req, err := http.NewRequest(method, url, payload)
	if err != nil {
		return nil, fmt.Errorf("apiclient: building request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	httpResp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("apiclient: %s %s: %w", method, url, err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("apiclient: reading response: %w", err)
	}

	resp := &Response{
		Proto:      httpResp.Proto,
		Status:     httpResp.Status,
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       data,
	}

	c.mu.Lock()
	c.history = append(c.history, Exchange{Method: method, URL: url, Response: resp})
	c.mu.Unlock()

	return resp, nil
}

func encodeBody(body any) (io.Reader, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case string:
		return strings.NewReader(b), nil
	case []byte:
		return bytes.NewReader(b), nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("apiclient: encoding body: %w", err)
	}
	return bytes.NewReader(data), nil
}

// History returns a copy of every recorded exchange, oldest first.
func (c *Client) History() []Exchange {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Exchange(nil), c.history...)
}

// Last returns the most recent exchange.
func (c *Client) Last() (Exchange, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.history) == 0 {
		return Exchange{}, false
	}
	return c.history[len(c.history)-1], true
}
