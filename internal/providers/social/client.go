// Package social is a small X (Twitter) API client. Every call goes through
// one OAuth 1.0a signed request helper; the exported methods are thin wrappers
// naming the endpoint and payload.
package social

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dghubble/oauth1"
)

const DefaultBaseURL = "https://api.twitter.com"

type Credentials struct {
	APIKey       string
	APISecret    string
	AccessToken  string
	AccessSecret string
}

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("x api: status %d: %s", e.Status, e.Body)
}

type Client struct {
	http    *http.Client
	baseURL string

	mu sync.Mutex
	me *User
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

func New(creds Credentials, opts ...Option) *Client {
	cfg := oauth1.NewConfig(creds.APIKey, creds.APISecret)
	httpClient := cfg.Client(context.Background(), oauth1.NewToken(creds.AccessToken, creds.AccessSecret))
	httpClient.Timeout = 30 * time.Second

	c := &Client{http: httpClient, baseURL: DefaultBaseURL}
	for _, o := range opts {
		o(c)
	}
	return c
}

type request struct {
	method string
	path   string
	query  url.Values
	json   any
	form   url.Values
}

// do sends one signed request and decodes a JSON answer into out (may be nil).
func (c *Client) do(ctx context.Context, r request, out any) error {
	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}

	var body io.Reader
	contentType := ""
	switch {
	case r.json != nil:
		b, err := json.Marshal(r.json)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
		contentType = "application/json"
	case r.form != nil:
		// form parameters are part of the OAuth1 signature base string
		body = strings.NewReader(r.form.Encode())
		contentType = "application/x-www-form-urlencoded"
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}
