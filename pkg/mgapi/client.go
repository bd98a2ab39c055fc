// Package mgapi talks to the MevzuatGPT backend and the portal metadata
// store. Scan and upload use the streamed frame protocol (pkg/sse), the
// rest are plain JSON calls through pkg/whttp.
package mgapi

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/mevzuatgpt/mevzuatctl/pkg/whttp"
	"github.com/tidwall/gjson"
)

// ErrNoToken is a precondition failure: no call is attempted without a
// credential and absence is never retried.
var ErrNoToken = errors.New("no API token configured (set api.token in ~/.mevzuatctl.yaml)")

// TokenSource supplies the bearer credential for every call. Injected
// explicitly so nothing in this package holds global auth state.
type TokenSource interface {
	Token() (string, error)
}

// StaticToken is a TokenSource backed by a fixed string.
type StaticToken string

func (s StaticToken) Token() (string, error) {
	if s == "" {
		return "", ErrNoToken
	}
	return string(s), nil
}

// Client is the MevzuatGPT backend client.
type Client struct {
	BaseURL string
	Tokens  TokenSource
	HTTP    *retryablehttp.Client // nil = shared whttp default
}

func NewClient(baseURL string, tokens TokenSource) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Tokens:  tokens,
	}
}

func (c *Client) bearer() (whttp.Header, error) {
	if c.Tokens == nil {
		return whttp.Header{}, ErrNoToken
	}
	tok, err := c.Tokens.Token()
	if err != nil {
		return whttp.Header{}, err
	}
	return whttp.Header{Name: "Authorization", Value: "Bearer " + tok}, nil
}

// apiError builds an error from a non-2xx response, preferring the
// structured message the backend puts in the body.
func apiError(res *whttp.Response) error {
	msg := extractMessage(res.BodyString)
	if msg == "" {
		msg = res.HTMLTitle
	}
	if msg == "" {
		msg = strings.TrimSpace(res.BodyString)
		if len(msg) > 200 {
			msg = msg[:200]
		}
	}
	return fmt.Errorf("api error (status %d): %s", res.StatusCode, msg)
}

// extractMessage pulls a human-readable message out of a structured error
// body, trying the field names the backends actually use.
func extractMessage(body string) string {
	if !gjson.Valid(body) {
		return ""
	}
	for _, field := range []string{"detail", "message", "error"} {
		if v := gjson.Get(body, field); v.Exists() && v.String() != "" {
			return v.String()
		}
	}
	return ""
}
