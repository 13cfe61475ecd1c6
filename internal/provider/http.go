package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
)

// Options configures a provider client. Zero values select the defaults.
type Options struct {
	// BaseURL overrides the provider's public endpoint, e.g. for tests.
	BaseURL string
	APIKey  string

	HTTPClient *http.Client

	// MaxRetries bounds retries of transport errors, 429 and 5xx responses.
	// Defaults to 2.
	MaxRetries *uint64

	// Backoff is the first retry delay; it doubles on each retry.
	// Defaults to 200ms.
	Backoff time.Duration
}

// caller issues GET requests that decode a JSON body, with retries.
type caller struct {
	provider   string
	base       string
	key        string
	http       *http.Client
	maxRetries uint64
	backoff    time.Duration
}

func newCaller(provider, defaultBase string, o Options) caller {
	c := caller{
		provider:   provider,
		base:       strings.TrimRight(defaultBase, "/"),
		key:        o.APIKey,
		http:       o.HTTPClient,
		maxRetries: 2,
		backoff:    200 * time.Millisecond,
	}
	if o.BaseURL != "" {
		c.base = strings.TrimRight(o.BaseURL, "/")
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: 10 * time.Second}
	}
	if o.MaxRetries != nil {
		c.maxRetries = *o.MaxRetries
	}
	if o.Backoff > 0 {
		c.backoff = o.Backoff
	}
	return c
}

// fail builds an *Error for this provider.
func (c caller) fail(op string, status int, msg string, err error) *Error {
	return &Error{Provider: c.provider, Op: op, Status: status, Message: msg, Err: err, Hints: statusHints(status)}
}

// requireKey reports a missing API key before any request is made.
func (c caller) requireKey(op, envVar string) error {
	if c.key != "" {
		return nil
	}
	e := c.fail(op, 0, "API key is missing", nil)
	e.Hints = []string{fmt.Sprintf("Set %s in the server environment.", envVar)}
	return e
}

// getJSON performs GET base+path?query and decodes the response into out.
func (c caller) getJSON(ctx context.Context, op, path string, query url.Values, header http.Header, out any) error {
	target := c.base + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	b := retry.WithMaxRetries(c.maxRetries, retry.NewExponential(c.backoff))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return c.fail(op, 0, "", err)
		}
		req.Header.Set("Accept", "application/json")
		for k, vs := range header {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return c.fail(op, 0, "", ctx.Err())
			}
			return retry.RetryableError(c.fail(op, 0, "", err))
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			perr := c.fail(op, resp.StatusCode, responseMessage(resp), nil)
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return retry.RetryableError(perr)
			}
			return perr
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return c.fail(op, resp.StatusCode, "", fmt.Errorf("decode response: %w", err))
		}
		return nil
	})
	if err == nil {
		return nil
	}
	var pe *Error
	if !errors.As(err, &pe) {
		// retry.Do returns the bare context error when cancelled while waiting.
		return c.fail(op, 0, "", err)
	}
	return err
}

// responseMessage extracts a provider message from an error body, falling
// back to the status text.
func responseMessage(resp *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	var body struct {
		Message      string `json:"message"`
		ErrorMessage string `json:"error_message"`
	}
	if json.Unmarshal(raw, &body) == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.ErrorMessage != "" {
			return body.ErrorMessage
		}
	}
	return http.StatusText(resp.StatusCode)
}
