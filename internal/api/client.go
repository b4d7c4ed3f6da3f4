// Package api is the client of the storefront REST API. Responses arrive in a
// {success, message, data} envelope; failures map to *Error.
package api

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
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"storefront/internal/domain"
)

// TokenSource supplies the bearer token and renews it after a 401
type TokenSource interface {
	Token() string
	Renew(ctx context.Context, staleToken string) (string, error)
}

// Options configure a Client
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	Retry     RetryConfig
	Transport http.RoundTripper
	Log       logrus.FieldLogger
}

// Client talks to the storefront API
type Client struct {
	base   *url.URL
	http   *http.Client
	policy Policy
	log    logrus.FieldLogger

	mu     sync.RWMutex
	tokens TokenSource
}

func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q: %w", opts.BaseURL, domain.ErrInvalidInput)
	}
	transport := opts.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	log := opts.Log
	if log == nil {
		l := logrus.New()
		l.Out = io.Discard
		log = l
	}
	return &Client{
		base: base,
		http: &http.Client{
			Timeout:   opts.Timeout,
			Transport: otelhttp.NewTransport(transport),
		},
		policy: NewPolicy(opts.Retry),
		log:    log.WithField("component", "api"),
	}, nil
}

// UseSession attaches the token source consulted on every authenticated call
func (c *Client) UseSession(ts TokenSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = ts
}

func (c *Client) session() TokenSource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tokens
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// call describes one logical request
type call struct {
	kind   Kind
	method string
	path   string
	query  url.Values
	body   any
	// bearer pins the token and disables renewal; used by the auth endpoints
	bearer string
	// anonymous calls never carry a token
	anonymous bool
}

// do runs c under the retry policy and decodes the envelope data into out
func (c *Client) do(ctx context.Context, cl call, out any) error {
	retries, renewed := 0, false
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := c.send(ctx, cl, out, &renewed)
		if err == nil {
			return struct{}{}, nil
		}
		if !c.policy.ShouldRetry(cl.kind, retries, err) {
			return struct{}{}, backoff.Permanent(err)
		}
		retries++
		return struct{}{}, err
	},
		backoff.WithBackOff(c.policy.backOff()),
		backoff.WithMaxTries(c.policy.maxTries(cl.kind)),
		backoff.WithNotify(func(err error, wait time.Duration) {
			c.log.WithError(err).WithField("path", cl.path).WithField("wait", wait).Debug("retrying request")
		}),
	)
	var perm *backoff.PermanentError
	if errors.As(err, &perm) {
		return perm.Err
	}
	return err
}

// send performs one attempt. A 401 on a session call triggers one renewal and one
// replay with the new token. renewed spans every attempt of the logical request, so
// any later 401 is returned as is.
func (c *Client) send(ctx context.Context, cl call, out any, renewed *bool) error {
	token, renewable := cl.bearer, false
	ts := c.session()
	if token == "" && !cl.anonymous && ts != nil {
		token = ts.Token()
		renewable = token != ""
	}

	data, err := c.roundTrip(ctx, cl, token)
	var apiErr *Error
	if renewable && !*renewed && errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
		*renewed = true
		fresh, rerr := ts.Renew(ctx, token)
		if rerr != nil {
			apiErr.err = rerr
			return apiErr
		}
		data, err = c.roundTrip(ctx, cl, fresh)
	}
	if err != nil {
		return err
	}
	if out != nil && len(data) > 0 && string(data) != "null" {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode %s %s: %w", cl.method, cl.path, err)
		}
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, cl call, token string) (json.RawMessage, error) {
	u := *c.base
	u.Path = u.Path + cl.path
	if len(cl.query) > 0 {
		u.RawQuery = cl.query.Encode()
	}

	var body io.Reader
	if cl.body != nil {
		raw, err := json.Marshal(cl.body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", cl.method, cl.path, err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, cl.method, u.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var ne net.Error
		timeout := errors.As(err, &ne) && ne.Timeout()
		return nil, &Error{Timeout: timeout, err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Status: 0, err: err}
	}
	c.log.WithFields(logrus.Fields{
		"method":   cl.method,
		"path":     cl.path,
		"status":   resp.StatusCode,
		"duration": time.Since(start).String(),
	}).Debug("api call")

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &Error{Status: resp.StatusCode, Message: env.Message}
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decode envelope of %s %s: %w", cl.method, cl.path, decodeErr)
	}
	if !env.Success {
		return nil, &Error{Status: resp.StatusCode, Message: env.Message}
	}
	return env.Data, nil
}

func pageQuery(p domain.PageParams) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(p.Page))
	q.Set("size", strconv.Itoa(p.Size))
	if p.SortBy != "" {
		q.Set("sortBy", p.SortBy)
	}
	if p.SortDir != "" {
		q.Set("sortDir", p.SortDir)
	}
	return q
}
