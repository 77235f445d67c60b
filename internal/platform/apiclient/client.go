// Package apiclient is the authenticated REST client for the clinic API.
//
// Every request carries "Authorization: Bearer <token>" taken from a
// session.Provider at call time. Failures are classified into three
// mutually exclusive outcomes: ErrNoSession (no request was sent),
// *StatusError (the server answered outside 2xx) and *TransportError (no
// usable response was obtained).
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinica/dashboard/internal/platform/session"
	"github.com/clinica/dashboard/internal/resource"
)

// ErrNoSession is returned before any network call when no token is held.
var ErrNoSession = errors.New("no session token")

// maxErrorBody bounds how much of a failed response is kept for diagnostics.
const maxErrorBody = 4 << 10

// StatusError reports a response outside the 2xx range.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Code)
}

// TransportError reports a request that produced no usable response: the
// connection failed, the context ended or the body could not be decoded.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == code
}

type Client struct {
	baseURL string
	tokens  session.Provider
	http    *http.Client
	timeout time.Duration
	logger  zerolog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithTimeout bounds every request, whatever HTTP client is in use. Zero
// means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, tokens session.Provider, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		http:    &http.Client{},
		logger:  zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.timeout > 0 {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	return c
}

// HasSession reports whether a token is currently held.
func (c *Client) HasSession() bool {
	tok, err := c.tokens.Token()
	return err == nil && tok != ""
}

// Do performs one authenticated request. A non-nil body is sent as JSON; a
// non-nil out receives the decoded 2xx response body, which must be present.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	data, err := c.send(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return &TransportError{Method: method, Path: path, Err: errors.New("empty response body")}
	}
	if err := json.Unmarshal(data, out); err != nil {
		c.logger.Warn().Err(err).Str("method", method).Str("path", path).Msg("undecodable response")
		return &TransportError{Method: method, Path: path, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, body any) ([]byte, error) {
	tok, err := c.tokens.Token()
	if err != nil {
		c.logger.Warn().Err(err).Str("method", method).Str("path", path).Msg("session unreadable")
		return nil, &TransportError{Method: method, Path: path, Err: fmt.Errorf("read session: %w", err)}
	}
	if tok == "" {
		return nil, ErrNoSession
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	log := c.logger.With().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Logger()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		log.Warn().Msg("unexpected status")
		return nil, &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: string(snippet)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: method, Path: path, Err: err}
	}
	log.Debug().Msg("request completed")
	return data, nil
}

// List fetches a collection. The order is the server's.
func (c *Client) List(ctx context.Context, path string) ([]resource.Record, error) {
	var records []resource.Record
	if err := c.Do(ctx, http.MethodGet, path, nil, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []resource.Record{}
	}
	return records, nil
}

// Get fetches a single record.
func (c *Client) Get(ctx context.Context, path string) (resource.Record, error) {
	var rec resource.Record
	if err := c.Do(ctx, http.MethodGet, path, nil, &rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Create posts rec to a collection. The server's echo of the record is
// returned when the response body is a JSON object, nil otherwise.
func (c *Client) Create(ctx context.Context, path string, rec resource.Record) (resource.Record, error) {
	return c.mutate(ctx, http.MethodPost, path, rec)
}

// Update puts rec at path.
func (c *Client) Update(ctx context.Context, path string, rec resource.Record) (resource.Record, error) {
	return c.mutate(ctx, http.MethodPut, path, rec)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	_, err := c.send(ctx, http.MethodDelete, path, nil)
	return err
}

// mutate treats any 2xx as success whatever the body holds.
func (c *Client) mutate(ctx context.Context, method, path string, rec resource.Record) (resource.Record, error) {
	data, err := c.send(ctx, method, path, rec)
	if err != nil {
		return nil, err
	}
	var out resource.Record
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, nil
	}
	return out, nil
}
