// Package apiclient is the single outbound HTTP client of the console. It
// attaches the session's access token to every call and transparently
// renews the session once when the backend answers 401.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	errs "github.com/jrsteele09/go-billing-console/internal/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const defaultTimeout = 15 * time.Second

// SessionSource supplies the access token and renews it. auth.Manager
// satisfies it.
type SessionSource interface {
	oauth2.TokenSource
	Renewer
}

// Client sends JSON requests to the backend. Three chains share one
// transport:
//   - anonymous: no Authorization header (login, refresh)
//   - bearer: token attached, never retried (logout)
//   - authorised: token attached, renewed once on 401 (everything else)
type Client struct {
	baseURL *url.URL

	anonymous  Doer
	bearer     Doer
	authorised Doer

	mu        sync.RWMutex
	source    SessionSource
	onExpired func()
}

type clientOptions struct {
	transport Doer
	timeout   time.Duration
	limiter   *rate.Limiter
	logger    zerolog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*clientOptions)

// WithTransport replaces the underlying Doer, http.DefaultClient by default.
func WithTransport(d Doer) ClientOption {
	return func(o *clientOptions) {
		o.transport = d
	}
}

// WithTimeout sets the per-request timeout. Zero disables it.
func WithTimeout(d time.Duration) ClientOption {
	return func(o *clientOptions) {
		o.timeout = d
	}
}

// WithRateLimiter throttles outbound requests.
func WithRateLimiter(l *rate.Limiter) ClientOption {
	return func(o *clientOptions) {
		o.limiter = l
	}
}

// WithLogger sets the logger used for per-exchange debug records.
func WithLogger(l zerolog.Logger) ClientOption {
	return func(o *clientOptions) {
		o.logger = l
	}
}

// New creates a Client for the API rooted at baseURL.
func New(baseURL string, options ...ClientOption) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, errs.Wrapf(err, "parse api base url")
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, errs.Wrapf(errs.ErrInvalidRequest, "api base url %q must be absolute", baseURL)
	}

	opts := clientOptions{
		transport: http.DefaultClient,
		timeout:   defaultTimeout,
		logger:    log.Logger,
	}
	for _, option := range options {
		option(&opts)
	}

	c := &Client{baseURL: u}
	base := Chain(opts.transport,
		RateLimit(opts.limiter),
		RequestID(),
		Logging(opts.logger),
		Timeout(opts.timeout),
	)
	c.anonymous = base
	c.bearer = Chain(base, Bearer(c))
	c.authorised = Chain(base, RetryUnauthorized(c, c.expired), Bearer(c))
	return c, nil
}

// SetRefresher installs the session source used for bearer tokens and
// renewal.
func (c *Client) SetRefresher(s SessionSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.source = s
}

// SetSessionExpiredHandler registers fn to run when the session ends
// because renewal failed.
func (c *Client) SetSessionExpiredHandler(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onExpired = fn
}

func (c *Client) sessionSource() SessionSource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.source
}

// Token implements oauth2.TokenSource for the bearer middleware.
func (c *Client) Token() (*oauth2.Token, error) {
	s := c.sessionSource()
	if s == nil {
		return nil, errs.ErrNotAuthenticated
	}
	return s.Token()
}

func (c *Client) Refresh(ctx context.Context) error {
	s := c.sessionSource()
	if s == nil {
		return errs.ErrNoRefreshToken
	}
	return s.Refresh(ctx)
}

func (c *Client) Invalidate() {
	if s := c.sessionSource(); s != nil {
		s.Invalidate()
	}
}

func (c *Client) expired() {
	c.mu.RLock()
	fn := c.onExpired
	c.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

// URL resolves an API path against the base address.
func (c *Client) URL(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, c.authorised, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, query url.Values, in, out any) error {
	return c.do(ctx, c.authorised, http.MethodPost, path, query, in, out)
}

func (c *Client) Put(ctx context.Context, path string, query url.Values, in, out any) error {
	return c.do(ctx, c.authorised, http.MethodPut, path, query, in, out)
}

func (c *Client) Delete(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, c.authorised, http.MethodDelete, path, query, nil, out)
}

// postAnonymous sends a request without credentials.
func (c *Client) postAnonymous(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, c.anonymous, http.MethodPost, path, nil, in, out)
}

// postBearer sends a request with the current token but never renews it.
func (c *Client) postBearer(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, c.bearer, http.MethodPost, path, nil, in, out)
}

// getWithToken sends a GET authorised by accessToken rather than the held
// session. It is never renewed.
func (c *Client) getWithToken(ctx context.Context, path, accessToken string, out any) error {
	tok := &oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}
	d := Chain(c.anonymous, Bearer(oauth2.StaticTokenSource(tok)))
	return c.do(ctx, d, http.MethodGet, path, nil, nil, out)
}

func (c *Client) do(ctx context.Context, d Doer, method, path string, query url.Values, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return errs.Wrapf(err, "encode %s %s", method, path)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.URL(path, query), body)
	if err != nil {
		return errs.Wrapf(err, "build %s %s", method, path)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := d.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errs.DecodeAPIError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errs.Wrapf(err, "read %s %s", method, path)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errs.Wrapf(err, "decode %s %s", method, path)
	}
	return nil
}
