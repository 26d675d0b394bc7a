package apiclient

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	errs "github.com/jrsteele09/go-billing-console/internal/errors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

// HeaderRequestID correlates a client exchange with backend logs.
const HeaderRequestID = "X-Request-Id"

// Doer sends one HTTP exchange. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// DoerFunc adapts a function to a Doer.
type DoerFunc func(req *http.Request) (*http.Response, error)

func (f DoerFunc) Do(req *http.Request) (*http.Response, error) {
	return f(req)
}

// Middleware decorates a Doer.
type Middleware func(Doer) Doer

// Chain wraps d with mws so that mws[0] is outermost.
func Chain(d Doer, mws ...Middleware) Doer {
	for i := len(mws) - 1; i >= 0; i-- {
		d = mws[i](d)
	}
	return d
}

// RateLimit blocks each exchange until the limiter grants a token. A nil
// limiter disables limiting.
func RateLimit(limiter *rate.Limiter) Middleware {
	return func(next Doer) Doer {
		if limiter == nil {
			return next
		}
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			if err := limiter.Wait(req.Context()); err != nil {
				return nil, err
			}
			return next.Do(req)
		})
	}
}

// RequestID sets X-Request-Id on outgoing requests that lack one.
func RequestID() Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			if req.Header.Get(HeaderRequestID) != "" {
				return next.Do(req)
			}
			r := req.Clone(req.Context())
			r.Header.Set(HeaderRequestID, uuid.NewString())
			return next.Do(r)
		})
	}
}

// Logging writes one debug record per exchange. Payloads and headers are
// never logged.
func Logging(l zerolog.Logger) Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next.Do(req)

			ev := l.Debug().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Str("request_id", req.Header.Get(HeaderRequestID)).
				Dur("dur", time.Since(start))
			if err != nil {
				ev.Err(err).Msg("api")
				return nil, err
			}
			ev.Int("status", resp.StatusCode).Msg("api")
			return resp, nil
		})
	}
}

// Timeout bounds an exchange by d when the request context has no deadline
// of its own. The deadline also covers reading the response body; it is
// released when the body is closed.
func Timeout(d time.Duration) Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			if d <= 0 {
				return next.Do(req)
			}
			if _, ok := req.Context().Deadline(); ok {
				return next.Do(req)
			}

			ctx, cancel := context.WithTimeout(req.Context(), d)
			resp, err := next.Do(req.WithContext(ctx))
			if err != nil {
				cancel()
				return nil, err
			}
			resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
			return resp, nil
		})
	}
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}

// Bearer attaches the current access token from ts. Requests go out without
// an Authorization header while no session is held.
func Bearer(ts oauth2.TokenSource) Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			tok, err := ts.Token()
			if err != nil {
				if errs.Is(err, errs.ErrNotAuthenticated) {
					return next.Do(req)
				}
				return nil, err
			}
			if tok == nil || tok.AccessToken == "" {
				return next.Do(req)
			}
			r := req.Clone(req.Context())
			tok.SetAuthHeader(r)
			return next.Do(r)
		})
	}
}
