package apiclient

import (
	"bytes"
	"context"
	"io"
	"net/http"

	errs "github.com/jrsteele09/go-billing-console/internal/errors"
)

// Renewer renews or discards the session held by the client.
type Renewer interface {
	// Refresh exchanges the refresh token for a new access token.
	Refresh(ctx context.Context) error

	// Invalidate drops the local session without contacting the backend.
	Invalidate()
}

// pendingRequest is one outbound call together with its buffered body and
// the one-shot retried flag. It lives for a single exchange.
type pendingRequest struct {
	orig    *http.Request
	body    []byte
	retried bool
}

func newPendingRequest(req *http.Request) (*pendingRequest, error) {
	p := &pendingRequest{orig: req}
	if req.Body == nil || req.Body == http.NoBody {
		return p, nil
	}
	b, err := io.ReadAll(req.Body)
	req.Body.Close()
	if err != nil {
		return nil, errs.Wrapf(err, "buffer request body")
	}
	p.body = b
	return p, nil
}

// attempt returns a fresh copy of the original request with a rewound body.
func (p *pendingRequest) attempt() *http.Request {
	r := p.orig.Clone(p.orig.Context())
	if p.body == nil {
		r.Body = http.NoBody
		r.ContentLength = 0
		return r
	}
	r.Body = io.NopCloser(bytes.NewReader(p.body))
	r.ContentLength = int64(len(p.body))
	r.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(p.body)), nil
	}
	return r
}

// RetryUnauthorized renews the session once when an exchange is rejected
// with 401 and replays the request. A second 401, or a failed renewal, ends
// the session: renewer.Invalidate and onExpired are called and the error
// wraps errors.ErrSessionExpired. A renewal that lost to a newer login or
// logout replays against the current session instead. The caller never sees
// the first 401.
func RetryUnauthorized(renewer Renewer, onExpired func()) Middleware {
	return func(next Doer) Doer {
		return DoerFunc(func(req *http.Request) (*http.Response, error) {
			pending, err := newPendingRequest(req)
			if err != nil {
				return nil, err
			}
			return pending.exchange(next, renewer, onExpired)
		})
	}
}

func (p *pendingRequest) exchange(next Doer, renewer Renewer, onExpired func()) (*http.Response, error) {
	expire := func(cause error) error {
		renewer.Invalidate()
		if onExpired != nil {
			onExpired()
		}
		return errs.Join(errs.ErrSessionExpired, cause)
	}

	for {
		resp, err := next.Do(p.attempt())
		if err != nil || resp.StatusCode != http.StatusUnauthorized {
			return resp, err
		}

		apiErr := errs.DecodeAPIError(resp)
		resp.Body.Close()

		if p.retried {
			return nil, expire(apiErr)
		}
		p.retried = true

		ctx := p.orig.Context()
		if err := renewer.Refresh(ctx); err != nil {
			switch {
			case ctx.Err() != nil:
				// The caller gave up; the session is left as it is.
				return nil, err
			case errs.Is(err, errs.ErrSessionChanged):
				// Replaced by a login or logout meanwhile. Replay once with
				// whatever session is held now.
				continue
			}
			return nil, expire(err)
		}
	}
}
