package api

import (
	"io"
	"net/http"

	"github.com/andybalholm/brotli"
)

// Middleware decorates an http.RoundTripper. The cross-cutting request
// and response concerns (bearer header, expiry watch, encoding) are
// composable transport wrappers on one client instance, never process
// globals.
type Middleware func(http.RoundTripper) http.RoundTripper

// Chain wraps base with the given middleware; the first listed is the
// outermost, i.e. it sees requests first and responses last.
func Chain(base http.RoundTripper, mw ...Middleware) http.RoundTripper {
	rt := base
	for i := len(mw) - 1; i >= 0; i-- {
		rt = mw[i](rt)
	}
	return rt
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// WithBearer attaches "Authorization: Bearer <token>" to every request
// while token() returns something; logged-out requests go out bare.
func WithBearer(token func() string) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			if token != nil {
				if t := token(); t != "" {
					req = req.Clone(req.Context())
					req.Header.Set("Authorization", "Bearer "+t)
				}
			}
			return next.RoundTrip(req)
		})
	}
}

// WithAuthWatch invokes onExpired on any 401/403 response to an
// authenticated request, regardless of which call produced it. Requests
// without a bearer header (login) are exempt: a rejected login is an
// inline error, not a session expiry.
func WithAuthWatch(onExpired func()) Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			resp, err := next.RoundTrip(req)
			if err != nil || onExpired == nil || req.Header.Get("Authorization") == "" {
				return resp, err
			}
			if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
				onExpired()
			}
			return resp, err
		})
	}
}

// WithBrotli advertises brotli and transparently decodes br-encoded
// response bodies.
func WithBrotli() Middleware {
	return func(next http.RoundTripper) http.RoundTripper {
		return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
			req = req.Clone(req.Context())
			req.Header.Set("Accept", "application/json")
			req.Header.Set("Accept-Encoding", "br")
			resp, err := next.RoundTrip(req)
			if err != nil {
				return nil, err
			}
			if resp.Header.Get("Content-Encoding") == "br" {
				resp.Body = &readCloserWrapper{Reader: brotli.NewReader(resp.Body), Closer: resp.Body}
				resp.Header.Del("Content-Encoding")
			}
			return resp, nil
		})
	}
}

type readCloserWrapper struct {
	io.Reader
	io.Closer
}

func (r *readCloserWrapper) Read(p []byte) (n int, err error) {
	return r.Reader.Read(p)
}

func (r *readCloserWrapper) Close() error {
	return r.Closer.Close()
}
