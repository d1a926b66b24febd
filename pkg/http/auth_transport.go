package http

import "net/http"

// authTransport injects the connector's service token as a bearer
// authorization header. The request is cloned so shared requests are never
// mutated.
type authTransport struct {
	token string
	next  http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.token == "" {
		return t.next.RoundTrip(req)
	}

	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+t.token)
	return t.next.RoundTrip(clone)
}

// WithAuthToken authenticates every request with the given service token.
// An empty token leaves requests untouched, which is how the mockable local
// upstreams run.
func WithAuthToken(token string) HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &authTransport{token: token, next: rt}
	})
}
