package platforms

import (
	"io"
	"net/http"
	"strings"
	"sync/atomic"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// newTestHTTPClient routes every webhook post through fn instead of the network.
func newTestHTTPClient(fn roundTripFunc) *HTTPClient {
	return &HTTPClient{inner: &http.Client{Transport: fn}}
}

// statusResponse is a canned reply from a result-push endpoint.
func statusResponse(code int, body string) *http.Response {
	return &http.Response{StatusCode: code, Body: io.NopCloser(strings.NewReader(body))}
}

// countingEndpoint answers each post with code and counts the calls.
func countingEndpoint(code int) (*HTTPClient, *atomic.Int32) {
	var calls atomic.Int32
	client := newTestHTTPClient(func(*http.Request) (*http.Response, error) {
		calls.Add(1)
		return statusResponse(code, ""), nil
	})
	return client, &calls
}
