package djelia

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// countingDoer records every transport call.
type countingDoer struct {
	mu       sync.Mutex
	calls    int
	requests []*http.Request
	respond  func(*http.Request) (*http.Response, error)
}

func (d *countingDoer) Do(req *http.Request) (*http.Response, error) {
	d.mu.Lock()
	d.calls++
	d.requests = append(d.requests, req)
	d.mu.Unlock()
	if d.respond == nil {
		return nil, errors.New("unexpected transport call")
	}
	return d.respond(req)
}

func (d *countingDoer) Calls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func newTestClient(t *testing.T, doer Doer) *Client {
	t.Helper()
	c, err := NewClient("test-key",
		WithHTTPClient(doer),
		WithBaseURL("http://djelia.test"),
		WithLogger(zerolog.Nop()),
	)
	require.NoError(t, err)
	return c
}

func requireKind(t *testing.T, err error, kind Kind) *Error {
	t.Helper()
	require.Error(t, err)
	e, ok := AsError(err)
	require.True(t, ok, "expected *djelia.Error, got %T: %v", err, err)
	require.Equal(t, kind, e.Kind)
	return e
}
