package djelia

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveAPIKey_ExplicitWins(t *testing.T) {
	t.Setenv(EnvAPIKey, "from-env")

	key, err := ResolveAPIKey("explicit")
	require.NoError(t, err)
	assert.Equal(t, "explicit", key)
}

func TestResolveAPIKey_FromEnv(t *testing.T) {
	t.Setenv(EnvAPIKey, "from-env")

	key, err := ResolveAPIKey("")
	require.NoError(t, err)
	assert.Equal(t, "from-env", key)
}

func TestResolveAPIKey_Missing(t *testing.T) {
	t.Setenv(EnvAPIKey, "")

	_, err := ResolveAPIKey("")
	e := requireKind(t, err, KindAuthentication)
	assert.Contains(t, e.Message, EnvAPIKey)
	assert.True(t, errors.Is(err, ErrAuthentication))
}

func TestNewClient_ResolvesOnce(t *testing.T) {
	t.Setenv(EnvAPIKey, "first")

	doer := &countingDoer{respond: func(r *http.Request) (*http.Response, error) {
		return jsonResponse(200, `[]`), nil
	}}
	c, err := NewClient("", WithHTTPClient(doer))
	require.NoError(t, err)

	t.Setenv(EnvAPIKey, "rotated")
	_, err = c.SupportedLanguages(context.Background(), 1)
	require.NoError(t, err)

	require.Len(t, doer.requests, 1)
	assert.Equal(t, "first", doer.requests[0].Header.Get(APIKeyHeader))
}

func TestNewClient_MissingKey(t *testing.T) {
	t.Setenv(EnvAPIKey, "")

	_, err := NewClient("")
	requireKind(t, err, KindAuthentication)

	_, err = NewAsyncClient("")
	requireKind(t, err, KindAuthentication)
}
