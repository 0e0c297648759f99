package djelia

import (
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultTimeout bounds connecting, waiting for response headers and
	// reading non-streaming bodies.
	DefaultTimeout = 60 * time.Second

	// Version is the SDK version reported in the User-Agent header.
	Version = "0.1.0"
)

// Doer performs HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// clientConfig holds the client configuration.
type clientConfig struct {
	baseURL    string
	httpClient Doer
	timeout    time.Duration
	logger     zerolog.Logger
	userAgent  string
}

// Option is a function that configures a Client or AsyncClient.
type Option func(*clientConfig)

// WithBaseURL sets a custom base URL for the API.
func WithBaseURL(url string) Option {
	return func(c *clientConfig) {
		c.baseURL = url
	}
}

// WithHTTPClient sets the transport used for every call.
func WithHTTPClient(client Doer) Option {
	return func(c *clientConfig) {
		c.httpClient = client
	}
}

// WithTimeout sets the request timeout of the default transport. Streaming
// transcription bodies are not bounded by it; cancel the context instead.
// It has no effect together with WithHTTPClient.
func WithTimeout(timeout time.Duration) Option {
	return func(c *clientConfig) {
		c.timeout = timeout
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *clientConfig) {
		c.userAgent = ua
	}
}

func newConfig(opts []Option) *clientConfig {
	cfg := &clientConfig{
		baseURL:   DefaultBaseURL,
		timeout:   DefaultTimeout,
		logger:    log.Logger.With().Str("component", "djelia").Logger(),
		userAgent: "djelia-go/" + Version,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// newHTTPClient bounds dialing and the wait for response headers by timeout.
// Body reads are left to per-call deadlines.
func newHTTPClient(timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = (&net.Dialer{Timeout: timeout, KeepAlive: 30 * time.Second}).DialContext
	transport.ResponseHeaderTimeout = timeout
	return &http.Client{Transport: transport}
}
