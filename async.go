package djelia

import (
	"context"
	"sync"
)

// Result is the outcome of one AsyncClient call.
type Result[T any] struct {
	Value T
	Err   error
}

// StreamResult is one element of an asynchronous transcription stream.
type StreamResult struct {
	Segment *TranscriptSegment
	Err     error
}

// AsyncClient is the non-blocking Djelia API client.
//
// Every method validates its parameters synchronously and returns a channel
// right away; the request itself runs on its own goroutine and suspends at
// network I/O. The underlying session is created on first use and released
// by Close. Calls issued concurrently are not ordered.
type AsyncClient struct {
	core *core
	cfg  *clientConfig

	mu      sync.Mutex
	session Doer
}

// NewAsyncClient creates a new asynchronous client. Credential resolution
// follows NewClient.
func NewAsyncClient(apiKey string, opts ...Option) (*AsyncClient, error) {
	key, err := ResolveAPIKey(apiKey)
	if err != nil {
		return nil, err
	}
	cfg := newConfig(opts)
	return &AsyncClient{
		core: newCore(key, cfg),
		cfg:  cfg,
	}, nil
}

// WithAsyncClient runs fn with a fresh AsyncClient and closes it on every
// exit path, including a panic in fn.
func WithAsyncClient(apiKey string, opts []Option, fn func(*AsyncClient) error) error {
	c, err := NewAsyncClient(apiKey, opts...)
	if err != nil {
		return err
	}
	defer c.Close()
	return fn(c)
}

// Open creates the session if it does not exist yet. Calling it is optional:
// every method opens the session on demand.
func (c *AsyncClient) Open() {
	c.acquire()
}

// IsOpen reports whether a session currently exists.
func (c *AsyncClient) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session != nil
}

// Close releases the session's idle connections and unsets it. It is safe
// to call more than once. Calls already in flight keep their connection.
func (c *AsyncClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return nil
	}
	if closer, ok := c.session.(interface{ CloseIdleConnections() }); ok {
		closer.CloseIdleConnections()
	}
	c.session = nil
	c.core.logger.Debug().Msg("Djelia async session closed")
	return nil
}

func (c *AsyncClient) acquire() Doer {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		return c.session
	}
	if c.cfg.httpClient != nil {
		c.session = c.cfg.httpClient
	} else {
		c.session = newHTTPClient(c.cfg.timeout)
	}
	c.core.logger.Debug().Msg("Djelia async session opened")
	return c.session
}

func runAsync[T any](fn func() (T, error)) <-chan Result[T] {
	ch := make(chan Result[T], 1)
	go func() {
		defer close(ch)
		v, err := fn()
		ch <- Result[T]{Value: v, Err: err}
	}()
	return ch
}

func failed[T any](err error) <-chan Result[T] {
	ch := make(chan Result[T], 1)
	ch <- Result[T]{Err: err}
	close(ch)
	return ch
}

// SupportedLanguages is the asynchronous form of Client.SupportedLanguages.
func (c *AsyncClient) SupportedLanguages(ctx context.Context, version int) <-chan Result[[]SupportedLanguage] {
	r, err := c.core.builder.buildSupportedLanguages(version)
	if err != nil {
		return failed[[]SupportedLanguage](err)
	}
	doer := c.acquire()
	return runAsync(func() ([]SupportedLanguage, error) {
		return call[[]SupportedLanguage](ctx, c.core, doer, r)
	})
}

// Translate is the asynchronous form of Client.Translate.
func (c *AsyncClient) Translate(ctx context.Context, req TranslateRequest) <-chan Result[*TranslationResponse] {
	r, err := c.core.builder.buildTranslate(req)
	if err != nil {
		return failed[*TranslationResponse](err)
	}
	doer := c.acquire()
	return runAsync(func() (*TranslationResponse, error) {
		resp, err := call[TranslationResponse](ctx, c.core, doer, r)
		if err != nil {
			return nil, err
		}
		return &resp, nil
	})
}

// Transcribe is the asynchronous form of Client.Transcribe.
func (c *AsyncClient) Transcribe(ctx context.Context, req TranscribeRequest) <-chan Result[*Transcription] {
	r, err := c.core.builder.buildTranscribe(req, false)
	if err != nil {
		return failed[*Transcription](err)
	}
	doer := c.acquire()
	return runAsync(func() (*Transcription, error) {
		resp, err := call[Transcription](ctx, c.core, doer, r)
		if err != nil {
			return nil, err
		}
		return &resp, nil
	})
}

// StreamTranscribe delivers segments on the returned channel, which is closed
// when the stream ends. An error is delivered as the last element. Cancelling
// ctx stops the stream and releases the connection.
func (c *AsyncClient) StreamTranscribe(ctx context.Context, req TranscribeRequest) <-chan StreamResult {
	r, err := c.core.builder.buildTranscribe(req, true)
	if err != nil {
		ch := make(chan StreamResult, 1)
		ch <- StreamResult{Err: err}
		close(ch)
		return ch
	}
	doer := c.acquire()
	out := make(chan StreamResult)
	go func() {
		defer close(out)
		for seg, err := range c.core.segments(ctx, doer, r) {
			select {
			case out <- StreamResult{Segment: seg, Err: err}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// SynthesizeSpeech is the asynchronous form of Client.SynthesizeSpeech.
func (c *AsyncClient) SynthesizeSpeech(ctx context.Context, req SpeechRequest) <-chan Result[[]byte] {
	r, err := c.core.builder.buildTextToSpeech(req)
	if err != nil {
		return failed[[]byte](err)
	}
	doer := c.acquire()
	return runAsync(func() ([]byte, error) {
		return c.core.callRaw(ctx, doer, r)
	})
}

// SynthesizeSpeechTo is the asynchronous form of Client.SynthesizeSpeechTo.
func (c *AsyncClient) SynthesizeSpeechTo(ctx context.Context, req SpeechRequest, sink SpeechSink) <-chan Result[string] {
	r, err := c.core.builder.buildTextToSpeech(req)
	if err != nil {
		return failed[string](err)
	}
	doer := c.acquire()
	return runAsync(func() (string, error) {
		audio, err := c.core.callRaw(ctx, doer, r)
		if err != nil {
			return "", err
		}
		return c.core.saveSpeech(ctx, audio, sink)
	})
}
