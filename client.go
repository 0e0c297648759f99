package djelia

import (
	"context"
	"iter"
)

// Client is the blocking Djelia API client. Each call occupies the calling
// goroutine for the full round trip.
type Client struct {
	core *core
	http Doer
}

// NewClient creates a new Djelia API client.
//
// When apiKey is empty the DJELIA_API_KEY environment variable is used; if
// that is empty too a KindAuthentication error is returned.
//
// Example:
//
//	client, err := djelia.NewClient("")
//	client, err := djelia.NewClient("your-api-key", djelia.WithTimeout(2*time.Minute))
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	key, err := ResolveAPIKey(apiKey)
	if err != nil {
		return nil, err
	}
	cfg := newConfig(opts)
	c := &Client{core: newCore(key, cfg), http: cfg.httpClient}
	if c.http == nil {
		c.http = newHTTPClient(cfg.timeout)
	}
	return c, nil
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.core.builder.baseURL
}

// SupportedLanguages lists the languages the translation model accepts.
func (c *Client) SupportedLanguages(ctx context.Context, version int) ([]SupportedLanguage, error) {
	r, err := c.core.builder.buildSupportedLanguages(version)
	if err != nil {
		return nil, err
	}
	return call[[]SupportedLanguage](ctx, c.core, c.http, r)
}

// Translate translates req.Text between two supported languages.
func (c *Client) Translate(ctx context.Context, req TranslateRequest) (*TranslationResponse, error) {
	r, err := c.core.builder.buildTranslate(req)
	if err != nil {
		return nil, err
	}
	resp, err := call[TranslationResponse](ctx, c.core, c.http, r)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Transcribe uploads req.Audio and waits for the full transcription.
func (c *Client) Transcribe(ctx context.Context, req TranscribeRequest) (*Transcription, error) {
	r, err := c.core.builder.buildTranscribe(req, false)
	if err != nil {
		return nil, err
	}
	resp, err := call[Transcription](ctx, c.core, c.http, r)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// StreamTranscribe uploads req.Audio and yields segments as the service
// produces them.
//
// Parameters are validated immediately; a validation failure is the only
// element of the returned sequence and no request is sent. The connection is
// closed when iteration completes or breaks.
//
// Example:
//
//	for seg, err := range client.StreamTranscribe(ctx, req) {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Printf("%.2f-%.2f %s\n", seg.Start, seg.End, seg.Text)
//	}
func (c *Client) StreamTranscribe(ctx context.Context, req TranscribeRequest) iter.Seq2[*TranscriptSegment, error] {
	r, err := c.core.builder.buildTranscribe(req, true)
	if err != nil {
		return errSeq(err)
	}
	return c.core.segments(ctx, c.http, r)
}

// SynthesizeSpeech returns the raw audio for req.Text.
func (c *Client) SynthesizeSpeech(ctx context.Context, req SpeechRequest) ([]byte, error) {
	r, err := c.core.builder.buildTextToSpeech(req)
	if err != nil {
		return nil, err
	}
	return c.core.callRaw(ctx, c.http, r)
}

// SynthesizeSpeechTo synthesizes req and hands the audio to sink, returning
// the sink's reference (a file path for FileSink).
func (c *Client) SynthesizeSpeechTo(ctx context.Context, req SpeechRequest, sink SpeechSink) (string, error) {
	audio, err := c.SynthesizeSpeech(ctx, req)
	if err != nil {
		return "", err
	}
	return c.core.saveSpeech(ctx, audio, sink)
}
