package djelia

import (
	"context"
	"encoding/json"
	"iter"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// core is shared by Client and AsyncClient so both surfaces build, send and
// classify requests identically. Only the scheduling differs.
type core struct {
	builder requestBuilder
	logger  zerolog.Logger
	// timeout is zero when the caller supplied its own transport.
	timeout time.Duration
}

func newCore(apiKey string, cfg *clientConfig) *core {
	c := &core{
		builder: requestBuilder{
			baseURL:   cfg.baseURL,
			apiKey:    apiKey,
			userAgent: cfg.userAgent,
		},
		logger: cfg.logger,
	}
	if cfg.httpClient == nil {
		c.timeout = cfg.timeout
	}
	return c
}

// withDeadline bounds a non-streaming call, body included.
func (c *core) withDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

// send encodes r and hands it to the transport. Non-200 responses are
// returned as-is; callers classify them.
func (c *core) send(ctx context.Context, doer Doer, r *Request) (*http.Response, error) {
	httpReq, err := r.HTTPRequest(ctx)
	if err != nil {
		return nil, err
	}

	c.logger.Debug().
		Str("operation", string(r.Operation)).
		Str("method", r.Method).
		Str("url", r.URL).
		Str("body", r.Body.String()).
		Msg("Sending request to Djelia")

	start := time.Now()
	resp, err := doer.Do(httpReq)
	if err != nil {
		return nil, transportError("do request", err)
	}

	c.logger.Debug().
		Str("operation", string(r.Operation)).
		Int("status_code", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("Received response from Djelia")

	return resp, nil
}

// call sends r and decodes a 200 body into T.
func call[T any](ctx context.Context, c *core, doer Doer, r *Request) (T, error) {
	ctx, cancel := c.withDeadline(ctx)
	defer cancel()
	resp, err := c.send(ctx, doer, r)
	if err != nil {
		var zero T
		return zero, err
	}
	return decodeResponse[T](resp)
}

// callRaw sends r and returns the raw 200 body.
func (c *core) callRaw(ctx context.Context, doer Doer, r *Request) ([]byte, error) {
	ctx, cancel := c.withDeadline(ctx)
	defer cancel()
	resp, err := c.send(ctx, doer, r)
	if err != nil {
		return nil, err
	}
	return readResponse(resp)
}

// segments sends a streaming transcription request and decodes its records.
// Records that do not fit a segment are skipped like malformed lines.
func (c *core) segments(ctx context.Context, doer Doer, r *Request) iter.Seq2[*TranscriptSegment, error] {
	return func(yield func(*TranscriptSegment, error) bool) {
		resp, err := c.send(ctx, doer, r)
		if err != nil {
			yield(nil, err)
			return
		}
		if resp.StatusCode != http.StatusOK {
			_, err := readResponse(resp)
			yield(nil, err)
			return
		}

		count := 0
		for record, err := range DecodeStream(resp.Body) {
			if err != nil {
				yield(nil, err)
				return
			}
			var seg TranscriptSegment
			if json.Unmarshal(record, &seg) != nil {
				continue
			}
			count++
			if !yield(&seg, nil) {
				return
			}
		}
		c.logger.Debug().Int("segments", count).Msg("Djelia stream finished")
	}
}

func (c *core) saveSpeech(ctx context.Context, audio []byte, sink SpeechSink) (string, error) {
	ref, err := sink.Save(ctx, audio)
	if err != nil {
		return "", err
	}
	c.logger.Debug().Str("ref", ref).Int("audio_size_bytes", len(audio)).Msg("Saved synthesized speech")
	return ref, nil
}

// errSeq yields a single error.
func errSeq(err error) iter.Seq2[*TranscriptSegment, error] {
	return func(yield func(*TranscriptSegment, error) bool) {
		yield(nil, err)
	}
}
