package djelia

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDjelia serves the subset of the Djelia API the client uses.
func fakeDjelia(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/v1/models/translate", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(APIKeyHeader) != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusUnprocessableEntity)
			fmt.Fprint(w, `{"detail":"body is not json"}`)
			return
		}
		if body["text"] == "" {
			w.WriteHeader(http.StatusUnprocessableEntity)
			fmt.Fprint(w, `{"detail":"text is required"}`)
			return
		}
		if body["source"] != "eng_Latn" || body["target"] != "bam_Latn" {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprint(w, `{"detail":"unexpected language pair"}`)
			return
		}
		fmt.Fprint(w, `{"text":"I ni ce"}`)
	})

	mux.HandleFunc("GET /api/v1/models/translate/supported-languages", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"code":"bam_Latn","name":"Bambara"},{"code":"fra_Latn","name":"French"}]`)
	})

	transcribe := func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		if err != nil {
			w.WriteHeader(http.StatusUnprocessableEntity)
			fmt.Fprint(w, `{"detail":"file is required"}`)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		if string(data) != "RIFF" || header.Filename != "clip.wav" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if r.URL.Query().Get("translate_to_french") == "true" {
			fmt.Fprint(w, `{"text":"Bonjour"}`)
			return
		}
		fmt.Fprint(w, `[{"text":"i ni ce","start":0,"end":1.5},{"text":"i ka kene","start":1.5,"end":3}]`)
	}
	mux.HandleFunc("POST /api/v1/models/transcribe", transcribe)
	mux.HandleFunc("POST /api/v2/models/transcribe", transcribe)

	mux.HandleFunc("POST /api/v2/models/transcribe/stream", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/x-ndjson")
		fmt.Fprintln(w, `{"text":"i ni ce","start":0,"end":1}`)
		fmt.Fprintln(w, ``)
		fmt.Fprintln(w, `partial garbage`)
		fmt.Fprintln(w, `{"text":"i ka kene","start":1,"end":2}`)
		fmt.Fprint(w, `{"text":"tail","start":2,"end":3}`)
	})

	mux.HandleFunc("POST /api/v1/models/transcribe/stream", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprint(w, `{"detail":"stream unavailable"}`)
	})

	mux.HandleFunc("POST /api/v1/models/tts", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["speaker"] != float64(1) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		w.Header().Set("Content-Type", "audio/wav")
		fmt.Fprint(w, "WAVDATA")
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newServerClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := NewClient("test-key",
		WithBaseURL(srv.URL),
		WithHTTPClient(srv.Client()),
		WithLogger(zerolog.Nop()),
	)
	require.NoError(t, err)
	return c
}

func clip() Audio {
	return AudioReader(strings.NewReader("RIFF"), "clip.wav")
}

func TestClient_Translate(t *testing.T) {
	c := newServerClient(t, fakeDjelia(t))

	resp, err := c.Translate(context.Background(), TranslateRequest{Text: "Hello", Source: "en", Target: "bam", Version: 1})
	require.NoError(t, err)
	assert.Equal(t, "I ni ce", resp.Text)
}

func TestClient_Translate_Errors(t *testing.T) {
	srv := fakeDjelia(t)
	c := newServerClient(t, srv)
	ctx := context.Background()

	_, err := c.Translate(ctx, TranslateRequest{Source: "en", Target: "bam"})
	e := requireKind(t, err, KindValidation)
	assert.Equal(t, "Validation error: text is required", e.Message)

	_, err = c.Translate(ctx, TranslateRequest{Text: "x", Source: "fr", Target: "bam"})
	e = requireKind(t, err, KindAPI)
	assert.Equal(t, 400, e.StatusCode)
	assert.Equal(t, "unexpected language pair", e.Message)

	bad, err := NewClient("wrong-key", WithBaseURL(srv.URL), WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	_, err = bad.Translate(ctx, TranslateRequest{Text: "x", Source: "en", Target: "bam"})
	requireKind(t, err, KindAuthentication)
}

func TestClient_SupportedLanguages(t *testing.T) {
	c := newServerClient(t, fakeDjelia(t))

	langs, err := c.SupportedLanguages(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []SupportedLanguage{
		{Code: "bam_Latn", Name: "Bambara"},
		{Code: "fra_Latn", Name: "French"},
	}, langs)
}

func TestClient_Transcribe(t *testing.T) {
	c := newServerClient(t, fakeDjelia(t))
	ctx := context.Background()

	tr, err := c.Transcribe(ctx, TranscribeRequest{Audio: clip(), Version: 2})
	require.NoError(t, err)
	require.Len(t, tr.Segments, 2)
	assert.Nil(t, tr.French)
	assert.Equal(t, TranscriptSegment{Text: "i ka kene", Start: 1.5, End: 3}, tr.Segments[1])
	assert.Equal(t, "i ni ce i ka kene", tr.Text())

	tr, err = c.Transcribe(ctx, TranscribeRequest{Audio: clip(), TranslateToFrench: true})
	require.NoError(t, err)
	require.NotNil(t, tr.French)
	assert.Equal(t, "Bonjour", tr.French.Text)
	assert.Empty(t, tr.Segments)
}

func TestClient_StreamTranscribe(t *testing.T) {
	c := newServerClient(t, fakeDjelia(t))

	var got []string
	for seg, err := range c.StreamTranscribe(context.Background(), TranscribeRequest{Audio: clip(), Version: 2}) {
		require.NoError(t, err)
		got = append(got, seg.Text)
	}
	assert.Equal(t, []string{"i ni ce", "i ka kene", "tail"}, got)
}

func TestClient_StreamTranscribe_ServiceError(t *testing.T) {
	c := newServerClient(t, fakeDjelia(t))

	var errs []error
	for seg, err := range c.StreamTranscribe(context.Background(), TranscribeRequest{Audio: clip()}) {
		assert.Nil(t, seg)
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	e := requireKind(t, errs[0], KindAPI)
	assert.Equal(t, 503, e.StatusCode)
	assert.Equal(t, "stream unavailable", e.Message)
}

func TestClient_SynthesizeSpeech(t *testing.T) {
	c := newServerClient(t, fakeDjelia(t))
	ctx := context.Background()

	audio, err := c.SynthesizeSpeech(ctx, NewSpeechRequest("Aw ni ce"))
	require.NoError(t, err)
	assert.Equal(t, []byte("WAVDATA"), audio)

	path := filepath.Join(t.TempDir(), "out.wav")
	ref, err := c.SynthesizeSpeechTo(ctx, NewSpeechRequest("Aw ni ce"), FileSink(path))
	require.NoError(t, err)
	assert.Equal(t, path, ref)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "WAVDATA", string(data))
}

func TestClient_SynthesizeSpeechTo_SinkFailure(t *testing.T) {
	c := newServerClient(t, fakeDjelia(t))

	path := filepath.Join(t.TempDir(), "missing-dir", "out.wav")
	_, err := c.SynthesizeSpeechTo(context.Background(), NewSpeechRequest("x"), FileSink(path))
	e := requireKind(t, err, KindTransport)
	assert.Contains(t, e.Message, "failed to save audio file")
}

func TestClient_MalformedSuccessBody(t *testing.T) {
	doer := &countingDoer{respond: func(*http.Request) (*http.Response, error) {
		return jsonResponse(200, `<html>oops</html>`), nil
	}}
	c := newTestClient(t, doer)

	_, err := c.Translate(context.Background(), TranslateRequest{Text: "x", Source: "en", Target: "fr"})
	require.Error(t, err)
	_, isDomain := AsError(err)
	assert.False(t, isDomain)
}

func TestClient_TransportFailure(t *testing.T) {
	doer := &countingDoer{respond: func(*http.Request) (*http.Response, error) {
		return nil, fmt.Errorf("dial tcp: connection refused")
	}}
	c := newTestClient(t, doer)

	_, err := c.SupportedLanguages(context.Background(), 1)
	requireKind(t, err, KindTransport)
	assert.Equal(t, 1, doer.Calls())
}

func TestClient_ContextCancelled(t *testing.T) {
	c := newServerClient(t, fakeDjelia(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Translate(ctx, TranslateRequest{Text: "x", Source: "en", Target: "bam"})
	requireKind(t, err, KindTransport)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClient_StreamOutlivesTimeout(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v2/models/transcribe/stream", func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		for i := range 4 {
			fmt.Fprintf(w, `{"text":"seg %d","start":%d,"end":%d}`+"\n", i, i, i+1)
			flusher.Flush()
			time.Sleep(150 * time.Millisecond)
		}
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := NewClient("test-key",
		WithBaseURL(srv.URL),
		WithTimeout(300*time.Millisecond),
		WithLogger(zerolog.Nop()),
	)
	require.NoError(t, err)

	var got []string
	for seg, err := range c.StreamTranscribe(context.Background(), TranscribeRequest{Audio: clip(), Version: 2}) {
		require.NoError(t, err)
		got = append(got, seg.Text)
	}
	assert.Equal(t, []string{"seg 0", "seg 1", "seg 2", "seg 3"}, got)
}

func TestClient_TimeoutBoundsNonStreamingCall(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/models/tts", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "audio/wav")
		w.(http.Flusher).Flush()
		time.Sleep(300 * time.Millisecond)
		fmt.Fprint(w, "WAVDATA")
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := NewClient("test-key",
		WithBaseURL(srv.URL),
		WithTimeout(50*time.Millisecond),
		WithLogger(zerolog.Nop()),
	)
	require.NoError(t, err)

	_, err = c.SynthesizeSpeech(context.Background(), NewSpeechRequest("Aw ni ce"))
	requireKind(t, err, KindTransport)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
