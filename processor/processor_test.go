package processor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"iter"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/djelia-org/djelia-go"
	"github.com/djelia-org/djelia-go/execution"
	"github.com/djelia-org/djelia-go/metrics"
	"github.com/djelia-org/djelia-go/redis"
)

func newTestProcessor(t *testing.T, service Service, sink djelia.SpeechSink) (*Processor, *MemoryHistory, *metrics.Metrics) {
	t.Helper()
	history := NewMemoryHistory()
	m := metrics.New(prometheus.NewRegistry())
	return New(service, history, sink, execution.NewManager(), m), history, m
}

func clip() djelia.Audio {
	return djelia.AudioReader(strings.NewReader("RIFF"), "clip.wav")
}

func TestTranslate_RecordsHistory(t *testing.T) {
	p, history, m := newTestProcessor(t, NewMockService(), nil)
	ctx := context.Background()

	resp, err := p.Translate(ctx, "u1", djelia.TranslateRequest{Text: "Hello", Source: "en", Target: "bam"})
	require.NoError(t, err)
	assert.Equal(t, "I ni ce", resp.Text)

	page, err := history.GetHistoryPaginated(ctx, "u1", 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Entries, 1)
	assert.Equal(t, "translate", page.Entries[0].Operation)
	assert.Equal(t, "en->bam: Hello", page.Entries[0].Input)
	assert.Equal(t, "I ni ce", page.Entries[0].Output)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("translate", "ok")))
}

func TestTranslate_ErrorNotRecorded(t *testing.T) {
	svc := NewMockService()
	svc.Err = &djelia.Error{Kind: djelia.KindAPI, Message: "down", StatusCode: 503}
	p, history, m := newTestProcessor(t, svc, nil)
	ctx := context.Background()

	_, err := p.Translate(ctx, "u1", djelia.TranslateRequest{Text: "Hello", Source: "en", Target: "bam"})
	assert.ErrorIs(t, err, djelia.ErrAPI)

	page, err := history.GetHistoryPaginated(ctx, "u1", 1, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Entries)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("translate", "api")))
}

type failingHistory struct{ MemoryHistory }

func (f *failingHistory) AddEntry(context.Context, string, redis.Entry) (redis.Entry, error) {
	return redis.Entry{}, errors.New("redis down")
}

func TestHistoryFailureDoesNotFailCall(t *testing.T) {
	p := New(NewMockService(), &failingHistory{}, nil, nil, nil)

	resp, err := p.Translate(context.Background(), "u1", djelia.TranslateRequest{Text: "Hello", Source: "en", Target: "bam"})
	require.NoError(t, err)
	assert.Equal(t, "I ni ce", resp.Text)
}

func TestTranscribe(t *testing.T) {
	p, history, _ := newTestProcessor(t, NewMockService(), nil)
	ctx := context.Background()

	tr, err := p.Transcribe(ctx, "u1", djelia.TranscribeRequest{Audio: clip()})
	require.NoError(t, err)
	assert.Len(t, tr.Segments, 2)

	tr, err = p.Transcribe(ctx, "u1", djelia.TranscribeRequest{Audio: clip(), TranslateToFrench: true})
	require.NoError(t, err)
	assert.Equal(t, "Bonjour, comment vas-tu ?", tr.Text())

	page, err := history.GetHistoryPaginated(ctx, "u1", 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Entries, 2)
	assert.Equal(t, "clip.wav", page.Entries[0].Input)
	assert.Equal(t, "i ni ce i ka kene wa", page.Entries[0].Output)
}

func TestStreamTranscribe_WritesNDJSON(t *testing.T) {
	p, history, m := newTestProcessor(t, NewMockService(), nil)
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, p.StreamTranscribe(ctx, "u1", djelia.TranscribeRequest{Audio: clip()}, &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	var seg djelia.TranscriptSegment
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &seg))
	assert.Equal(t, djelia.TranscriptSegment{Text: "i ka kene wa", Start: 1.2, End: 2.5}, seg)

	page, err := history.GetHistoryPaginated(ctx, "u1", 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Entries, 1)
	assert.Equal(t, "transcribe_stream", page.Entries[0].Operation)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ActiveStreams))
}

func TestStreamTranscribe_Error(t *testing.T) {
	svc := NewMockService()
	svc.Err = &djelia.Error{Kind: djelia.KindAuthentication, Message: "Invalid API key or unauthorized access"}
	p, _, m := newTestProcessor(t, svc, nil)

	var buf bytes.Buffer
	err := p.StreamTranscribe(context.Background(), "u1", djelia.TranscribeRequest{Audio: clip()}, &buf)
	assert.ErrorIs(t, err, djelia.ErrAuthentication)
	assert.Empty(t, buf.String())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Requests.WithLabelValues("transcribe_stream", "authentication")))
}

type blockingService struct {
	*MockService
	started chan struct{}
}

func (b *blockingService) StreamTranscribe(ctx context.Context, _ djelia.TranscribeRequest) iter.Seq2[*djelia.TranscriptSegment, error] {
	return func(yield func(*djelia.TranscriptSegment, error) bool) {
		close(b.started)
		<-ctx.Done()
		yield(nil, ctx.Err())
	}
}

func TestStreamTranscribe_SupersededByNewerStream(t *testing.T) {
	svc := &blockingService{MockService: NewMockService(), started: make(chan struct{})}
	manager := execution.NewManager()
	blocking := New(svc, nil, nil, manager, nil)
	quick := New(NewMockService(), nil, nil, manager, nil)

	errCh := make(chan error, 1)
	go func() {
		errCh <- blocking.StreamTranscribe(context.Background(), "u1", djelia.TranscribeRequest{Audio: clip()}, &bytes.Buffer{})
	}()
	<-svc.started

	require.NoError(t, quick.StreamTranscribe(context.Background(), "u1", djelia.TranscribeRequest{Audio: clip()}, &bytes.Buffer{}))
	assert.ErrorIs(t, <-errCh, context.Canceled)
}

func TestStreamTranscribe_AnonymousStreamsIndependent(t *testing.T) {
	svc := &blockingService{MockService: NewMockService(), started: make(chan struct{})}
	manager := execution.NewManager()
	blocking := New(svc, nil, nil, manager, nil)
	quick := New(NewMockService(), nil, nil, manager, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() {
		errCh <- blocking.StreamTranscribe(ctx, "", djelia.TranscribeRequest{Audio: clip()}, &bytes.Buffer{})
	}()
	<-svc.started
	assert.Equal(t, 0, manager.Active())

	require.NoError(t, quick.StreamTranscribe(context.Background(), "", djelia.TranscribeRequest{Audio: clip()}, &bytes.Buffer{}))

	select {
	case err := <-errCh:
		t.Fatalf("anonymous stream ended early: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)
}

type scopedSink struct {
	MockSink
	speaker int
}

func (s *scopedSink) ForSpeaker(speaker int) djelia.SpeechSink {
	s.speaker = speaker
	return &s.MockSink
}

func TestSynthesize(t *testing.T) {
	p, history, _ := newTestProcessor(t, NewMockService(), nil)
	ctx := context.Background()

	result, err := p.Synthesize(ctx, "u1", djelia.NewSpeechRequest("Aw ni ce"))
	require.NoError(t, err)
	assert.Equal(t, []byte("RIFF0000WAVEfmt "), result.Audio)
	assert.Empty(t, result.URL)

	page, err := history.GetHistoryPaginated(ctx, "u1", 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Entries, 1)
	assert.Equal(t, "16 bytes", page.Entries[0].Output)
}

func TestSynthesize_WithSink(t *testing.T) {
	sink := &scopedSink{MockSink: MockSink{Ref: "https://voices/audio.wav"}}
	p, _, _ := newTestProcessor(t, NewMockService(), sink)

	req := djelia.NewSpeechRequest("Aw ni ce")
	req.Speaker = 3
	result, err := p.Synthesize(context.Background(), "u1", req)
	require.NoError(t, err)
	assert.Equal(t, "https://voices/audio.wav", result.URL)
	assert.Equal(t, 3, sink.speaker)
	assert.Len(t, sink.Saved, 1)
}

func TestSynthesize_SinkFailure(t *testing.T) {
	sink := &MockSink{Err: errors.New("bucket missing")}
	p, _, _ := newTestProcessor(t, NewMockService(), sink)

	_, err := p.Synthesize(context.Background(), "u1", djelia.NewSpeechRequest("x"))
	assert.ErrorContains(t, err, "bucket missing")
}

func TestHistoryDisabled(t *testing.T) {
	p := New(NewMockService(), nil, nil, nil, nil)
	ctx := context.Background()

	_, err := p.History(ctx, "u1", 1, 10)
	assert.ErrorIs(t, err, ErrHistoryDisabled)
	assert.ErrorIs(t, p.ClearHistory(ctx, "u1"), ErrHistoryDisabled)

	_, err = p.Translate(ctx, "u1", djelia.TranslateRequest{Text: "x", Source: "en", Target: "fr"})
	assert.NoError(t, err)
}

func TestClearHistory(t *testing.T) {
	p, _, _ := newTestProcessor(t, NewMockService(), nil)
	ctx := context.Background()

	_, err := p.Translate(ctx, "u1", djelia.TranslateRequest{Text: "x", Source: "en", Target: "fr"})
	require.NoError(t, err)
	require.NoError(t, p.ClearHistory(ctx, "u1"))

	page, err := p.History(ctx, "u1", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)
}

func TestUploadFilename(t *testing.T) {
	assert.Equal(t, "voice.mp3", UploadFilename("voice.mp3", "audio/wav"))
	assert.Equal(t, "voice.ogg", UploadFilename("/tmp/uploads/voice.ogg", ""))
	assert.Equal(t, "audio.mp3", UploadFilename("", "audio/mpeg"))
	assert.Equal(t, "audio.ogg", UploadFilename("blob", "audio/ogg; codecs=opus"))
	assert.Equal(t, "audio.wav", UploadFilename("", "application/octet-stream"))

	assert.True(t, IsAudioContent("audio/wav"))
	assert.True(t, IsAudioContent("video/mp4"))
	assert.False(t, IsAudioContent("text/plain"))
}
