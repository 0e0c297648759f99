package processor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/djelia-org/djelia-go"
	"github.com/djelia-org/djelia-go/execution"
	"github.com/djelia-org/djelia-go/metrics"
	"github.com/djelia-org/djelia-go/redis"
)

// ErrHistoryDisabled is returned by the history operations when no store is configured.
var ErrHistoryDisabled = errors.New("history store is not configured")

type Processor struct {
	service          Service
	history          HistoryStore
	sink             djelia.SpeechSink
	executionManager *execution.Manager
	metrics          *metrics.Metrics
}

// New creates a processor. history, sink and m may be nil.
func New(service Service, history HistoryStore, sink djelia.SpeechSink, execManager *execution.Manager, m *metrics.Metrics) *Processor {
	if execManager == nil {
		execManager = execution.NewManager()
	}
	return &Processor{
		service:          service,
		history:          history,
		sink:             sink,
		executionManager: execManager,
		metrics:          m,
	}
}

func (p *Processor) Languages(ctx context.Context, version int) ([]djelia.SupportedLanguage, error) {
	start := time.Now()
	langs, err := p.service.SupportedLanguages(ctx, version)
	p.observe(djelia.OpSupportedLanguages, start, err)
	return langs, err
}

func (p *Processor) Translate(ctx context.Context, userID string, req djelia.TranslateRequest) (*djelia.TranslationResponse, error) {
	start := time.Now()
	resp, err := p.service.Translate(ctx, req)
	p.observe(djelia.OpTranslate, start, err)
	if err != nil {
		return nil, err
	}

	p.record(ctx, userID, djelia.OpTranslate,
		fmt.Sprintf("%s->%s: %s", req.Source, req.Target, req.Text), resp.Text)
	return resp, nil
}

func (p *Processor) Transcribe(ctx context.Context, userID string, req djelia.TranscribeRequest) (*djelia.Transcription, error) {
	start := time.Now()
	resp, err := p.service.Transcribe(ctx, req)
	p.observe(djelia.OpTranscribe, start, err)
	if err != nil {
		return nil, err
	}

	p.record(ctx, userID, djelia.OpTranscribe, req.Audio.Filename(), resp.Text())
	return resp, nil
}

// StreamTranscribe writes each segment to w as one JSON line. A newer stream
// for the same user cancels this one; that case returns context.Canceled.
// Anonymous streams never supersede each other.
func (p *Processor) StreamTranscribe(ctx context.Context, userID string, req djelia.TranscribeRequest, w io.Writer) error {
	var done func()
	if userID != "" {
		ctx, done = p.executionManager.Start(ctx, userID)
	} else {
		ctx, done = context.WithCancel(ctx)
	}
	defer done()

	if p.metrics != nil {
		p.metrics.ActiveStreams.Inc()
		defer p.metrics.ActiveStreams.Dec()
	}

	start := time.Now()
	enc := json.NewEncoder(w)
	flusher, _ := w.(interface{ Flush() error })

	var texts []string
	var streamErr error
	for seg, err := range p.service.StreamTranscribe(ctx, req) {
		if err != nil {
			streamErr = err
			break
		}
		if err := enc.Encode(seg); err != nil {
			streamErr = fmt.Errorf("write segment: %w", err)
			break
		}
		if flusher != nil {
			if err := flusher.Flush(); err != nil {
				streamErr = fmt.Errorf("flush segment: %w", err)
				break
			}
		}
		texts = append(texts, seg.Text)
	}
	if streamErr == nil && ctx.Err() != nil {
		streamErr = ctx.Err()
	}
	p.observe(djelia.OpTranscribeStream, start, streamErr)

	if streamErr != nil {
		if errors.Is(streamErr, context.Canceled) {
			log.Info().Str("user_id", userID).Int("segments", len(texts)).Msg("Transcription stream cancelled")
		}
		return streamErr
	}

	log.Info().Str("user_id", userID).Int("segments", len(texts)).Msg("Completed transcription stream")
	p.record(ctx, userID, djelia.OpTranscribeStream, req.Audio.Filename(), strings.Join(texts, " "))
	return nil
}

// Synthesize returns the audio, or its URL when a sink is configured.
func (p *Processor) Synthesize(ctx context.Context, userID string, req djelia.SpeechRequest) (*SpeechResult, error) {
	start := time.Now()
	audio, err := p.service.SynthesizeSpeech(ctx, req)
	if err != nil {
		p.observe(djelia.OpTextToSpeech, start, err)
		return nil, err
	}

	result := &SpeechResult{Audio: audio, Size: len(audio)}
	if p.sink != nil {
		sink := p.sink
		if scoped, ok := sink.(speakerSink); ok {
			sink = scoped.ForSpeaker(req.Speaker)
		}
		url, err := sink.Save(ctx, audio)
		if err != nil {
			p.observe(djelia.OpTextToSpeech, start, err)
			return nil, err
		}
		result.URL = url
	}
	p.observe(djelia.OpTextToSpeech, start, nil)

	output := result.URL
	if output == "" {
		output = fmt.Sprintf("%d bytes", len(audio))
	}
	p.record(ctx, userID, djelia.OpTextToSpeech, req.Text, output)
	return result, nil
}

func (p *Processor) History(ctx context.Context, userID string, page, pageSize int) (redis.PaginatedEntries, error) {
	if p.history == nil {
		return redis.PaginatedEntries{}, ErrHistoryDisabled
	}
	return p.history.GetHistoryPaginated(ctx, userID, page, pageSize)
}

func (p *Processor) ClearHistory(ctx context.Context, userID string) error {
	if p.history == nil {
		return ErrHistoryDisabled
	}
	return p.history.ClearHistory(ctx, userID)
}

// record stores a history entry. Failures are logged only.
func (p *Processor) record(ctx context.Context, userID string, op djelia.Operation, input, output string) {
	if p.history == nil || userID == "" {
		return
	}
	_, err := p.history.AddEntry(context.WithoutCancel(ctx), userID, redis.Entry{
		Operation: string(op),
		Input:     input,
		Output:    output,
	})
	if err != nil {
		log.Error().
			Err(err).
			Str("user_id", userID).
			Str("operation", string(op)).
			Msg("Error storing history entry")
	}
}

func (p *Processor) observe(op djelia.Operation, start time.Time, err error) {
	if p.metrics != nil {
		p.metrics.Observe(op, start, err)
	}
}
