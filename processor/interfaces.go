package processor

import (
	"context"
	"iter"

	"github.com/djelia-org/djelia-go"
	"github.com/djelia-org/djelia-go/redis"
)

// Service is the part of djelia.Client the gateway calls.
type Service interface {
	SupportedLanguages(ctx context.Context, version int) ([]djelia.SupportedLanguage, error)
	Translate(ctx context.Context, req djelia.TranslateRequest) (*djelia.TranslationResponse, error)
	Transcribe(ctx context.Context, req djelia.TranscribeRequest) (*djelia.Transcription, error)
	StreamTranscribe(ctx context.Context, req djelia.TranscribeRequest) iter.Seq2[*djelia.TranscriptSegment, error]
	SynthesizeSpeech(ctx context.Context, req djelia.SpeechRequest) ([]byte, error)
}

// HistoryStore persists completed operations per user.
type HistoryStore interface {
	AddEntry(ctx context.Context, userID string, entry redis.Entry) (redis.Entry, error)
	GetHistoryPaginated(ctx context.Context, userID string, page, pageSize int) (redis.PaginatedEntries, error)
	ClearHistory(ctx context.Context, userID string) error
}

type speakerSink interface {
	ForSpeaker(speaker int) djelia.SpeechSink
}

var _ Service = (*djelia.Client)(nil)
var _ HistoryStore = (*redis.Client)(nil)
