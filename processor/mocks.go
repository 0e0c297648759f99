package processor

import (
	"context"
	"iter"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/djelia-org/djelia-go"
	"github.com/djelia-org/djelia-go/redis"
)

// MockService implements Service with canned results for local runs and tests.
type MockService struct {
	Languages   []djelia.SupportedLanguage
	Translation string
	Segments    []djelia.TranscriptSegment
	French      string
	Audio       []byte
	Err         error
}

func NewMockService() *MockService {
	return &MockService{
		Languages: []djelia.SupportedLanguage{
			{Code: "bam_Latn", Name: "Bambara"},
			{Code: "eng_Latn", Name: "English"},
			{Code: "fra_Latn", Name: "French"},
		},
		Translation: "I ni ce",
		Segments: []djelia.TranscriptSegment{
			{Text: "i ni ce", Start: 0, End: 1.2},
			{Text: "i ka kene wa", Start: 1.2, End: 2.5},
		},
		French: "Bonjour, comment vas-tu ?",
		Audio:  []byte("RIFF0000WAVEfmt "),
	}
}

func (m *MockService) SupportedLanguages(_ context.Context, _ int) ([]djelia.SupportedLanguage, error) {
	log.Debug().Msg("MOCK: listing supported languages")
	return m.Languages, m.Err
}

func (m *MockService) Translate(_ context.Context, req djelia.TranslateRequest) (*djelia.TranslationResponse, error) {
	log.Debug().Str("text", req.Text).Msg("MOCK: translating")
	if m.Err != nil {
		return nil, m.Err
	}
	return &djelia.TranslationResponse{Text: m.Translation}, nil
}

func (m *MockService) Transcribe(_ context.Context, req djelia.TranscribeRequest) (*djelia.Transcription, error) {
	log.Debug().Str("file", req.Audio.Filename()).Msg("MOCK: transcribing")
	if m.Err != nil {
		return nil, m.Err
	}
	if req.TranslateToFrench {
		return &djelia.Transcription{French: &djelia.FrenchTranscription{Text: m.French}}, nil
	}
	return &djelia.Transcription{Segments: m.Segments}, nil
}

func (m *MockService) StreamTranscribe(ctx context.Context, req djelia.TranscribeRequest) iter.Seq2[*djelia.TranscriptSegment, error] {
	return func(yield func(*djelia.TranscriptSegment, error) bool) {
		if m.Err != nil {
			yield(nil, m.Err)
			return
		}
		for i := range m.Segments {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			seg := m.Segments[i]
			if !yield(&seg, nil) {
				return
			}
		}
	}
}

func (m *MockService) SynthesizeSpeech(_ context.Context, req djelia.SpeechRequest) ([]byte, error) {
	log.Debug().Str("text", req.Text).Int("speaker", req.Speaker).Msg("MOCK: synthesizing")
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Audio, nil
}

// MemoryHistory implements HistoryStore in memory. It is used when no Redis
// address is configured.
type MemoryHistory struct {
	mu      sync.Mutex
	entries map[string][]redis.Entry
}

func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{
		entries: make(map[string][]redis.Entry),
	}
}

func (m *MemoryHistory) AddEntry(_ context.Context, userID string, entry redis.Entry) (redis.Entry, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[userID] = append(m.entries[userID], entry)
	return entry, nil
}

func (m *MemoryHistory) GetHistoryPaginated(_ context.Context, userID string, page, pageSize int) (redis.PaginatedEntries, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	m.mu.Lock()
	entries := append([]redis.Entry(nil), m.entries[userID]...)
	m.mu.Unlock()

	total := len(entries)
	result := redis.PaginatedEntries{
		Entries:    []redis.Entry{},
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: (total + pageSize - 1) / pageSize,
	}
	start := (page - 1) * pageSize
	if start < total {
		result.Entries = entries[start:min(start+pageSize, total)]
	}
	return result, nil
}

func (m *MemoryHistory) ClearHistory(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, userID)
	return nil
}

// MockSink records saved audio and returns a fixed reference.
type MockSink struct {
	mu    sync.Mutex
	Ref   string
	Err   error
	Saved [][]byte
}

func (m *MockSink) Save(_ context.Context, audio []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	m.Saved = append(m.Saved, audio)
	return m.Ref, nil
}
