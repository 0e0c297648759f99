package execution

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

type userStream struct {
	ctx    context.Context
	cancel context.CancelFunc
}

// Manager keeps at most one streaming transcription per user. Starting a new
// one cancels the previous stream, which releases its connection.
type Manager struct {
	streams map[string]*userStream
	mutex   sync.Mutex
}

func NewManager() *Manager {
	return &Manager{
		streams: make(map[string]*userStream),
	}
}

// Start derives a cancellable context from parent for userID, cancelling any
// stream the user already has running. The returned cleanup must be called
// when the stream ends.
func (m *Manager) Start(parent context.Context, userID string) (context.Context, func()) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if existing, exists := m.streams[userID]; exists {
		log.Info().Str("user_id", userID).Msg("Cancelling previous transcription stream for user")
		existing.cancel()
	}

	ctx, cancel := context.WithCancel(parent)
	stream := &userStream{ctx: ctx, cancel: cancel}
	m.streams[userID] = stream

	return ctx, func() { m.cleanup(userID, stream) }
}

func (m *Manager) cleanup(userID string, stream *userStream) {
	stream.cancel()

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if current, exists := m.streams[userID]; exists && current == stream {
		delete(m.streams, userID)
	}
}

// Active returns the number of running streams.
func (m *Manager) Active() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.streams)
}
