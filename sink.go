package djelia

import (
	"context"
	"os"
)

// SpeechSink stores synthesized audio and returns a reference to it.
type SpeechSink interface {
	Save(ctx context.Context, audio []byte) (string, error)
}

// FileSink writes audio to a local path and returns that path.
type FileSink string

// Save implements SpeechSink.
func (p FileSink) Save(_ context.Context, audio []byte) (string, error) {
	if err := os.WriteFile(string(p), audio, 0o644); err != nil {
		return "", transportError("failed to save audio file", err)
	}
	return string(p), nil
}
