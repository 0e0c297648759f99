package processor

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SpeechResult carries synthesized audio, or its URL when a sink stored it.
type SpeechResult struct {
	Audio []byte `json:"-"`
	URL   string `json:"url,omitempty"`
	Size  int    `json:"size"`
}

// UploadFilename picks the filename sent to the transcription service.
// The client's filename wins; otherwise the extension follows contentType.
func UploadFilename(name, contentType string) string {
	if name = filepath.Base(name); name != "." && name != "/" && strings.Contains(name, ".") {
		return name
	}
	return fmt.Sprintf("audio%s", extensionFromContentType(contentType))
}

func extensionFromContentType(contentType string) string {
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/wav", "audio/wave", "audio/x-wav":
		return ".wav"
	case "audio/ogg":
		return ".ogg"
	case "audio/aac":
		return ".aac"
	case "audio/flac":
		return ".flac"
	case "audio/m4a", "audio/mp4":
		return ".m4a"
	case "audio/webm", "video/webm":
		return ".webm"
	case "video/mp4":
		return ".mp4"
	default:
		return ".wav"
	}
}

// IsAudioContent checks if the content type represents audio or video.
func IsAudioContent(contentType string) bool {
	contentType = strings.ToLower(contentType)
	return strings.HasPrefix(contentType, "audio/") ||
		strings.HasPrefix(contentType, "video/") ||
		contentType == "application/octet-stream"
}
