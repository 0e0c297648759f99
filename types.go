package djelia

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// TranslateRequest is the input of Translate.
type TranslateRequest struct {
	Text    string `json:"text" jsonschema_description:"Text to translate"`
	Source  string `json:"source" jsonschema:"enum=fr,enum=en,enum=bam" jsonschema_description:"Public code of the source language"`
	Target  string `json:"target" jsonschema:"enum=fr,enum=en,enum=bam" jsonschema_description:"Public code of the target language"`
	Version int    `json:"version,omitempty" jsonschema_description:"API version, defaults to 1"`
}

// TranslationResponse is the translated text.
type TranslationResponse struct {
	Text string `json:"text"`
}

// SupportedLanguage is one entry of the supported-languages listing.
type SupportedLanguage struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// TranscribeRequest is the input of Transcribe and StreamTranscribe.
type TranscribeRequest struct {
	Audio             Audio `json:"-"`
	TranslateToFrench bool  `json:"translate_to_french,omitempty" jsonschema_description:"Return a French translation instead of segments"`
	Version           int   `json:"version,omitempty" jsonschema:"enum=1,enum=2" jsonschema_description:"API version, defaults to 1"`
}

// TranscriptSegment is a span of transcribed speech. Start and End are seconds.
type TranscriptSegment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// FrenchTranscription is returned when translate_to_french is set.
type FrenchTranscription struct {
	Text string `json:"text"`
}

// Transcription is the result of Transcribe. The service answers with a list of
// segments, or with a single French text when TranslateToFrench was requested.
type Transcription struct {
	Segments []TranscriptSegment  `json:"segments,omitempty"`
	French   *FrenchTranscription `json:"french,omitempty"`
}

// UnmarshalJSON accepts both response shapes.
func (t *Transcription) UnmarshalJSON(data []byte) error {
	var segments []TranscriptSegment
	if err := json.Unmarshal(data, &segments); err == nil {
		t.Segments = segments
		return nil
	}
	var single struct {
		TranscriptSegment
		Segments []TranscriptSegment `json:"segments"`
	}
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	if single.Segments != nil {
		t.Segments = single.Segments
		return nil
	}
	t.French = &FrenchTranscription{Text: single.Text}
	return nil
}

// Text joins all segment texts, or returns the French text.
func (t *Transcription) Text() string {
	if t.French != nil {
		return t.French.Text
	}
	texts := make([]string, 0, len(t.Segments))
	for _, s := range t.Segments {
		texts = append(texts, s.Text)
	}
	return strings.Join(texts, " ")
}

// SpeechRequest is the input of SynthesizeSpeech.
type SpeechRequest struct {
	Text    string `json:"text" jsonschema_description:"Text to speak"`
	Speaker int    `json:"speaker" jsonschema:"enum=0,enum=1,enum=2,enum=3,enum=4" jsonschema_description:"Voice id"`
	Version int    `json:"version,omitempty" jsonschema_description:"API version, defaults to 1"`
}

// NewSpeechRequest returns a request using DefaultSpeaker.
func NewSpeechRequest(text string) SpeechRequest {
	return SpeechRequest{Text: text, Speaker: DefaultSpeaker}
}

// Audio is the byte source of a transcription upload: either a file path,
// which is opened, read and closed by the client, or a caller-owned reader,
// which is read but never closed.
type Audio struct {
	path     string
	reader   io.Reader
	filename string
}

// AudioFile uploads the file at path.
func AudioFile(path string) Audio {
	return Audio{path: path, filename: filepath.Base(path)}
}

// AudioReader uploads the content of r under filename.
func AudioReader(r io.Reader, filename string) Audio {
	if filename == "" {
		filename = "audio.wav"
	}
	return Audio{reader: r, filename: filename}
}

// Filename is the name sent in the multipart part.
func (a Audio) Filename() string {
	return a.filename
}

// IsZero reports whether no source was set.
func (a Audio) IsZero() bool {
	return a.path == "" && a.reader == nil
}

// bytes reads the whole source.
func (a Audio) bytes() ([]byte, error) {
	if a.path != "" {
		f, err := os.Open(a.path)
		if err != nil {
			return nil, transportError("could not read audio file", err)
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, transportError("could not read audio file", err)
		}
		return data, nil
	}
	if a.reader == nil {
		return nil, newError(KindValidation, "audio source is required")
	}
	data, err := io.ReadAll(a.reader)
	if err != nil {
		return nil, transportError("could not read audio stream", err)
	}
	return data, nil
}

func (a Audio) String() string {
	if a.path != "" {
		return a.path
	}
	return fmt.Sprintf("reader(%s)", a.filename)
}
