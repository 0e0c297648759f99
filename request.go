package djelia

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// BodyKind is the encoding of a Request body.
type BodyKind int

const (
	BodyNone BodyKind = iota
	BodyJSON
	BodyMultipart
)

func (k BodyKind) String() string {
	switch k {
	case BodyJSON:
		return "json"
	case BodyMultipart:
		return "multipart"
	default:
		return "none"
	}
}

// FilePart is the single file field of a multipart body.
type FilePart struct {
	Field string
	Audio Audio
}

// Request describes one outbound call. It is built after all pre-flight
// validation has passed and is consumed once by the transport.
type Request struct {
	Operation Operation
	Method    string
	URL       string
	Header    http.Header
	Body      BodyKind
	JSON      any
	File      *FilePart
}

// requestBuilder validates parameters against the capability tables and
// produces Requests. It performs no I/O.
type requestBuilder struct {
	baseURL   string
	apiKey    string
	userAgent string
}

func (b *requestBuilder) newRequest(op Operation, version int, method string, query url.Values) (*Request, error) {
	path, ok := ResolvePath(op, version)
	if !ok {
		return nil, newError(KindValidation,
			"version %d is not supported for %s; supported versions: %v", version, op, SupportedVersions(op))
	}
	u := strings.TrimRight(b.baseURL, "/") + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	header := make(http.Header)
	header.Set(APIKeyHeader, b.apiKey)
	if b.userAgent != "" {
		header.Set("User-Agent", b.userAgent)
	}
	return &Request{
		Operation: op,
		Method:    method,
		URL:       u,
		Header:    header,
	}, nil
}

func (b *requestBuilder) buildSupportedLanguages(version int) (*Request, error) {
	return b.newRequest(OpSupportedLanguages, versionOrDefault(version), http.MethodGet, nil)
}

func (b *requestBuilder) buildTranslate(req TranslateRequest) (*Request, error) {
	source, ok := WireCode(req.Source)
	if !ok {
		return nil, newError(KindLanguage,
			"source language '%s' not supported. Must be one of %v", req.Source, Languages())
	}
	target, ok := WireCode(req.Target)
	if !ok {
		return nil, newError(KindLanguage,
			"target language '%s' not supported. Must be one of %v", req.Target, Languages())
	}
	r, err := b.newRequest(OpTranslate, versionOrDefault(req.Version), http.MethodPost, nil)
	if err != nil {
		return nil, err
	}
	r.Body = BodyJSON
	r.JSON = translateBody{Text: req.Text, Source: source, Target: target}
	r.Header.Set("Content-Type", "application/json")
	return r, nil
}

type translateBody struct {
	Text   string `json:"text"`
	Source string `json:"source"`
	Target string `json:"target"`
}

func (b *requestBuilder) buildTranscribe(req TranscribeRequest, stream bool) (*Request, error) {
	op := OpTranscribe
	if stream {
		op = OpTranscribeStream
	}
	if req.Audio.IsZero() {
		return nil, newError(KindValidation, "audio source is required")
	}
	query := url.Values{}
	// The service expects the literal strings "true"/"false".
	query.Set("translate_to_french", strconv.FormatBool(req.TranslateToFrench))
	r, err := b.newRequest(op, versionOrDefault(req.Version), http.MethodPost, query)
	if err != nil {
		return nil, err
	}
	r.Body = BodyMultipart
	r.File = &FilePart{Field: "file", Audio: req.Audio}
	return r, nil
}

func (b *requestBuilder) buildTextToSpeech(req SpeechRequest) (*Request, error) {
	if !IsValidSpeaker(req.Speaker) {
		return nil, newError(KindSpeaker, "speaker ID must be one of %v, got %d", Speakers(), req.Speaker)
	}
	r, err := b.newRequest(OpTextToSpeech, versionOrDefault(req.Version), http.MethodPost, nil)
	if err != nil {
		return nil, err
	}
	r.Body = BodyJSON
	r.JSON = speechBody{Text: req.Text, Speaker: req.Speaker}
	r.Header.Set("Content-Type", "application/json")
	return r, nil
}

type speechBody struct {
	Text    string `json:"text"`
	Speaker int    `json:"speaker"`
}

// HTTPRequest encodes the body and returns a request ready for the transport.
// File-path audio is read fully and closed here.
func (r *Request) HTTPRequest(ctx context.Context) (*http.Request, error) {
	var body io.Reader
	header := r.Header.Clone()

	switch r.Body {
	case BodyJSON:
		data, err := json.Marshal(r.JSON)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
	case BodyMultipart:
		data, err := r.File.Audio.bytes()
		if err != nil {
			return nil, err
		}
		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		part, err := writer.CreateFormFile(r.File.Field, r.File.Audio.Filename())
		if err != nil {
			return nil, fmt.Errorf("create form file: %w", err)
		}
		if _, err := part.Write(data); err != nil {
			return nil, fmt.Errorf("write form file: %w", err)
		}
		if err := writer.Close(); err != nil {
			return nil, fmt.Errorf("close multipart writer: %w", err)
		}
		header.Set("Content-Type", writer.FormDataContentType())
		body = &buf
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header = header
	return req, nil
}
