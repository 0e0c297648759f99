package server

import (
	"errors"
	"net/http"

	"github.com/invopop/jsonschema"

	"github.com/djelia-org/djelia-go"
	"github.com/djelia-org/djelia-go/processor"
)

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// speechBody keeps an absent speaker distinguishable from speaker 0.
type speechBody struct {
	Text    string `json:"text"`
	Speaker *int   `json:"speaker,omitempty"`
	Version int    `json:"version,omitempty"`
}

func (b speechBody) request() djelia.SpeechRequest {
	req := djelia.NewSpeechRequest(b.Text)
	if b.Speaker != nil {
		req.Speaker = *b.Speaker
	}
	req.Version = b.Version
	return req
}

// GenerateSchema creates a JSON schema for the given type T without
// references, so each document is self-contained.
func GenerateSchema[T any]() any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

var requestSchemas = map[string]any{
	"translate":  GenerateSchema[djelia.TranslateRequest](),
	"transcribe": GenerateSchema[djelia.TranscribeRequest](),
	"tts":        GenerateSchema[djelia.SpeechRequest](),
}

// errorStatus maps an operation error to an HTTP status and error code.
func errorStatus(err error) (int, ErrorDetail) {
	if errors.Is(err, processor.ErrHistoryDisabled) {
		return http.StatusServiceUnavailable, ErrorDetail{Code: "HISTORY_DISABLED", Message: err.Error()}
	}

	e, ok := djelia.AsError(err)
	if !ok {
		return http.StatusInternalServerError, ErrorDetail{Code: "INTERNAL_ERROR", Message: err.Error()}
	}

	detail := ErrorDetail{Message: e.Message}
	switch e.Kind {
	case djelia.KindAuthentication:
		detail.Code = "UNAUTHORIZED"
		return http.StatusUnauthorized, detail
	case djelia.KindValidation:
		detail.Code = "VALIDATION_ERROR"
		return http.StatusUnprocessableEntity, detail
	case djelia.KindLanguage:
		detail.Code = "UNSUPPORTED_LANGUAGE"
		return http.StatusBadRequest, detail
	case djelia.KindSpeaker:
		detail.Code = "INVALID_SPEAKER"
		return http.StatusBadRequest, detail
	case djelia.KindAPI:
		detail.Code = "UPSTREAM_ERROR"
		if e.StatusCode >= 400 {
			return e.StatusCode, detail
		}
		return http.StatusBadGateway, detail
	default:
		detail.Code = "TRANSPORT_ERROR"
		return http.StatusBadGateway, detail
	}
}
