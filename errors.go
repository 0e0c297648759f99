package djelia

import (
	"errors"
	"fmt"
)

// Kind classifies an Error.
type Kind string

const (
	// KindAuthentication means the credential is missing or was rejected.
	KindAuthentication Kind = "authentication"
	// KindValidation means an unsupported version or a request rejected by the service.
	KindValidation Kind = "validation"
	// KindAPI is any other non-200 response.
	KindAPI Kind = "api"
	// KindLanguage means an unsupported source or target language.
	KindLanguage Kind = "language"
	// KindSpeaker means an unknown speaker id.
	KindSpeaker Kind = "speaker"
	// KindTransport covers local file and network failures.
	KindTransport Kind = "transport"
)

// Sentinels for errors.Is. Only the Kind is compared.
var (
	ErrAuthentication = &Error{Kind: KindAuthentication}
	ErrValidation     = &Error{Kind: KindValidation}
	ErrAPI            = &Error{Kind: KindAPI}
	ErrLanguage       = &Error{Kind: KindLanguage}
	ErrSpeaker        = &Error{Kind: KindSpeaker}
	ErrTransport      = &Error{Kind: KindTransport}
)

// Error is a classified failure of a Djelia call.
type Error struct {
	// Kind is set once when the error is created.
	Kind Kind

	// Message is human readable.
	Message string

	// StatusCode is the HTTP status for KindAPI, KindValidation and
	// KindAuthentication errors produced from a response. Zero otherwise.
	StatusCode int

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Kind == KindAPI && e.StatusCode != 0 {
		return fmt.Sprintf("djelia: %s (status %d)", e.Message, e.StatusCode)
	}
	return "djelia: " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error of the same Kind, so that
// errors.Is(err, djelia.ErrLanguage) works for any language error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// AsError extracts *Error from an error.
//
// Example:
//
//	if e, ok := djelia.AsError(err); ok && e.Kind == djelia.KindAPI {
//	    log.Printf("service returned %d", e.StatusCode)
//	}
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func transportError(msg string, err error) *Error {
	return &Error{Kind: KindTransport, Message: fmt.Sprintf("%s: %v", msg, err), Err: err}
}
