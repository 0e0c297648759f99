package djelia

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// classify maps a completed response to nil (200) or an *Error.
// It never fails on malformed bodies.
func classify(status int, body []byte) error {
	switch {
	case status == http.StatusOK:
		return nil
	case status == http.StatusUnauthorized:
		return &Error{
			Kind:       KindAuthentication,
			Message:    "Invalid API key or unauthorized access",
			StatusCode: status,
		}
	case status == http.StatusUnprocessableEntity:
		msg := "Validation error"
		if detail, ok := errorDetail(body); ok {
			msg = "Validation error: " + detail
		} else if isJSONObject(body) {
			msg = "Validation error: Validation failed"
		}
		return &Error{Kind: KindValidation, Message: msg, StatusCode: status}
	default:
		msg, ok := errorDetail(body)
		if !ok {
			msg = strings.TrimSpace(string(body))
		}
		if msg == "" {
			msg = "Unknown error"
		}
		return &Error{Kind: KindAPI, Message: msg, StatusCode: status}
	}
}

// errorDetail extracts the "detail" member of a JSON object body.
// Non-string details (FastAPI validation lists) are rendered as compact JSON.
func errorDetail(body []byte) (string, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return "", false
	}
	raw, ok := obj["detail"]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	return string(raw), true
}

func isJSONObject(body []byte) bool {
	var obj map[string]json.RawMessage
	return json.Unmarshal(body, &obj) == nil && obj != nil
}

// readResponse drains and closes resp.Body, then classifies it.
func readResponse(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError("read response body", err)
	}
	if err := classify(resp.StatusCode, body); err != nil {
		return nil, err
	}
	return body, nil
}

// decodeResponse classifies resp and decodes a 200 body into T.
func decodeResponse[T any](resp *http.Response) (T, error) {
	var result T
	body, err := readResponse(resp)
	if err != nil {
		return result, err
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return result, fmt.Errorf("decode response: %w", err)
	}
	return result, nil
}
