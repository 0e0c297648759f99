package djelia

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"iter"
)

// DecodeStream lazily decodes a newline-delimited JSON body.
//
// Blank lines and lines that are not valid JSON are skipped without error:
// the service emits keep-alive and partial frames. A read failure is yielded
// once as a KindTransport error and ends the sequence.
//
// The body is closed when the sequence is exhausted, fails, or the consumer
// stops ranging early. The sequence cannot be restarted.
func DecodeStream(body io.ReadCloser) iter.Seq2[json.RawMessage, error] {
	return func(yield func(json.RawMessage, error) bool) {
		defer body.Close()

		reader := bufio.NewReader(body)
		for {
			line, err := reader.ReadBytes('\n')
			if len(line) > 0 {
				if record, ok := decodeLine(line); ok {
					if !yield(record, nil) {
						return
					}
				}
			}
			if err != nil {
				if !errors.Is(err, io.EOF) {
					yield(nil, transportError("read stream", err))
				}
				return
			}
		}
	}
}

func decodeLine(line []byte) (json.RawMessage, bool) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 || !json.Valid(line) {
		return nil, false
	}
	return json.RawMessage(line), true
}
