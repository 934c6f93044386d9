package clickup

import (
	"bytes"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"
)

// PayloadPreviewLength is the number of characters of an offending payload
// kept on a DecodeError.
const PayloadPreviewLength = 500

// ErrEnvelope is returned when a response does not have the expected
// single-key envelope shape.
var ErrEnvelope = goerr.New("expected exactly one key at toplevel of response")

// DecodeError reports a response that could not be decoded into the record
// shape expected for an endpoint. Payload holds the beginning of a
// pretty-printed dump of the response for debugging.
type DecodeError struct {
	Path    string
	Payload string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode response of %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func newDecodeError(path string, body []byte, err error) *DecodeError {
	return &DecodeError{
		Path:    path,
		Payload: previewPayload(body),
		Err:     err,
	}
}

// previewPayload indents body and truncates it to PayloadPreviewLength characters.
func previewPayload(body []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		buf.Reset()
		buf.Write(body)
	}

	s := buf.String()
	if utf8.RuneCountInString(s) <= PayloadPreviewLength {
		return s
	}
	runes := []rune(s)
	return string(runes[:PayloadPreviewLength])
}
