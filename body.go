package webpoet

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/victor-torres/web-poet/internal/charset"
)

// HttpRequestBody holds the raw bytes of a request body. Treat it as
// immutable: it is shared between the composite and its readers.
type HttpRequestBody []byte

// HttpResponseBody holds the raw bytes of a response body. Treat it as
// immutable; decoding to text is the response's job, driven by the
// resolved encoding.
type HttpResponseBody []byte

// Bytes returns the underlying bytes.
func (b HttpRequestBody) Bytes() []byte { return []byte(b) }

// Bytes returns the underlying bytes.
func (b HttpResponseBody) Bytes() []byte { return []byte(b) }

// Contains reports whether sub occurs within the body.
func (b HttpRequestBody) Contains(sub []byte) bool { return bytes.Contains(b, sub) }

// Contains reports whether sub occurs within the body.
func (b HttpResponseBody) Contains(sub []byte) bool { return bytes.Contains(b, sub) }

// DeclaredEncoding returns the charset declared inside the body itself —
// an HTML meta tag or XML declaration within the leading bytes — or empty
// when none is found or the label is unrecognized.
func (b HttpResponseBody) DeclaredEncoding() string {
	return charset.BodyDeclaredEncoding(b)
}

// JSON deserializes the body as a JSON document. Malformed input yields a
// *json.SyntaxError carrying the byte offset of the problem.
func (b HttpResponseBody) JSON() (any, error) {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("decode json body: %w", err)
	}
	return v, nil
}

// asRequestBody coerces a loosely-typed body input. Bytes are accepted;
// a Go string is rejected on purpose — callers must be explicit about the
// bytes they put on the wire.
func asRequestBody(v any) (HttpRequestBody, error) {
	switch b := v.(type) {
	case nil:
		return nil, fmt.Errorf("request body must be bytes, got nil")
	case HttpRequestBody:
		return b, nil
	case []byte:
		return HttpRequestBody(b), nil
	default:
		return nil, fmt.Errorf("request body must be bytes, got %T", v)
	}
}

func asResponseBody(v any) (HttpResponseBody, error) {
	switch b := v.(type) {
	case nil:
		return nil, fmt.Errorf("response body must be bytes, got nil")
	case HttpResponseBody:
		return b, nil
	case []byte:
		return HttpResponseBody(b), nil
	default:
		return nil, fmt.Errorf("response body must be bytes, got %T", v)
	}
}
