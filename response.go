package webpoet

import (
	"fmt"
	"sync"

	"github.com/tidwall/gjson"

	"github.com/victor-torres/web-poet/internal/charset"
)

// Selectable is the queryable-document capability: anything that can feed
// a selector engine exposes its decoded text. Query evaluation itself
// (XPath, CSS) lives outside this module.
type Selectable interface {
	SelectorInput() string
}

// HttpResponse is a fully materialized HTTP response: URL after
// redirects, raw body bytes, and optionally status, headers and an
// explicit encoding. The inputs are fixed at construction; Encoding, Text
// and JSON are derived lazily and cached, and computing them is safe under
// concurrent first access.
type HttpResponse struct {
	url              ResponseURL
	body             HttpResponseBody
	status           int
	hasStatus        bool
	headers          HttpResponseHeaders
	explicitEncoding string

	resolveOnce sync.Once
	resolution  charset.Resolution

	jsonOnce sync.Once
	jsonVal  any
	jsonErr  error
}

// ResponseOption configures optional HttpResponse fields.
type ResponseOption func(*responseConfig)

type responseConfig struct {
	status     int
	hasStatus  bool
	headers    any
	headersSet bool
	encoding   string
}

// WithStatus sets the integer status code of the response.
func WithStatus(status int) ResponseOption {
	return func(c *responseConfig) { c.status = status; c.hasStatus = true }
}

// WithResponseHeaders sets the response headers from a loosely-typed
// input; see asResponseHeaders for the accepted forms.
func WithResponseHeaders(v any) ResponseOption {
	return func(c *responseConfig) { c.headers = v; c.headersSet = true }
}

// WithEncoding forces the response encoding. The label is trusted
// verbatim, even when it decodes the body visibly wrong; pass it only when
// the true encoding is known out of band.
func WithEncoding(encoding string) ResponseOption {
	return func(c *responseConfig) { c.encoding = encoding }
}

// NewHttpResponse builds a response from a loosely-typed URL (string,
// RequestURL or ResponseURL) and body bytes. Headers and status are
// optional: a response read from a local file has neither. Unsupported
// input types fail with an error.
func NewHttpResponse(url any, body any, opts ...ResponseOption) (*HttpResponse, error) {
	var cfg responseConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	u, err := NewResponseURL(url)
	if err != nil {
		return nil, fmt.Errorf("response url: %w", err)
	}
	b, err := asResponseBody(body)
	if err != nil {
		return nil, fmt.Errorf("response body: %w", err)
	}
	resp := &HttpResponse{
		url:              u,
		body:             b,
		status:           cfg.status,
		hasStatus:        cfg.hasStatus,
		explicitEncoding: cfg.encoding,
	}
	if cfg.headersSet {
		h, err := asResponseHeaders(cfg.headers)
		if err != nil {
			return nil, fmt.Errorf("response headers: %w", err)
		}
		resp.headers = h
	} else {
		resp.headers = NewHttpResponseHeaders()
	}
	return resp, nil
}

// URL returns the response URL.
func (r *HttpResponse) URL() ResponseURL { return r.url }

// Body returns the raw response body.
func (r *HttpResponse) Body() HttpResponseBody { return r.body }

// Headers returns the response headers.
func (r *HttpResponse) Headers() HttpResponseHeaders { return r.headers }

// Status returns the status code and whether one was provided.
func (r *HttpResponse) Status() (int, bool) { return r.status, r.hasStatus }

// Encoding returns the resolved encoding label of the response: the
// explicit encoding if one was given, else the first recognized of header
// charset, body-declared charset, and inference from the bytes.
func (r *HttpResponse) Encoding() string { return r.resolve().Encoding }

// Text returns the body decoded with the resolved encoding. A leading BOM
// consistent with that encoding is stripped, and malformed sequences
// decode to the replacement character; Text never fails.
func (r *HttpResponse) Text() string { return r.resolve().Text }

// resolve runs the encoding cascade exactly once per response and caches
// the label and decoded text together, so Encoding and Text agree no
// matter which is read first.
func (r *HttpResponse) resolve() charset.Resolution {
	r.resolveOnce.Do(func() {
		contentType := r.headers.Get("Content-Type")
		r.resolution = charset.Resolve(r.explicitEncoding, contentType, r.body)
	})
	return r.resolution
}

// JSON deserializes the body as JSON. The result is memoized
// independently of the text/encoding cache; malformed input surfaces a
// position-bearing decode error.
func (r *HttpResponse) JSON() (any, error) {
	r.jsonOnce.Do(func() {
		r.jsonVal, r.jsonErr = r.body.JSON()
	})
	return r.jsonVal, r.jsonErr
}

// JSONPath looks up a gjson path in the JSON body, e.g. "items.0.name".
// Convenience for poking at API responses without decoding the whole
// document.
func (r *HttpResponse) JSONPath(path string) gjson.Result {
	return gjson.GetBytes(r.body, path)
}

// SelectorInput exposes the decoded text as input for an external
// selector engine.
func (r *HttpResponse) SelectorInput() string { return r.Text() }

func (r *HttpResponse) String() string {
	return fmt.Sprintf("HttpResponse(%s)", r.url)
}
