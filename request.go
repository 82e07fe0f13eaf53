package webpoet

import "fmt"

// HttpRequest is a generic HTTP request as consumed by the extraction
// layer: a URL, a method, headers and a body. All fields are fixed at
// construction.
type HttpRequest struct {
	url     RequestURL
	method  string
	headers HttpRequestHeaders
	body    HttpRequestBody
}

// RequestOption configures optional HttpRequest fields.
type RequestOption func(*requestConfig)

type requestConfig struct {
	method     string
	headers    any
	headersSet bool
	body       any
	bodySet    bool
}

// WithMethod sets the request method. The default is GET.
func WithMethod(method string) RequestOption {
	return func(c *requestConfig) { c.method = method }
}

// WithRequestHeaders sets the request headers from a loosely-typed input;
// see asRequestHeaders for the accepted forms.
func WithRequestHeaders(v any) RequestOption {
	return func(c *requestConfig) { c.headers = v; c.headersSet = true }
}

// WithRequestBody sets the request body from bytes. A Go string is
// rejected with a type error.
func WithRequestBody(v any) RequestOption {
	return func(c *requestConfig) { c.body = v; c.bodySet = true }
}

// NewHttpRequest builds a request from a loosely-typed URL (string,
// RequestURL or ResponseURL) and options. Unsupported input types fail
// with an error; nothing is coerced silently.
func NewHttpRequest(url any, opts ...RequestOption) (*HttpRequest, error) {
	cfg := requestConfig{method: "GET"}
	for _, opt := range opts {
		opt(&cfg)
	}

	u, err := NewRequestURL(url)
	if err != nil {
		return nil, fmt.Errorf("request url: %w", err)
	}
	req := &HttpRequest{url: u, method: cfg.method}

	if cfg.headersSet {
		h, err := asRequestHeaders(cfg.headers)
		if err != nil {
			return nil, fmt.Errorf("request headers: %w", err)
		}
		req.headers = h
	} else {
		req.headers = NewHttpRequestHeaders()
	}

	if cfg.bodySet {
		b, err := asRequestBody(cfg.body)
		if err != nil {
			return nil, fmt.Errorf("request body: %w", err)
		}
		req.body = b
	} else {
		req.body = HttpRequestBody{}
	}
	return req, nil
}

// URL returns the request URL.
func (r *HttpRequest) URL() RequestURL { return r.url }

// Method returns the request method, e.g. "GET".
func (r *HttpRequest) Method() string { return r.method }

// Headers returns the request headers.
func (r *HttpRequest) Headers() HttpRequestHeaders { return r.headers }

// Body returns the raw request body.
func (r *HttpRequest) Body() HttpRequestBody { return r.body }

func (r *HttpRequest) String() string {
	return fmt.Sprintf("HttpRequest(%s %s)", r.method, r.url)
}
