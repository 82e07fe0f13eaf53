package webpoet

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/idna"
)

// urlValue is the shared representation behind RequestURL and ResponseURL.
// It holds the normalized absolute URL string plus its parsed form, and is
// never mutated after construction.
type urlValue struct {
	raw    string
	parsed *url.URL
}

// RequestURL is the URL of an outgoing request. It is behaviorally
// identical to ResponseURL; the two are distinct types so that call sites
// cannot mix up which side of the exchange a URL belongs to.
type RequestURL struct {
	urlValue
}

// ResponseURL is the URL of a received response, after redirects.
type ResponseURL struct {
	urlValue
}

// NewRequestURL wraps v as a request-side URL. v may be a string, another
// RequestURL, or a ResponseURL; the input is assumed to be already encoded
// and is stored as-is, so wrapping an existing URL value never re-encodes.
func NewRequestURL(v any) (RequestURL, error) {
	val, err := newURLValue(v)
	if err != nil {
		return RequestURL{}, err
	}
	return RequestURL{val}, nil
}

// NewResponseURL wraps v as a response-side URL. See NewRequestURL for the
// accepted inputs.
func NewResponseURL(v any) (ResponseURL, error) {
	val, err := newURLValue(v)
	if err != nil {
		return ResponseURL{}, err
	}
	return ResponseURL{val}, nil
}

// EncodeRequestURL builds a request-side URL from a raw, possibly
// non-ASCII string: the host is converted to Punycode and path, query and
// fragment are percent-encoded as UTF-8. There is no guarantee the guessed
// encoding matches what the origin expects, so prefer NewRequestURL when
// the input is already encoded.
func EncodeRequestURL(raw string) (RequestURL, error) {
	encoded, err := encodeURL(raw)
	if err != nil {
		return RequestURL{}, err
	}
	return NewRequestURL(encoded)
}

// EncodeResponseURL is the response-side counterpart of EncodeRequestURL.
func EncodeResponseURL(raw string) (ResponseURL, error) {
	encoded, err := encodeURL(raw)
	if err != nil {
		return ResponseURL{}, err
	}
	return NewResponseURL(encoded)
}

func newURLValue(v any) (urlValue, error) {
	switch u := v.(type) {
	case string:
		parsed, err := url.Parse(u)
		if err != nil {
			return urlValue{}, fmt.Errorf("parse url %q: %w", u, err)
		}
		return urlValue{raw: u, parsed: parsed}, nil
	case RequestURL:
		return u.urlValue, nil
	case ResponseURL:
		return u.urlValue, nil
	case urlValue:
		return u, nil
	default:
		return urlValue{}, fmt.Errorf("url must be a string or a URL value, got %T", v)
	}
}

// encodeURL normalizes a raw URL string: IDNA host, percent-encoded UTF-8
// path, query and fragment.
func encodeURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", raw, err)
	}
	if host := u.Hostname(); host != "" && !isASCIIString(host) {
		ascii, err := idna.ToASCII(host)
		if err != nil {
			return "", fmt.Errorf("punycode host %q: %w", host, err)
		}
		if port := u.Port(); port != "" {
			u.Host = ascii + ":" + port
		} else {
			u.Host = ascii
		}
	}
	// URL.String percent-encodes the path and fragment on its own; the
	// raw query is emitted verbatim and needs explicit escaping.
	u.RawQuery = escapeNonASCII(u.RawQuery)
	return u.String(), nil
}

func isASCIIString(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

func escapeNonASCII(s string) string {
	if isASCIIString(s) {
		return s
	}
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < 0x80 {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0xF])
	}
	return b.String()
}

// String returns the normalized URL string.
func (u urlValue) String() string { return u.raw }

// Scheme returns the URL scheme, e.g. "https".
func (u urlValue) Scheme() string { return u.parsed.Scheme }

// Host returns the host component, without the port.
func (u urlValue) Host() string { return u.parsed.Hostname() }

// Path returns the decoded path component.
func (u urlValue) Path() string { return u.parsed.Path }

// QueryString returns the raw query string, without the leading "?".
func (u urlValue) QueryString() string { return u.parsed.RawQuery }

// Fragment returns the fragment, without the leading "#".
func (u urlValue) Fragment() string { return u.parsed.Fragment }

// Equal compares against a string, RequestURL or ResponseURL. Two URLs are
// equal when their normalized strings match, with one deliberate special
// case: a bare root path ("https://h/") equals the path-less form
// ("https://h"). The leniency stops at the root; "/foo" and "/foo/" stay
// distinct.
func (u urlValue) Equal(other any) bool {
	var o urlValue
	switch v := other.(type) {
	case string:
		parsed, err := url.Parse(v)
		if err != nil {
			return u.raw == v
		}
		o = urlValue{raw: v, parsed: parsed}
	case RequestURL:
		o = v.urlValue
	case ResponseURL:
		o = v.urlValue
	case urlValue:
		o = v
	default:
		return false
	}
	if isRootPath(u.parsed) && isRootPath(o.parsed) {
		return u.parsed.Scheme == o.parsed.Scheme &&
			u.parsed.Host == o.parsed.Host &&
			u.parsed.RawQuery == o.parsed.RawQuery &&
			u.parsed.Fragment == o.parsed.Fragment
	}
	return u.raw == o.raw
}

func isRootPath(u *url.URL) bool {
	return u.Path == "" || u.Path == "/"
}

func (u urlValue) join(ref string) (urlValue, error) {
	r, err := url.Parse(ref)
	if err != nil {
		return urlValue{}, fmt.Errorf("parse reference %q: %w", ref, err)
	}
	resolved := u.parsed.ResolveReference(r)
	return urlValue{raw: resolved.String(), parsed: resolved}, nil
}

func (u urlValue) updateQuery(params map[string]string) urlValue {
	updated := *u.parsed
	q := updated.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	updated.RawQuery = q.Encode()
	return urlValue{raw: updated.String(), parsed: &updated}
}

// Join resolves ref against the URL per RFC 3986 and returns the result.
func (u RequestURL) Join(ref string) (RequestURL, error) {
	val, err := u.join(ref)
	if err != nil {
		return RequestURL{}, err
	}
	return RequestURL{val}, nil
}

// Join resolves ref against the URL per RFC 3986 and returns the result.
func (u ResponseURL) Join(ref string) (ResponseURL, error) {
	val, err := u.join(ref)
	if err != nil {
		return ResponseURL{}, err
	}
	return ResponseURL{val}, nil
}

// UpdateQuery returns a copy of the URL with the given query parameters
// added or replaced. Existing parameters not named in params are kept.
func (u RequestURL) UpdateQuery(params map[string]string) RequestURL {
	return RequestURL{u.updateQuery(params)}
}

// UpdateQuery returns a copy of the URL with the given query parameters
// added or replaced. Existing parameters not named in params are kept.
func (u ResponseURL) UpdateQuery(params map[string]string) ResponseURL {
	return ResponseURL{u.updateQuery(params)}
}
