package webpoet

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/victor-torres/web-poet/internal/charset"
)

// ErrHeaderNotFound is returned by Lookup when no case-insensitive match
// exists for the requested header name.
var ErrHeaderNotFound = errors.New("header not found")

// NameValue is a single header name/value pair.
type NameValue struct {
	Name  string
	Value string
}

// httpHeaders is an ordered, case-insensitive, multi-valued header
// container: entries keep insertion order and original key case, the index
// maps lowercased names to entry positions. The layout follows the usual
// parsed-message representation (ordered field lines plus a lowercased
// lookup map).
type httpHeaders struct {
	entries []NameValue
	index   map[string][]int
}

// HttpRequestHeaders holds the headers of an HTTP request.
type HttpRequestHeaders struct {
	httpHeaders
}

// HttpResponseHeaders holds the headers of an HTTP response.
type HttpResponseHeaders struct {
	httpHeaders
}

func newHTTPHeaders(pairs []NameValue) httpHeaders {
	h := httpHeaders{index: make(map[string][]int, len(pairs))}
	for _, p := range pairs {
		h.entries = append(h.entries, p)
		key := strings.ToLower(p.Name)
		h.index[key] = append(h.index[key], len(h.entries)-1)
	}
	return h
}

// NewHttpRequestHeaders builds request headers from name/value pairs,
// preserving order and duplicates.
func NewHttpRequestHeaders(pairs ...NameValue) HttpRequestHeaders {
	return HttpRequestHeaders{newHTTPHeaders(pairs)}
}

// NewHttpResponseHeaders builds response headers from name/value pairs,
// preserving order and duplicates.
func NewHttpResponseHeaders(pairs ...NameValue) HttpResponseHeaders {
	return HttpResponseHeaders{newHTTPHeaders(pairs)}
}

// Get returns the first value for a case-insensitively matched name, or
// the empty string when the header is absent.
func (h httpHeaders) Get(name string) string {
	idxs := h.index[strings.ToLower(name)]
	if len(idxs) == 0 {
		return ""
	}
	return h.entries[idxs[0]].Value
}

// GetAll returns every value recorded under the name, in insertion order.
// The result is nil when the header is absent.
func (h httpHeaders) GetAll(name string) []string {
	idxs := h.index[strings.ToLower(name)]
	if len(idxs) == 0 {
		return nil
	}
	values := make([]string, 0, len(idxs))
	for _, i := range idxs {
		values = append(values, h.entries[i].Value)
	}
	return values
}

// Lookup returns the first value for the name, failing with
// ErrHeaderNotFound when no case-insensitive match exists.
func (h httpHeaders) Lookup(name string) (string, error) {
	idxs := h.index[strings.ToLower(name)]
	if len(idxs) == 0 {
		return "", fmt.Errorf("%q: %w", name, ErrHeaderNotFound)
	}
	return h.entries[idxs[0]].Value, nil
}

// Has reports whether any value exists under the name.
func (h httpHeaders) Has(name string) bool {
	return len(h.index[strings.ToLower(name)]) > 0
}

// Len returns the number of header entries, counting duplicates.
func (h httpHeaders) Len() int { return len(h.entries) }

// Entries returns the header pairs in insertion order with their original
// key case. The returned slice is a copy.
func (h httpHeaders) Entries() []NameValue {
	out := make([]NameValue, len(h.entries))
	copy(out, h.entries)
	return out
}

// DeclaredEncoding returns the charset named by the Content-Type header,
// normalized through the alias table, or empty when the header is absent
// or carries no recognizable charset parameter.
func (h HttpResponseHeaders) DeclaredEncoding() string {
	return charset.ContentTypeEncoding(h.Get("Content-Type"))
}

// RawValue is a closed variant for header values arriving from a transport
// layer: text, raw bytes, or absent. The zero value is invalid on purpose,
// so that unsupported inputs fail loudly instead of being coerced.
type RawValue struct {
	kind rawKind
	text string
	data []byte
}

type rawKind int

const (
	rawInvalid rawKind = iota
	rawText
	rawBytes
	rawAbsent
)

// RawText wraps an already-decoded text value.
func RawText(s string) RawValue { return RawValue{kind: rawText, text: s} }

// RawBytes wraps an undecoded byte value.
func RawBytes(b []byte) RawValue { return RawValue{kind: rawBytes, data: b} }

// RawAbsent marks a header whose value is missing; it passes through the
// conversion without producing an entry.
func RawAbsent() RawValue { return RawValue{kind: rawAbsent} }

// RawValues is the multi-valued form of RawValue; a single-valued header
// is just a one-element list.
type RawValues []RawValue

// HttpResponseHeadersFromBytesMap converts a mapping of raw transport
// header values into response headers. Byte values (and non-ASCII names)
// are decoded with the given encoding, which defaults to utf-8 when empty.
// Absent values are dropped; an invalid RawValue fails with an error
// naming the offending header. Values under one name become multiple
// entries, order preserved; names are inserted in sorted order since Go
// maps carry none.
func HttpResponseHeadersFromBytesMap(raw map[string]RawValues, encoding string) (HttpResponseHeaders, error) {
	pairs, err := pairsFromBytesMap(raw, encoding)
	if err != nil {
		return HttpResponseHeaders{}, err
	}
	return NewHttpResponseHeaders(pairs...), nil
}

// HttpRequestHeadersFromBytesMap is the request-side counterpart of
// HttpResponseHeadersFromBytesMap.
func HttpRequestHeadersFromBytesMap(raw map[string]RawValues, encoding string) (HttpRequestHeaders, error) {
	pairs, err := pairsFromBytesMap(raw, encoding)
	if err != nil {
		return HttpRequestHeaders{}, err
	}
	return NewHttpRequestHeaders(pairs...), nil
}

func pairsFromBytesMap(raw map[string]RawValues, encoding string) ([]NameValue, error) {
	if encoding == "" {
		encoding = "utf-8"
	}
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	var pairs []NameValue
	for _, name := range names {
		decodedName := decodeRawString(name, encoding)
		for _, v := range raw[name] {
			switch v.kind {
			case rawText:
				pairs = append(pairs, NameValue{Name: decodedName, Value: v.text})
			case rawBytes:
				pairs = append(pairs, NameValue{
					Name:  decodedName,
					Value: charset.Decode(v.data, encoding),
				})
			case rawAbsent:
				// None passes through without an entry.
			default:
				return nil, fmt.Errorf("header %q: value must be text or bytes", name)
			}
		}
	}
	return pairs, nil
}

func decodeRawString(s string, encoding string) string {
	if isASCIIString(s) {
		return s
	}
	return charset.Decode([]byte(s), encoding)
}

// asRequestHeaders coerces loosely-typed header inputs: an existing
// container, plain maps, a net/http.Header from whatever transport
// produced the message, or explicit pairs. nil means empty. Map inputs are
// inserted in sorted name order.
func asRequestHeaders(v any) (HttpRequestHeaders, error) {
	pairs, err := headerPairs(v)
	if err != nil {
		return HttpRequestHeaders{}, err
	}
	if h, ok := v.(HttpRequestHeaders); ok {
		return h, nil
	}
	return NewHttpRequestHeaders(pairs...), nil
}

func asResponseHeaders(v any) (HttpResponseHeaders, error) {
	pairs, err := headerPairs(v)
	if err != nil {
		return HttpResponseHeaders{}, err
	}
	if h, ok := v.(HttpResponseHeaders); ok {
		return h, nil
	}
	return NewHttpResponseHeaders(pairs...), nil
}

func headerPairs(v any) ([]NameValue, error) {
	switch m := v.(type) {
	case nil:
		return nil, nil
	case HttpRequestHeaders:
		return m.Entries(), nil
	case HttpResponseHeaders:
		return m.Entries(), nil
	case []NameValue:
		return m, nil
	case map[string]string:
		names := sortedKeys(m)
		pairs := make([]NameValue, 0, len(m))
		for _, name := range names {
			pairs = append(pairs, NameValue{Name: name, Value: m[name]})
		}
		return pairs, nil
	case map[string][]string:
		return pairsFromMultiMap(m), nil
	case http.Header:
		return pairsFromMultiMap(m), nil
	default:
		return nil, fmt.Errorf("headers must be a header container, map or pairs, got %T", v)
	}
}

func pairsFromMultiMap(m map[string][]string) []NameValue {
	names := sortedKeys(m)
	var pairs []NameValue
	for _, name := range names {
		for _, value := range m[name] {
			pairs = append(pairs, NameValue{Name: name, Value: value})
		}
	}
	return pairs
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
