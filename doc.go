// Package webpoet models the HTTP exchange behind content extraction:
// typed URL values, immutable request/response bodies and headers, and
// request/response composites that resolve the body's text encoding from
// conflicting or absent signals.
//
// The encoding cascade prefers an explicit caller-supplied encoding, then
// the Content-Type header charset, then a charset declared inside the body
// prefix, then inference from the bytes themselves. Resolution happens at
// most once per response and never fails: unrecognized labels fall through
// to the next source and malformed bytes decode to U+FFFD.
//
// Transport is out of scope. HttpClient only assembles requests and
// delegates execution to a Downloader supplied by the surrounding
// framework, which must hand back responses with fully materialized
// bodies.
package webpoet
