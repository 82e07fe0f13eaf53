package charset

import (
	"bytes"
	"mime"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// sniffLen bounds how much of the body is scanned for an embedded charset
// declaration. Browsers use a similar prefix; a full parse is never needed.
const sniffLen = 4096

var (
	xmlDeclRe = regexp.MustCompile(`(?i)<\?xml\s[^>]*encoding\s*=\s*["']?([A-Za-z0-9._-]+)`)
	charsetRe = regexp.MustCompile(`(?i)charset\s*=\s*"?'?([^"';,\s]+)`)
)

// ContentTypeEncoding extracts the charset parameter from a Content-Type
// value and resolves it. Empty when the parameter is absent or the label is
// unrecognized, so "charset=UNKNOWN" behaves exactly like no charset at all.
func ContentTypeEncoding(contentType string) string {
	if contentType == "" {
		return ""
	}
	if _, params, err := mime.ParseMediaType(contentType); err == nil {
		if cs, ok := params["charset"]; ok {
			return ResolveLabel(cs)
		}
		return ""
	}
	// Malformed media type; scraped servers send these. Fish the
	// parameter out anyway.
	if m := charsetRe.FindStringSubmatch(contentType); m != nil {
		return ResolveLabel(m[1])
	}
	return ""
}

// BodyDeclaredEncoding scans the first bytes of an HTML or XML body for an
// embedded charset declaration: an XML declaration, an HTML5
// <meta charset=...>, or a <meta http-equiv="Content-Type"> tag. Returns
// the first recognized label, or empty when none is found within the
// scanned prefix.
func BodyDeclaredEncoding(body []byte) string {
	prefix := body
	if len(prefix) > sniffLen {
		prefix = prefix[:sniffLen]
	}
	if m := xmlDeclRe.FindSubmatch(prefix); m != nil {
		if label := ResolveLabel(string(m[1])); label != "" {
			return label
		}
	}

	z := html.NewTokenizer(bytes.NewReader(prefix))
	for {
		switch z.Next() {
		case html.ErrorToken:
			// End of prefix, possibly mid-token. Nothing declared.
			return ""
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			tag := string(name)
			if tag == "body" {
				// Declarations inside the document body don't count.
				return ""
			}
			if tag != "meta" || !hasAttr {
				continue
			}
			if label := metaDeclaredEncoding(z); label != "" {
				return label
			}
		}
	}
}

func metaDeclaredEncoding(z *html.Tokenizer) string {
	var charsetAttr, httpEquiv, content string
	for {
		key, val, more := z.TagAttr()
		switch strings.ToLower(string(key)) {
		case "charset":
			charsetAttr = string(val)
		case "http-equiv":
			httpEquiv = string(val)
		case "content":
			content = string(val)
		}
		if !more {
			break
		}
	}
	if charsetAttr != "" {
		if label := ResolveLabel(charsetAttr); label != "" {
			return label
		}
	}
	if strings.EqualFold(httpEquiv, "content-type") && content != "" {
		return ContentTypeEncoding(content)
	}
	return ""
}
