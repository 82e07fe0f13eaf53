// Package charset resolves the text encoding of an HTTP response body from
// headers, embedded document metadata, and the raw bytes themselves. Labels
// are normalized through the WHATWG registry, a handful of legacy aliases
// are widened to their superset codecs, and decoding always succeeds by
// substituting the replacement character for malformed input.
package charset

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
)

// translation widens legacy labels to superset codecs, the way browsers and
// scraping stacks treat them in the wild. Keys are normalized labels.
var translation = map[string]string{
	"gb2312":          "gb18030",
	"gb-2312":         "gb18030",
	"gb-2312-80":      "gb18030",
	"gbk":             "gb18030",
	"chinese":         "gb18030",
	"csiso58gb231280": "gb18030",
	"zh-cn":           "gb18030",
}

// utfFamilyLabels are handled outside the WHATWG index: the index has no
// utf-32 entries at all and maps a bare "utf-16" to little-endian, while
// the convention here is to defer endianness to the BOM, else big-endian.
var utfFamilyLabels = map[string]bool{
	"utf-16":   true,
	"utf-16le": true,
	"utf-16be": true,
	"utf-32":   true,
	"utf-32le": true,
	"utf-32be": true,
}

// ResolveLabel normalizes a charset label to its canonical lowercase name.
// Unknown or garbage labels resolve to the empty string, which callers
// treat as "no encoding declared" rather than an error.
func ResolveLabel(label string) string {
	norm := strings.ToLower(strings.TrimSpace(label))
	norm = strings.ReplaceAll(norm, "_", "-")
	if t, ok := translation[norm]; ok {
		norm = t
	}
	if utfFamilyLabels[norm] {
		return norm
	}
	enc, err := htmlindex.Get(norm)
	if err != nil {
		return ""
	}
	name, err := htmlindex.Name(enc)
	if err != nil {
		return ""
	}
	return name
}

// lookupCodec maps a resolved label to its decoder. Returns nil when the
// label is not resolvable.
func lookupCodec(label string) encoding.Encoding {
	switch label {
	case "utf-16", "utf-16be":
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	case "utf-16le":
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	case "utf-32", "utf-32be":
		return utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM)
	case "utf-32le":
		return utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM)
	}
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil
	}
	return enc
}

// ReadBOM reports the byte-order-mark at the start of body, if any, as a
// resolved label plus the mark's length in bytes. utf-32 marks are checked
// before utf-16 because they share a prefix.
func ReadBOM(body []byte) (label string, size int) {
	switch {
	case len(body) >= 4 && body[0] == 0x00 && body[1] == 0x00 && body[2] == 0xFE && body[3] == 0xFF:
		return "utf-32be", 4
	case len(body) >= 4 && body[0] == 0xFF && body[1] == 0xFE && body[2] == 0x00 && body[3] == 0x00:
		return "utf-32le", 4
	case len(body) >= 3 && body[0] == 0xEF && body[1] == 0xBB && body[2] == 0xBF:
		return "utf-8", 3
	case len(body) >= 2 && body[0] == 0xFE && body[1] == 0xFF:
		return "utf-16be", 2
	case len(body) >= 2 && body[0] == 0xFF && body[1] == 0xFE:
		return "utf-16le", 2
	}
	return "", 0
}

func encodingFamily(label string) string {
	switch {
	case strings.HasPrefix(label, "utf-16"):
		return "utf-16"
	case strings.HasPrefix(label, "utf-32"):
		return "utf-32"
	}
	return label
}

// Decode converts body to text under the given label. A BOM is stripped
// when it agrees with the label's encoding family, and also pins the
// endianness for utf-16/utf-32; without one those decode big-endian.
// Malformed byte sequences become U+FFFD; Decode never fails.
func Decode(body []byte, label string) string {
	resolved := ResolveLabel(label)
	if resolved == "" {
		resolved = "utf-8"
	}
	if bomLabel, n := ReadBOM(body); bomLabel != "" &&
		encodingFamily(bomLabel) == encodingFamily(resolved) {
		body = body[n:]
		resolved = bomLabel
	} else if resolved == "utf-16" {
		resolved = "utf-16be"
	} else if resolved == "utf-32" {
		resolved = "utf-32be"
	}
	codec := lookupCodec(resolved)
	if codec == nil {
		return string(body)
	}
	out, err := codec.NewDecoder().Bytes(body)
	if err != nil {
		// Decoders substitute U+FFFD rather than failing; this is a
		// backstop for a misbehaving codec.
		return string(body)
	}
	return string(out)
}

// Infer trial-decodes body against a short candidate ladder and returns the
// resolved label of the first candidate that decodes cleanly. ASCII wins
// first (and resolves to its windows-1252 superset), then strict UTF-8,
// then windows-1252. Empty string when every candidate fails.
func Infer(body []byte) string {
	if isASCII(body) {
		return ResolveLabel("ascii")
	}
	if utf8.Valid(body) {
		return "utf-8"
	}
	if decodesWindows1252(body) {
		return "windows-1252"
	}
	return ""
}

func isASCII(body []byte) bool {
	for _, b := range body {
		if b >= 0x80 {
			return false
		}
	}
	return true
}

func decodesWindows1252(body []byte) bool {
	for _, b := range body {
		if b < 0x80 {
			continue
		}
		if charmap.Windows1252.DecodeByte(b) == utf8.RuneError {
			return false
		}
	}
	return true
}
