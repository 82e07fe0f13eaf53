package charset

// DefaultEncoding is the label assumed when every other source fails. It
// alias-resolves to windows-1252, the conventional superset for unlabeled
// western content.
const DefaultEncoding = "ascii"

// Resolution carries the outcome of a single cascade run: the encoding
// label to report and the decoded text. Both are produced together so that
// callers can cache them as one unit, regardless of which one is read
// first.
type Resolution struct {
	Encoding string
	Text     string
}

// Resolve runs the precedence cascade over an explicit encoding, the
// Content-Type header value, and the raw body, short-circuiting at the
// first source that yields a recognized label:
//
//  1. the explicit encoding, reported verbatim even when it decodes the
//     body badly (the caller's word is authoritative);
//  2. the header charset;
//  3. a charset declared inside the body prefix;
//  4. a byte-order-mark, then trial decoding, then DefaultEncoding.
//
// A source that produces an unrecognized label is treated the same as an
// absent one and the cascade keeps going. Resolve never fails: malformed
// bytes decode to the replacement character.
func Resolve(explicit, contentType string, body []byte) Resolution {
	if explicit != "" {
		if ResolveLabel(explicit) != "" {
			return Resolution{Encoding: explicit, Text: Decode(body, explicit)}
		}
		// The label is reported as given, but it names no codec we can
		// use; decode via the body's own declaration, else utf-8.
		label := BodyDeclaredEncoding(body)
		if label == "" {
			label = "utf-8"
		}
		return Resolution{Encoding: explicit, Text: Decode(body, label)}
	}
	if label := ContentTypeEncoding(contentType); label != "" {
		return Resolution{Encoding: label, Text: Decode(body, label)}
	}
	if label := BodyDeclaredEncoding(body); label != "" {
		return Resolution{Encoding: label, Text: Decode(body, label)}
	}
	if label, _ := ReadBOM(body); label != "" {
		return Resolution{Encoding: label, Text: Decode(body, label)}
	}
	label := Infer(body)
	if label == "" {
		label = ResolveLabel(DefaultEncoding)
	}
	return Resolution{Encoding: label, Text: Decode(body, label)}
}
