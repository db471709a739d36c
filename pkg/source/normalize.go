package source

import "strings"

// Placeholder replaces each invalid UTF-8 sequence during decoding.
const Placeholder = "?"

const bom = "\ufeff"

var lineEndings = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// Decode converts raw bytes to text, substituting Placeholder for every
// invalid UTF-8 sequence.
func Decode(data []byte) string {
	return strings.ToValidUTF8(string(data), Placeholder)
}

// Normalize collapses CRLF and bare CR line endings to LF and strips a
// leading byte order mark. Normalizing normalized text is a no-op.
func Normalize(text string) string {
	if text == "" {
		return text
	}
	text = lineEndings.Replace(text)
	return strings.TrimPrefix(text, bom)
}
