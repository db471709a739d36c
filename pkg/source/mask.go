package source

import "strings"

// MaskStrings blanks the contents of every quoted string literal in text.
//
// Quote characters are kept, interior bytes become spaces and newlines
// inside triple-quoted blocks are kept, so the result has exactly the same
// length and line structure as the input. Offsets found in the masked text
// are valid offsets into the original.
func MaskStrings(text string) string {
	n := len(text)
	out := make([]byte, n)
	i := 0
	for i < n {
		c := text[i]
		if (c != '"' && c != '\'') || (i > 0 && text[i-1] == '\\') {
			out[i] = c
			i++
			continue
		}

		if i+2 < n && text[i+1] == c && text[i+2] == c {
			i = maskTriple(text, out, i, c)
			continue
		}

		out[i] = c
		i++
		if i < n && text[i] == c {
			// Empty literal.
			out[i] = c
			i++
			continue
		}
		i = maskLine(text, out, i, c)
	}
	return string(out)
}

// maskTriple masks a triple-quoted block opening at start and returns the
// offset just past its closing run, or len(text) when it is unterminated.
func maskTriple(text string, out []byte, start int, quote byte) int {
	run := strings.Repeat(string(quote), 3)
	copy(out[start:], run)
	bodyStart := start + 3

	end := len(text)
	closeAt := strings.Index(text[bodyStart:], run)
	if closeAt >= 0 {
		end = bodyStart + closeAt
	}
	blank(text, out, bodyStart, end)

	if closeAt < 0 {
		return len(text)
	}
	copy(out[end:], run)
	return end + 3
}

// maskLine masks a single-line literal whose body starts at start. It stops
// after the closing quote, or before a newline or end of text.
func maskLine(text string, out []byte, start int, quote byte) int {
	i := start
	for i < len(text) {
		switch b := text[i]; {
		case b == '\n':
			return i
		case b == '\\':
			out[i] = ' '
			if i+1 < len(text) && text[i+1] != '\n' {
				out[i+1] = ' '
				i += 2
				continue
			}
			i++
		case b == quote:
			out[i] = quote
			return i + 1
		default:
			out[i] = ' '
			i++
		}
	}
	return i
}

func blank(text string, out []byte, from, to int) {
	for j := from; j < to; j++ {
		if text[j] == '\n' {
			out[j] = '\n'
		} else {
			out[j] = ' '
		}
	}
}
