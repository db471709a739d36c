package source

import (
	"sort"
	"strings"
)

// LineIndex maps byte offsets of a text to 1-based line numbers.
type LineIndex struct {
	newlines []int
}

// NewLineIndex records the newline offsets of text.
func NewLineIndex(text string) *LineIndex {
	newlines := make([]int, 0, strings.Count(text, "\n"))
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			newlines = append(newlines, i)
		}
	}
	return &LineIndex{newlines: newlines}
}

// Line returns 1 plus the number of newlines before offset.
func (l *LineIndex) Line(offset int) uint32 {
	return uint32(sort.SearchInts(l.newlines, offset)) + 1
}

// Lines returns the number of lines in the indexed text.
func (l *LineIndex) Lines() int {
	return len(l.newlines) + 1
}
