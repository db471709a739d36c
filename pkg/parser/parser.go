// Package parser extracts function definitions and reference sites from
// GDScript and scene text using regular expressions over the source and a
// literal-masked copy of it. There is no syntax tree: any name bound to a
// recognized call-like or value-like shape counts as referenced.
package parser

import (
	"path/filepath"
	"strings"

	"github.com/panbanda/gdcf/pkg/source"
)

// Language represents a supported input format.
type Language string

const (
	LangGDScript Language = "gdscript"
	LangScene    Language = "scene"
	LangUnknown  Language = "unknown"
)

// File extensions handled by the scanner.
const (
	ExtGDScript = ".gd"
	ExtScene    = ".tscn"
)

// DetectLanguage returns the input format of path from its extension,
// compared case-insensitively.
func DetectLanguage(path string) Language {
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtGDScript:
		return LangGDScript
	case ExtScene:
		return LangScene
	default:
		return LangUnknown
	}
}

// Document is one normalized file prepared for extraction. Masked has the
// same length as Text, so offsets found in either map to lines in Text.
type Document struct {
	Path   string
	Text   string
	Masked string
	Lines  *source.LineIndex
}

// NewDocument prepares normalized text for extraction.
func NewDocument(path, text string) *Document {
	return &Document{
		Path:   path,
		Text:   text,
		Masked: source.MaskStrings(text),
		Lines:  source.NewLineIndex(text),
	}
}

// Reference is a name used at a line of one file.
type Reference struct {
	Name string
	Line uint32
}
