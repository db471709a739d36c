package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		path string
		want Language
	}{
		{"player.gd", LangGDScript},
		{"scripts/enemy/Enemy.GD", LangGDScript},
		{"main.tscn", LangScene},
		{"ui/Menu.TSCN", LangScene},
		{"project.godot", LangUnknown},
		{"icon.svg.import", LangUnknown},
		{"gd", LangUnknown},
		{"README", LangUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectLanguage(tt.path))
		})
	}
}

func TestNewDocument(t *testing.T) {
	text := "func a():\n\tprint(\"b()\")\n"
	doc := NewDocument("a.gd", text)

	assert.Equal(t, "a.gd", doc.Path)
	assert.Equal(t, text, doc.Text)
	assert.Len(t, doc.Masked, len(text))
	assert.NotContains(t, doc.Masked, "b()")
	assert.Equal(t, 3, doc.Lines.Lines())
}
