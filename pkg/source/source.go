// Package source reads GDScript and scene files and prepares their text for
// pattern matching: decoding, line ending normalization and string literal
// masking.
package source

import (
	"fmt"
	"io/fs"
	"os"
)

// ContentSource provides file content from a specific source.
type ContentSource interface {
	// Read returns the content of the file at path.
	Read(path string) ([]byte, error)
}

// FilesystemSource reads files from the local filesystem.
type FilesystemSource struct{}

// NewFilesystem creates a source that reads from the filesystem.
func NewFilesystem() *FilesystemSource {
	return &FilesystemSource{}
}

// Read implements ContentSource.
func (f *FilesystemSource) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// MapSource serves file content from memory, keyed by path.
type MapSource map[string]string

// Read implements ContentSource.
func (m MapSource) Read(path string) ([]byte, error) {
	content, ok := m[path]
	if !ok {
		return nil, &fs.PathError{Op: "read", Path: path, Err: fs.ErrNotExist}
	}
	return []byte(content), nil
}

// ReadText reads path from src and returns decoded, normalized text.
// Invalid UTF-8 never fails the read; only I/O errors are returned.
func ReadText(src ContentSource, path string) (string, error) {
	data, err := src.Read(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return Normalize(Decode(data)), nil
}
